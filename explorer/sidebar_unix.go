//go:build !windows

package explorer

import "fyne.io/fyne/v2/theme"

func roots() []place {
	return []place{{name: "Computer", icon: theme.ComputerIcon(), path: "/"}}
}
