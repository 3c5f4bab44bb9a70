package explorer

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/FyshOS/fancyfs"
)

type place struct {
	name string
	icon fyne.Resource
	path string
}

// sidebar lists the home directory, the XDG user directories and the
// filesystem roots.
type sidebar struct {
	navigate func(path string)
	list     *widget.List
	items    []place
	syncing  bool
}

func newSidebar(navigate func(path string)) *sidebar {
	s := &sidebar{navigate: navigate}
	s.items = loadPlaces()

	s.list = widget.NewList(
		func() int { return len(s.items) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.FolderIcon()),
				widget.NewLabel(lang.L("Template")),
			)
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(s.items) {
				return
			}
			item := s.items[id]
			box := o.(*fyne.Container)
			box.Objects[0].(*widget.Icon).SetResource(item.icon)
			box.Objects[1].(*widget.Label).SetText(lang.L(item.name))
		},
	)
	s.list.OnSelected = func(id widget.ListItemID) {
		if s.syncing || id >= len(s.items) {
			return
		}
		s.navigate(s.items[id].path)
	}
	return s
}

// syncSelection highlights the place matching dir without navigating.
func (s *sidebar) syncSelection(dir string) {
	s.syncing = true
	defer func() { s.syncing = false }()

	dir = filepath.Clean(dir)
	for i, item := range s.items {
		if filepath.Clean(item.path) == dir {
			s.list.Select(i)
			return
		}
	}
	s.list.UnselectAll()
}

func loadPlaces() []place {
	var items []place

	homeDir, err := os.UserHomeDir()
	if err == nil {
		items = append(items, place{name: "Home", icon: folderIcon(homeDir, theme.HomeIcon()), path: homeDir})

		order := []string{"Desktop", "Documents", "Downloads", "Music", "Pictures", "Videos"}
		if runtime.GOOS == "darwin" {
			order[len(order)-1] = "Movies"
		}
		for _, name := range order {
			p := favoriteLocation(homeDir, name)
			if st, err := os.Stat(p); err != nil || !st.IsDir() {
				continue
			}
			items = append(items, place{name: name, icon: folderIcon(p, theme.FolderIcon()), path: p})
		}
	}

	return append(items, roots()...)
}

func folderIcon(path string, fallback fyne.Resource) fyne.Resource {
	if details, err := fancyfs.DetailsForFolder(storage.NewFileURI(path)); err == nil && details != nil && details.BackgroundResource != nil {
		return details.BackgroundResource
	}
	return fallback
}

// favoriteLocation resolves a user directory through xdg-user-dir where it
// exists, else as a child of home.
func favoriteLocation(home, name string) string {
	fallback := filepath.Join(home, name)
	if runtime.GOOS != "linux" && runtime.GOOS != "openbsd" && runtime.GOOS != "freebsd" && runtime.GOOS != "netbsd" {
		return fallback
	}

	const cmdName = "xdg-user-dir"
	if _, err := exec.LookPath(cmdName); err != nil {
		return fallback
	}
	out, err := exec.Command(cmdName, strings.ToUpper(name)).Output()
	if err != nil {
		return fallback
	}

	loc := filepath.Clean(strings.TrimSpace(string(out)))
	// Unset XDG directories resolve to home itself.
	if loc == filepath.Clean(home) {
		if resolved, err := filepath.EvalSymlinks(fallback); err == nil {
			return resolved
		}
		return fallback
	}
	return loc
}
