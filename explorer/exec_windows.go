//go:build windows

package explorer

import (
	"os/exec"
	"syscall"
)

func applyHiddenWindow(cmd *exec.Cmd) {
	// No console window flashing up for every ffmpeg call.
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
