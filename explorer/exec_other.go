//go:build !windows

package explorer

import "os/exec"

func applyHiddenWindow(*exec.Cmd) {}
