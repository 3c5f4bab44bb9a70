//go:build windows

package explorer

import (
	"os"
	"syscall"

	"fyne.io/fyne/v2/theme"
	"go.uber.org/zap"

	"github.com/alexballas/xexplorer/internal/logging"
)

func driveMask() uint32 {
	log := logging.Named("sidebar")
	dll, err := syscall.LoadLibrary("kernel32.dll")
	if err != nil {
		log.Warn("load kernel32.dll", zap.Error(err))
		return 0
	}
	handle, err := syscall.GetProcAddress(dll, "GetLogicalDrives")
	if err != nil {
		log.Warn("find GetLogicalDrives", zap.Error(err))
		return 0
	}

	ret, _, err := syscall.SyscallN(uintptr(handle))
	if err != syscall.Errno(0) {
		log.Warn("call GetLogicalDrives", zap.Error(err))
		return 0
	}
	return uint32(ret)
}

func roots() []place {
	var places []place
	mask := driveMask()
	for i := 0; i < 26; i++ {
		if mask&1 == 1 {
			drive := string('A'+rune(i)) + ":"
			places = append(places, place{
				name: drive,
				icon: theme.StorageIcon(),
				path: drive + string(os.PathSeparator),
			})
		}
		mask >>= 1
	}
	return places
}
