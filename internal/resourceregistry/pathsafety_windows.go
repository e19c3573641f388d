//go:build windows

package resourceregistry

import (
	"os"

	"golang.org/x/sys/windows"
)

// checkRegularFile is the Windows counterpart of the unix stat-based
// check: os.Lstat/os.Stat establish regular-file-vs-directory shape
// (Windows has no symlink-to-directory ambiguity at the Go os layer
// worth re-deriving), and windows.GetFileType rejects character/pipe
// devices the same way unix.S_IFMT does on the other build. Grounded on
// flock_windows.go's use of golang.org/x/sys/windows for the platform
// call os/exec's cross-platform layer doesn't expose.
func checkRegularFile(path string, maxSize int64) error {
	info, err := os.Lstat(path)
	if err != nil {
		return errUnsafePath
	}

	target := info
	if info.Mode()&os.ModeSymlink != 0 {
		target, err = os.Stat(path)
		if err != nil {
			return errUnsafePath
		}
	}

	if !target.Mode().IsRegular() {
		return errUnsafePath
	}
	if target.Size() > maxSize {
		return errUnsafePath
	}
	return checkFileTypeDisk(path)
}

func checkFileTypeDisk(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return errUnsafePath
	}
	h, err := windows.CreateFile(p, windows.GENERIC_READ, windows.FILE_SHARE_READ, nil,
		windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return errUnsafePath
	}
	defer windows.CloseHandle(h)

	ft, err := windows.GetFileType(h)
	if err != nil || ft != windows.FILE_TYPE_DISK {
		return errUnsafePath
	}
	return nil
}
