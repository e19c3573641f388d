//go:build !windows

package resourceregistry

import "golang.org/x/sys/unix"

// checkRegularFile validates the filesystem identity of path: must
// resolve to a regular file, not a directory or special device, and must
// not exceed maxSize. A symlink is resolved through its full chain; the
// final target must be a plain regular file.
func checkRegularFile(path string, maxSize int64) error {
	var lst unix.Stat_t
	if err := unix.Lstat(path, &lst); err != nil {
		return errUnsafePath
	}

	target := lst
	if lst.Mode&unix.S_IFMT == unix.S_IFLNK {
		var st unix.Stat_t
		if err := unix.Stat(path, &st); err != nil {
			return errUnsafePath
		}
		target = st
	}

	if target.Mode&unix.S_IFMT != unix.S_IFREG {
		return errUnsafePath
	}
	if target.Size > maxSize {
		return errUnsafePath
	}
	return nil
}
