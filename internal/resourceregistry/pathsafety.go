package resourceregistry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the default size ceiling for file-backed
// resources (~1 MiB).
const DefaultMaxFileSize = 1 << 20

// errUnsafePath is never surfaced to the caller directly: path-safety
// violations are reported as not-found without disclosing the underlying
// cause.
var errUnsafePath = errors.New("resourceregistry: path failed safety checks")

// sanitizeRelativePath strips a file:// scheme and leading slash, then
// applies OS-independent textual checks: not absolute, no ".." segment,
// and no leading "." unless immediately followed by "/".
func sanitizeRelativePath(raw string) (string, error) {
	p := strings.TrimPrefix(raw, "file://")
	p = strings.TrimPrefix(p, "/")

	if p == "" {
		return "", errUnsafePath
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return "", errUnsafePath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", errUnsafePath
		}
	}
	if strings.HasPrefix(p, ".") && !strings.HasPrefix(p, "./") {
		return "", errUnsafePath
	}
	return p, nil
}

// safeOpen validates path's textual shape and, once resolved against
// root, its filesystem identity (a regular file, or a symlink resolving to
// one; not a directory or device; within maxSize) before reading it in full.
func safeOpen(root, rawPath string, maxSize int64) ([]byte, error) {
	rel, err := sanitizeRelativePath(rawPath)
	if err != nil {
		return nil, errUnsafePath
	}
	full := root + string(os.PathSeparator) + rel

	if err := checkRegularFile(full, maxSize); err != nil {
		return nil, errUnsafePath
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, errUnsafePath
	}
	return data, nil
}
