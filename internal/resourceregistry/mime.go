package resourceregistry

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionTable is the minimum MIME-detection-by-extension coverage.
var extensionTable = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".c":    "text/x-c",
	".cpp":  "text/x-c++",
	".h":    "text/x-c",
	".py":   "text/x-python",
	".rs":   "text/x-rust",
	".go":   "text/x-go",
	".java": "text/x-java",
}

const defaultMimeType = "application/octet-stream"

// detectByExtension looks up a MIME type purely from path's extension.
func detectByExtension(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	mt, ok := extensionTable[ext]
	return mt, ok
}

// detectMimeType resolves a resource's MIME type: an explicit override
// wins; otherwise the extension table is tried; failing that,
// gabriel-vasile/mimetype sniffs the content itself, falling back to
// application/octet-stream.
func detectMimeType(override, path string, content []byte) string {
	if override != "" {
		return override
	}
	if mt, ok := detectByExtension(path); ok {
		return mt
	}
	if len(content) > 0 {
		return mimetype.Detect(content).String()
	}
	return defaultMimeType
}

// isTextMime reports whether mt should be classified as text for a
// resources/read response.
func isTextMime(mt string) bool {
	switch {
	case strings.HasPrefix(mt, "text/"):
		return true
	case mt == "application/json", mt == "application/xml", mt == "application/javascript":
		return true
	default:
		return false
	}
}
