package resourceregistry

import "testing"

func TestDetectMimeTypePrefersExplicitOverride(t *testing.T) {
	got := detectMimeType("application/custom", "file.txt", []byte("x"))
	if got != "application/custom" {
		t.Errorf("detectMimeType() = %q, want application/custom", got)
	}
}

func TestDetectMimeTypeFallsBackToExtension(t *testing.T) {
	got := detectMimeType("", "file.json", nil)
	if got != "application/json" {
		t.Errorf("detectMimeType() = %q, want application/json", got)
	}
}

func TestDetectMimeTypeSniffsContentWithoutExtension(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	got := detectMimeType("", "noext", png)
	if got != "image/png" {
		t.Errorf("detectMimeType() = %q, want image/png", got)
	}
}

func TestIsTextMime(t *testing.T) {
	cases := map[string]bool{
		"text/plain":              true,
		"application/json":        true,
		"application/xml":         true,
		"application/javascript":  true,
		"application/octet-stream": false,
		"image/png":               false,
	}
	for mt, want := range cases {
		if got := isTextMime(mt); got != want {
			t.Errorf("isTextMime(%q) = %v, want %v", mt, got, want)
		}
	}
}
