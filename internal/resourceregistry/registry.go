package resourceregistry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrInvalidURI      = errors.New("resourceregistry: invalid or empty uri")
	ErrDuplicate       = errors.New("resourceregistry: uri already registered")
	ErrFull            = errors.New("resourceregistry: registry at capacity")
	ErrNotFound        = errors.New("resourceregistry: resource not found")
	ErrInvalidTemplate = errors.New("resourceregistry: uri template must end in a single trailing {name}")
)

// DefaultCapacity bounds the registry when Config.Capacity is zero.
const DefaultCapacity = 4096

// Config configures a Registry.
type Config struct {
	Capacity    int
	FileRoot    string
	MaxFileSize int64
}

// Registry holds static resources and URI templates, each kept in their
// own namespace: resources keyed by URI, templates keyed by name.
type Registry struct {
	mu            sync.RWMutex
	resources     map[string]*Resource
	order         []string
	templates     map[string]*Template
	templateOrder []string

	capacity    int
	fileRoot    string
	maxFileSize int64
}

// NewRegistry constructs an empty Registry.
func NewRegistry(cfg Config) *Registry {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Registry{
		resources:   make(map[string]*Resource),
		templates:   make(map[string]*Template),
		capacity:    capacity,
		fileRoot:    cfg.FileRoot,
		maxFileSize: maxSize,
	}
}

// Register adds r under its URI. Fails if the URI is empty, already
// registered, or the registry is at capacity.
func (reg *Registry) Register(r Resource) error {
	if strings.TrimSpace(r.URI) == "" {
		return ErrInvalidURI
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.resources[r.URI]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, r.URI)
	}
	if len(reg.resources) >= reg.capacity {
		return ErrFull
	}

	reg.resources[r.URI] = newResource(r)
	reg.order = append(reg.order, r.URI)
	return nil
}

// RegisterTemplate adds t under its template name.
func (reg *Registry) RegisterTemplate(t Template) error {
	prefix, ok := compileTemplate(t.URITemplate)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTemplate, t.URITemplate)
	}
	t.prefix = prefix

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.templates[t.Name]; exists {
		return fmt.Errorf("%w: template %q", ErrDuplicate, t.Name)
	}

	reg.templates[t.Name] = &t
	reg.templateOrder = append(reg.templateOrder, t.Name)
	return nil
}

// Unregister removes uri from the live set.
func (reg *Registry) Unregister(uri string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.resources[uri]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, uri)
	}
	delete(reg.resources, uri)
	for i, u := range reg.order {
		if u == uri {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}
	return nil
}

// ReadResult is what resources/read returns for a single resource body.
type ReadResult struct {
	Data     []byte
	IsText   bool
	MimeType string
	ETag     uint64
}

// Read resolves uri against the static table first, then templates in
// registration order.
func (reg *Registry) Read(uri string) (ReadResult, error) {
	reg.mu.RLock()
	r, ok := reg.resources[uri]
	if !ok {
		for _, name := range reg.templateOrder {
			t := reg.templates[name]
			if paramValue, matched := t.match(uri); matched {
				reg.mu.RUnlock()
				return reg.readTemplate(t, paramValue)
			}
		}
	}
	reg.mu.RUnlock()

	if !ok {
		return ReadResult{}, ErrNotFound
	}
	return reg.readResource(r)
}

func (reg *Registry) readResource(r *Resource) (ReadResult, error) {
	switch r.Kind {
	case KindInlineText:
		mt := detectMimeType(r.MimeType, r.URI, []byte(r.Text))
		return ReadResult{Data: []byte(r.Text), IsText: true, MimeType: mt, ETag: etag([]byte(r.Text))}, nil

	case KindInlineBinary:
		mt := detectMimeType(r.MimeType, r.URI, r.Data)
		return ReadResult{Data: r.Data, IsText: false, MimeType: mt, ETag: etag(r.Data)}, nil

	case KindDynamic:
		data, isText, mimeOverride, err := r.Producer(r.UserData)
		if err != nil {
			return ReadResult{}, ErrNotFound
		}
		mt := mimeOverride
		if mt == "" {
			mt = detectMimeType(r.MimeType, r.URI, data)
		}
		return ReadResult{Data: data, IsText: isText, MimeType: mt, ETag: etag(data)}, nil

	case KindFileBacked:
		data, err := safeOpen(reg.fileRoot, r.Path, reg.maxFileSize)
		if err != nil {
			return ReadResult{}, ErrNotFound
		}
		mt := detectMimeType(r.MimeType, r.Path, data)
		return ReadResult{Data: data, IsText: isTextMime(mt), MimeType: mt, ETag: etag(data)}, nil

	default:
		return ReadResult{}, ErrNotFound
	}
}

func (reg *Registry) readTemplate(t *Template, paramValue string) (ReadResult, error) {
	data, isText, mimeOverride, err := t.Handler(paramValue, t.UserData)
	if err != nil {
		return ReadResult{}, ErrNotFound
	}
	mt := mimeOverride
	if mt == "" {
		mt = detectMimeType("", t.Name, data)
	}
	return ReadResult{Data: data, IsText: isText, MimeType: mt, ETag: etag(data)}, nil
}

// Entry is the shape resources/list emits.
type Entry struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// List returns every registered static resource's declared metadata
// without reading any body (a dynamic/file-backed entry's MIME type is
// its configured override or an extension-based guess, never a sniff of
// content the caller hasn't asked to read yet).
func (reg *Registry) List() []Entry {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]Entry, 0, len(reg.order))
	for _, uri := range reg.order {
		r := reg.resources[uri]
		mt := r.MimeType
		if mt == "" {
			path := r.Path
			if path == "" {
				path = r.URI
			}
			if guess, ok := detectByExtension(path); ok {
				mt = guess
			} else {
				mt = defaultMimeType
			}
		}
		out = append(out, Entry{URI: r.URI, Name: r.Name, Description: r.Description, MimeType: mt})
	}
	return out
}

// TemplateEntry is the shape resources/templates/list emits.
type TemplateEntry struct {
	URITemplate string
	Name        string
	Title       string
	Description string
	MimeType    string
}

// TemplatesList returns every registered template's declared metadata.
func (reg *Registry) TemplatesList() []TemplateEntry {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]TemplateEntry, 0, len(reg.templateOrder))
	for _, name := range reg.templateOrder {
		t := reg.templates[name]
		out = append(out, TemplateEntry{
			URITemplate: t.URITemplate,
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
		})
	}
	return out
}

// Len returns the number of registered static resources.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.resources)
}
