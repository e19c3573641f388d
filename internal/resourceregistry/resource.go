// Package resourceregistry implements the MCP resource registry: static
// inline/dynamic/file-backed resources, URI templates, path safety, and
// MIME detection.
package resourceregistry

import (
	"regexp"
	"strings"
)

// Kind distinguishes the four resource entry shapes.
type Kind int

const (
	KindInlineText Kind = iota
	KindInlineBinary
	KindDynamic
	KindFileBacked
)

func (k Kind) String() string {
	switch k {
	case KindInlineText:
		return "inline-text"
	case KindInlineBinary:
		return "inline-binary"
	case KindDynamic:
		return "dynamic"
	case KindFileBacked:
		return "file-backed"
	default:
		return "unknown"
	}
}

// Producer is a dynamic resource's body-generating closure. It returns
// either text or raw bytes depending on isText, plus a MIME type
// override (empty keeps the entry's configured type).
type Producer func(userData any) (data []byte, isText bool, mimeOverride string, err error)

// Resource is one registered entry.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Kind        Kind

	Text string // KindInlineText
	Data []byte // KindInlineBinary

	Producer Producer // KindDynamic
	UserData any      // KindDynamic

	Path string // KindFileBacked
}

func newResource(r Resource) *Resource {
	res := r
	return &res
}

// namePattern admits any non-empty, non-whitespace resource name.
var namePattern = regexp.MustCompile(`^\S+$`)

// ValidResourceName reports whether name is an acceptable resource name.
func ValidResourceName(name string) bool { return namePattern.MatchString(strings.TrimSpace(name)) }

// Template is a URI pattern with a single trailing {name} placeholder.
// Multi-parameter templates are not supported in the core.
type Template struct {
	URITemplate string
	Name        string
	Title       string
	Description string
	Parameters  []ParamDescriptor
	Handler     TemplateHandler
	UserData    any

	prefix string // literal text before the trailing {name}
}

// ParamDescriptor documents one template parameter for listings.
type ParamDescriptor struct {
	Name        string
	Description string
	Required    bool
}

// TemplateHandler produces a resource body for a matched parameter value.
type TemplateHandler func(paramValue string, userData any) (data []byte, isText bool, mimeOverride string, err error)

var templatePattern = regexp.MustCompile(`^(.*)\{name\}$`)

// compileTemplate validates that uriTemplate ends in exactly one trailing
// {name} token and returns the literal prefix before it.
func compileTemplate(uriTemplate string) (string, bool) {
	m := templatePattern.FindStringSubmatch(uriTemplate)
	if m == nil {
		return "", false
	}
	prefix := m[1]
	if strings.Contains(prefix, "{") || strings.Contains(prefix, "}") {
		return "", false
	}
	return prefix, true
}

// match reports whether uri is covered by this template and, if so, the
// substring bound to {name}.
func (t *Template) match(uri string) (string, bool) {
	if !strings.HasPrefix(uri, t.prefix) {
		return "", false
	}
	return uri[len(t.prefix):], true
}
