// Package toolregistry implements the MCP tool registry: named callables
// with input-schema validation, statistics, and MCP content-envelope
// shaping for tools/call.
package toolregistry

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"sync/atomic"
	"time"
)

// namePattern is the legal tool-name shape.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// ValidName reports whether name is a legal tool identifier.
func ValidName(name string) bool { return namePattern.MatchString(name) }

// ArgKind is the type-tagged argument check performed against a tool's
// input schema: string / number / boolean / array / object / null.
// Deeper JSON-schema facets are accepted but not enforced.
type ArgKind string

const (
	KindString  ArgKind = "string"
	KindNumber  ArgKind = "number"
	KindBoolean ArgKind = "boolean"
	KindArray   ArgKind = "array"
	KindObject  ArgKind = "object"
	KindNull    ArgKind = "null"
)

// Executor is the tool's body. ctx carries the request deadline if the
// embedder attached one; args is the call's decoded argument map.
type Executor func(ctx context.Context, args map[string]any) (any, error)

// Validator runs after the schema's type-tagged check and before the
// executor; returning a non-nil error fails the call with kind
// validation_error.
type Validator func(args map[string]any) error

// Cleanup runs once, when the tool's refcount reaches zero: at Unregister,
// or later when the last handle still held past Unregister is released.
type Cleanup func()

// Metadata is the descriptive, non-functional information attached to a
// tool entry.
type Metadata struct {
	Version   string
	Author    string
	Category  string
	Async     bool
	Dangerous bool
}

// Limits are advisory resource ceilings; tool-timeout is accounted for
// (recorded in Stats) but not preemptively enforced by this package —
// enforcement is the embedder's responsibility via ctx.
type Limits struct {
	MaxExecutionMillis int64
	MaxMemoryBytes     int64
}

// Stats accumulates per-tool call statistics under the registry's write
// lock.
type Stats struct {
	CallsMade       int64
	Successful      int64
	Failed          int64
	LastCalledUnix  int64
	TotalTimeMicros int64
}

// AverageMicros returns the mean execution time, or 0 if never called.
func (s Stats) AverageMicros() int64 {
	if s.CallsMade == 0 {
		return 0
	}
	return s.TotalTimeMicros / s.CallsMade
}

// Tool is one registered callable. Immutable after registration except
// for its refcount and Stats, both owned by the registry that holds it.
type Tool struct {
	Name         string
	Title        string
	Description  string
	InputSchema  json.RawMessage
	OutputSchema json.RawMessage

	Executor  Executor
	Validator Validator
	Cleanup   Cleanup

	Metadata Metadata
	Limits   Limits

	mu    sync.Mutex
	stats Stats

	refcount   atomic.Int32
	cleanupRun atomic.Bool
}

func newTool(def Tool) *Tool {
	t := def
	t.refcount.Store(1)
	return &t
}

// Stats returns a snapshot of the tool's accumulated statistics.
func (t *Tool) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *Tool) recordCall(ok bool, elapsed time.Duration, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.CallsMade++
	if ok {
		t.stats.Successful++
	} else {
		t.stats.Failed++
	}
	t.stats.LastCalledUnix = now.Unix()
	t.stats.TotalTimeMicros += elapsed.Microseconds()
}

func (t *Tool) acquire() bool {
	for {
		cur := t.refcount.Load()
		if cur <= 0 {
			return false
		}
		if t.refcount.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

func (t *Tool) release() bool {
	if t.refcount.Add(-1) == 0 {
		if t.Cleanup != nil && t.cleanupRun.CompareAndSwap(false, true) {
			t.Cleanup()
		}
		return true
	}
	return false
}
