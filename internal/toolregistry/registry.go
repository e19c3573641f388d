package toolregistry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mcpcore/server/internal/platform"
)

var (
	ErrInvalidName = errors.New("toolregistry: invalid tool name")
	ErrDuplicate   = errors.New("toolregistry: tool name already registered")
	ErrFull        = errors.New("toolregistry: registry at capacity")
	ErrNotFound    = errors.New("toolregistry: tool not found")
)

// DefaultCapacity bounds the registry when Config.Capacity is zero.
const DefaultCapacity = 4096

// Config configures a Registry.
type Config struct {
	Capacity int
	Metrics  *Metrics
	Sink     *StatsSink
}

// Definition is a tool registration: a tool is added under a unique name
// with a validated input schema.
type Definition struct {
	Name         string
	Title        string
	Description  string
	InputSchema  []byte
	OutputSchema []byte
	Executor     Executor
	Validator    Validator
	Cleanup      Cleanup
	Metadata     Metadata
	Limits       Limits
}

// Registry is a readers/writer lock over a map of live tools, each
// individually refcounted, with registration-order preserved for stable
// listing.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]*Tool
	order   []string
	plat    *platform.Platform
	metrics *Metrics
	sink    *StatsSink

	capacity int
}

// NewRegistry constructs an empty Registry. A nil plat falls back to
// platform.Standard.
func NewRegistry(cfg Config, plat *platform.Platform) *Registry {
	if plat == nil {
		plat = platform.Standard(nil)
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		tools:    make(map[string]*Tool),
		plat:     plat,
		metrics:  cfg.Metrics,
		sink:     cfg.Sink,
		capacity: capacity,
	}
}

// Register adds def under its unique name. Fails if the name is invalid,
// collides with a live tool, or the registry is at capacity.
func (r *Registry) Register(def Definition) error {
	if !ValidName(def.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, def.Name)
	}
	if len(r.tools) >= r.capacity {
		return ErrFull
	}

	t := newTool(Tool{
		Name:         def.Name,
		Title:        def.Title,
		Description:  def.Description,
		InputSchema:  def.InputSchema,
		OutputSchema: def.OutputSchema,
		Executor:     def.Executor,
		Validator:    def.Validator,
		Cleanup:      def.Cleanup,
		Metadata:     def.Metadata,
		Limits:       def.Limits,
	})
	r.tools[def.Name] = t
	r.order = append(r.order, def.Name)
	if r.metrics != nil {
		r.metrics.RegisteredTools.Set(float64(len(r.tools)))
	}
	return nil
}

// Unregister decrements the tool's refcount and removes it from the live
// map; cleanup runs once the refcount reaches zero.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	t, ok := r.tools[name]
	if ok {
		delete(r.tools, name)
		r.removeFromOrderLocked(name)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	t.release()
	if r.metrics != nil {
		r.mu.RLock()
		r.metrics.RegisteredTools.Set(float64(len(r.tools)))
		r.mu.RUnlock()
	}
	return nil
}

func (r *Registry) removeFromOrderLocked(name string) {
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// find looks the tool up under the shared lock and returns a counted
// reference.
func (r *Registry) find(name string) (*Tool, bool) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !t.acquire() {
		return nil, false
	}
	return t, true
}

// ToolSummary is the shape tools/list returns.
type ToolSummary struct {
	Name        string
	Title       string
	Description string
	InputSchema []byte
}

// List returns tool summaries in most-recently-registered-first order.
func (r *Registry) List() []ToolSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolSummary, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.tools[r.order[i]]
		out = append(out, ToolSummary{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return out
}

// sortedNames is a deterministic helper for tests/diagnostics that want a
// stable ordering independent of registration order.
func (r *Registry) sortedNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool against args, implementing the five-step
// tools/call sequence: find, schema-validate, custom-validate, execute,
// record.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) CallResult {
	t, ok := r.find(name)
	if !ok {
		return failureResult(FailureNotFound, fmt.Sprintf("unknown tool %q", name))
	}
	defer t.release()

	if len(t.InputSchema) > 0 {
		if err := validateArgs(t.InputSchema, args); err != nil {
			r.record(t, false, 0, false, 0)
			return failureResult(FailureValidation, err.Error())
		}
	}
	if t.Validator != nil {
		if err := t.Validator(args); err != nil {
			r.record(t, false, 0, false, 0)
			return failureResult(FailureValidation, err.Error())
		}
	}

	startMicros := r.plat.Clock.MonotonicMicros()
	value, err := t.Executor(ctx, args)
	elapsed := time.Duration(r.plat.Clock.MonotonicMicros()-startMicros) * time.Microsecond

	if err != nil {
		r.record(t, true, elapsed, false, 0)
		return failureResult(FailureExecution, err.Error())
	}

	result := successResult(value)
	d := digest(stringify(value))
	r.record(t, true, elapsed, true, d)
	return result
}

// record updates per-tool stats under the registry's write lock and
// mirrors the outcome into Prometheus and the optional StatsSink.
func (r *Registry) record(t *Tool, executed bool, elapsed time.Duration, success bool, resultDigest uint64) {
	now := r.plat.Clock.Now()

	r.mu.Lock()
	t.recordCall(success, elapsed, now)
	r.mu.Unlock()

	if r.metrics != nil {
		outcome := "failure"
		if success {
			outcome = "success"
		}
		r.metrics.CallsTotal.WithLabelValues(t.Name, outcome).Inc()
		if executed {
			r.metrics.CallDuration.WithLabelValues(t.Name).Observe(elapsed.Seconds())
		}
	}
	if r.sink != nil {
		_ = r.sink.Record(context.Background(), t.Name, now, elapsed, success, resultDigest)
	}
}

// Len returns the number of currently registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
