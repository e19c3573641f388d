package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcpcore/server/internal/platform"
)

// Errors returned by Manager operations.
var (
	ErrNotFound  = errors.New("session: not found")
	ErrDuplicate = errors.New("session: id already in use")
	ErrFull      = errors.New("session: manager at capacity")
	ErrInvalidID = errors.New("session: suggested id is not a valid UUID-4")
)

// DefaultCapacity bounds the live set when Config.Capacity is zero.
const DefaultCapacity = 10_000

// DefaultTimeout is the session expiry horizon when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Minute

// DefaultCleanupInterval is the reaper's sleep between passes when
// Config.CleanupInterval is zero.
const DefaultCleanupInterval = 300 * time.Second

// Config configures a Manager.
type Config struct {
	Capacity        int
	Timeout         time.Duration
	CleanupInterval time.Duration
}

// Manager owns the live session set behind a single readers/writer lock.
// Per-session mutable fields are never touched while this lock is held in
// shared mode; find/active-count take shared access, create/remove/
// cleanup-expired take exclusive access.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	capacity        int
	timeout         time.Duration
	cleanupInterval time.Duration

	platform *platform.Platform
	logger   *slog.Logger

	reaperDone chan struct{}
	stopOnce   sync.Once
	stopped    atomic.Bool

	onExpired func(*Session)
}

// NewManager constructs a Manager. plat supplies the clock and id
// generator; a nil plat falls back to platform.Standard.
func NewManager(cfg Config, plat *platform.Platform) *Manager {
	if plat == nil {
		plat = platform.Standard(nil)
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &Manager{
		sessions:        make(map[string]*Session),
		capacity:        capacity,
		timeout:         timeout,
		cleanupInterval: interval,
		platform:        plat,
		logger:          plat.Logger,
	}
}

// Handle is a counted reference to a Session, returned by Find. The holder
// must call Close when done; failing to do so leaks the reference and
// prevents the session from ever being destroyed once removed.
type Handle struct {
	session  *Session
	released atomic.Bool
	mgr      *Manager
}

// Session returns the referenced session.
func (h *Handle) Session() *Session { return h.session }

// Close releases the counted reference. Safe to call more than once.
func (h *Handle) Close() {
	if h.released.CompareAndSwap(false, true) {
		if h.session.release() {
			h.mgr.logDestroy(h.session.ID())
		}
	}
}

// SetOnExpired registers a callback invoked once per session the reaper
// (or an explicit CleanupExpired call) finds past its expiry, after the
// session has been unlinked from the live set and marked Expired. A nil
// callback disables notification.
func (m *Manager) SetOnExpired(cb func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = cb
}

func (m *Manager) logDestroy(id string) {
	if m.logger != nil {
		m.logger.Debug("session destroyed", "session_id", id)
	}
}

// Create mints a new session. If suggestedID is empty, a fresh UUID-4 is
// generated; otherwise it must validate as a canonical session id and must
// not collide with a live session. Capacity is enforced before the map is
// mutated: live count never exceeds capacity.
func (m *Manager) Create(suggestedID string) (*Session, error) {
	id := suggestedID
	if id == "" {
		id = m.platform.IDs.NewUUID()
	} else if !ValidID(id) {
		return nil, ErrInvalidID
	}

	now := m.platform.Clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, ErrDuplicate
	}
	if len(m.sessions) >= m.capacity {
		return nil, ErrFull
	}

	s := newSession(id, now, m.timeout)
	m.sessions[id] = s
	return s, nil
}

// Find looks up id and returns a counted Handle on success. The caller
// must Close the handle when finished with the session.
func (m *Manager) Find(id string) (*Handle, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !s.acquire() {
		// Lost the race with a concurrent destroy; treat as not found.
		return nil, ErrNotFound
	}
	return &Handle{session: s, mgr: m}, nil
}

// Remove unlinks id from the live set and releases the manager's own hold.
// The entry is unlinked from the live set before the manager's count is
// released, so a concurrent Find never observes an entry that is both
// live-set-resident and refcount-zero.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.SetState(StateTerminated)
	if s.release() {
		m.logDestroy(id)
	}
	return nil
}

// CleanupExpired scans the live set and removes every session whose
// expiry has passed, returning the count removed. After this returns, no
// live session satisfies expires_at < the instant this call began.
func (m *Manager) CleanupExpired() int {
	now := m.platform.Clock.Now()

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.expired(now) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	cb := m.onExpired
	m.mu.Unlock()

	for _, s := range expired {
		s.SetState(StateExpired)
		if s.release() {
			m.logDestroy(s.ID())
		}
		if cb != nil {
			cb(s)
		}
	}
	return len(expired)
}

// Touch extends s's expiry using this manager's configured timeout,
// advancing last-activity to the current time. The carrier calls this on
// every request addressed to a known session.
func (m *Manager) Touch(s *Session) {
	s.Touch(m.platform.Clock.Now(), m.timeout)
}

// ActiveCount returns the number of live sessions whose state is Active.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.State() == StateActive {
			count++
		}
	}
	return count
}

// Len returns the total number of live sessions, regardless of state.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartReaper launches the background goroutine that calls CleanupExpired
// every cleanup interval until ctx is cancelled or Stop is called. It
// sleeps cleanup-interval between passes and exits as soon as ctx is
// cancelled; the flag Stop sets is checked only at the next tick, so with
// ctx still live Stop can block for up to one cleanup interval.
func (m *Manager) StartReaper(ctx context.Context) {
	if m.reaperDone != nil {
		return
	}
	m.reaperDone = make(chan struct{})
	handle := m.platform.Threading.Spawn(func() {
		defer close(m.reaperDone)
		ticker := time.NewTicker(m.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if m.stopped.Load() {
					return
				}
				n := m.CleanupExpired()
				if n > 0 && m.logger != nil {
					m.logger.Debug("reaped expired sessions", "count", n)
				}
			}
		}
	})
	_ = handle
}

// Stop signals the reaper to exit and waits for it to do so. Safe to call
// multiple times and safe to call even if StartReaper was never called.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.stopped.Store(true)
	})
	if m.reaperDone != nil {
		<-m.reaperDone
	}
}
