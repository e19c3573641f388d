// Package session implements the MCP session manager: concurrent lookup,
// reference-counted handles, expiry scheduling, and a bounded live set.
package session

import (
	"regexp"
	"sync"
	"sync/atomic"
	"time"
)

// State is a session's lifecycle phase.
type State int

const (
	StateCreated State = iota
	StateInitializing
	StateActive
	StateInactive
	StateExpired
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateExpired:
		return "expired"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// idPattern is the canonical dashed 8-4-4-4-12 lowercase-hex session id
// shape.
var idPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidID reports whether id matches the canonical session-id shape.
func ValidID(id string) bool { return idPattern.MatchString(id) }

// Session is one negotiated MCP session. Per-session mutable fields
// (lastActivity, expiresAt, state) are guarded by mu; the refcount is
// atomic so Manager.Find never has to take the session mutex just to
// borrow a reference.
type Session struct {
	id string

	mu              sync.Mutex
	createdAt       time.Time
	lastActivity    time.Time
	expiresAt       time.Time
	protocolVersion string
	clientName      string
	clientVersion   string
	state           State
	onStateChange   func(old, next State)

	refcount atomic.Int32
}

func newSession(id string, now time.Time, timeout time.Duration) *Session {
	s := &Session{
		id:           id,
		createdAt:    now,
		lastActivity: now,
		expiresAt:    now.Add(timeout),
		state:        StateCreated,
	}
	s.refcount.Store(1) // the manager's own hold
	return s
}

// ID returns the session's canonical identifier. Stable for the session's
// lifetime; safe to call without holding a reference.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState transitions the session to a new lifecycle phase, invoking the
// state-change callback (if one was set with SetOnStateChange) when the
// state actually changes. The callback runs outside the session lock so
// it may safely call back into the session.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	old := s.state
	s.state = state
	cb := s.onStateChange
	s.mu.Unlock()

	if cb != nil && old != state {
		cb(old, state)
	}
}

// SetOnStateChange registers a callback invoked after every SetState call
// that actually changes the session's state. A nil callback disables
// notification.
func (s *Session) SetOnStateChange(cb func(old, next State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = cb
}

// Negotiate records the client-supplied handshake fields and marks the
// session Active. Neither the dispatcher's initialize handler nor the HTTP
// carrier calls it, so sessions the carrier creates stay in StateCreated.
func (s *Session) Negotiate(protocolVersion, clientName, clientVersion string) {
	s.mu.Lock()
	old := s.state
	s.protocolVersion = protocolVersion
	s.clientName = clientName
	s.clientVersion = clientVersion
	s.state = StateActive
	cb := s.onStateChange
	s.mu.Unlock()

	if cb != nil && old != StateActive {
		cb(old, StateActive)
	}
}

// ProtocolVersion, ClientName, ClientVersion return the negotiated
// handshake fields, or zero values before negotiation has occurred.
func (s *Session) ProtocolVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocolVersion
}

func (s *Session) ClientName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientName
}

func (s *Session) ClientVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientVersion
}

// CreatedAt returns the session's creation time.
func (s *Session) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}

// LastActivity returns the last time the session was touched.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// ExpiresAt returns the time at which the session becomes eligible for reaping.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Touch advances last-activity to now and extends expiry to now+timeout.
// last-activity is monotonically non-decreasing: a Touch with an earlier
// "now" than the current last-activity is a no-op.
func (s *Session) Touch(now time.Time, timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Before(s.lastActivity) {
		return
	}
	s.lastActivity = now
	newExpiry := now.Add(timeout)
	if newExpiry.After(s.expiresAt) {
		s.expiresAt = newExpiry
	}
}

// expired reports whether the session's expiry has passed as of now.
func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt.Before(now)
}

// acquire increments the refcount, but only if the session has not already
// been destroyed (refcount reached zero): a concurrent find must not
// observe an entry whose refcount has dropped to zero.
func (s *Session) acquire() bool {
	for {
		cur := s.refcount.Load()
		if cur <= 0 {
			return false
		}
		if s.refcount.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// release decrements the refcount and reports whether this release
// triggered destruction (refcount reached zero).
func (s *Session) release() bool {
	return s.refcount.Add(-1) == 0
}

// RefCount returns the current reference count, for diagnostics/tests.
func (s *Session) RefCount() int32 { return s.refcount.Load() }
