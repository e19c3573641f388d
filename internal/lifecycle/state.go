// Package lifecycle implements the MCP protocol phase state machine: a
// closed enumeration of states and events and a total transition function
// between them.
package lifecycle

// State is one of the six MCP protocol phases.
type State int

const (
	Uninitialized State = iota
	Initializing
	Initialized
	Ready
	Error
	Shutdown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Initialized:
		return "initialized"
	case Ready:
		return "ready"
	case Error:
		return "error"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Event drives a transition between states.
type Event int

const (
	EventInitRequest Event = iota
	EventInitResponse
	EventInitializedNotification
	EventRequest
	EventResponse
	EventNotification
	EventErrorSignal
	EventShutdown
)

func (e Event) String() string {
	switch e {
	case EventInitRequest:
		return "init-request"
	case EventInitResponse:
		return "init-response"
	case EventInitializedNotification:
		return "initialized-notification"
	case EventRequest:
		return "request"
	case EventResponse:
		return "response"
	case EventNotification:
		return "notification"
	case EventErrorSignal:
		return "error"
	case EventShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

type transitionKey struct {
	state State
	event Event
}

// transitions is the total function (state, event) -> state | reject. Any
// (state, event) pair absent from this map is a rejected transition: the
// state is unchanged and the caller is told so.
var transitions = map[transitionKey]State{
	{Uninitialized, EventInitRequest}: Initializing,

	{Initializing, EventInitResponse}: Initialized,
	{Initializing, EventErrorSignal}:  Error,

	{Initialized, EventInitializedNotification}: Ready,
	{Initialized, EventErrorSignal}:              Error,

	{Ready, EventRequest}:      Ready,
	{Ready, EventResponse}:     Ready,
	{Ready, EventNotification}: Ready,
	{Ready, EventErrorSignal}:  Error,
	{Ready, EventShutdown}:     Shutdown,

	{Error, EventInitRequest}: Initializing,
	{Error, EventShutdown}:    Shutdown,
}

// Transition applies event to state and returns the resulting state and
// whether the transition is legal. Shutdown is terminal: every event is
// rejected from it. An illegal transition leaves the state unchanged.
func Transition(state State, event Event) (State, bool) {
	if state == Shutdown {
		return Shutdown, false
	}
	next, ok := transitions[transitionKey{state, event}]
	if !ok {
		return state, false
	}
	return next, true
}

// Machine tracks a single session's (or connection's) protocol phase plus
// the last-error and transition-count bookkeeping it needs.
type Machine struct {
	state            State
	previous         State
	transitionCount  int
	lastErrorCode    int
	lastErrorMessage string
}

// NewMachine returns a Machine starting in Uninitialized.
func NewMachine() *Machine {
	return &Machine{state: Uninitialized, previous: Uninitialized}
}

// State returns the current phase.
func (m *Machine) State() State { return m.state }

// Previous returns the phase the machine was in before its last legal
// transition.
func (m *Machine) Previous() State { return m.previous }

// TransitionCount returns how many legal transitions have occurred.
func (m *Machine) TransitionCount() int { return m.transitionCount }

// Apply drives the machine with event, returning whether the transition was
// legal. An illegal transition does not change state and is reported to
// the caller via the second return value so it can reject the inbound
// message.
func (m *Machine) Apply(event Event) bool {
	next, ok := Transition(m.state, event)
	if !ok {
		return false
	}
	m.previous = m.state
	m.state = next
	m.transitionCount++
	return true
}

// Fail forces the machine into Error, recording the triggering code and
// message for diagnostics.
func (m *Machine) Fail(code int, message string) {
	m.previous = m.state
	m.state = Error
	m.lastErrorCode = code
	m.lastErrorMessage = message
	m.transitionCount++
}

// LastError returns the code/message recorded by the most recent Fail call.
func (m *Machine) LastError() (code int, message string) {
	return m.lastErrorCode, m.lastErrorMessage
}

// AdmitsOrdinaryTraffic reports whether the machine is in the one state
// that accepts general request/response/notification traffic.
func (m *Machine) AdmitsOrdinaryTraffic() bool {
	return m.state == Ready
}
