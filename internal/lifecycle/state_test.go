package lifecycle

import "testing"

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		event Event
		to    State
		legal bool
	}{
		{"uninitialized accepts init-request", Uninitialized, EventInitRequest, Initializing, true},
		{"initializing accepts init-response", Initializing, EventInitResponse, Initialized, true},
		{"initializing accepts error", Initializing, EventErrorSignal, Error, true},
		{"initialized accepts initialized-notification", Initialized, EventInitializedNotification, Ready, true},
		{"initialized accepts error", Initialized, EventErrorSignal, Error, true},
		{"ready accepts request", Ready, EventRequest, Ready, true},
		{"ready accepts response", Ready, EventResponse, Ready, true},
		{"ready accepts notification", Ready, EventNotification, Ready, true},
		{"ready accepts error", Ready, EventErrorSignal, Error, true},
		{"ready accepts shutdown", Ready, EventShutdown, Shutdown, true},
		{"error accepts init-request", Error, EventInitRequest, Initializing, true},
		{"error accepts shutdown", Error, EventShutdown, Shutdown, true},

		{"uninitialized rejects request", Uninitialized, EventRequest, Uninitialized, false},
		{"initializing rejects request", Initializing, EventRequest, Initializing, false},
		{"initialized rejects request", Initialized, EventRequest, Initialized, false},
		{"ready rejects init-request", Ready, EventInitRequest, Ready, false},
		{"error rejects request", Error, EventRequest, Error, false},
		{"shutdown rejects init-request", Shutdown, EventInitRequest, Shutdown, false},
		{"shutdown rejects shutdown", Shutdown, EventShutdown, Shutdown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Transition(tt.from, tt.event)
			if ok != tt.legal {
				t.Fatalf("Transition(%v, %v) legal = %v, want %v", tt.from, tt.event, ok, tt.legal)
			}
			if got != tt.to {
				t.Errorf("Transition(%v, %v) = %v, want %v", tt.from, tt.event, got, tt.to)
			}
		})
	}
}

func TestMachineHandshakeSequence(t *testing.T) {
	m := NewMachine()
	if m.State() != Uninitialized {
		t.Fatalf("initial state = %v, want Uninitialized", m.State())
	}

	if !m.Apply(EventInitRequest) {
		t.Fatal("init-request should be admitted from Uninitialized")
	}
	if m.State() != Initializing {
		t.Fatalf("state = %v, want Initializing", m.State())
	}

	if !m.Apply(EventInitResponse) {
		t.Fatal("init-response should be admitted from Initializing")
	}
	if !m.Apply(EventInitializedNotification) {
		t.Fatal("initialized-notification should be admitted from Initialized")
	}
	if !m.AdmitsOrdinaryTraffic() {
		t.Fatal("machine should admit ordinary traffic once Ready")
	}
	if m.TransitionCount() != 3 {
		t.Errorf("transition count = %d, want 3", m.TransitionCount())
	}
}

func TestMachineRejectsOrdinaryTrafficBeforeReady(t *testing.T) {
	m := NewMachine()
	if m.Apply(EventRequest) {
		t.Fatal("ordinary request should be rejected before the handshake completes")
	}
	if m.State() != Uninitialized {
		t.Fatalf("rejected transition must not change state, got %v", m.State())
	}
}

func TestMachineFailRecordsLastError(t *testing.T) {
	m := NewMachine()
	m.Apply(EventInitRequest)
	m.Fail(-32600, "boom")
	if m.State() != Error {
		t.Fatalf("state after Fail = %v, want Error", m.State())
	}
	code, msg := m.LastError()
	if code != -32600 || msg != "boom" {
		t.Errorf("LastError() = (%d, %q), want (-32600, \"boom\")", code, msg)
	}
	if m.Previous() != Initializing {
		t.Errorf("Previous() = %v, want Initializing", m.Previous())
	}
}

func TestMachineRecoversFromErrorViaInitRequest(t *testing.T) {
	m := NewMachine()
	m.Apply(EventInitRequest)
	m.Fail(-32603, "internal")
	if !m.Apply(EventInitRequest) {
		t.Fatal("init-request should be admitted from Error")
	}
	if m.State() != Initializing {
		t.Fatalf("state = %v, want Initializing", m.State())
	}
}

func TestShutdownIsTerminal(t *testing.T) {
	m := NewMachine()
	m.Apply(EventInitRequest)
	m.Apply(EventInitResponse)
	m.Apply(EventInitializedNotification)
	if !m.Apply(EventShutdown) {
		t.Fatal("shutdown should be admitted from Ready")
	}
	if m.Apply(EventInitRequest) {
		t.Fatal("no event should be admitted once shut down")
	}
	if m.State() != Shutdown {
		t.Fatalf("state = %v, want Shutdown", m.State())
	}
}
