package mqtt

// FakeLink records published payloads and lets tests inject link events.
type FakeLink struct {
	// StatusPayloads contains payloads passed to PublishStatus.
	StatusPayloads [][]byte

	// ErrorPayloads contains payloads passed to PublishError.
	ErrorPayloads [][]byte

	// PublishStatusError, if set, is returned by PublishStatus.
	PublishStatusError error

	// PublishErrorError, if set, is returned by PublishError.
	PublishErrorError error

	// Started tracks if Start was called.
	Started bool

	// Closed tracks if Close was called.
	Closed bool

	// ConnState is returned by State.
	ConnState ConnState

	events chan Event
}

// NewFakeLink creates a FakeLink.
func NewFakeLink() *FakeLink {
	return &FakeLink{
		ConnState: StateDisconnected,
		events:    make(chan Event, 32),
	}
}

// Start marks the link as started.
func (f *FakeLink) Start() {
	f.Started = true
}

// Events returns the injectable event channel.
func (f *FakeLink) Events() <-chan Event {
	return f.events
}

// Inject delivers an event as if it came from the broker.
func (f *FakeLink) Inject(ev Event) {
	f.events <- ev
}

// InjectMessage delivers a command payload.
func (f *FakeLink) InjectMessage(payload []byte) {
	f.Inject(Event{Kind: EventMessage, Payload: payload})
}

// PublishStatus records the payload.
func (f *FakeLink) PublishStatus(payload []byte) error {
	if f.PublishStatusError != nil {
		return f.PublishStatusError
	}
	f.StatusPayloads = append(f.StatusPayloads, payload)
	return nil
}

// PublishError records the payload.
func (f *FakeLink) PublishError(payload []byte) error {
	if f.PublishErrorError != nil {
		return f.PublishErrorError
	}
	f.ErrorPayloads = append(f.ErrorPayloads, payload)
	return nil
}

// State returns the configured connection state.
func (f *FakeLink) State() ConnState {
	return f.ConnState
}

// Close marks the link as closed.
func (f *FakeLink) Close() error {
	f.Closed = true
	return nil
}
