package display

// FakeDriver records pushed frames for test assertions.
type FakeDriver struct {
	// Frames contains every frame pushed, in order.
	Frames []Frame

	// PushError, if set, is returned by Push.
	PushError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Push records the frame.
func (d *FakeDriver) Push(f Frame) error {
	if d.PushError != nil {
		return d.PushError
	}
	d.Frames = append(d.Frames, f)
	return nil
}

// Close marks the driver as closed.
func (d *FakeDriver) Close() error {
	d.Closed = true
	return nil
}

// Last returns the most recently pushed frame, or nil if none.
func (d *FakeDriver) Last() *Frame {
	if len(d.Frames) == 0 {
		return nil
	}
	return &d.Frames[len(d.Frames)-1]
}

// Reset clears recorded frames.
func (d *FakeDriver) Reset() {
	d.Frames = nil
	d.Closed = false
	d.PushError = nil
}
