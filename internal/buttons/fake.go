package buttons

// FakeReader is a test double with settable button states.
type FakeReader struct {
	Up   bool
	Down bool

	// ReadError, if set, is returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReader creates a FakeReader with both buttons released.
func NewFakeReader() *FakeReader {
	return &FakeReader{}
}

// Read returns the current fake states.
func (f *FakeReader) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}
	return f.Up, f.Down, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
