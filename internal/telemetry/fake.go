package telemetry

// FakeSource is a test double that returns scripted lines.
type FakeSource struct {
	// Lines contains scripted lines to return. Each call to ReadLine()
	// consumes the next line. Once exhausted, ReadLine returns ("", nil)
	// like a read timeout.
	Lines []string

	// Errors, if set, is consulted in step with Lines: a non-nil entry
	// is returned instead of the line at the same index.
	Errors []error

	index int

	// Reads counts ReadLine calls.
	Reads int

	// CloseCount tracks how many times Close was called.
	CloseCount int
}

// NewFakeSource creates a FakeSource with the given lines.
func NewFakeSource(lines ...string) *FakeSource {
	return &FakeSource{Lines: lines}
}

// ReadLine returns the next scripted line.
func (f *FakeSource) ReadLine() (string, error) {
	f.Reads++
	if f.index >= len(f.Lines) {
		return "", nil
	}

	i := f.index
	f.index++
	if i < len(f.Errors) && f.Errors[i] != nil {
		return "", f.Errors[i]
	}
	return f.Lines[i], nil
}

// Close records the call.
func (f *FakeSource) Close() error {
	f.CloseCount++
	return nil
}

// Closed reports whether Close was called at least once.
func (f *FakeSource) Closed() bool {
	return f.CloseCount > 0
}
