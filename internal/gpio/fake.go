package gpio

import "github.com/sweeney/stove-sensor/internal/logic"

// FakeActuator is a test double that records commands.
type FakeActuator struct {
	// Commands contains every command passed to Set, in order.
	Commands []logic.Command

	// SetError, if set, will be returned by Set (the command is still recorded).
	SetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeActuator creates a FakeActuator.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// Set records the command.
func (f *FakeActuator) Set(cmd logic.Command) error {
	f.Commands = append(f.Commands, cmd)
	return f.SetError
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent command and whether one was set.
func (f *FakeActuator) Last() (logic.Command, bool) {
	if len(f.Commands) == 0 {
		return logic.Command{}, false
	}
	return f.Commands[len(f.Commands)-1], true
}

// Count returns how many times cmd was set.
func (f *FakeActuator) Count(cmd logic.Command) int {
	n := 0
	for _, c := range f.Commands {
		if c == cmd {
			n++
		}
	}
	return n
}

// Reset clears recorded commands.
func (f *FakeActuator) Reset() {
	f.Commands = nil
	f.Closed = false
	f.SetError = nil
}
