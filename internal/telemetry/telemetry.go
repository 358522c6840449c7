// Package telemetry reads raw sensor lines from the board.
// The real implementation uses a serial port.
// The fake implementation allows testing without hardware.
package telemetry

// Source yields one telemetry line at a time.
type Source interface {
	// ReadLine blocks for at most the configured read timeout.
	// A timeout returns ("", nil); callers treat it as "no reading".
	// Returned lines are trimmed of surrounding whitespace.
	ReadLine() (string, error)

	// Close releases the underlying link.
	Close() error
}

// Serial defaults for the Arduino sketch.
const (
	DefaultPort = "/dev/ttyACM0"
	DefaultBaud = 9600
)
