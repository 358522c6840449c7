// Package gpio drives the status LED and buzzer with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/stove-sensor/internal/logic"

// Actuator applies actuator commands to the hardware.
type Actuator interface {
	// Set applies the command. It is called every loop iteration and
	// must be idempotent.
	Set(cmd logic.Command) error

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinRed    = 17
	DefaultPinGreen  = 27
	DefaultPinBlue   = 22
	DefaultPinBuzzer = 18
)

// DefaultToneHz drives a passive buzzer. 0 means an active buzzer (held high).
const DefaultToneHz = 2000

// Pins holds the BCM pin numbers used by the actuator.
type Pins struct {
	Red    int
	Green  int
	Blue   int
	Buzzer int
}

// DefaultPins returns the standard wiring.
func DefaultPins() Pins {
	return Pins{
		Red:    DefaultPinRed,
		Green:  DefaultPinGreen,
		Blue:   DefaultPinBlue,
		Buzzer: DefaultPinBuzzer,
	}
}

// RGB returns which channels of a common-cathode LED are lit for a color.
func RGB(c logic.Color) (r, g, b bool) {
	switch c {
	case logic.ColorGreen:
		return false, true, false
	case logic.ColorYellow:
		return true, true, false
	case logic.ColorRed:
		return true, false, false
	}
	return false, false, false
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
