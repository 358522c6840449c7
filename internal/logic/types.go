// Package logic contains the pure sensor-interpretation logic for the stove monitor.
// This package has NO external dependencies (no GPIO, serial, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Severity is the classification of a single reading.
type Severity string

const (
	SeveritySafe    Severity = "SAFE"
	SeverityWarning Severity = "WARNING"
	SeverityDanger  Severity = "DANGER"
)

// Rank orders severities: Safe < Warning < Danger. Unknown values rank below Safe.
func (s Severity) Rank() int {
	switch s {
	case SeveritySafe:
		return 1
	case SeverityWarning:
		return 2
	case SeverityDanger:
		return 3
	}
	return 0
}

// Color is the LED color requested from the actuator.
type Color string

const (
	ColorOff    Color = "OFF"
	ColorGreen  Color = "GREEN"
	ColorYellow Color = "YELLOW"
	ColorRed    Color = "RED"
)

// Command is the desired physical output for one loop iteration.
type Command struct {
	Color Color
	Tone  bool
}

// Neutral turns everything off. Only issued at shutdown.
var Neutral = Command{Color: ColorOff, Tone: false}

// RawReading is the result of parsing one telemetry line.
// Either field may be missing if the line was malformed.
type RawReading struct {
	Light    int
	HasLight bool
	TempC    float64
	HasTemp  bool
}

// Complete reports whether both fields were present.
func (r RawReading) Complete() bool {
	return r.HasLight && r.HasTemp
}

// DerivedReading holds the values used for classification.
type DerivedReading struct {
	Light   int
	TempC   float64
	TempF   float64
	Dark    bool
	Warning bool
	Danger  bool
}

// Thresholds configures the converter.
// DangerF must exceed WarnF; this is checked at startup, not here.
type Thresholds struct {
	DarkLight int     // light below this is dark
	WarnF     float64 // °F, inclusive
	DangerF   float64 // °F, inclusive
}

// DefaultThresholds matches the stock sensor board calibration.
var DefaultThresholds = Thresholds{
	DarkLight: 500,
	WarnF:     68.0,
	DangerF:   72.0,
}

// Event is a severity transition to be published.
type Event struct {
	Timestamp time.Time
	Severity  Severity
	Previous  Severity // empty for the first valid reading
	Reading   DerivedReading
}
