package logic

// CelsiusToFahrenheit converts without rounding.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// Derive computes the decision values for a complete reading.
// Returns false if either field is missing; the caller must skip the cycle.
func Derive(raw RawReading, th Thresholds) (DerivedReading, bool) {
	if !raw.Complete() {
		return DerivedReading{}, false
	}

	f := CelsiusToFahrenheit(raw.TempC)
	return DerivedReading{
		Light:   raw.Light,
		TempC:   raw.TempC,
		TempF:   f,
		Dark:    raw.Light < th.DarkLight,
		Warning: f >= th.WarnF,
		Danger:  f >= th.DangerF,
	}, true
}

// Classify maps a reading to a severity.
// Danger requires the room to be dark as well as hot; a hot stove in a lit
// room is only a Warning.
func Classify(d DerivedReading) Severity {
	if d.Danger && d.Dark {
		return SeverityDanger
	}
	if d.Warning {
		return SeverityWarning
	}
	return SeveritySafe
}

// CommandFor returns the actuator output for a severity.
func CommandFor(s Severity) Command {
	switch s {
	case SeverityDanger:
		return Command{Color: ColorRed, Tone: true}
	case SeverityWarning:
		return Command{Color: ColorYellow, Tone: false}
	default:
		return Command{Color: ColorGreen, Tone: false}
	}
}
