package logic

import (
	"math"
	"testing"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	tests := []struct {
		c, f float64
	}{
		{0, 32},
		{100, 212},
		{-40, -40},
		{25, 77},
		{20, 68},
	}
	for _, tt := range tests {
		if got := CelsiusToFahrenheit(tt.c); math.Abs(got-tt.f) > 1e-9 {
			t.Errorf("CelsiusToFahrenheit(%v) = %v, want %v", tt.c, got, tt.f)
		}
	}
}

func TestDeriveIncomplete(t *testing.T) {
	for _, raw := range []RawReading{
		{},
		{Light: 300, HasLight: true},
		{TempC: 25, HasTemp: true},
	} {
		if _, ok := Derive(raw, DefaultThresholds); ok {
			t.Errorf("Derive(%+v) should report incomplete", raw)
		}
	}
}

func TestDeriveExampleDark(t *testing.T) {
	d, ok := Derive(ParseLine("L:300 T:25.0"), DefaultThresholds)
	if !ok {
		t.Fatal("expected complete reading")
	}
	if d.Light != 300 {
		t.Errorf("Light: got %d, want 300", d.Light)
	}
	if d.TempF != 77.0 {
		t.Errorf("TempF: got %v, want 77.0", d.TempF)
	}
	if !d.Dark || !d.Warning || !d.Danger {
		t.Errorf("expected dark+warning+danger, got %+v", d)
	}
	if got := Classify(d); got != SeverityDanger {
		t.Errorf("Classify: got %s, want DANGER", got)
	}
}

func TestDeriveExampleLit(t *testing.T) {
	d, ok := Derive(ParseLine("L:800 T:25.0"), DefaultThresholds)
	if !ok {
		t.Fatal("expected complete reading")
	}
	if d.Dark {
		t.Error("800 should not be dark")
	}
	if !d.Danger {
		t.Error("77F should be over the danger threshold")
	}
	if got := Classify(d); got != SeverityWarning {
		t.Errorf("Classify: got %s, want WARNING", got)
	}
}

func TestDeriveBoundaries(t *testing.T) {
	th := Thresholds{DarkLight: 500, WarnF: 68.0, DangerF: 77.0}

	tests := []struct {
		name    string
		raw     RawReading
		dark    bool
		warning bool
		danger  bool
	}{
		{"light at threshold is not dark", RawReading{Light: 500, HasLight: true, TempC: 0, HasTemp: true}, false, false, false},
		{"light below threshold is dark", RawReading{Light: 499, HasLight: true, TempC: 0, HasTemp: true}, true, false, false},
		{"warn threshold inclusive", RawReading{Light: 900, HasLight: true, TempC: 20, HasTemp: true}, false, true, false},
		{"danger threshold inclusive", RawReading{Light: 900, HasLight: true, TempC: 25, HasTemp: true}, false, true, true},
		{"just under warn", RawReading{Light: 900, HasLight: true, TempC: 19.99, HasTemp: true}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Derive(tt.raw, th)
			if !ok {
				t.Fatal("expected complete reading")
			}
			if d.Dark != tt.dark || d.Warning != tt.warning || d.Danger != tt.danger {
				t.Errorf("got dark=%v warning=%v danger=%v, want %v %v %v",
					d.Dark, d.Warning, d.Danger, tt.dark, tt.warning, tt.danger)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		d    DerivedReading
		want Severity
	}{
		{"cold lit", DerivedReading{}, SeveritySafe},
		{"cold dark", DerivedReading{Dark: true}, SeveritySafe},
		{"warm lit", DerivedReading{Warning: true}, SeverityWarning},
		{"warm dark", DerivedReading{Warning: true, Dark: true}, SeverityWarning},
		{"hot lit", DerivedReading{Warning: true, Danger: true}, SeverityWarning},
		{"hot dark", DerivedReading{Warning: true, Danger: true, Dark: true}, SeverityDanger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.d); got != tt.want {
				t.Errorf("Classify(%+v) = %s, want %s", tt.d, got, tt.want)
			}
		})
	}
}

func TestClassifyNeverDangerWithoutWarning(t *testing.T) {
	// Sweep temperatures and light levels with a valid configuration.
	for c := -20.0; c <= 60.0; c += 0.25 {
		for _, light := range []int{0, 100, 499, 500, 501, 1023} {
			d, _ := Derive(RawReading{Light: light, HasLight: true, TempC: c, HasTemp: true}, DefaultThresholds)
			if d.Danger && !d.Warning {
				t.Fatalf("danger without warning at %vC light=%d", c, light)
			}
			if Classify(d) == SeverityDanger && !d.Warning {
				t.Fatalf("classified DANGER without warning at %vC light=%d", c, light)
			}
		}
	}
}

func TestPipelineDeterministic(t *testing.T) {
	lines := []string{"L:300 T:25.0", "L:800 T:25.0", "L:100 T:10", "L:499 T:20.0", "T:30 L:0"}
	for _, line := range lines {
		d1, ok1 := Derive(ParseLine(line), DefaultThresholds)
		d2, ok2 := Derive(ParseLine(line), DefaultThresholds)
		if ok1 != ok2 || d1 != d2 {
			t.Errorf("%q: derived values differ between runs", line)
		}
		if Classify(d1) != Classify(d2) {
			t.Errorf("%q: severity differs between runs", line)
		}
	}
}

func TestCommandFor(t *testing.T) {
	tests := []struct {
		severity Severity
		want     Command
	}{
		{SeveritySafe, Command{Color: ColorGreen, Tone: false}},
		{SeverityWarning, Command{Color: ColorYellow, Tone: false}},
		{SeverityDanger, Command{Color: ColorRed, Tone: true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			for i := 0; i < 3; i++ {
				if got := CommandFor(tt.severity); got != tt.want {
					t.Errorf("CommandFor(%s) = %+v, want %+v", tt.severity, got, tt.want)
				}
			}
		})
	}
}

func TestSeverityRank(t *testing.T) {
	if !(SeveritySafe.Rank() < SeverityWarning.Rank() && SeverityWarning.Rank() < SeverityDanger.Rank()) {
		t.Error("expected Safe < Warning < Danger")
	}
	if Severity("BOGUS").Rank() >= SeveritySafe.Rank() {
		t.Error("unknown severity should rank below Safe")
	}
}
