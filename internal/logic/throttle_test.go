package logic

import (
	"testing"
	"time"
)

func TestThrottleIgnoresNonDanger(t *testing.T) {
	th := NewAlertThrottle(DefaultCooldown)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, s := range []Severity{SeveritySafe, SeverityWarning} {
		if th.ShouldAlert(now, s) {
			t.Errorf("ShouldAlert(%s) = true, want false", s)
		}
	}
	if _, fired := th.LastAlert(); fired {
		t.Error("non-danger severities must not start the cooldown")
	}
}

func TestThrottleFirstDangerFires(t *testing.T) {
	th := NewAlertThrottle(DefaultCooldown)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if !th.ShouldAlert(now, SeverityDanger) {
		t.Fatal("first danger should alert")
	}
	last, fired := th.LastAlert()
	if !fired || !last.Equal(now) {
		t.Errorf("LastAlert: got (%v, %v), want (%v, true)", last, fired, now)
	}
}

func TestThrottleAtTenHz(t *testing.T) {
	cooldown := 300 * time.Second
	th := NewAlertThrottle(cooldown)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	step := 100 * time.Millisecond

	// One full cooldown window of danger at 10 Hz.
	ticks := int(cooldown / step)
	attempts := 0
	for i := 0; i < ticks; i++ {
		if th.ShouldAlert(start.Add(time.Duration(i)*step), SeverityDanger) {
			attempts++
		}
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt within cooldown, got %d", attempts)
	}

	// The first tick at or after the cooldown fires exactly once more.
	if !th.ShouldAlert(start.Add(cooldown), SeverityDanger) {
		t.Fatal("expected attempt once cooldown elapsed")
	}
	if th.ShouldAlert(start.Add(cooldown+step), SeverityDanger) {
		t.Error("expected no attempt right after second alert")
	}
}

func TestThrottleBoundary(t *testing.T) {
	th := NewAlertThrottle(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	th.ShouldAlert(now, SeverityDanger)
	if th.ShouldAlert(now.Add(time.Minute-time.Nanosecond), SeverityDanger) {
		t.Error("should not alert before cooldown elapses")
	}
	if !th.ShouldAlert(now.Add(time.Minute), SeverityDanger) {
		t.Error("should alert exactly at cooldown")
	}
}

func TestThrottleNotResetBySafe(t *testing.T) {
	th := NewAlertThrottle(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	th.ShouldAlert(now, SeverityDanger)
	th.ShouldAlert(now.Add(10*time.Second), SeveritySafe)
	if th.ShouldAlert(now.Add(20*time.Second), SeverityDanger) {
		t.Error("returning to safe must not reset the cooldown")
	}
}

func TestThrottleCooldown(t *testing.T) {
	if got := NewAlertThrottle(42 * time.Second).Cooldown(); got != 42*time.Second {
		t.Errorf("Cooldown: got %v, want 42s", got)
	}
}
