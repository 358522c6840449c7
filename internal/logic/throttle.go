package logic

import "time"

// DefaultCooldown is the minimum spacing between alert attempts.
const DefaultCooldown = 5 * time.Minute

// AlertThrottle decides when an alert may be attempted.
// Not safe for concurrent use; it is owned by the loop goroutine.
type AlertThrottle struct {
	cooldown time.Duration
	last     time.Time
	fired    bool
}

// NewAlertThrottle creates a throttle that has never fired.
func NewAlertThrottle(cooldown time.Duration) *AlertThrottle {
	return &AlertThrottle{cooldown: cooldown}
}

// ShouldAlert returns true if an alert should be attempted now.
// The cooldown starts as soon as true is returned, whether or not the
// subsequent send succeeds.
func (t *AlertThrottle) ShouldAlert(now time.Time, s Severity) bool {
	if s != SeverityDanger {
		return false
	}

	if t.fired && now.Sub(t.last) < t.cooldown {
		return false
	}

	t.last = now
	t.fired = true
	return true
}

// LastAlert returns the time of the last authorized attempt.
// The bool is false if no alert has been authorized yet.
func (t *AlertThrottle) LastAlert() (time.Time, bool) {
	return t.last, t.fired
}

// Cooldown returns the configured cooldown.
func (t *AlertThrottle) Cooldown() time.Duration {
	return t.cooldown
}
