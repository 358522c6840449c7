// Package status provides a thread-safe status tracker for the stove-sensor daemon.
// It is written by the monitor loop and alert dispatcher, and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/stove-sensor/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	CooldownMs  int64
	HeartbeatMs int64
	Thresholds  logic.Thresholds
	SerialPort  string
	Broker      string
	HTTPAddr    string
	SMSEnabled  bool
}

// Counts tracks loop and alert activity since startup.
type Counts struct {
	Readings     int // complete readings classified
	Skipped      int // lines without both fields
	ReadErrors   int
	Safe         int
	Warning      int
	Danger       int
	AlertsSent   int
	AlertsFailed int
	Suppressed   int // danger cycles inside the cooldown window
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Severity      logic.Severity // empty until the first valid reading
	Reading       logic.DerivedReading
	LastReading   time.Time
	LastAlert     time.Time // zero if no alert attempted
	LastAlertErr  string
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Ready reports whether at least one reading has been classified.
func (s Snapshot) Ready() bool {
	return s.Severity != ""
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordReading stores a classified reading and bumps the severity counter.
func (t *Tracker) RecordReading(at time.Time, reading logic.DerivedReading, sev logic.Severity) {
	t.mu.Lock()
	t.snap.Severity = sev
	t.snap.Reading = reading
	t.snap.LastReading = at
	t.snap.Counts.Readings++
	switch sev {
	case logic.SeveritySafe:
		t.snap.Counts.Safe++
	case logic.SeverityWarning:
		t.snap.Counts.Warning++
	case logic.SeverityDanger:
		t.snap.Counts.Danger++
	}
	t.mu.Unlock()
}

// RecordSkipped counts a line that did not carry both fields.
func (t *Tracker) RecordSkipped() {
	t.mu.Lock()
	t.snap.Counts.Skipped++
	t.mu.Unlock()
}

// RecordReadError counts a failed telemetry read.
func (t *Tracker) RecordReadError() {
	t.mu.Lock()
	t.snap.Counts.ReadErrors++
	t.mu.Unlock()
}

// RecordSuppressed counts a danger cycle that fell inside the cooldown.
func (t *Tracker) RecordSuppressed() {
	t.mu.Lock()
	t.snap.Counts.Suppressed++
	t.mu.Unlock()
}

// RecordAlertAttempt notes when an alert was authorized.
func (t *Tracker) RecordAlertAttempt(at time.Time) {
	t.mu.Lock()
	t.snap.LastAlert = at
	t.mu.Unlock()
}

// RecordAlertResult stores the outcome of a delivery attempt.
// Called from the alert dispatcher goroutine.
func (t *Tracker) RecordAlertResult(err error) {
	t.mu.Lock()
	if err != nil {
		t.snap.Counts.AlertsFailed++
		t.snap.LastAlertErr = err.Error()
	} else {
		t.snap.Counts.AlertsSent++
		t.snap.LastAlertErr = ""
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
