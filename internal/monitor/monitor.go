// Package monitor runs the stove-sensor control loop: read a telemetry line,
// classify it, drive the LED and buzzer, and hand throttled alerts to the
// dispatcher.
package monitor

import (
	"log"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/sweeney/stove-sensor/internal/alert"
	"github.com/sweeney/stove-sensor/internal/gpio"
	"github.com/sweeney/stove-sensor/internal/logic"
	"github.com/sweeney/stove-sensor/internal/mqtt"
	"github.com/sweeney/stove-sensor/internal/status"
	"github.com/sweeney/stove-sensor/internal/telemetry"
)

// State is the loop lifecycle state.
type State string

const (
	StateIdle         State = "IDLE"
	StateRunning      State = "RUNNING"
	StateShuttingDown State = "SHUTTING_DOWN"
)

// Dispatcher accepts alerts for asynchronous delivery.
// *alert.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(a alert.Alert) bool
	Close()
}

// Deps are the collaborators the loop drives. Source and Actuator are
// required; the rest may be nil.
type Deps struct {
	Source     telemetry.Source
	Actuator   gpio.Actuator
	Alerts     Dispatcher
	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus
	Tracker    *status.Tracker

	// Network refreshes network info for heartbeats.
	Network func() *status.NetworkInfo

	// Now defaults to time.Now.
	Now func() time.Time
}

// Config holds loop tuning.
type Config struct {
	Thresholds logic.Thresholds
	Cooldown   time.Duration
	Heartbeat  time.Duration // 0 disables
}

// Monitor is the loop orchestrator. Run must be called at most once.
type Monitor struct {
	deps     Deps
	cfg      Config
	now      func() time.Time
	throttle *logic.AlertThrottle

	state         State
	prev          logic.Severity
	lastHeartbeat time.Time

	shutdownOnce sync.Once
}

// New creates a Monitor. A zero Cooldown selects logic.DefaultCooldown and
// zero Thresholds select logic.DefaultThresholds.
func New(deps Deps, cfg Config) *Monitor {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = logic.DefaultCooldown
	}
	if cfg.Thresholds == (logic.Thresholds{}) {
		cfg.Thresholds = logic.DefaultThresholds
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		deps:     deps,
		cfg:      cfg,
		now:      now,
		throttle: logic.NewAlertThrottle(cfg.Cooldown),
		state:    StateIdle,
	}
}

// State returns the lifecycle state. Only meaningful from the loop
// goroutine or after Run has returned.
func (m *Monitor) State() State {
	return m.state
}

// Run drives the actuator to Safe, then processes one telemetry line per
// tick until a signal arrives or tick is closed. Shutdown runs exactly once
// on every exit path, including a panic.
func (m *Monitor) Run(tick <-chan time.Time, sig <-chan os.Signal) error {
	reason := "PANIC"
	defer func() { m.Shutdown(reason) }()

	if err := m.deps.Actuator.Set(logic.CommandFor(logic.SeveritySafe)); err != nil {
		log.Printf("actuator error: %v", err)
	}
	m.state = StateRunning
	m.lastHeartbeat = m.now()

	for {
		// Pending signals take priority over a ready tick.
		select {
		case s := <-sig:
			reason = m.onSignal(s)
			return nil
		default:
		}

		select {
		case s := <-sig:
			reason = m.onSignal(s)
			return nil
		case _, ok := <-tick:
			if !ok {
				reason = "STOPPED"
				return nil
			}
			m.cycle(m.now())
		}
	}
}

func (m *Monitor) onSignal(s os.Signal) string {
	log.Printf("received %v, shutting down", s)
	return signalName(s)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	case nil:
		return "UNKNOWN"
	}
	return s.String()
}

// cycle runs one loop iteration. Nothing here is fatal.
func (m *Monitor) cycle(now time.Time) {
	m.refreshMQTTStatus()
	defer m.checkHeartbeat(now)

	line, err := m.deps.Source.ReadLine()
	if err != nil {
		log.Printf("telemetry read error: %v", err)
		if m.deps.Tracker != nil {
			m.deps.Tracker.RecordReadError()
		}
		return
	}
	if line == "" {
		return
	}

	reading, ok := logic.Derive(logic.ParseLine(line), m.cfg.Thresholds)
	if !ok {
		if m.deps.Tracker != nil {
			m.deps.Tracker.RecordSkipped()
		}
		return
	}

	sev := logic.Classify(reading)
	log.Printf("[%s] temp=%.1fF light=%d (%s)", sev, reading.TempF, reading.Light, lightLabel(reading.Dark))

	if err := m.deps.Actuator.Set(logic.CommandFor(sev)); err != nil {
		log.Printf("actuator error: %v", err)
	}

	if m.deps.Tracker != nil {
		m.deps.Tracker.RecordReading(now, reading, sev)
	}

	if sev != m.prev {
		m.publishTransition(now, sev, reading)
		m.prev = sev
	}

	if sev == logic.SeverityDanger {
		m.maybeAlert(now, reading)
	}
}

func lightLabel(dark bool) string {
	if dark {
		return "dark"
	}
	return "lit"
}

func (m *Monitor) publishTransition(now time.Time, sev logic.Severity, reading logic.DerivedReading) {
	if m.deps.Publisher == nil {
		return
	}
	event := logic.Event{
		Timestamp: now,
		Severity:  sev,
		Previous:  m.prev,
		Reading:   reading,
	}
	if err := m.deps.Publisher.Publish(event); err != nil {
		log.Printf("publish error: %v", err)
	}
}

func (m *Monitor) maybeAlert(now time.Time, reading logic.DerivedReading) {
	if !m.throttle.ShouldAlert(now, logic.SeverityDanger) {
		log.Printf("alert suppressed (cooldown active)")
		if m.deps.Tracker != nil {
			m.deps.Tracker.RecordSuppressed()
		}
		return
	}

	a := alert.New(now, reading)
	if m.deps.Tracker != nil {
		m.deps.Tracker.RecordAlertAttempt(now)
	}
	if m.deps.Alerts == nil {
		log.Printf("alert %s: no senders configured", a.ID)
		return
	}
	log.Printf("alert %s: dispatching (next allowed in %v)", a.ID, m.throttle.Cooldown())
	m.deps.Alerts.Dispatch(a)
}

func (m *Monitor) refreshMQTTStatus() {
	if m.deps.Tracker != nil && m.deps.MQTTStatus != nil {
		m.deps.Tracker.SetMQTTConnected(m.deps.MQTTStatus.IsConnected())
	}
}

func (m *Monitor) checkHeartbeat(now time.Time) {
	if m.cfg.Heartbeat <= 0 || now.Sub(m.lastHeartbeat) < m.cfg.Heartbeat {
		return
	}
	m.lastHeartbeat = now

	if m.deps.Tracker != nil {
		if m.deps.Network != nil {
			if net := m.deps.Network(); net != nil {
				m.deps.Tracker.SetNetwork(net)
			}
		}
		c := m.deps.Tracker.Snapshot().Counts
		log.Printf("heartbeat: severity=%s readings=%d skipped=%d alerts_sent=%d alerts_failed=%d",
			m.prev, c.Readings, c.Skipped, c.AlertsSent, c.AlertsFailed)
	} else {
		log.Printf("heartbeat: severity=%s", m.prev)
	}

	m.publishSystem(now, "HEARTBEAT", "", false)
}

func (m *Monitor) publishSystem(now time.Time, event, reason string, retained bool) {
	if m.deps.Publisher == nil {
		return
	}
	se := mqtt.SystemEvent{
		Timestamp: now,
		Event:     event,
		Reason:    reason,
		Retained:  retained,
	}
	if m.deps.Tracker != nil {
		se.RawPayload = status.FormatStatusEvent(m.deps.Tracker.Snapshot(), event, reason)
	}
	if err := m.deps.Publisher.PublishSystem(se); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

// Shutdown drives the actuator to Neutral, waits for any in-flight alert,
// closes the telemetry source and publishes SHUTDOWN. Only the first call
// has any effect.
func (m *Monitor) Shutdown(reason string) {
	m.shutdownOnce.Do(func() {
		m.state = StateShuttingDown
		log.Printf("shutdown: reason=%s", reason)

		if err := m.deps.Actuator.Set(logic.Neutral); err != nil {
			log.Printf("actuator error: %v", err)
		}
		if m.deps.Alerts != nil {
			m.deps.Alerts.Close()
		}
		if err := m.deps.Source.Close(); err != nil {
			log.Printf("telemetry close error: %v", err)
		}
		m.refreshMQTTStatus()
		m.publishSystem(m.now(), "SHUTDOWN", reason, true)
	})
}
