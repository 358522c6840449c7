// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sweeney/stove-sensor/internal/alert"
	"github.com/sweeney/stove-sensor/internal/logic"
)

// Topic is the MQTT topic for severity transitions.
const Topic = "home/kitchen/stove/events"

// TopicAlerts is the MQTT topic for stove alerts.
const TopicAlerts = "home/kitchen/stove/alerts"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/kitchen/stove/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a severity transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishAlert sends a stove alert to the broker.
	PublishAlert(a alert.Alert) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// AlertSender adapts a Publisher to alert.Sender.
type AlertSender struct {
	Publisher Publisher
}

// Send publishes a on the alert topic.
func (s AlertSender) Send(ctx context.Context, a alert.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Publisher.PublishAlert(a)
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Stove StovePayload `json:"stove"`
}

// StovePayload contains the severity transition details.
type StovePayload struct {
	Timestamp string  `json:"timestamp"`
	Severity  string  `json:"severity"`
	Previous  string  `json:"previous,omitempty"`
	Light     int     `json:"light"`
	TempC     float64 `json:"temp_c"`
	TempF     float64 `json:"temp_f"`
	Dark      bool    `json:"dark"`
}

// FormatPayload creates the JSON payload for a severity transition.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Stove: StovePayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Severity:  string(event.Severity),
			Previous:  string(event.Previous),
			Light:     event.Reading.Light,
			TempC:     round1(event.Reading.TempC),
			TempF:     round1(event.Reading.TempF),
			Dark:      event.Reading.Dark,
		},
	}
	return json.Marshal(payload)
}

// AlertPayload represents the MQTT message payload for alerts.
type AlertPayload struct {
	Alert AlertPayloadInner `json:"alert"`
}

// AlertPayloadInner contains the alert details.
type AlertPayloadInner struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	Message   string  `json:"message"`
	Light     int     `json:"light"`
	TempF     float64 `json:"temp_f"`
}

// FormatAlertPayload creates the JSON payload for an alert.
func FormatAlertPayload(a alert.Alert) ([]byte, error) {
	payload := AlertPayload{
		Alert: AlertPayloadInner{
			ID:        a.ID,
			Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
			Message:   alert.Message,
			Light:     a.Reading.Light,
			TempF:     round1(a.Reading.TempF),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int64(v*10-0.5)) / 10
	}
	return float64(int64(v*10+0.5)) / 10
}
