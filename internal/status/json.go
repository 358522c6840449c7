package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Severity      string       `json:"severity"`
	Ready         bool         `json:"ready"`
	Reading       *ReadingJSON `json:"reading,omitempty"`
	LastAlert     string       `json:"last_alert,omitempty"`
	LastAlertErr  string       `json:"last_alert_error,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ReadingJSON is the JSON representation of the last classified reading.
type ReadingJSON struct {
	Timestamp string  `json:"timestamp"`
	Light     int     `json:"light"`
	TempC     float64 `json:"temp_c"`
	TempF     float64 `json:"temp_f"`
	Dark      bool    `json:"dark"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of activity counters.
type CountsJSON struct {
	Readings     int `json:"readings"`
	Skipped      int `json:"skipped"`
	ReadErrors   int `json:"read_errors"`
	Safe         int `json:"safe"`
	Warning      int `json:"warning"`
	Danger       int `json:"danger"`
	AlertsSent   int `json:"alerts_sent"`
	AlertsFailed int `json:"alerts_failed"`
	Suppressed   int `json:"alerts_suppressed"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64   `json:"poll_ms"`
	CooldownMs  int64   `json:"cooldown_ms"`
	HeartbeatMs int64   `json:"heartbeat_ms"`
	DarkLight   int     `json:"dark_threshold"`
	WarnF       float64 `json:"warn_threshold_f"`
	DangerF     float64 `json:"danger_threshold_f"`
	SerialPort  string  `json:"serial_port"`
	Broker      string  `json:"broker"`
	HTTPAddr    string  `json:"http_addr"`
	SMSEnabled  bool    `json:"sms_enabled"`
}

func buildInner(snap Snapshot) StatusInner {
	sev := string(snap.Severity)
	if sev == "" {
		sev = "UNKNOWN"
	}

	inner := StatusInner{
		Severity:      sev,
		Ready:         snap.Ready(),
		LastAlertErr:  snap.LastAlertErr,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Readings:     snap.Counts.Readings,
			Skipped:      snap.Counts.Skipped,
			ReadErrors:   snap.Counts.ReadErrors,
			Safe:         snap.Counts.Safe,
			Warning:      snap.Counts.Warning,
			Danger:       snap.Counts.Danger,
			AlertsSent:   snap.Counts.AlertsSent,
			AlertsFailed: snap.Counts.AlertsFailed,
			Suppressed:   snap.Counts.Suppressed,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			CooldownMs:  snap.Config.CooldownMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			DarkLight:   snap.Config.Thresholds.DarkLight,
			WarnF:       snap.Config.Thresholds.WarnF,
			DangerF:     snap.Config.Thresholds.DangerF,
			SerialPort:  snap.Config.SerialPort,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			SMSEnabled:  snap.Config.SMSEnabled,
		},
	}

	if snap.Ready() {
		inner.Reading = &ReadingJSON{
			Timestamp: snap.LastReading.UTC().Format(time.RFC3339),
			Light:     snap.Reading.Light,
			TempC:     snap.Reading.TempC,
			TempF:     snap.Reading.TempF,
			Dark:      snap.Reading.Dark,
		}
	}
	if !snap.LastAlert.IsZero() {
		inner.LastAlert = snap.LastAlert.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
