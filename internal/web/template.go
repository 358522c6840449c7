package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/stove-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"severityOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"lower": strings.ToLower,
	"timeOrNever": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Stove Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.safe { color: green; font-weight: bold; }
.warning { color: orange; font-weight: bold; }
.danger { color: red; font-weight: bold; }
.unknown { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Stove Sensor</h1>

{{$sev := severityOrUnknown (printf "%s" .Severity)}}
<h2>State</h2>
<table>
<tr><th>Severity</th><td id="severity" class="{{lower $sev}}">{{$sev}}</td></tr>
{{if .Ready}}<tr><th>Temperature</th><td>{{printf "%.1f" .Reading.TempF}}&deg;F ({{printf "%.1f" .Reading.TempC}}&deg;C)</td></tr>
<tr><th>Light</th><td>{{.Reading.Light}} ({{if .Reading.Dark}}dark{{else}}lit{{end}})</td></tr>
<tr><th>Last Reading</th><td>{{timeOrNever .LastReading}}</td></tr>{{end}}
</table>

<h2>Alerts</h2>
<table>
<tr><th>Last Alert</th><td>{{timeOrNever .LastAlert}}</td></tr>
{{if .LastAlertErr}}<tr><th>Last Error</th><td class="danger">{{.LastAlertErr}}</td></tr>{{end}}
<tr><th>Sent</th><td>{{.Counts.AlertsSent}}</td></tr>
<tr><th>Failed</th><td>{{.Counts.AlertsFailed}}</td></tr>
<tr><th>Suppressed</th><td>{{.Counts.Suppressed}}</td></tr>
<tr><th>SMS</th><td>{{if .Config.SMSEnabled}}enabled{{else}}disabled{{end}}</td></tr>
</table>

<h2>Readings</h2>
<table>
<tr><th>Classified</th><td>{{.Counts.Readings}}</td></tr>
<tr><th>Safe</th><td>{{.Counts.Safe}}</td></tr>
<tr><th>Warning</th><td>{{.Counts.Warning}}</td></tr>
<tr><th>Danger</th><td>{{.Counts.Danger}}</td></tr>
<tr><th>Skipped</th><td>{{.Counts.Skipped}}</td></tr>
<tr><th>Read Errors</th><td>{{.Counts.ReadErrors}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Serial</th><td>{{.Config.SerialPort}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Thresholds</th><td>dark &lt; {{.Config.Thresholds.DarkLight}}, warn &gt; {{.Config.Thresholds.WarnF}}F, danger &gt; {{.Config.Thresholds.DangerF}}F</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Cooldown</th><td>{{.Config.CooldownMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	return indexTmpl.Execute(w, data)
}
