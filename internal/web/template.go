package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/matrix-clock/internal/status"
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
	"pct": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v*100)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Matrix Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.synced { color: green; font-weight: bold; }
.stale { color: orange; }
.bad { color: red; }
.unset { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.connecting { color: orange; }
</style>
</head>
<body>
<h1>Matrix Clock</h1>

<h2>Time</h2>
<table>
<tr><th>Clock</th><td class="{{if eq (printf "%s" .Clock) "SYNCED"}}synced{{else if eq (printf "%s" .Clock) "STALE"}}stale{{else if eq (printf "%s" .Clock) "FAILED"}}bad{{else}}unset{{end}}">{{.Clock}}</td></tr>
{{if .SyncOK}}<tr><th>Last sync</th><td>{{.LastSync.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
<tr><th>NTP server</th><td>{{.Config.NTPServer}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if eq (printf "%s" .MQTT) "CONNECTED"}}connected{{else if eq (printf "%s" .MQTT) "CONNECTING"}}connecting{{else}}disconnected{{end}}">{{.MQTT}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Display</h2>
<table>
<tr><th>Brightness</th><td>{{pct .Brightness}}</td></tr>
<tr><th>Queued messages</th><td>{{.QueueDepth}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Syncs</th><td>{{.Counts.Syncs}}</td></tr>
<tr><th>Sync failures</th><td>{{.Counts.SyncFailures}}</td></tr>
<tr><th>Reconnects</th><td>{{.Counts.Reconnects}}</td></tr>
<tr><th>Messages</th><td>{{.Counts.Messages}}</td></tr>
<tr><th>Messages dropped</th><td>{{.Counts.MessagesDropped}}</td></tr>
<tr><th>Config updates</th><td>{{.Counts.ConfigUpdates}}</td></tr>
<tr><th>Config rejects</th><td>{{.Counts.ConfigRejects}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Device</th><td>{{.Config.DeviceID}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Frame</th><td>{{.Config.FrameMs}}ms</td></tr>
<tr><th>Light poll</th><td>{{.Config.SensorMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
