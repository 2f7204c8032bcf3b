package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/enclosure-controller/internal/status"
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
	"temp": func(f float64) string {
		return fmt.Sprintf("%.1f°F", f)
	},
	"remaining": func(d time.Duration) string {
		d = d.Truncate(time.Minute)
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Enclosure Controller</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 30%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.alarm { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Enclosure Controller</h1>
{{if .Overheated}}<p id="overheat" class="alarm">OVERHEAT: all heaters shut down</p>{{end}}
{{if not .Ready}}<p>Waiting for first control tick.</p>{{end}}

<h2>Zones</h2>
<table>
<tr><th></th>{{range .Zones}}<th>{{.Name}}</th>{{end}}</tr>
<tr><th>Temperature</th>{{range .Zones}}<td>{{temp .TemperatureF}}</td>{{end}}</tr>
<tr><th>Humidity</th>{{range .Zones}}<td class="{{if .HumidityHigh}}alarm{{end}}">{{printf "%.0f" .Humidity}}%</td>{{end}}</tr>
<tr><th>Setpoint</th>{{range .Zones}}<td>{{temp .SetpointF}}</td>{{end}}</tr>
<tr><th>Heater</th>{{range .Zones}}<td class="{{if .HeaterOn}}on{{else}}off{{end}}">{{if .HeaterOn}}ON ({{.Duty}}){{else}}OFF{{end}}</td>{{end}}</tr>
<tr><th>Mode</th>{{range .Zones}}<td>{{.Mode}}</td>{{end}}</tr>
<tr><th>Timer</th>{{range .Zones}}<td>{{if not .UseTimer}}-{{else if .TimerExpired}}done{{else}}{{remaining .TimerRemaining}}{{end}}</td>{{end}}</tr>
<tr><th>Auto-OFF</th>{{range .Zones}}<td>{{if .AutoOff}}tripped{{else}}-{{end}}</td>{{end}}</tr>
</table>

<h2>Filament</h2>
<table>
{{range .Monitors}}<tr><th>{{.Name}}</th><td>{{temp .TemperatureF}}</td><td class="{{if .HumidityHigh}}alarm{{end}}">{{printf "%.0f" .Humidity}}%{{if .HumidityHigh}} HIGH{{end}}</td></tr>
{{end}}</table>

<h2>Settings</h2>
<table>
<tr><th>Auto-OFF</th><td>{{if .AutoShutoff}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>Beep on push</th><td>{{if .BeepOnPush}}ON{{else}}OFF{{end}}</td></tr>
{{range $ch, $a := .Alarms}}<tr><th>Humidity alarm {{index $.ChannelNames $ch}}</th><td>{{if $a.Enabled}}{{$a.Threshold}}%{{else}}off{{end}}</td></tr>
{{end}}<tr><th>Screen</th><td>{{.Screen}}{{if .Idle}} (idle){{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Overheat</th><td>{{.Counts.Overheat}}</td></tr>
<tr><th>Timer done</th><td>{{.Counts.TimerDone}}</td></tr>
<tr><th>Auto-OFF</th><td>{{.Counts.AutoShutoff}}</td></tr>
<tr><th>Humidity high</th><td>{{.Counts.HumidityHigh}}</td></tr>
<tr><th>Shut all off</th><td>{{.Counts.ShutAllOff}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Input poll</th><td>{{.Config.InputPollMs}}ms</td></tr>
<tr><th>Overheat limit</th><td>{{temp .Config.OverheatF}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Display</th><td>{{.Config.Display}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime       time.Duration
		ChannelNames []string
	}{
		Snapshot:     snap,
		Uptime:       snap.Uptime(),
		ChannelNames: []string{"ENC1", "ENC2", "FBox1", "FBox2"},
	}
	indexTmpl.Execute(w, data)
}
