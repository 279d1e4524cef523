package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rgb-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
	"onOff": func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	},
}).Parse(indexHTML))

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>RGB Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.swatch { display: inline-block; width: 1em; height: 1em; border: 1px solid #888; vertical-align: middle; margin-right: 6px; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.alert { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>RGB Controller <small>({{.Config.Variant}})</small></h1>

<h2>Session</h2>
<table>
<tr><th>Mode</th><td id="mode">{{.Session.Mode}}</td></tr>
<tr><th>Colour</th><td><span class="swatch" style="background: {{.Session.Color}}"></span>{{.Session.Color}}</td></tr>
<tr><th>Output</th><td id="output"><span class="swatch" style="background: {{.Session.Output.Color}}"></span>{{.Session.Output.Color}}</td></tr>
<tr><th>Buzzer</th><td class="{{onOff .Session.Output.Buzzer}}">{{onOff .Session.Output.Buzzer}}</td></tr>
<tr><th>Alert</th><td id="alert" class="{{if .Session.Alert.Active}}alert{{end}}">{{if .Session.Alert.Active}}ACTIVE (pulse {{.Session.Alert.PulseCount}}){{else}}clear{{end}}</td></tr>
</table>
{{with .Climate}}
<h2>Climate</h2>
<table>
<tr><th>Temperature</th><td>{{printf "%.1f" .Reading.TempC}}&deg;C / {{printf "%.1f" .Reading.TempF}}&deg;F</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Reading.Humidity}}%</td></tr>
<tr><th>Heat index</th><td>{{printf "%.1f" .Reading.HeatIndexC}}&deg;C / {{printf "%.1f" .Reading.HeatIndexF}}&deg;F</td></tr>
<tr><th>Band</th><td id="band">{{.Band}}</td></tr>
</table>
{{end}}{{with .Tilt}}
<h2>Tilt</h2>
<table>
<tr><th>State</th><td id="tilt">{{if .State}}{{.State}}{{else}}UNKNOWN{{end}}</td></tr>
<tr><th>Tilted / levelled</th><td>{{.Counts.On}} / {{.Counts.Off}}</td></tr>
</table>
{{end}}
<h2>Counts</h2>
<table>
<tr><th>Mode entries</th><td>{{.Session.Counts.ModeEntries}}</td></tr>
<tr><th>Invalid keys</th><td>{{.Session.Counts.InvalidKeys}}</td></tr>
<tr><th>Resets</th><td>{{.Session.Counts.Resets}}</td></tr>
<tr><th>Alerts</th><td>{{.Session.Counts.Alerts}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}none{{end}}</td></tr>
{{with .Network}}<tr><th>Network</th><td>{{.Status}} ({{.Type}}{{if .SSID}}, {{.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Instance</th><td>{{.InstanceID}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 UTC"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
</table>
</body>
</html>
`

// renderHTML renders into a buffer first so a template error never leaves
// a half-written page.
func renderHTML(w io.Writer, snap status.Snapshot) error {
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
