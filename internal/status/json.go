package status

import (
	"encoding/json"
	"math"
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
	Instance      string       `json:"instance"`
	Variant       string       `json:"variant"`
	Mode          string       `json:"mode"`
	Color         string       `json:"color"`
	Output        OutputJSON   `json:"output"`
	Alert         AlertJSON    `json:"alert"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Climate       *ClimateJSON `json:"climate,omitempty"`
	Tilt          *TiltJSON    `json:"tilt,omitempty"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// OutputJSON is what the channels are showing.
type OutputJSON struct {
	Color  string `json:"color"`
	Buzzer bool   `json:"buzzer"`
}

// AlertJSON is the alert generator state.
type AlertJSON struct {
	Active     bool `json:"active"`
	PulseCount int  `json:"pulse_count"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of session counts.
type CountsJSON struct {
	ModeEntries int `json:"mode_entries"`
	InvalidKeys int `json:"invalid_keys"`
	Resets      int `json:"resets"`
	Alerts      int `json:"alerts"`
}

// ClimateJSON is the last sensor reading.
type ClimateJSON struct {
	Humidity   float64 `json:"humidity"`
	TempC      float64 `json:"temp_c"`
	TempF      float64 `json:"temp_f"`
	HeatIndexC float64 `json:"heat_index_c"`
	HeatIndexF float64 `json:"heat_index_f"`
	Band       string  `json:"band"`
}

// TiltJSON is the tilt switch state.
type TiltJSON struct {
	State string `json:"state"`
	Ready bool   `json:"ready"`
	On    int    `json:"tilted"`
	Off   int    `json:"levelled"`
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

// ConfigJSON is the JSON representation of controller config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	LongPressMs int64  `json:"long_press_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func buildInner(snap Snapshot) StatusInner {
	s := snap.Session
	inner := StatusInner{
		Instance:      snap.InstanceID,
		Variant:       snap.Config.Variant,
		Mode:          s.Mode.String(),
		Color:         s.Color.String(),
		Output:        OutputJSON{Color: s.Output.Color.String(), Buzzer: s.Output.Buzzer},
		Alert:         AlertJSON{Active: s.Alert.Active, PulseCount: s.Alert.PulseCount},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			ModeEntries: s.Counts.ModeEntries,
			InvalidKeys: s.Counts.InvalidKeys,
			Resets:      s.Counts.Resets,
			Alerts:      s.Counts.Alerts,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			LongPressMs: snap.Config.LongPressMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
		},
	}

	if c := snap.Climate; c != nil {
		inner.Climate = &ClimateJSON{
			Humidity:   round1(c.Reading.Humidity),
			TempC:      round1(c.Reading.TempC),
			TempF:      round1(c.Reading.TempF),
			HeatIndexC: round1(c.Reading.HeatIndexC()),
			HeatIndexF: round1(c.Reading.HeatIndexF()),
			Band:       c.Band,
		}
	}
	if tl := snap.Tilt; tl != nil {
		state := string(tl.State)
		if state == "" {
			state = "UNKNOWN"
		}
		inner.Tilt = &TiltJSON{State: state, Ready: tl.Baselined, On: tl.Counts.On, Off: tl.Counts.Off}
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type:       n.Type,
			IP:         n.IP,
			Status:     n.Status,
			Gateway:    n.Gateway,
			WifiStatus: n.WifiStatus,
			SSID:       n.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
