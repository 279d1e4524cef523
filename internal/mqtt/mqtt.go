// Package mqtt publishes controller telemetry to a broker. It only reports
// state; nothing is ever subscribed to.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rgb-controller/internal/keypad"
	"github.com/sweeney/rgb-controller/internal/session"
)

// Topic is the MQTT topic for session events.
const Topic = "rgb/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "rgb/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a session event observed at wall time at.
	// Returns error if publishing fails (should not crash the process).
	Publish(at time.Time, event session.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event: STARTUP, SHUTDOWN, HEARTBEAT.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // SIGTERM, SIGINT (shutdown only)
	RawPayload []byte // pre-formatted JSON, returned as-is by FormatSystemPayload
	Retained   bool
}

// Payload is the MQTT message body for a session event.
type Payload struct {
	Controller ControllerPayload `json:"controller"`
}

// ControllerPayload contains the session event details.
type ControllerPayload struct {
	Timestamp string `json:"timestamp"`
	Uptime    uint32 `json:"uptime_ms"`
	Event     string `json:"event"`
	Mode      string `json:"mode"`
	Key       string `json:"key,omitempty"`
	Color     string `json:"color,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// eventsWithColor carry a meaningful colour field.
var eventsWithColor = map[session.EventType]bool{
	session.EventModeEnter:  true,
	session.EventColor:      true,
	session.EventInvalidKey: true,
}

// FormatPayload creates the JSON payload for a session event.
func FormatPayload(at time.Time, event session.Event) ([]byte, error) {
	p := ControllerPayload{
		Timestamp: at.UTC().Format(time.RFC3339),
		Uptime:    uint32(event.Time),
		Event:     string(event.Type),
		Mode:      event.Mode.String(),
		Detail:    event.Detail,
	}
	if event.Key != keypad.NoKey {
		p.Key = event.Key.String()
	}
	if eventsWithColor[event.Type] {
		p.Color = event.Color.String()
	}
	return json.Marshal(Payload{Controller: p})
}

// SystemPayload is the body for simple system events (LWT, RECONNECTED)
// that don't carry a full status snapshot.
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
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// Discard is the Publisher used when no broker is configured.
type Discard struct{}

// Publish drops the event.
func (Discard) Publish(time.Time, session.Event) error { return nil }

// PublishSystem drops the event.
func (Discard) PublishSystem(SystemEvent) error { return nil }

// Close does nothing.
func (Discard) Close() error { return nil }

// IsConnected is always false.
func (Discard) IsConnected() bool { return false }
