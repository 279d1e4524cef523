// Package status provides a thread-safe view of controller state for the
// HTTP page and MQTT heartbeats. The run loop writes; handlers read.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/sweeney/rgb-controller/internal/pattern"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/session"
)

// NetworkInfo contains network state.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains controller configuration for display.
type Config struct {
	Variant     string // keypad, thermo or tilt
	PollMs      int64
	LongPressMs int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
}

// SessionState is the part of a session worth reporting.
type SessionState struct {
	Mode   session.Mode
	Color  logic.RGB
	Output logic.Frame
	Alert  pattern.AlertState
	Counts session.Counts
}

// FromSession captures the reportable state of s.
func FromSession(s *session.Session) SessionState {
	return SessionState{
		Mode:   s.Mode(),
		Color:  s.Color(),
		Output: s.Output(),
		Alert:  s.Alert(),
		Counts: s.Counts(),
	}
}

// Climate is the last valid sensor reading with its band.
type Climate struct {
	Reading sensor.Reading
	Band    string
}

// Tilt is the debounced tilt switch state.
type Tilt struct {
	State     logic.State
	Baselined bool
	Counts    logic.EventCounts
}

// Snapshot is a point-in-time view of controller state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	InstanceID    string
	Session       SessionState
	Climate       *Climate
	Tilt          *Tilt
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the controller started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable controller state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(instanceID string, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			InstanceID: instanceID,
			StartTime:  startTime,
			Config:     cfg,
		},
		now: time.Now,
	}
}

// Update records session state. Called from runLoop on every tick.
func (t *Tracker) Update(s SessionState) {
	t.mu.Lock()
	t.snap.Session = s
	t.mu.Unlock()
}

// SetClimate records the last valid reading.
func (t *Tracker) SetClimate(r sensor.Reading, band string) {
	t.mu.Lock()
	t.snap.Climate = &Climate{Reading: r, Band: band}
	t.mu.Unlock()
}

// SetTilt records the tilt switch state.
func (t *Tracker) SetTilt(state logic.State, baselined bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Tilt = &Tilt{State: state, Baselined: baselined, Counts: counts}
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

// Snapshot returns a point-in-time copy of the controller state.
// The Now field is set at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Climate != nil {
		c := *s.Climate
		s.Climate = &c
	}
	if s.Tilt != nil {
		tl := *s.Tilt
		s.Tilt = &tl
	}
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
