// Package logic contains the pure timing and colour primitives shared by the
// pattern generators and the mode session.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injected, either as a Millis tick or a time.Time parameter.
package logic

// Millis is a monotonic millisecond counter. It wraps at 2^32 like a
// microcontroller tick; compare instants only through Elapsed.
type Millis uint32

// MaxLevel is the full-scale intensity of one colour channel.
const MaxLevel = 255

// RGB is one assignment of the three colour channels.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Common colours.
var (
	Black   = RGB{}
	Red     = RGB{R: 255}
	Green   = RGB{G: 255}
	Blue    = RGB{B: 255}
	Yellow  = RGB{R: 255, G: 255}
	Cyan    = RGB{G: 255, B: 255}
	Magenta = RGB{R: 255, B: 255}
	White   = RGB{R: 255, G: 255, B: 255}
)

// Frame is one discrete output assignment held for Hold milliseconds.
type Frame struct {
	Color  RGB
	Buzzer bool
	Hold   uint32
}

// State represents the debounced state of a binary input.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// EventType represents a debounced switch transition.
type EventType string

const (
	EventSwitchOn  EventType = "SWITCH_ON"
	EventSwitchOff EventType = "SWITCH_OFF"
)

// Event represents a debounced transition of the tracked input.
type Event struct {
	Time  Millis
	Type  EventType
	State State
}

// ChannelState tracks debounce state for a single input.
type ChannelState struct {
	// Current stable (debounced) state
	Stable State
	// Pending state during debounce
	Pending State
	// Tick when pending state was first observed
	PendingSince Millis
	// Whether we have established a baseline
	Baselined bool
}

// Input represents a single sample of the tracked input.
type Input struct {
	On   bool
	Time Millis
}

// EventCounts tracks the number of each transition since startup.
type EventCounts struct {
	On  int
	Off int
}
