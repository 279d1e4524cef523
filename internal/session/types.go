// Package session contains the top-level cooperative state machine. A
// Session owns the active mode, the colour state and every pattern cursor;
// it is advanced once per poll by Process and never blocks.
package session

import (
	"fmt"

	"github.com/sweeney/rgb-controller/internal/keypad"
	"github.com/sweeney/rgb-controller/internal/logic"
)

// Mode is the closed set of session modes.
type Mode int

const (
	ModeIdle Mode = iota
	ModeStandby
	ModeStaticColor
	ModeBrightness
	ModeFlash
	ModeRandomColor
	ModeColorCycle
	ModeCustomColor
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeStandby:
		return "STANDBY"
	case ModeStaticColor:
		return "STATIC_COLOR"
	case ModeBrightness:
		return "BRIGHTNESS"
	case ModeFlash:
		return "FLASH"
	case ModeRandomColor:
		return "RANDOM_COLOR"
	case ModeColorCycle:
		return "COLOR_CYCLE"
	case ModeCustomColor:
		return "CUSTOM_COLOR"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ModeKeys maps the top-level letter keys to the mode they enter.
var ModeKeys = map[keypad.Key]Mode{
	'A': ModeStaticColor,
	'B': ModeColorCycle,
	'C': ModeCustomColor,
	'D': ModeRandomColor,
}

// PaletteEntry is one fixed StaticColor choice.
type PaletteEntry struct {
	Name  string
	Color logic.RGB
}

// StaticPalette maps StaticColor digits 1-8 to a fixed colour.
var StaticPalette = map[int]PaletteEntry{
	1: {"red", logic.Red},
	2: {"green", logic.Green},
	3: {"blue", logic.Blue},
	4: {"yellow", logic.Yellow},
	5: {"cyan", logic.Cyan},
	6: {"magenta", logic.Magenta},
	7: {"white", logic.White},
	8: {"off", logic.Black},
}

// StaticColor sub-actions outside the palette.
const (
	StaticFlashDigit      = 9
	StaticBrightnessDigit = 0
)

// Brightness sub-actions.
const (
	BrightnessUpDigit   = 1
	BrightnessDownDigit = 2
	BrightnessExitDigit = 3
)

// EventType identifies a session event.
type EventType string

const (
	EventKey        EventType = "KEY"
	EventModeEnter  EventType = "MODE_ENTER"
	EventMenu       EventType = "MENU"
	EventColor      EventType = "COLOR"
	EventInvalidKey EventType = "INVALID_KEY"
	EventReset      EventType = "RESET"
	EventChannel    EventType = "CUSTOM_CHANNEL"
	EventCancel     EventType = "CANCEL"
	EventSpeed      EventType = "CYCLE_SPEED"
	EventAlertOn    EventType = "ALERT_ON"
	EventAlertOff   EventType = "ALERT_OFF"
)

// Event reports something the session did, for diagnostics and telemetry.
type Event struct {
	Time   logic.Millis
	Type   EventType
	Mode   Mode
	Key    keypad.Key
	Color  logic.RGB
	Detail string
}

// Input is one poll of the session.
type Input struct {
	Key  keypad.Key
	Time logic.Millis
}

// Counts tracks session activity since startup.
type Counts struct {
	ModeEntries int
	InvalidKeys int
	Resets      int
	Alerts      int
}

// Options configure a Session.
type Options struct {
	// LongPressMs is the reset hold threshold; 0 selects the default.
	LongPressMs uint32
	// Seed seeds RandomColor.
	Seed uint64
	// Start is the initial mode, ModeStandby or ModeIdle.
	Start Mode
}
