// Package keypad turns raw keypad samples into semantic key events.
// The matrix scanning itself belongs to the keypad driver; this package only
// sees one key-or-none sample per poll.
package keypad

import (
	"fmt"

	"github.com/sweeney/rgb-controller/internal/logic"
)

// Key is one symbol of the 4x4 keypad alphabet.
type Key byte

// NoKey is the sample value when nothing is pressed.
const NoKey Key = 0

// Reserved keys.
const (
	KeyReset   Key = '*'
	KeyConfirm Key = '#'
)

// DefaultLongPressMs is how long KeyReset must be held to fire a LongPress.
const DefaultLongPressMs = 2000

// Layout is the physical keypad arrangement.
var Layout = [4][4]Key{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// Valid reports whether k belongs to the keypad alphabet.
func (k Key) Valid() bool {
	return k.IsDigit() || k.IsLetter() || k == KeyReset || k == KeyConfirm
}

// IsDigit reports whether k is 0-9.
func (k Key) IsDigit() bool { return k >= '0' && k <= '9' }

// IsLetter reports whether k is one of the mode keys A-D.
func (k Key) IsLetter() bool { return k >= 'A' && k <= 'D' }

// Digit returns the numeric value of a digit key.
func (k Key) Digit() int { return int(k - '0') }

func (k Key) String() string {
	if k == NoKey {
		return "none"
	}
	return string(rune(k))
}

// Kind classifies a semantic key event.
type Kind int

const (
	KindTap Kind = iota
	KindDigit
	KindConfirm
	KindCancel
	KindLongPress
)

func (k Kind) String() string {
	switch k {
	case KindTap:
		return "TAP"
	case KindDigit:
		return "DIGIT"
	case KindConfirm:
		return "CONFIRM"
	case KindCancel:
		return "CANCEL"
	case KindLongPress:
		return "LONG_PRESS"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is one semantic key event. Digit is set only for KindDigit.
type Event struct {
	Kind  Kind
	Key   Key
	Digit int
	Time  logic.Millis
}

// LongPressTracker follows the reset key while it is held.
// Fired goes false->true once per unbroken hold.
type LongPressTracker struct {
	Key        Key
	PressStart logic.Millis
	Fired      bool
}

// Classifier converts raw samples into semantic events, each firing once per
// logical occurrence.
type Classifier struct {
	prev      Key
	threshold uint32
	long      LongPressTracker
}

// NewClassifier returns a classifier firing LongPress after thresholdMs.
func NewClassifier(thresholdMs uint32) *Classifier {
	return &Classifier{threshold: thresholdMs}
}

// Poll consumes one raw sample taken at now.
// A key read again on consecutive polls is a hold, not a new tap.
func (c *Classifier) Poll(key Key, now logic.Millis) []Event {
	var events []Event

	if key != NoKey && key != c.prev {
		events = append(events, classify(key, now))
	}
	c.prev = key

	if key != KeyReset {
		c.long = LongPressTracker{}
		return events
	}

	if c.long.Key != KeyReset {
		c.long = LongPressTracker{Key: KeyReset, PressStart: now}
	}
	if !c.long.Fired && logic.Elapsed(c.long.PressStart, now, c.threshold) {
		c.long.Fired = true
		events = append(events, Event{Kind: KindLongPress, Key: key, Time: now})
	}
	return events
}

// Tracker returns the long-press tracker state.
func (c *Classifier) Tracker() LongPressTracker { return c.long }

func classify(key Key, now logic.Millis) Event {
	ev := Event{Kind: KindTap, Key: key, Time: now}
	switch {
	case key.IsDigit():
		ev.Kind = KindDigit
		ev.Digit = key.Digit()
	case key == KeyConfirm:
		ev.Kind = KindConfirm
	case key == KeyReset:
		ev.Kind = KindCancel
	}
	return ev
}
