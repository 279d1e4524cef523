package pattern

import "github.com/sweeney/rgb-controller/internal/logic"

// FlashIntervalMs is how long each flash colour is held.
const FlashIntervalMs = 1000

// FlashPalette is the fixed order of the flash cycle.
var FlashPalette = [...]logic.RGB{
	logic.Red,
	logic.Green,
	logic.Blue,
	logic.Yellow,
	logic.Cyan,
	logic.Magenta,
	logic.White,
}

var flashPattern = func() *Pattern {
	frames := make([]logic.Frame, len(FlashPalette))
	for i, c := range FlashPalette {
		frames[i] = logic.Frame{Color: c, Hold: FlashIntervalMs}
	}
	return mustPattern(true, frames...)
}()

// NewFlash returns a cursor on the first palette entry.
func NewFlash(now logic.Millis) *Cursor {
	return NewCursor(flashPattern, now)
}

// ErrorFlashMs is the hold of each frame of the invalid-input indication.
const ErrorFlashMs = 100

var errorPattern = mustPattern(false,
	logic.Frame{Color: logic.Red, Buzzer: true, Hold: ErrorFlashMs},
	logic.Frame{Color: logic.Black, Hold: ErrorFlashMs},
	logic.Frame{Color: logic.Red, Buzzer: true, Hold: ErrorFlashMs},
	logic.Frame{Color: logic.Black, Hold: ErrorFlashMs},
)

// NewErrorFlash returns the finite red flash and chirp shown for a key the
// active mode does not accept.
func NewErrorFlash(now logic.Millis) *Cursor {
	return NewCursor(errorPattern, now)
}

// Standby intro timing.
const (
	StandbyBlinkMs = 250
	StandbyPauseMs = 1000
)

var standbyIntro = mustPattern(false,
	logic.Frame{Color: logic.White, Hold: StandbyBlinkMs},
	logic.Frame{Color: logic.Black, Hold: StandbyBlinkMs},
	logic.Frame{Color: logic.White, Hold: StandbyBlinkMs},
	logic.Frame{Color: logic.Black, Hold: StandbyBlinkMs},
	logic.Frame{Color: logic.White, Hold: StandbyBlinkMs},
	logic.Frame{Color: logic.Black, Hold: StandbyBlinkMs},
	logic.Frame{Color: logic.Black, Hold: StandbyPauseMs},
)

// Standby blinks white three times, rests, then breathes white forever.
type Standby struct {
	intro *Cursor
	fade  *Fade
}

// NewStandby starts the standby sequence at tick now.
func NewStandby(now logic.Millis) *Standby {
	return &Standby{intro: NewCursor(standbyIntro, now)}
}

// Tick advances the intro or the breathing fade. It returns true if the
// colour changed.
func (s *Standby) Tick(now logic.Millis) bool {
	if s.fade != nil {
		return s.fade.Tick(now)
	}
	if !s.intro.Tick(now) {
		return false
	}
	if s.intro.Done() {
		s.fade = NewFade(now, Rising, true)
	}
	return true
}

// Breathing reports whether the intro has finished.
func (s *Standby) Breathing() bool { return s.fade != nil }

// Color returns the current standby output.
func (s *Standby) Color() logic.RGB {
	if s.fade != nil {
		return s.fade.Color()
	}
	return s.intro.Frame().Color
}
