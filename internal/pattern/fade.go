package pattern

import "github.com/sweeney/rgb-controller/internal/logic"

// FadeStepMs is the hold of each unit step of a fade.
const FadeStepMs = 10

// Direction is the sign of a ramp's step.
type Direction int

// Ramp directions.
const (
	Rising  Direction = 1
	Falling Direction = -1
)

func (d Direction) String() string {
	if d == Falling {
		return "falling"
	}
	return "rising"
}

// Fade ramps a single intensity between 0 and logic.MaxLevel by one unit per
// step. A bouncing fade reverses at each bound so the output breathes without
// a jump; a one-way fade stops at the bound.
type Fade struct {
	level    int
	dir      Direction
	interval uint32
	last     logic.Millis
	bounce   bool
	done     bool
}

// NewFade starts a fade at tick now. A rising fade starts dark, a falling
// one starts at full scale.
func NewFade(now logic.Millis, dir Direction, bounce bool) *Fade {
	f := &Fade{dir: dir, interval: FadeStepMs, last: now, bounce: bounce}
	if dir == Falling {
		f.level = logic.MaxLevel
	}
	return f
}

// Tick moves one step when due. It returns true if the level changed.
func (f *Fade) Tick(now logic.Millis) bool {
	if f.done || !logic.Elapsed(f.last, now, f.interval) {
		return false
	}
	f.last = now

	next := f.level + int(f.dir)
	if next < 0 || next > logic.MaxLevel {
		if !f.bounce {
			f.done = true
			return false
		}
		f.dir = -f.dir
		next = f.level + int(f.dir)
	}
	f.level = next
	return true
}

// Level returns the current intensity.
func (f *Fade) Level() int { return f.level }

// Direction returns Rising or Falling.
func (f *Fade) Direction() Direction { return f.dir }

// Done reports whether a one-way fade reached its bound.
func (f *Fade) Done() bool { return f.done }

// Color returns the level applied to all three channels.
func (f *Fade) Color() logic.RGB {
	v := uint8(f.level)
	return logic.RGB{R: v, G: v, B: v}
}
