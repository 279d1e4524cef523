// Package pattern contains the phase-indexed generators that turn the current
// tick into the next output frame. Every generator is advanced by an explicit
// Tick call; a Tick before the interval is due changes nothing, and a Tick
// exactly on the boundary advances.
package pattern

import (
	"errors"

	"github.com/sweeney/rgb-controller/internal/logic"
)

// ErrEmptyPattern is returned when a pattern has no frames.
var ErrEmptyPattern = errors.New("pattern: no frames")

// Pattern is an ordered sequence of frames. A cyclic pattern wraps to its
// first frame; a finite one stops after the hold of its last frame.
type Pattern struct {
	frames []logic.Frame
	cyclic bool
}

// NewPattern builds a pattern from at least one frame.
func NewPattern(cyclic bool, frames ...logic.Frame) (*Pattern, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyPattern
	}
	return &Pattern{frames: append([]logic.Frame(nil), frames...), cyclic: cyclic}, nil
}

func mustPattern(cyclic bool, frames ...logic.Frame) *Pattern {
	p, err := NewPattern(cyclic, frames...)
	if err != nil {
		panic(err)
	}
	return p
}

// Cursor walks a Pattern over time. It is created when a mode is entered and
// dropped when the mode exits.
type Cursor struct {
	pattern *Pattern
	pos     int
	last    logic.Millis
	done    bool
}

// NewCursor positions a cursor on the first frame at tick now.
func NewCursor(p *Pattern, now logic.Millis) *Cursor {
	return &Cursor{pattern: p, last: now}
}

// Frame returns the frame under the cursor.
func (c *Cursor) Frame() logic.Frame {
	return c.pattern.frames[c.pos]
}

// Pos returns the index of the current frame.
func (c *Cursor) Pos() int { return c.pos }

// Done reports whether a finite pattern has completed.
func (c *Cursor) Done() bool { return c.done }

// Tick advances past the current frame once its hold has elapsed.
// It returns true when the frame changed or the pattern completed.
func (c *Cursor) Tick(now logic.Millis) bool {
	if c.done {
		return false
	}
	if !logic.Elapsed(c.last, now, c.Frame().Hold) {
		return false
	}
	c.last = now

	switch {
	case c.pos+1 < len(c.pattern.frames):
		c.pos++
	case c.pattern.cyclic:
		c.pos = 0
	default:
		c.done = true
	}
	return true
}
