package pattern

import (
	"errors"
	"math"

	"github.com/sweeney/rgb-controller/internal/logic"
)

// Gamma is the LED perceptual correction exponent.
const Gamma = 2.2

// Colour cycle tuning.
const (
	HueStep           = 1.0
	CycleSpeedDefault = 5
	cycleSpeedUnitMs  = 25
)

// ErrSpeed is returned for a cycle speed outside 1..9.
var ErrSpeed = errors.New("pattern: cycle speed must be 1-9")

// HSVToRGB converts a hue in degrees at full saturation and value to a
// gamma-corrected colour.
func HSVToRGB(hue float64) logic.RGB {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}
	sector := h / 60
	i := int(sector)
	f := sector - float64(i)

	var r, g, b float64
	switch i {
	case 0:
		r, g, b = 1, f, 0
	case 1:
		r, g, b = 1-f, 1, 0
	case 2:
		r, g, b = 0, 1, f
	case 3:
		r, g, b = 0, 1-f, 1
	case 4:
		r, g, b = f, 0, 1
	default:
		r, g, b = 1, 0, 1-f
	}
	return logic.RGB{R: gammaCorrect(r), G: gammaCorrect(g), B: gammaCorrect(b)}
}

func gammaCorrect(c float64) uint8 {
	return logic.RoundLevel(math.Pow(c, 1/Gamma) * logic.MaxLevel)
}

// CycleInterval returns the tick interval for a speed digit.
func CycleInterval(speed int) uint32 {
	return uint32((10 - speed) * cycleSpeedUnitMs)
}

// ColorCycle walks the hue circle one step per interval.
type ColorCycle struct {
	hue      float64
	speed    int
	interval uint32
	last     logic.Millis
}

// NewColorCycle starts at hue 0 with the default speed.
func NewColorCycle(now logic.Millis) *ColorCycle {
	return &ColorCycle{
		speed:    CycleSpeedDefault,
		interval: CycleInterval(CycleSpeedDefault),
		last:     now,
	}
}

// SetSpeed selects one of the nine speeds; 9 is fastest.
func (c *ColorCycle) SetSpeed(speed int) error {
	if speed < 1 || speed > 9 {
		return ErrSpeed
	}
	c.speed = speed
	c.interval = CycleInterval(speed)
	return nil
}

// Tick advances the hue when due. It returns true if the colour changed.
func (c *ColorCycle) Tick(now logic.Millis) bool {
	if !logic.Elapsed(c.last, now, c.interval) {
		return false
	}
	c.last = now
	c.hue += HueStep
	if c.hue >= 360 {
		c.hue -= 360
	}
	return true
}

// Hue returns the accumulator in [0, 360).
func (c *ColorCycle) Hue() float64 { return c.hue }

// Speed returns the current speed digit.
func (c *ColorCycle) Speed() int { return c.speed }

// Interval returns the current tick interval in milliseconds.
func (c *ColorCycle) Interval() uint32 { return c.interval }

// Color returns the colour for the current hue.
func (c *ColorCycle) Color() logic.RGB { return HSVToRGB(c.hue) }
