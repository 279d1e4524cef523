package logic

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type level interface {
	~int | ~int32 | ~int64 | ~float64
}

// ClampLevel limits v to a valid channel intensity.
func ClampLevel[T level](v T) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= MaxLevel {
		return MaxLevel
	}
	return uint8(v)
}

// RoundLevel rounds a float intensity to the nearest valid channel value.
func RoundLevel(v float64) uint8 {
	return ClampLevel(math.Round(v))
}

// ColorState owns the intensity of the three colour channels.
// Every write goes through Apply, so values never leave [0, MaxLevel].
type ColorState struct {
	level [3]uint8
}

// Apply clamps and stores the three channel intensities.
func (c *ColorState) Apply(r, g, b int) {
	c.level[0] = ClampLevel(r)
	c.level[1] = ClampLevel(g)
	c.level[2] = ClampLevel(b)
}

// ApplyRGB stores v.
func (c *ColorState) ApplyRGB(v RGB) {
	c.Apply(int(v.R), int(v.G), int(v.B))
}

// RGB returns the current channel intensities.
func (c ColorState) RGB() RGB {
	return RGB{R: c.level[0], G: c.level[1], B: c.level[2]}
}

// Channels returns the intensities in red, green, blue order.
func (c ColorState) Channels() [3]int {
	return [3]int{int(c.level[0]), int(c.level[1]), int(c.level[2])}
}

// On returns the derived on/off flag of each channel.
func (c ColorState) On() [3]bool {
	return [3]bool{c.level[0] > 0, c.level[1] > 0, c.level[2] > 0}
}

// Max returns the largest channel intensity.
func (c ColorState) Max() int {
	m := c.level[0]
	if c.level[1] > m {
		m = c.level[1]
	}
	if c.level[2] > m {
		m = c.level[2]
	}
	return int(m)
}

func (c ColorState) String() string {
	return c.RGB().String()
}

func (v RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
}
