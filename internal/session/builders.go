package session

import "github.com/sweeney/rgb-controller/internal/logic"

// BrightnessStep is a quarter of full scale.
const BrightnessStep = 64

// Brightness changes overall intensity while keeping the channel ratios
// captured when it was created. A colour with every channel at zero has no
// ratios; adjusting it leaves all channels dark.
type Brightness struct {
	ratios [3]float64
	max    int
}

// NewBrightness captures the ratios of c to its largest channel.
func NewBrightness(c logic.ColorState) *Brightness {
	b := &Brightness{max: c.Max()}
	if b.max == 0 {
		return b
	}
	for i, v := range c.Channels() {
		b.ratios[i] = float64(v) / float64(b.max)
	}
	return b
}

// Adjust moves the maximum by delta, clamped to [0, 255], and rescales c.
func (b *Brightness) Adjust(delta int, c *logic.ColorState) {
	b.max = logic.Clamp(b.max+delta, 0, logic.MaxLevel)
	m := float64(b.max)
	c.Apply(
		int(logic.RoundLevel(b.ratios[0]*m)),
		int(logic.RoundLevel(b.ratios[1]*m)),
		int(logic.RoundLevel(b.ratios[2]*m)),
	)
}

// Max returns the target maximum channel level.
func (b *Brightness) Max() int { return b.max }

// Ratios returns the captured channel ratios.
func (b *Brightness) Ratios() [3]float64 { return b.ratios }

// CustomColorBuilder collects a colour one channel at a time from typed
// digits: red, then green, then blue.
type CustomColorBuilder struct {
	channel int
	value   int
	values  [3]int
}

// ChannelNames names the builder channels in entry order.
var ChannelNames = [3]string{"red", "green", "blue"}

// AddDigit appends a decimal digit, saturating at full scale.
func (b *CustomColorBuilder) AddDigit(d int) {
	v := b.value*10 + d
	if v > logic.MaxLevel {
		v = logic.MaxLevel
	}
	b.value = v
}

// Commit stores the accumulator in the current channel and moves on.
// It returns true once all three channels are set.
func (b *CustomColorBuilder) Commit() bool {
	b.values[b.channel] = b.value
	b.value = 0
	if b.channel == len(b.values)-1 {
		return true
	}
	b.channel++
	return false
}

// Channel returns the index of the channel being entered.
func (b *CustomColorBuilder) Channel() int { return b.channel }

// Value returns the accumulator.
func (b *CustomColorBuilder) Value() int { return b.value }

// Result returns the committed colour.
func (b *CustomColorBuilder) Result() logic.RGB {
	return logic.RGB{
		R: logic.ClampLevel(b.values[0]),
		G: logic.ClampLevel(b.values[1]),
		B: logic.ClampLevel(b.values[2]),
	}
}
