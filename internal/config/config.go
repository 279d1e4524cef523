// Package config loads controller settings from an optional TOML file.
//
// Every field has a default; a file only needs the keys it changes.
//
//	poll = "10ms"
//	long_press = "2s"
//
//	[pins]
//	red = 17
//	green = 27
//	blue = 22
//	buzzer = 23
//	tilt = 24
//
//	[keypad]
//	source = "matrix"
//	rows = [5, 6, 13, 19]
//	cols = [12, 16, 20, 26]
//
//	[output]
//	driver = "pwm"
//	pwm_chip = 0
//	pwm_channels = [0, 1, 2]
//	period = "1ms"
//
//	[thermo]
//	device = "/sys/bus/iio/devices/iio:device0"
//	interval = "2s"
//	cold = 20.0
//	hot = 30.0
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sweeney/rgb-controller/internal/gpio"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/thermo"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Duration is a time.Duration written as a string ("250ms") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds all controller settings.
type Config struct {
	Poll      Duration `toml:"poll"`
	LongPress Duration `toml:"long_press"`
	Debounce  Duration `toml:"debounce"`
	Heartbeat Duration `toml:"heartbeat"`

	// Seed seeds RandomColor; 0 picks one at startup.
	Seed uint64 `toml:"seed"`

	// Standby plays the standby intro at startup.
	Standby bool `toml:"standby"`

	Pins   Pins   `toml:"pins"`
	Keypad Keypad `toml:"keypad"`
	Output Output `toml:"output"`
	Thermo Thermo `toml:"thermo"`

	// Broker is the MQTT broker URL; empty disables publishing.
	Broker string `toml:"broker"`
	// HTTP is the status page listen address; empty disables it.
	HTTP string `toml:"http"`
}

// Pins is the BCM line assignment.
type Pins struct {
	Red    int `toml:"red"`
	Green  int `toml:"green"`
	Blue   int `toml:"blue"`
	Buzzer int `toml:"buzzer"`
	Tilt   int `toml:"tilt"`
}

// Key sources.
const (
	SourceStdin  = "stdin"
	SourceMatrix = "matrix"
)

// Keypad selects where key presses come from.
type Keypad struct {
	Source string `toml:"source"`
	Rows   []int  `toml:"rows"`
	Cols   []int  `toml:"cols"`
}

// Output drivers.
const (
	OutputGPIO = "gpio"
	OutputPWM  = "pwm"
)

// Output selects how the colour channels are driven. The gpio driver lights
// a channel at any non-zero level; pwm shows the full intensity range on
// three sysfs PWM channels and keeps the buzzer on its GPIO pin.
type Output struct {
	Driver    string   `toml:"driver"`
	Chip      int      `toml:"pwm_chip"`
	Channels  []int    `toml:"pwm_channels"`
	Period    Duration `toml:"period"`
	ActiveLow bool     `toml:"active_low"`
}

// Thermo configures the temperature mood light.
type Thermo struct {
	Device   string   `toml:"device"`
	Interval Duration `toml:"interval"`
	Cold     float64  `toml:"cold"`
	Hot      float64  `toml:"hot"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	p := gpio.DefaultPins
	m := gpio.DefaultMatrix
	return &Config{
		Poll:      Duration{10 * time.Millisecond},
		LongPress: Duration{2 * time.Second},
		Debounce:  Duration{250 * time.Millisecond},
		Heartbeat: Duration{0},
		Standby:   true,
		Pins: Pins{
			Red:    p.Red,
			Green:  p.Green,
			Blue:   p.Blue,
			Buzzer: p.Buzzer,
			Tilt:   p.Tilt,
		},
		Keypad: Keypad{
			Source: SourceStdin,
			Rows:   m.Rows[:],
			Cols:   m.Cols[:],
		},
		Output: Output{
			Driver:   OutputGPIO,
			Channels: []int{0, 1, 2},
			Period:   Duration{gpio.DefaultPWMPeriodNs * time.Nanosecond},
		},
		Thermo: Thermo{
			Device:   sensor.DefaultIIODevice,
			Interval: Duration{thermo.DefaultReadIntervalMs * time.Millisecond},
			Cold:     thermo.DefaultColdC,
			Hot:      thermo.DefaultHotC,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(string(data)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Poll.Duration <= 0 {
		return fmt.Errorf("%w: poll must be positive, got %s", ErrInvalid, c.Poll)
	}
	if c.LongPress.Duration < c.Poll.Duration {
		return fmt.Errorf("%w: long_press %s shorter than poll %s", ErrInvalid, c.LongPress, c.Poll)
	}
	if c.Debounce.Duration < 0 || c.Heartbeat.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}
	if c.Thermo.Interval.Duration <= 0 {
		return fmt.Errorf("%w: thermo interval must be positive", ErrInvalid)
	}
	if c.Thermo.Cold >= c.Thermo.Hot {
		return fmt.Errorf("%w: cold %.1f must be below hot %.1f", ErrInvalid, c.Thermo.Cold, c.Thermo.Hot)
	}
	switch c.Keypad.Source {
	case SourceStdin:
	case SourceMatrix:
		if len(c.Keypad.Rows) != 4 || len(c.Keypad.Cols) != 4 {
			return fmt.Errorf("%w: keypad needs 4 rows and 4 cols", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: keypad source %q", ErrInvalid, c.Keypad.Source)
	}
	if err := c.Output.validate(); err != nil {
		return err
	}
	return c.validatePins()
}

func (o Output) validate() error {
	switch o.Driver {
	case OutputGPIO:
		return nil
	case OutputPWM:
	default:
		return fmt.Errorf("%w: output driver %q", ErrInvalid, o.Driver)
	}
	if o.Chip < 0 {
		return fmt.Errorf("%w: pwm_chip %d", ErrInvalid, o.Chip)
	}
	if len(o.Channels) != 3 {
		return fmt.Errorf("%w: pwm needs 3 channels, got %d", ErrInvalid, len(o.Channels))
	}
	seen := make(map[int]bool)
	for _, n := range o.Channels {
		if n < 0 || seen[n] {
			return fmt.Errorf("%w: pwm channels %v", ErrInvalid, o.Channels)
		}
		seen[n] = true
	}
	if o.Period.Duration <= 0 || o.Period.Nanoseconds() > math.MaxUint32 {
		return fmt.Errorf("%w: pwm period %s", ErrInvalid, o.Period)
	}
	return nil
}

func (c *Config) validatePins() error {
	p := c.Pins
	pins := map[string]int{
		"buzzer": p.Buzzer,
		"tilt":   p.Tilt,
	}
	if c.Output.Driver == OutputGPIO {
		pins["red"] = p.Red
		pins["green"] = p.Green
		pins["blue"] = p.Blue
	}
	if c.Keypad.Source == SourceMatrix {
		for i, pin := range c.Keypad.Rows {
			pins[fmt.Sprintf("row%d", i+1)] = pin
		}
		for i, pin := range c.Keypad.Cols {
			pins[fmt.Sprintf("col%d", i+1)] = pin
		}
	}
	names := make([]string, 0, len(pins))
	for name := range pins {
		names = append(names, name)
	}
	sort.Strings(names)

	used := make(map[int]string)
	for _, name := range names {
		pin := pins[name]
		if pin < 0 {
			return fmt.Errorf("%w: %s pin %d", ErrInvalid, name, pin)
		}
		if other, ok := used[pin]; ok {
			return fmt.Errorf("%w: %s and %s share pin %d", ErrInvalid, other, name, pin)
		}
		used[pin] = name
	}
	return nil
}

// GPIO returns the pin assignment for the gpio package.
func (p Pins) GPIO() gpio.Pins {
	return gpio.Pins{Red: p.Red, Green: p.Green, Blue: p.Blue, Buzzer: p.Buzzer, Tilt: p.Tilt}
}

// Matrix returns the keypad wiring. Validate has checked the lengths.
func (k Keypad) Matrix() gpio.MatrixPins {
	var m gpio.MatrixPins
	copy(m.Rows[:], k.Rows)
	copy(m.Cols[:], k.Cols)
	return m
}

// PWM returns the sysfs PWM settings. Validate has checked the channels.
func (o Output) PWM() gpio.PWMConfig {
	cfg := gpio.PWMConfig{
		Chip:      o.Chip,
		PeriodNs:  uint32(o.Period.Nanoseconds()),
		ActiveLow: o.ActiveLow,
	}
	copy(cfg.Channels[:], o.Channels)
	return cfg
}

// Thresholds returns the thermo band thresholds.
func (t Thermo) Thresholds() thermo.Thresholds {
	return thermo.Thresholds{ColdC: t.Cold, HotC: t.Hot}
}

// Millis converts d to whole milliseconds for the tick clock.
func Millis(d Duration) uint32 {
	return uint32(d.Milliseconds())
}
