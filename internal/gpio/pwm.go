package gpio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sweeney/rgb-controller/internal/logic"
)

// PWMRoot is the Linux sysfs PWM class directory.
const PWMRoot = "/sys/class/pwm"

// DefaultPWMPeriodNs is a 1kHz carrier, well above visible flicker.
const DefaultPWMPeriodNs = 1_000_000

// exportWait bounds how long open waits for an exported channel to appear.
const exportWait = 200 * time.Millisecond

// PWMConfig selects three sysfs PWM channels for the colour outputs.
type PWMConfig struct {
	// Root defaults to PWMRoot.
	Root     string
	Chip     int
	Channels [3]int // red, green, blue
	PeriodNs uint32
	// ActiveLow inverts the duty cycle for common-anode LEDs.
	ActiveLow bool
}

// Buzzer drives the buzzer output.
type Buzzer interface {
	SetBuzzer(on bool) error
	Close() error
}

// pwmChannel is one exported sysfs PWM output.
type pwmChannel struct {
	dir      string
	duty     uint32
	written  bool
	exported bool
}

// PWMWriter drives the colour channels with hardware PWM, so every level
// from 0 to logic.MaxLevel is visible, and delegates the buzzer.
type PWMWriter struct {
	chip      string
	ch        [3]*pwmChannel
	period    uint32
	activeLow bool
	buzzer    Buzzer
}

// NewPWMWriter exports and enables the three channels with the LEDs dark.
// It takes ownership of buzzer.
func NewPWMWriter(cfg PWMConfig, buzzer Buzzer) (*PWMWriter, error) {
	root := cfg.Root
	if root == "" {
		root = PWMRoot
	}
	period := cfg.PeriodNs
	if period == 0 {
		period = DefaultPWMPeriodNs
	}
	w := &PWMWriter{
		chip:      filepath.Join(root, fmt.Sprintf("pwmchip%d", cfg.Chip)),
		period:    period,
		activeLow: cfg.ActiveLow,
		buzzer:    buzzer,
	}

	for i, n := range cfg.Channels {
		ch, err := w.open(n)
		w.ch[i] = ch
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("pwm %s channel %d: %w", channelNames[i], n, err)
		}
	}
	return w, nil
}

func (w *PWMWriter) open(n int) (*pwmChannel, error) {
	ch := &pwmChannel{dir: filepath.Join(w.chip, fmt.Sprintf("pwm%d", n))}
	if _, err := os.Stat(ch.dir); errors.Is(err, os.ErrNotExist) {
		if err := writeAttr(filepath.Join(w.chip, "export"), uint32(n)); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		ch.exported = true
		if err := waitFor(ch.dir); err != nil {
			return ch, err
		}
	}

	// duty_cycle may not exceed period, so clear it before setting period.
	if err := writeAttr(filepath.Join(ch.dir, "duty_cycle"), 0); err != nil {
		return ch, fmt.Errorf("duty_cycle: %w", err)
	}
	if err := writeAttr(filepath.Join(ch.dir, "period"), w.period); err != nil {
		return ch, fmt.Errorf("period: %w", err)
	}
	if err := w.set(ch, 0); err != nil {
		return ch, err
	}
	if err := writeAttr(filepath.Join(ch.dir, "enable"), 1); err != nil {
		return ch, fmt.Errorf("enable: %w", err)
	}
	return ch, nil
}

func waitFor(dir string) error {
	deadline := time.Now().Add(exportWait)
	for {
		if _, err := os.Stat(dir); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s did not appear after export", dir)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Duty maps a channel level onto a duty cycle in nanoseconds. Levels scale
// linearly against logic.MaxLevel; active-low output inverts the result.
func Duty(level uint8, period uint32, activeLow bool) uint32 {
	d := uint32(uint64(period) * uint64(level) / logic.MaxLevel)
	if activeLow {
		return period - d
	}
	return d
}

func (w *PWMWriter) set(ch *pwmChannel, level uint8) error {
	d := Duty(level, w.period, w.activeLow)
	if ch.written && ch.duty == d {
		return nil
	}
	if err := writeAttr(filepath.Join(ch.dir, "duty_cycle"), d); err != nil {
		return fmt.Errorf("duty_cycle: %w", err)
	}
	ch.duty, ch.written = d, true
	return nil
}

// SetRGB sets the duty cycle of each colour channel.
func (w *PWMWriter) SetRGB(c logic.RGB) error {
	var cs logic.ColorState
	cs.ApplyRGB(c)
	for i, v := range cs.Channels() {
		if err := w.set(w.ch[i], uint8(v)); err != nil {
			return fmt.Errorf("set %s: %w", channelNames[i], err)
		}
	}
	return nil
}

// SetBuzzer drives the buzzer.
func (w *PWMWriter) SetBuzzer(on bool) error {
	return w.buzzer.SetBuzzer(on)
}

// Close darkens and disables every channel, unexports the ones it exported
// and closes the buzzer.
func (w *PWMWriter) Close() error {
	var errs []error
	for i, ch := range w.ch {
		if ch == nil {
			continue
		}
		if err := w.set(ch, 0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", channelNames[i], err))
		}
		if err := writeAttr(filepath.Join(ch.dir, "enable"), 0); err != nil {
			errs = append(errs, fmt.Errorf("disable %s: %w", channelNames[i], err))
		}
		if ch.exported {
			n := filepath.Base(ch.dir)[len("pwm"):]
			if err := os.WriteFile(filepath.Join(w.chip, "unexport"), []byte(n), 0o644); err != nil {
				errs = append(errs, fmt.Errorf("unexport %s: %w", channelNames[i], err))
			}
		}
	}
	if w.buzzer != nil {
		if err := w.buzzer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close buzzer: %w", err))
		}
	}
	return errors.Join(errs...)
}

func writeAttr(path string, v uint32) error {
	return os.WriteFile(path, []byte(strconv.FormatUint(uint64(v), 10)), 0o644)
}
