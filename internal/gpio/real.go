//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/rgb-controller/internal/keypad"
	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/warthog618/go-gpiocdev"
)

// Chip is the GPIO character device used on a Raspberry Pi.
const Chip = "gpiochip0"

// RealWriter drives output lines on actual hardware.
type RealWriter struct {
	chip   *gpiocdev.Chip
	rgb    [3]*gpiocdev.Line
	buzzer *gpiocdev.Line
}

// NewRealWriter requests the colour and buzzer lines as outputs, all low.
func NewRealWriter(pins Pins) (*RealWriter, error) {
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	w := &RealWriter{chip: chip}

	for i, pin := range []int{pins.Red, pins.Green, pins.Blue} {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", channelNames[i], pin, err)
		}
		w.rgb[i] = line
	}

	w.buzzer, err = chip.RequestLine(pins.Buzzer, gpiocdev.AsOutput(0))
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pins.Buzzer, err)
	}
	return w, nil
}

// SetRGB drives the three colour lines. Each line is high while its
// channel is lit at any level.
func (w *RealWriter) SetRGB(c logic.RGB) error {
	var cs logic.ColorState
	cs.ApplyRGB(c)
	for i, on := range cs.On() {
		if err := w.rgb[i].SetValue(lineValue(on)); err != nil {
			return fmt.Errorf("set %s: %w", channelNames[i], err)
		}
	}
	return nil
}

// SetBuzzer drives the buzzer line.
func (w *RealWriter) SetBuzzer(on bool) error {
	return setBuzzer(w.buzzer, on)
}

func setBuzzer(line *gpiocdev.Line, on bool) error {
	if err := line.SetValue(lineValue(on)); err != nil {
		return fmt.Errorf("set buzzer: %w", err)
	}
	return nil
}

func lineValue(on bool) int {
	if on {
		return 1
	}
	return 0
}

// releaseOutput drives line low and returns it to an input with pull-down
// (matching Pi boot defaults) before closing it.
func releaseOutput(line *gpiocdev.Line) []error {
	var errs []error
	if err := line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear line %d: %w", line.Offset(), err))
	}
	if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure line %d: %w", line.Offset(), err))
	}
	if err := line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close line %d: %w", line.Offset(), err))
	}
	return errs
}

// Close drives every output low and releases the lines.
func (w *RealWriter) Close() error {
	var errs []error
	lines := append(w.rgb[:], w.buzzer)
	for _, line := range lines {
		if line == nil {
			continue
		}
		errs = append(errs, releaseOutput(line)...)
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RealBuzzer drives only the buzzer line, for use alongside PWMWriter.
type RealBuzzer struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealBuzzer requests pin as an output, low.
func NewRealBuzzer(pin int) (*RealBuzzer, error) {
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}
	return &RealBuzzer{chip: chip, line: line}, nil
}

// SetBuzzer drives the buzzer line.
func (b *RealBuzzer) SetBuzzer(on bool) error {
	return setBuzzer(b.line, on)
}

// Close drives the line low and releases it.
func (b *RealBuzzer) Close() error {
	errs := releaseOutput(b.line)
	if err := b.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	return errors.Join(errs...)
}

// RealReader reads one input line from actual hardware.
type RealReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealReader requests pin as an input with pull-up, so an open switch
// reads high.
func NewRealReader(pin int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	return &RealReader{chip: chip, line: line}, nil
}

// Read returns true while the line is high.
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", r.line.Offset(), err)
	}
	return v == 1, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	if err := r.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close line: %w", err))
	}
	if err := r.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	return errors.Join(errs...)
}

// MatrixKeypad scans a 4x4 membrane keypad. It implements keypad.Source.
type MatrixKeypad struct {
	chip *gpiocdev.Chip
	rows *gpiocdev.Lines
	cols *gpiocdev.Lines
}

// NewMatrixKeypad requests the rows as outputs held high and the columns as
// inputs with pull-up.
func NewMatrixKeypad(pins MatrixPins) (*MatrixKeypad, error) {
	chip, err := gpiocdev.NewChip(Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	rows, err := chip.RequestLines(pins.Rows[:], gpiocdev.AsOutput(idleRows...))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request keypad rows %v: %w", pins.Rows, err)
	}
	cols, err := chip.RequestLines(pins.Cols[:], gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		rows.Close()
		chip.Close()
		return nil, fmt.Errorf("request keypad cols %v: %w", pins.Cols, err)
	}
	return &MatrixKeypad{chip: chip, rows: rows, cols: cols}, nil
}

// Poll scans the matrix once.
func (k *MatrixKeypad) Poll(time.Time) (keypad.Key, error) {
	return scanMatrix(k.rows, k.cols)
}

// Close returns the rows to inputs and releases the lines.
func (k *MatrixKeypad) Close() error {
	var errs []error
	if err := k.rows.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure rows: %w", err))
	}
	if err := k.rows.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close rows: %w", err))
	}
	if err := k.cols.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cols: %w", err))
	}
	if err := k.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	return errors.Join(errs...)
}
