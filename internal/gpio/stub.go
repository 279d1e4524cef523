//go:build !linux

package gpio

import (
	"errors"
	"time"

	"github.com/sweeney/rgb-controller/internal/keypad"
	"github.com/sweeney/rgb-controller/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealWriter is not available on non-Linux platforms.
type RealWriter struct{}

// NewRealWriter returns an error on non-Linux platforms.
func NewRealWriter(Pins) (*RealWriter, error) { return nil, errUnsupported }

// SetRGB is not implemented on non-Linux platforms.
func (w *RealWriter) SetRGB(logic.RGB) error { return errUnsupported }

// SetBuzzer is not implemented on non-Linux platforms.
func (w *RealWriter) SetBuzzer(bool) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (w *RealWriter) Close() error { return nil }

// RealBuzzer is not available on non-Linux platforms.
type RealBuzzer struct{}

// NewRealBuzzer returns an error on non-Linux platforms.
func NewRealBuzzer(int) (*RealBuzzer, error) { return nil, errUnsupported }

// SetBuzzer is not implemented on non-Linux platforms.
func (b *RealBuzzer) SetBuzzer(bool) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (b *RealBuzzer) Close() error { return nil }

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(int) (*RealReader, error) { return nil, errUnsupported }

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error { return nil }

// MatrixKeypad is not available on non-Linux platforms.
type MatrixKeypad struct{}

// NewMatrixKeypad returns an error on non-Linux platforms.
func NewMatrixKeypad(MatrixPins) (*MatrixKeypad, error) { return nil, errUnsupported }

// Poll is not implemented on non-Linux platforms.
func (k *MatrixKeypad) Poll(time.Time) (keypad.Key, error) { return keypad.NoKey, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (k *MatrixKeypad) Close() error { return nil }
