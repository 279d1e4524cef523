// Package gpio drives the RGB and buzzer output lines and reads the tilt
// switch input, with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fakes allow testing without hardware.
package gpio

import "github.com/sweeney/rgb-controller/internal/logic"

// Writer sets the physical output channels.
type Writer interface {
	// SetRGB drives the colour channels. A PWM writer shows every level;
	// a digital one lights a channel whenever its level is above zero.
	SetRGB(c logic.RGB) error

	// SetBuzzer drives the buzzer line.
	SetBuzzer(on bool) error

	// Close turns every output off and releases GPIO resources.
	Close() error
}

// Reader reads a single digital input.
type Reader interface {
	// Read returns the logical input state.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pins is the BCM line assignment.
type Pins struct {
	Red    int
	Green  int
	Blue   int
	Buzzer int
	Tilt   int
}

// DefaultPins matches the reference wiring.
var DefaultPins = Pins{
	Red:    17,
	Green:  27,
	Blue:   22,
	Buzzer: 23,
	Tilt:   24,
}

// WriteFrame pushes a whole output frame to w.
func WriteFrame(w Writer, f logic.Frame) error {
	if err := w.SetRGB(f.Color); err != nil {
		return err
	}
	return w.SetBuzzer(f.Buzzer)
}

var channelNames = [3]string{"red", "green", "blue"}
