package gpio

import (
	"errors"

	"github.com/sweeney/rgb-controller/internal/logic"
)

// FakeWriter is a test double that records every output change.
type FakeWriter struct {
	// Colors and Buzzer record each value written, in order.
	Colors []logic.RGB
	Buzzer []bool

	// Closed tracks if Close was called
	Closed bool

	// WriteError, if set, will be returned by SetRGB and SetBuzzer.
	WriteError error
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// SetRGB records c.
func (f *FakeWriter) SetRGB(c logic.RGB) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Colors = append(f.Colors, c)
	return nil
}

// SetBuzzer records on.
func (f *FakeWriter) SetBuzzer(on bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Buzzer = append(f.Buzzer, on)
	return nil
}

// Last returns the most recent colour and buzzer state.
func (f *FakeWriter) Last() (logic.RGB, bool) {
	var c logic.RGB
	var b bool
	if len(f.Colors) > 0 {
		c = f.Colors[len(f.Colors)-1]
	}
	if len(f.Buzzer) > 0 {
		b = f.Buzzer[len(f.Buzzer)-1]
	}
	return c, b
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// FakeReader is a test double that returns scripted input values.
type FakeReader struct {
	// Samples contains scripted values to return.
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the reader to the first sample.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
