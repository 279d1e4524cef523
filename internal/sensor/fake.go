package sensor

import "errors"

// Fake is a test double that returns scripted readings.
type Fake struct {
	// Readings contains scripted values to return.
	// Each call to Read() consumes the next one; the last repeats.
	Readings []Reading

	// Errors, when non-nil at the same index, is returned instead.
	Errors []error

	index int

	// Closed tracks if Close was called
	Closed bool
}

// NewFake creates a Fake with the given readings.
func NewFake(readings ...Reading) *Fake {
	return &Fake{Readings: readings}
}

// Read returns the next scripted reading.
func (f *Fake) Read() (Reading, error) {
	if len(f.Readings) == 0 {
		return Reading{}, errors.New("no readings configured")
	}
	i := f.index
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	if i < len(f.Errors) && f.Errors[i] != nil {
		return Reading{}, f.Errors[i]
	}
	r := f.Readings[i]
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

// Close marks the sensor as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
