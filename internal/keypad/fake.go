package keypad

import (
	"errors"
	"time"
)

// FakeSource is a test double that returns scripted samples.
type FakeSource struct {
	// Samples contains scripted raw samples, one per Poll.
	// Once exhausted, Poll returns NoKey.
	Samples []Key

	index int

	// Closed tracks if Close was called
	Closed bool

	// PollError, if set, will be returned by Poll()
	PollError error
}

// NewFakeSource creates a FakeSource with the given samples.
func NewFakeSource(samples ...Key) *FakeSource {
	return &FakeSource{Samples: samples}
}

// Poll returns the next scripted sample.
func (f *FakeSource) Poll(time.Time) (Key, error) {
	if f.PollError != nil {
		return NoKey, f.PollError
	}
	if f.Closed {
		return NoKey, errors.New("keypad: source closed")
	}
	if f.index >= len(f.Samples) {
		return NoKey, nil
	}
	k := f.Samples[f.index]
	f.index++
	return k, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
