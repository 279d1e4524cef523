package logic

// Detector tracks a single binary input and detects debounced transitions.
type Detector struct {
	debounce    uint32
	ch          ChannelState
	eventCounts EventCounts
}

// NewDetector creates a new transition detector with the given debounce
// interval in milliseconds.
func NewDetector(debounceMs uint32) *Detector {
	return &Detector{debounce: debounceMs}
}

// Process takes a new input sample and returns any events that should be emitted.
// Events are only returned after baseline is established and on state transitions.
func (d *Detector) Process(input Input) []Event {
	wasBaselined := d.ch.Baselined
	transition := d.processChannel(boolToState(input.On), input.Time)

	// No events until baseline established
	if !wasBaselined || transition == nil {
		return nil
	}

	switch *transition {
	case EventSwitchOn:
		d.eventCounts.On++
	case EventSwitchOff:
		d.eventCounts.Off++
	}

	return []Event{{
		Time:  input.Time,
		Type:  *transition,
		State: d.ch.Stable,
	}}
}

// processChannel handles debounce logic for the input.
// Returns the event type if a transition occurred, nil otherwise.
func (d *Detector) processChannel(newState State, now Millis) *EventType {
	ch := &d.ch

	// First time seeing this input
	if !ch.Baselined {
		if ch.Pending == "" || ch.Pending != newState {
			// Start (or restart) observing
			ch.Pending = newState
			ch.PendingSince = now
			return nil
		}

		if Elapsed(ch.PendingSince, now, d.debounce) {
			ch.Stable = newState
			ch.Baselined = true
			ch.Pending = ""
		}
		return nil
	}

	// Already baselined - detect transitions
	if newState == ch.Stable {
		// No change from stable state, clear any pending
		ch.Pending = ""
		return nil
	}

	if ch.Pending != newState {
		ch.Pending = newState
		ch.PendingSince = now
		return nil
	}

	if Elapsed(ch.PendingSince, now, d.debounce) {
		ch.Stable = newState
		ch.Pending = ""
		ev := EventSwitchOff
		if newState == StateOn {
			ev = EventSwitchOn
		}
		return &ev
	}

	return nil
}

func boolToState(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.ch.Baselined
}

// CurrentState returns the current stable state.
func (d *Detector) CurrentState() State {
	return d.ch.Stable
}

// EventCountsSnapshot returns the transition counts since startup.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}
