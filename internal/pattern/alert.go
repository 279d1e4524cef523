package pattern

import "github.com/sweeney/rgb-controller/internal/logic"

// Alert pulse train timing.
const (
	AlertPulses     = 3
	AlertPulseOnMs  = 200
	AlertPulseGapMs = 400
	AlertPauseMs    = 5000
	AlertFlashMs    = 200
)

// AlertState is an inspectable copy of the alert generator.
type AlertState struct {
	Active     bool
	CycleStart logic.Millis
	PulseCount int
	BuzzerOn   bool
	FlashOn    bool
}

// Alert produces bursts of AlertPulses buzzer pulses separated by a pause,
// plus an indicator toggling every AlertFlashMs. It runs beside whatever
// colour mode is active.
type Alert struct {
	active     bool
	cycleStart logic.Millis
	pauseStart logic.Millis
	pulseCount int
	buzzerOn   bool
	lastBuzz   logic.Millis
	flashOn    bool
	lastFlash  logic.Millis
}

// Start arms the alert at tick now. Starting an active alert does not
// restart its pulse train.
func (a *Alert) Start(now logic.Millis) {
	if a.active {
		return
	}
	*a = Alert{
		active:     true,
		cycleStart: now,
		lastBuzz:   now,
		lastFlash:  now,
	}
}

// Stop disarms the alert and silences both outputs.
func (a *Alert) Stop() {
	*a = Alert{}
}

// Active reports whether the alert is armed.
func (a *Alert) Active() bool { return a.active }

// Buzzer reports whether the audible channel should be on.
func (a *Alert) Buzzer() bool { return a.active && a.buzzerOn }

// Flash reports whether the visual indicator is lit.
func (a *Alert) Flash() bool { return a.active && a.flashOn }

// State returns a copy of the generator state.
func (a *Alert) State() AlertState {
	return AlertState{
		Active:     a.active,
		CycleStart: a.cycleStart,
		PulseCount: a.pulseCount,
		BuzzerOn:   a.buzzerOn,
		FlashOn:    a.flashOn,
	}
}

// Tick advances the indicator and the pulse train. It returns true if either
// output changed.
func (a *Alert) Tick(now logic.Millis) bool {
	if !a.active {
		return false
	}
	changed := false

	if logic.Elapsed(a.lastFlash, now, AlertFlashMs) {
		a.lastFlash = now
		a.flashOn = !a.flashOn
		changed = true
	}

	if a.pulseCount < AlertPulses {
		switch {
		case !a.buzzerOn && logic.Elapsed(a.lastBuzz, now, AlertPulseGapMs):
			a.buzzerOn = true
			a.lastBuzz = now
			changed = true
		case a.buzzerOn && logic.Elapsed(a.lastBuzz, now, AlertPulseOnMs):
			a.buzzerOn = false
			a.lastBuzz = now
			a.pulseCount++
			if a.pulseCount == AlertPulses {
				a.pauseStart = now
			}
			changed = true
		}
		return changed
	}

	// The count resets only once the whole pause has run after the last pulse.
	if logic.Elapsed(a.pauseStart, now, AlertPauseMs) {
		a.pulseCount = 0
		a.cycleStart = now
	}
	return changed
}
