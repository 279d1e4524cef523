package session

import (
	"fmt"
	"math/rand/v2"

	"github.com/sweeney/rgb-controller/internal/keypad"
	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/sweeney/rgb-controller/internal/pattern"
)

// Session is the mode state machine. Every field belongs to the session;
// two sessions never share state.
type Session struct {
	mode   Mode
	parent Mode
	color  logic.ColorState

	classifier *keypad.Classifier
	rng        *rand.Rand

	// Per-mode state, created on entry and dropped on exit.
	standby *pattern.Standby
	flash   *pattern.Cursor
	cycle   *pattern.ColorCycle
	bright  *Brightness
	custom  *CustomColorBuilder

	overlay *pattern.Cursor
	alert   pattern.Alert

	counts Counts
	events []Event
}

// New creates a session at tick now.
func New(opts Options, now logic.Millis) *Session {
	threshold := opts.LongPressMs
	if threshold == 0 {
		threshold = keypad.DefaultLongPressMs
	}
	s := &Session{
		classifier: keypad.NewClassifier(threshold),
		rng:        rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	if opts.Start == ModeStandby {
		s.enter(ModeStandby, now)
	}
	s.events = nil
	return s
}

// Process consumes one raw key sample, dispatches the resulting key events,
// and advances every due generator. It returns what happened.
func (s *Session) Process(in Input) []Event {
	s.events = nil

	for _, e := range s.classifier.Poll(in.Key, in.Time) {
		s.handle(e)
	}
	s.tick(in.Time)

	return s.events
}

// SetAlert arms or disarms the alert generator.
func (s *Session) SetAlert(active bool, now logic.Millis) []Event {
	s.events = nil
	switch {
	case active && !s.alert.Active():
		s.alert.Start(now)
		s.counts.Alerts++
		s.emit(Event{Time: now, Type: EventAlertOn})
	case !active && s.alert.Active():
		s.alert.Stop()
		s.emit(Event{Time: now, Type: EventAlertOff})
	}
	return s.events
}

// SetColor applies c when no mode is animating the output. It reports
// whether the colour was taken.
func (s *Session) SetColor(c logic.RGB) bool {
	if s.mode != ModeIdle && s.mode != ModeStaticColor {
		return false
	}
	s.color.ApplyRGB(c)
	return true
}

// Mode returns the active mode.
func (s *Session) Mode() Mode { return s.mode }

// Color returns the session colour, ignoring overlays.
func (s *Session) Color() logic.RGB { return s.color.RGB() }

// Alert returns the alert generator state.
func (s *Session) Alert() pattern.AlertState { return s.alert.State() }

// Counts returns activity counters.
func (s *Session) Counts() Counts { return s.counts }

// Custom returns the CustomColor builder, or nil outside that mode.
func (s *Session) Custom() *CustomColorBuilder { return s.custom }

// CycleSpeed returns the ColorCycle speed, or 0 outside that mode.
func (s *Session) CycleSpeed() int {
	if s.cycle == nil {
		return 0
	}
	return s.cycle.Speed()
}

// Output returns what the channels should show right now. An active alert
// takes the light and the buzzer so it stays visible in every mode; an error
// indication sits above the mode colour without changing it.
func (s *Session) Output() logic.Frame {
	f := logic.Frame{Color: s.color.RGB()}
	if s.overlay != nil {
		f = s.overlay.Frame()
	}
	if s.alert.Active() {
		f.Color = logic.Black
		if s.alert.Flash() {
			f.Color = logic.Red
		}
		f.Buzzer = f.Buzzer || s.alert.Buzzer()
	}
	f.Hold = 0
	return f
}

func (s *Session) tick(now logic.Millis) {
	switch s.mode {
	case ModeStandby:
		if s.standby.Tick(now) {
			s.color.ApplyRGB(s.standby.Color())
		}
	case ModeFlash:
		if s.flash.Tick(now) {
			s.color.ApplyRGB(s.flash.Frame().Color)
		}
	case ModeColorCycle:
		if s.cycle.Tick(now) {
			s.color.ApplyRGB(s.cycle.Color())
		}
	}

	if s.overlay != nil {
		s.overlay.Tick(now)
		if s.overlay.Done() {
			s.overlay = nil
		}
	}

	s.alert.Tick(now)
}

func (s *Session) handle(e keypad.Event) {
	if e.Kind == keypad.KindLongPress {
		s.reset(e.Time)
		return
	}
	s.emit(Event{Time: e.Time, Type: EventKey, Key: e.Key, Detail: e.Kind.String()})

	switch s.mode {
	case ModeStandby:
		s.handleStandby(e)
	case ModeIdle:
		s.handleIdle(e)
	case ModeStaticColor:
		s.handleStatic(e)
	case ModeFlash:
		s.exitTo(s.parent, e.Time)
	case ModeBrightness:
		s.handleBrightness(e)
	case ModeRandomColor:
		s.handleRandom(e)
	case ModeColorCycle:
		s.handleCycle(e)
	case ModeCustomColor:
		s.handleCustom(e)
	}
}

// reset returns to Standby from anywhere.
func (s *Session) reset(now logic.Millis) {
	s.counts.Resets++
	s.overlay = nil
	s.emit(Event{Time: now, Type: EventReset, Mode: s.mode})
	s.enter(ModeStandby, now)
}

// enter leaves the current mode, dropping its state, and starts m.
func (s *Session) enter(m Mode, now logic.Millis) {
	s.start(m, ModeIdle, now)
}

// enterNested starts m as a takeover that returns to the current mode.
func (s *Session) enterNested(m Mode, now logic.Millis) {
	s.start(m, s.mode, now)
}

func (s *Session) start(m Mode, parent Mode, now logic.Millis) {
	s.standby, s.flash, s.cycle, s.bright, s.custom = nil, nil, nil, nil, nil
	s.mode = m
	s.parent = parent
	s.counts.ModeEntries++

	switch m {
	case ModeStandby:
		s.standby = pattern.NewStandby(now)
		s.color.ApplyRGB(s.standby.Color())
	case ModeFlash:
		s.flash = pattern.NewFlash(now)
		s.color.ApplyRGB(s.flash.Frame().Color)
	case ModeColorCycle:
		s.cycle = pattern.NewColorCycle(now)
		s.color.ApplyRGB(s.cycle.Color())
	case ModeBrightness:
		s.bright = NewBrightness(s.color)
	case ModeCustomColor:
		s.custom = &CustomColorBuilder{}
	case ModeRandomColor:
		s.roll()
	}

	s.emit(Event{Time: now, Type: EventModeEnter, Mode: m, Color: s.color.RGB()})
}

// exitTo ends a takeover. Returning to StaticColor resumes it; anything
// else lands in Idle holding the current colour.
func (s *Session) exitTo(parent Mode, now logic.Millis) {
	if parent == ModeStaticColor {
		s.standby, s.flash, s.cycle, s.bright, s.custom = nil, nil, nil, nil, nil
		s.mode = ModeStaticColor
		s.parent = ModeIdle
		s.emit(Event{Time: now, Type: EventModeEnter, Mode: ModeStaticColor, Color: s.color.RGB(), Detail: "resume"})
		return
	}
	s.enter(ModeIdle, now)
}

// invalid shows the error indication. The colour state is left untouched,
// so the previous colour returns when the indication ends.
func (s *Session) invalid(e keypad.Event) {
	s.counts.InvalidKeys++
	s.overlay = pattern.NewErrorFlash(e.Time)
	s.emit(Event{Time: e.Time, Type: EventInvalidKey, Mode: s.mode, Key: e.Key, Color: s.color.RGB()})
}

// modeKey enters the mode named by a letter tap. It reports whether e was one.
func (s *Session) modeKey(e keypad.Event) bool {
	if e.Kind != keypad.KindTap {
		return false
	}
	m, ok := ModeKeys[e.Key]
	if !ok {
		return false
	}
	s.enter(m, e.Time)
	return true
}

func (s *Session) handleStandby(e keypad.Event) {
	s.color.ApplyRGB(logic.White)
	if s.modeKey(e) {
		return
	}
	s.enter(ModeIdle, e.Time)
}

func (s *Session) handleIdle(e keypad.Event) {
	// Nothing to cancel; the press may still become a reset hold.
	if e.Kind == keypad.KindCancel || s.modeKey(e) {
		return
	}
	s.invalid(e)
}

func (s *Session) handleStatic(e keypad.Event) {
	switch e.Kind {
	case keypad.KindTap:
		if e.Key == 'A' {
			s.emit(Event{Time: e.Time, Type: EventMenu, Mode: ModeStaticColor})
			return
		}
		if s.modeKey(e) {
			return
		}
	case keypad.KindDigit:
		switch e.Digit {
		case StaticFlashDigit:
			s.enterNested(ModeFlash, e.Time)
			return
		case StaticBrightnessDigit:
			s.enterNested(ModeBrightness, e.Time)
			return
		}
		if p, ok := StaticPalette[e.Digit]; ok {
			s.color.ApplyRGB(p.Color)
			s.emit(Event{Time: e.Time, Type: EventColor, Mode: s.mode, Key: e.Key, Color: p.Color, Detail: p.Name})
			return
		}
	case keypad.KindCancel:
		s.cancel(e)
		return
	}
	s.invalid(e)
}

func (s *Session) handleBrightness(e keypad.Event) {
	switch e.Kind {
	case keypad.KindTap:
		if s.modeKey(e) {
			return
		}
	case keypad.KindDigit:
		switch e.Digit {
		case BrightnessUpDigit:
			s.adjust(e, BrightnessStep, "up")
			return
		case BrightnessDownDigit:
			s.adjust(e, -BrightnessStep, "down")
			return
		case BrightnessExitDigit:
			s.exitTo(s.parent, e.Time)
			return
		}
	case keypad.KindCancel:
		s.exitTo(s.parent, e.Time)
		return
	}
	s.invalid(e)
}

func (s *Session) adjust(e keypad.Event, delta int, dir string) {
	s.bright.Adjust(delta, &s.color)
	s.emit(Event{
		Time:   e.Time,
		Type:   EventColor,
		Mode:   s.mode,
		Key:    e.Key,
		Color:  s.color.RGB(),
		Detail: fmt.Sprintf("brightness %s to %d", dir, s.bright.Max()),
	})
}

func (s *Session) handleRandom(e keypad.Event) {
	switch {
	case e.Kind == keypad.KindConfirm, e.Kind == keypad.KindTap && e.Key == 'D':
		s.roll()
		s.emit(Event{Time: e.Time, Type: EventColor, Mode: s.mode, Key: e.Key, Color: s.color.RGB(), Detail: "random"})
	case e.Kind == keypad.KindCancel:
		s.cancel(e)
	default:
		if !s.modeKey(e) {
			s.invalid(e)
		}
	}
}

func (s *Session) roll() {
	s.color.Apply(s.rng.IntN(logic.MaxLevel+1), s.rng.IntN(logic.MaxLevel+1), s.rng.IntN(logic.MaxLevel+1))
}

func (s *Session) handleCycle(e keypad.Event) {
	switch e.Kind {
	case keypad.KindDigit:
		if err := s.cycle.SetSpeed(e.Digit); err == nil {
			s.emit(Event{
				Time:   e.Time,
				Type:   EventSpeed,
				Mode:   s.mode,
				Key:    e.Key,
				Detail: fmt.Sprintf("speed %d (%dms)", e.Digit, s.cycle.Interval()),
			})
			return
		}
	case keypad.KindTap:
		if s.modeKey(e) {
			return
		}
	case keypad.KindCancel:
		s.cancel(e)
		return
	}
	s.invalid(e)
}

func (s *Session) handleCustom(e keypad.Event) {
	switch e.Kind {
	case keypad.KindDigit:
		s.custom.AddDigit(e.Digit)
		return
	case keypad.KindConfirm:
		ch := s.custom.Channel()
		v := s.custom.Value()
		if s.custom.Commit() {
			c := s.custom.Result()
			s.color.ApplyRGB(c)
			s.emit(Event{Time: e.Time, Type: EventColor, Mode: s.mode, Key: e.Key, Color: c, Detail: "custom"})
			s.enter(ModeIdle, e.Time)
			return
		}
		s.emit(Event{Time: e.Time, Type: EventChannel, Mode: s.mode, Key: e.Key, Detail: fmt.Sprintf("%s=%d", ChannelNames[ch], v)})
		return
	case keypad.KindCancel:
		s.cancel(e)
		return
	case keypad.KindTap:
		if s.modeKey(e) {
			return
		}
	}
	s.invalid(e)
}

// cancel aborts the current mode without touching the colour.
func (s *Session) cancel(e keypad.Event) {
	s.emit(Event{Time: e.Time, Type: EventCancel, Mode: s.mode, Key: e.Key})
	s.enter(ModeIdle, e.Time)
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}
