package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/session"
	"github.com/sweeney/rgb-controller/internal/thermo"
)

func newTestConsole() (*Console, *bytes.Buffer) {
	SetNoColor(true)
	var buf bytes.Buffer
	return NewConsole(&buf), &buf
}

func TestEventLines(t *testing.T) {
	tests := []struct {
		event session.Event
		want  string
	}{
		{session.Event{Type: session.EventKey, Key: '7'}, "Input: 7"},
		{session.Event{Type: session.EventInvalidKey, Key: '#', Mode: session.ModeIdle}, "Invalid key # in IDLE"},
		{session.Event{Type: session.EventReset, Mode: session.ModeFlash}, "Reset from FLASH"},
		{session.Event{Type: session.EventCancel, Mode: session.ModeCustomColor}, "CUSTOM_COLOR cancelled"},
		{session.Event{Type: session.EventModeEnter, Mode: session.ModeStaticColor, Detail: "resume"}, "Back to STATIC_COLOR"},
		{session.Event{Type: session.EventColor, Color: logic.Red, Detail: "red"}, "#ff0000 (red)"},
		{session.Event{Type: session.EventSpeed, Detail: "speed 3 (175ms)"}, "speed 3 (175ms)"},
		{session.Event{Type: session.EventAlertOn}, "ALERT"},
		{session.Event{Type: session.EventAlertOff}, "Alert cleared"},
	}
	for _, tt := range tests {
		c, buf := newTestConsole()
		c.Event(tt.event)
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("%s: expected %q in %q", tt.event.Type, tt.want, buf.String())
		}
	}
}

func TestModeEnterPrintsMenu(t *testing.T) {
	c, buf := newTestConsole()
	c.Event(session.Event{Type: session.EventModeEnter, Mode: session.ModeBrightness})

	out := buf.String()
	if !strings.HasPrefix(out, "BRIGHTNESS\n") {
		t.Errorf("expected mode title first, got %q", out)
	}
	for _, line := range Menus[session.ModeBrightness] {
		if !strings.Contains(out, line) {
			t.Errorf("missing prompt %q", line)
		}
	}
}

func TestMenuWithoutPrompts(t *testing.T) {
	c, buf := newTestConsole()
	c.Menu(session.ModeIdle)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSwatch(t *testing.T) {
	SetNoColor(true)
	if got := Swatch(logic.Yellow); got != "●" {
		t.Errorf("got %q", got)
	}
	if swatches[3] == nil || swatches[7] == nil {
		t.Error("swatch table incomplete")
	}
}

func TestWarnAndFail(t *testing.T) {
	c, buf := newTestConsole()
	c.Warn("pin %d busy", 17)
	c.Fail(errors.New("boom"))
	out := buf.String()
	if !strings.Contains(out, "warning: pin 17 busy") || !strings.Contains(out, "error: boom") {
		t.Errorf("got %q", out)
	}
}

func TestReading(t *testing.T) {
	c, buf := newTestConsole()
	c.Reading(sensor.NewReading(21.5, 40), thermo.BandComfortable)
	out := buf.String()
	for _, want := range []string{"Humidity: 40.0%", "21.5°C, 70.7°F", "[COMFORTABLE]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}
