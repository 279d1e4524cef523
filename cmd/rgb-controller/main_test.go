package main

import (
	"errors"
	"io"
	"math"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/rgb-controller/internal/gpio"
	"github.com/sweeney/rgb-controller/internal/keypad"
	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/sweeney/rgb-controller/internal/mqtt"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/session"
	"github.com/sweeney/rgb-controller/internal/status"
	"github.com/sweeney/rgb-controller/internal/thermo"
	"github.com/sweeney/rgb-controller/internal/ui"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env. If pi-helper changes its var names, this test fails
// and we update the constants, not the other way around.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}

	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestReadNetworkInfoPartial(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo when NETWORK_STATUS is set")
	}
	if info.Status != "connected" {
		t.Errorf("Status: got %q, want %q", info.Status, "connected")
	}
	if info.Type != "" || info.IP != "" || info.SSID != "" {
		t.Errorf("expected other fields empty, got %+v", info)
	}
}

// --- runLoop tests ---

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// keys returns n copies of k.
func keys(k keypad.Key, n int) []keypad.Key {
	out := make([]keypad.Key, n)
	for i := range out {
		out[i] = k
	}
	return out
}

// newDeps wires the fakes every runLoop test needs.
func newDeps(out *gpio.FakeWriter, pub *mqtt.FakePublisher) loopDeps {
	return loopDeps{
		Out:        out,
		Publisher:  pub,
		MQTTStatus: pub,
		Tracker:    status.NewTracker("test", testStart, status.Config{}),
		Console:    ui.NewConsole(io.Discard),
	}
}

// runRunLoop drives runLoop for nTicks and then delivers signal.
func runRunLoop(t *testing.T, d loopDeps, lc loopConfig, clock func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(d, lc, clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func hasEvent(pub *mqtt.FakePublisher, typ session.EventType) bool {
	for _, e := range pub.Events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func wroteColor(out *gpio.FakeWriter, c logic.RGB) bool {
	for _, got := range out.Colors {
		if got == c {
			return true
		}
	}
	return false
}

func wroteBuzzer(out *gpio.FakeWriter) bool {
	for _, on := range out.Buzzer {
		if on {
			return true
		}
	}
	return false
}

func TestRunLoopKeysDriveOutput(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Keys = keypad.NewFakeSource('A', keypad.NoKey, '1', keypad.NoKey)

	err := runRunLoop(t, d, loopConfig{}, fakeClock(testStart, 10*time.Millisecond), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !hasEvent(pub, session.EventModeEnter) || !hasEvent(pub, session.EventColor) {
		t.Errorf("expected MODE_ENTER and COLOR, got %v", pub.EventTypes())
	}
	if !wroteColor(out, logic.Red) {
		t.Errorf("expected red written, got %v", out.Colors)
	}
	if c, buzz := out.Last(); c != logic.Black || buzz {
		t.Errorf("expected outputs off after shutdown, got %v buzzer=%v", c, buzz)
	}

	snap := d.Tracker.Snapshot()
	if snap.Session.Mode != session.ModeStaticColor || snap.Session.Color != logic.Red {
		t.Errorf("tracker: mode=%s color=%v", snap.Session.Mode, snap.Session.Color)
	}
}

func TestRunLoopWritesOnlyOnChange(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Keys = keypad.NewFakeSource()

	err := runRunLoop(t, d, loopConfig{}, fakeClock(testStart, 10*time.Millisecond), 10, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// One write on the first tick, one on shutdown.
	if len(out.Colors) != 2 {
		t.Errorf("expected 2 writes, got %d", len(out.Colors))
	}
}

func TestRunLoopLongPressReset(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	samples := append([]keypad.Key{'B', keypad.NoKey}, keys(keypad.KeyReset, 15)...)
	d.Keys = keypad.NewFakeSource(samples...)
	lc := loopConfig{Session: session.Options{LongPressMs: 100}}

	err := runRunLoop(t, d, lc, fakeClock(testStart, 10*time.Millisecond), len(samples), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !hasEvent(pub, session.EventReset) {
		t.Errorf("expected RESET, got %v", pub.EventTypes())
	}
	if m := d.Tracker.Snapshot().Session.Mode; m != session.ModeStandby {
		t.Errorf("expected STANDBY after reset, got %s", m)
	}
}

func TestRunLoopStandbyStart(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Keys = keypad.NewFakeSource()
	lc := loopConfig{Session: session.Options{Start: session.ModeStandby}}

	// The first blink is lit for 250ms, then dark.
	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 8, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !wroteColor(out, logic.White) {
		t.Errorf("expected standby blink, got %v", out.Colors)
	}
	if m := d.Tracker.Snapshot().Session.Mode; m != session.ModeStandby {
		t.Errorf("expected STANDBY, got %s", m)
	}
}

func TestRunLoopThermoHotAlert(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Sensor = sensor.NewFake(sensor.NewReading(32, 40))
	lc := loopConfig{Thresholds: thermo.DefaultThresholds, ReadMs: 100}

	// Read at 100ms starts the alert; the flash lights at 300ms and the
	// buzzer at 500ms.
	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 12, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !hasEvent(pub, session.EventAlertOn) {
		t.Fatalf("expected ALERT_ON, got %v", pub.EventTypes())
	}
	if !wroteColor(out, logic.Red) {
		t.Errorf("expected red flash, got %v", out.Colors)
	}
	if !wroteBuzzer(out) {
		t.Error("expected buzzer pulse")
	}

	snap := d.Tracker.Snapshot()
	if snap.Climate == nil || snap.Climate.Band != "HOT" {
		t.Errorf("climate: %+v", snap.Climate)
	}
	if !snap.Session.Alert.Active {
		t.Error("expected alert active in tracker")
	}
}

func TestRunLoopThermoBandsAndClear(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Sensor = sensor.NewFake(
		sensor.NewReading(15, 50),
		sensor.NewReading(31, 50),
		sensor.NewReading(25, 50),
	)
	lc := loopConfig{Thresholds: thermo.DefaultThresholds, ReadMs: 100}

	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 6, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !wroteColor(out, logic.Blue) || !wroteColor(out, logic.Green) {
		t.Errorf("expected blue then green, got %v", out.Colors)
	}
	types := pub.EventTypes()
	if len(types) != 2 || types[0] != session.EventAlertOn || types[1] != session.EventAlertOff {
		t.Errorf("expected ALERT_ON, ALERT_OFF; got %v", types)
	}
}

func TestRunLoopThermoInvalidReadingSkipped(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Sensor = sensor.NewFake(
		sensor.NewReading(math.NaN(), 50),
		sensor.NewReading(15, 50),
	)
	lc := loopConfig{Thresholds: thermo.DefaultThresholds, ReadMs: 100}

	// Two ticks: only the NaN read has happened.
	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if snap := d.Tracker.Snapshot(); snap.Climate != nil {
		t.Errorf("invalid reading should not be recorded: %+v", snap.Climate)
	}
	if wroteColor(out, logic.Blue) {
		t.Error("invalid reading should not change colour")
	}
}

func TestRunLoopTiltAlert(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Tilt = gpio.NewFakeReader(false, false, false, true)
	lc := loopConfig{DebounceMs: 100}

	// Baseline OFF at 150ms, tilt stable at 300ms, flash at 500ms,
	// buzzer at 700ms.
	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 16, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !hasEvent(pub, session.EventAlertOn) {
		t.Fatalf("expected ALERT_ON, got %v", pub.EventTypes())
	}
	if !wroteColor(out, logic.Red) || !wroteBuzzer(out) {
		t.Errorf("expected red flash and buzzer, got %v %v", out.Colors, out.Buzzer)
	}

	tilt := d.Tracker.Snapshot().Tilt
	if tilt == nil || tilt.State != logic.StateOn || tilt.Counts.On != 1 {
		t.Errorf("tilt: %+v", tilt)
	}
}

func TestRunLoopTiltLevelClearsAlert(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Tilt = gpio.NewFakeReader(false, false, false, true, true, true, true, false)
	lc := loopConfig{DebounceMs: 100}

	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 12, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	types := pub.EventTypes()
	if len(types) != 2 || types[0] != session.EventAlertOn || types[1] != session.EventAlertOff {
		t.Errorf("expected ALERT_ON, ALERT_OFF; got %v", types)
	}
}

func TestRunLoopTiltedAtStartup(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Tilt = gpio.NewFakeReader(true)
	lc := loopConfig{DebounceMs: 100}

	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !hasEvent(pub, session.EventAlertOn) {
		t.Errorf("expected ALERT_ON for a switch tilted at startup, got %v", pub.EventTypes())
	}
}

// faultReader returns errors for a range of Read() calls.
type faultReader struct {
	inner      *gpio.FakeReader
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (r *faultReader) Read() (bool, error) {
	i := r.call
	r.call++
	if i >= r.faultStart && i < r.faultEnd {
		return false, errors.New("gpio fault")
	}
	return r.inner.Read()
}

func (r *faultReader) Close() error { return r.inner.Close() }

func TestRunLoopTiltErrorRecovery(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Tilt = &faultReader{
		inner:      gpio.NewFakeReader(false, false, false, true),
		faultStart: 3,
		faultEnd:   6,
	}
	lc := loopConfig{DebounceMs: 100}

	err := runRunLoop(t, d, lc, fakeClock(testStart, 50*time.Millisecond), 12, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if !hasEvent(pub, session.EventAlertOn) {
		t.Errorf("expected ALERT_ON after recovery, got %v", pub.EventTypes())
	}
}

func TestRunLoopKeypadPollError(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	src := keypad.NewFakeSource('A')
	src.PollError = errors.New("bus fault")
	d.Keys = src

	err := runRunLoop(t, d, loopConfig{}, fakeClock(testStart, 10*time.Millisecond), 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.Events) != 0 {
		t.Errorf("expected no events, got %v", pub.EventTypes())
	}
	if len(pub.SystemEvents) != 1 || pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN despite poll errors, got %+v", pub.SystemEvents)
	}
}

func TestRunLoopGPIOWriteError(t *testing.T) {
	out := gpio.NewFakeWriter()
	out.WriteError = errors.New("line busy")
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Keys = keypad.NewFakeSource('A')

	err := runRunLoop(t, d, loopConfig{}, fakeClock(testStart, 10*time.Millisecond), 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if !hasEvent(pub, session.EventModeEnter) {
		t.Errorf("session should keep running, got %v", pub.EventTypes())
	}
}

func TestRunLoopPublishError(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	pub.PublishError = errors.New("broker unavailable")
	d := newDeps(out, pub)
	d.Keys = keypad.NewFakeSource('A', keypad.NoKey, '2')

	err := runRunLoop(t, d, loopConfig{}, fakeClock(testStart, 10*time.Millisecond), 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.Events) != 0 {
		t.Errorf("expected 0 recorded events (publish failed), got %d", len(pub.Events))
	}
	if !wroteColor(out, logic.Green) {
		t.Error("output should not depend on publishing")
	}
	if len(pub.SystemEvents) != 1 || pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Error("expected SHUTDOWN system event despite publish errors")
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// Ticks at 5, 10, 15 and 20 minutes; the 15 minute heartbeat fires once.
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	lc := loopConfig{Heartbeat: 15 * time.Minute}

	err := runRunLoop(t, d, lc, fakeClock(testStart, 5*time.Minute), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var heartbeats, shutdowns int
	for _, se := range pub.SystemEvents {
		switch se.Event {
		case "HEARTBEAT":
			heartbeats++
			if !strings.Contains(string(se.RawPayload), `"HEARTBEAT"`) {
				t.Errorf("heartbeat payload missing event: %s", se.RawPayload)
			}
		case "SHUTDOWN":
			shutdowns++
		}
	}
	if heartbeats != 1 {
		t.Errorf("expected 1 HEARTBEAT event, got %d", heartbeats)
	}
	if shutdowns != 1 {
		t.Errorf("expected 1 SHUTDOWN event, got %d", shutdowns)
	}
}

func TestRunLoopHeartbeatIncludesNetworkInfo(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkWifiSSID, "HomeNet")

	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	lc := loopConfig{Heartbeat: 15 * time.Minute}

	err := runRunLoop(t, d, lc, fakeClock(testStart, 5*time.Minute), 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var hb *mqtt.SystemEvent
	for i := range pub.SystemEvents {
		if pub.SystemEvents[i].Event == "HEARTBEAT" {
			hb = &pub.SystemEvents[i]
			break
		}
	}
	if hb == nil {
		t.Fatal("expected a HEARTBEAT system event")
	}
	if !strings.Contains(string(hb.RawPayload), "HomeNet") {
		t.Errorf("heartbeat payload missing network info: %s", hb.RawPayload)
	}
}

func TestRunLoopShutdownSignals(t *testing.T) {
	tests := []struct {
		sig  os.Signal
		want string
	}{
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGTERM, "SIGTERM"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			out := gpio.NewFakeWriter()
			pub := mqtt.NewFakePublisher()
			d := newDeps(out, pub)

			err := runRunLoop(t, d, loopConfig{}, fakeClock(testStart, 10*time.Millisecond), 2, tt.sig)
			if err != nil {
				t.Fatalf("runLoop returned error: %v", err)
			}

			if len(pub.SystemEvents) != 1 {
				t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
			}
			se := pub.SystemEvents[0]
			if se.Event != "SHUTDOWN" {
				t.Errorf("expected SHUTDOWN, got %q", se.Event)
			}
			if se.Reason != tt.want {
				t.Errorf("expected reason %s, got %q", tt.want, se.Reason)
			}
			if !se.Retained {
				t.Error("expected Retained=true for SHUTDOWN")
			}
			if !strings.Contains(string(se.RawPayload), tt.want) {
				t.Errorf("payload missing reason: %s", se.RawPayload)
			}
		})
	}
}

func TestRunLoopShutdownWithoutTracker(t *testing.T) {
	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	d := newDeps(out, pub)
	d.Tracker = nil

	err := runRunLoop(t, d, loopConfig{}, fakeClock(testStart, 10*time.Millisecond), 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	payload := pub.SystemPayloads[0]
	if !strings.Contains(string(payload), `"SHUTDOWN"`) {
		t.Errorf("expected simple shutdown payload, got %s", payload)
	}
}
