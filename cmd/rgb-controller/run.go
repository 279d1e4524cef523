package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/rgb-controller/internal/config"
	"github.com/sweeney/rgb-controller/internal/gpio"
	"github.com/sweeney/rgb-controller/internal/keypad"
	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/sweeney/rgb-controller/internal/mqtt"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/session"
	"github.com/sweeney/rgb-controller/internal/status"
	"github.com/sweeney/rgb-controller/internal/thermo"
	"github.com/sweeney/rgb-controller/internal/ui"
	"github.com/sweeney/rgb-controller/internal/web"
)

// variant selects what drives the session.
type variant string

const (
	variantKeypad variant = "keypad"
	variantThermo variant = "thermo"
	variantTilt   variant = "tilt"
)

// loopDeps are the collaborators of runLoop. Keys, Sensor and Tilt are
// optional; a nil one is simply not polled.
type loopDeps struct {
	Keys       keypad.Source
	Out        gpio.Writer
	Sensor     sensor.Reader
	Tilt       gpio.Reader
	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus
	Tracker    *status.Tracker
	Console    *ui.Console
}

// loopConfig holds the timing settings of runLoop.
type loopConfig struct {
	Session    session.Options
	Thresholds thermo.Thresholds
	ReadMs     uint32
	DebounceMs uint32
	Heartbeat  time.Duration
}

func run(v variant, cfg *config.Config, console *ui.Console) error {
	out, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	deps := loopDeps{Out: out, Console: console}
	lc := loopConfig{
		Session: session.Options{
			LongPressMs: config.Millis(cfg.LongPress),
			Seed:        cfg.Seed,
			Start:       session.ModeIdle,
		},
		Thresholds: cfg.Thermo.Thresholds(),
		ReadMs:     config.Millis(cfg.Thermo.Interval),
		DebounceMs: config.Millis(cfg.Debounce),
		Heartbeat:  cfg.Heartbeat.Duration,
	}
	if lc.Session.Seed == 0 {
		lc.Session.Seed = rand.Uint64()
	}

	switch v {
	case variantKeypad:
		keys, err := openKeys(cfg.Keypad)
		if err != nil {
			return err
		}
		defer keys.Close()
		deps.Keys = keys
		if cfg.Standby {
			lc.Session.Start = session.ModeStandby
		}
	case variantThermo:
		r, err := sensor.NewIIOReader(cfg.Thermo.Device)
		if err != nil {
			return fmt.Errorf("init sensor: %w", err)
		}
		defer r.Close()
		deps.Sensor = r
	case variantTilt:
		r, err := gpio.NewRealReader(cfg.Pins.Tilt)
		if err != nil {
			return fmt.Errorf("init tilt: %w", err)
		}
		defer r.Close()
		deps.Tilt = r
	}

	instanceID := uuid.NewString()
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.Broker, "rgb-controller-"+instanceID[:8])
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer p.Close()
		deps.Publisher, deps.MQTTStatus = p, p
	} else {
		deps.Publisher, deps.MQTTStatus = mqtt.Discard{}, mqtt.Discard{}
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(instanceID, time.Now(), status.Config{
		Variant:     string(v),
		PollMs:      cfg.Poll.Milliseconds(),
		LongPressMs: cfg.LongPress.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPPort:    cfg.HTTP,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	deps.Tracker = tracker

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := deps.Publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	console.Banner(fmt.Sprintf("RGB controller (%s)", v))
	log.Printf("started: variant=%s poll=%v long_press=%v broker=%q heartbeat=%v",
		v, cfg.Poll, cfg.LongPress, cfg.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Poll.Duration)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(deps, lc, time.Now, ticker.C, sigCh)
}

// openOutput opens the colour and buzzer outputs for the configured driver.
func openOutput(cfg *config.Config) (gpio.Writer, error) {
	if cfg.Output.Driver != config.OutputPWM {
		w, err := gpio.NewRealWriter(cfg.Pins.GPIO())
		if err != nil {
			return nil, fmt.Errorf("init gpio: %w", err)
		}
		return w, nil
	}

	buzzer, err := gpio.NewRealBuzzer(cfg.Pins.Buzzer)
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	w, err := gpio.NewPWMWriter(cfg.Output.PWM(), buzzer)
	if err != nil {
		return nil, fmt.Errorf("init pwm: %w", err)
	}
	return w, nil
}

func openKeys(k config.Keypad) (keypad.Source, error) {
	if k.Source == config.SourceMatrix {
		m, err := gpio.NewMatrixKeypad(k.Matrix())
		if err != nil {
			return nil, fmt.Errorf("init keypad: %w", err)
		}
		return m, nil
	}
	return keypad.NewTextSource(os.Stdin), nil
}

// runLoop polls every input once per tick, advances the session and pushes
// the resulting frame to the outputs. It returns after a signal.
func runLoop(d loopDeps, lc loopConfig, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	clock := logic.NewClock(startTime)
	heartbeat := logic.NewHeartbeat(lc.Heartbeat, startTime)
	sess := session.New(lc.Session, 0)

	var monitor *thermo.Monitor
	if d.Sensor != nil {
		monitor = thermo.NewMonitor(d.Sensor, lc.Thresholds, lc.ReadMs, 0)
	}
	var detector *logic.Detector
	if d.Tilt != nil {
		detector = logic.NewDetector(lc.DebounceMs)
	}

	if lc.Session.Start == session.ModeStandby {
		d.Console.Info("Standby: press any key")
	} else if d.Keys != nil {
		d.Console.Info("A static  B cycle  C custom  D random  (hold * to reset)")
	}

	var last logic.Frame
	written := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if err := gpio.WriteFrame(d.Out, logic.Frame{}); err != nil {
				log.Printf("gpio write error: %v", err)
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.Tracker != nil {
				if d.MQTTStatus != nil {
					d.Tracker.SetMQTTConnected(d.MQTTStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(d.Tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := d.Publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			ms := clock.Millis(t)

			key := keypad.NoKey
			if d.Keys != nil {
				k, err := d.Keys.Poll(t)
				if err != nil {
					log.Printf("keypad poll error: %v", err)
				} else {
					key = k
				}
			}
			events := sess.Process(session.Input{Key: key, Time: ms})

			if monitor != nil && monitor.Due(ms) {
				evs, err := monitor.Poll(sess, ms)
				if err != nil {
					log.Printf("sensor: %v", err)
					d.Console.Warn("invalid sensor reading, skipping")
				} else {
					r, _ := monitor.Reading()
					d.Console.Reading(r, monitor.Band())
					if d.Tracker != nil {
						d.Tracker.SetClimate(r, monitor.Band().String())
					}
					events = append(events, evs...)
				}
			}

			if detector != nil {
				events = append(events, pollTilt(d.Tilt, detector, sess, ms)...)
				if d.Tracker != nil {
					d.Tracker.SetTilt(detector.CurrentState(), detector.IsBaselined(), detector.EventCountsSnapshot())
				}
			}

			if frame := sess.Output(); !written || frame != last {
				if err := gpio.WriteFrame(d.Out, frame); err != nil {
					log.Printf("gpio write error: %v", err)
				} else {
					last, written = frame, true
				}
			}

			for _, e := range events {
				d.Console.Event(e)
				if e.Type != session.EventKey {
					log.Printf("event: %s mode=%s %s", e.Type, e.Mode, e.Detail)
				}
				if err := d.Publisher.Publish(t, e); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if d.Tracker != nil {
				d.Tracker.Update(status.FromSession(sess))
				if d.MQTTStatus != nil {
					d.Tracker.SetMQTTConnected(d.MQTTStatus.IsConnected())
				}
			}

			if hb := heartbeat.Check(t); hb != nil {
				log.Printf("heartbeat: uptime=%v mode=%s", hb.Uptime, sess.Mode())
				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.Tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						d.Tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(d.Tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := d.Publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// pollTilt reads the tilt line through the debouncer. Once a stable level
// is known the alert follows it, so a switch already tilted at startup
// alarms too.
func pollTilt(r gpio.Reader, detector *logic.Detector, sess *session.Session, ms logic.Millis) []session.Event {
	on, err := r.Read()
	if err != nil {
		log.Printf("tilt read error: %v", err)
		return nil
	}
	for _, e := range detector.Process(logic.Input{On: on, Time: ms}) {
		log.Printf("tilt: %s", e.Type)
	}
	if !detector.IsBaselined() {
		return nil
	}
	return sess.SetAlert(detector.CurrentState() == logic.StateOn, ms)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
