// Package thermo maps temperature readings onto the mood light: a colour
// band for the session and the over-temperature alert.
package thermo

import (
	"fmt"

	"github.com/sweeney/rgb-controller/internal/logic"
	"github.com/sweeney/rgb-controller/internal/sensor"
	"github.com/sweeney/rgb-controller/internal/session"
)

// Default thresholds and read cadence.
const (
	DefaultColdC          = 20.0
	DefaultHotC           = 30.0
	DefaultReadIntervalMs = 2000
)

// Band is a temperature range.
type Band int

const (
	BandUnknown Band = iota
	BandCold
	BandComfortable
	BandHot
)

func (b Band) String() string {
	switch b {
	case BandCold:
		return "COLD"
	case BandComfortable:
		return "COMFORTABLE"
	case BandHot:
		return "HOT"
	}
	return "UNKNOWN"
}

// Color returns the light colour for the band. Hot is dark; the alert
// supplies the red flash.
func (b Band) Color() logic.RGB {
	switch b {
	case BandCold:
		return logic.Blue
	case BandComfortable:
		return logic.Green
	}
	return logic.Black
}

// Thresholds split readings into bands: below Cold is cold, at or above
// Hot is hot.
type Thresholds struct {
	ColdC float64
	HotC  float64
}

// DefaultThresholds are 20C and 30C.
var DefaultThresholds = Thresholds{ColdC: DefaultColdC, HotC: DefaultHotC}

// Classify returns the band for tempC.
func (t Thresholds) Classify(tempC float64) Band {
	switch {
	case tempC < t.ColdC:
		return BandCold
	case tempC < t.HotC:
		return BandComfortable
	default:
		return BandHot
	}
}

// Monitor samples a sensor on a fixed cadence and applies each valid
// reading to a session.
type Monitor struct {
	reader     sensor.Reader
	thresholds Thresholds
	interval   uint32

	lastRead logic.Millis
	band     Band
	reading  sensor.Reading
	valid    bool
}

// NewMonitor creates a monitor whose first read is due one interval
// after now.
func NewMonitor(r sensor.Reader, t Thresholds, intervalMs uint32, now logic.Millis) *Monitor {
	if intervalMs == 0 {
		intervalMs = DefaultReadIntervalMs
	}
	return &Monitor{reader: r, thresholds: t, interval: intervalMs, lastRead: now}
}

// Due reports whether a read is due at now.
func (m *Monitor) Due(now logic.Millis) bool {
	return logic.Elapsed(m.lastRead, now, m.interval)
}

// Poll reads the sensor if a read is due and applies the result to s.
// Before the interval has elapsed it does nothing. A failed or NaN reading
// skips the whole cycle: colour and alert are left as they were. Any
// reading below the hot threshold clears the alert, so a comfortable reading
// ends the alarm without waiting for the cold band.
func (m *Monitor) Poll(s *session.Session, now logic.Millis) ([]session.Event, error) {
	if !m.Due(now) {
		return nil, nil
	}
	m.lastRead = now

	r, err := m.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read sensor: %w", err)
	}

	m.reading = r
	m.valid = true
	m.band = m.thresholds.Classify(r.TempC)

	s.SetColor(m.band.Color())
	return s.SetAlert(m.band == BandHot, now), nil
}

// Band returns the band of the last valid reading.
func (m *Monitor) Band() Band { return m.band }

// Reading returns the last valid reading and whether there has been one.
func (m *Monitor) Reading() (sensor.Reading, bool) { return m.reading, m.valid }
