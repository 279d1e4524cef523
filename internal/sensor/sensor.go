// Package sensor reads temperature and relative humidity.
// The real implementation reads a DHT-family sensor through the Linux IIO
// sysfs interface. The fake allows testing without hardware.
package sensor

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidReading is returned when any field of a reading is NaN.
var ErrInvalidReading = errors.New("sensor: invalid reading")

// Reading is one temperature and humidity sample.
type Reading struct {
	Humidity float64 // percent
	TempC    float64
	TempF    float64
}

// NewReading builds a reading from Celsius and relative humidity.
func NewReading(tempC, humidity float64) Reading {
	return Reading{Humidity: humidity, TempC: tempC, TempF: CToF(tempC)}
}

// Validate returns ErrInvalidReading if any field is NaN.
func (r Reading) Validate() error {
	if math.IsNaN(r.Humidity) || math.IsNaN(r.TempC) || math.IsNaN(r.TempF) {
		return ErrInvalidReading
	}
	return nil
}

// HeatIndexC returns the apparent temperature in Celsius.
func (r Reading) HeatIndexC() float64 {
	return FToC(HeatIndexF(r.TempF, r.Humidity))
}

// HeatIndexF returns the apparent temperature in Fahrenheit.
func (r Reading) HeatIndexF() float64 {
	return HeatIndexF(r.TempF, r.Humidity)
}

func (r Reading) String() string {
	return fmt.Sprintf("humidity=%.1f%% temp=%.1fC/%.1fF heat_index=%.1fC/%.1fF",
		r.Humidity, r.TempC, r.TempF, r.HeatIndexC(), r.HeatIndexF())
}

// Reader produces readings.
type Reader interface {
	// Read takes one sample. A failed sample returns an error; a sample
	// with NaN fields returns ErrInvalidReading.
	Read() (Reading, error)

	// Close releases sensor resources.
	Close() error
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 { return c*1.8 + 32 }

// FToC converts Fahrenheit to Celsius.
func FToC(f float64) float64 { return (f - 32) * 0.55555 }

// HeatIndexF computes the heat index from Fahrenheit and relative humidity
// using the Steadman short form, switching to the Rothfusz regression with
// its low and high humidity adjustments above 79F.
func HeatIndexF(t, rh float64) float64 {
	hi := 0.5 * (t + 61.0 + (t-68.0)*1.2 + rh*0.094)
	if hi <= 79 {
		return hi
	}

	hi = -42.379 +
		2.04901523*t +
		10.14333127*rh -
		0.22475541*t*rh -
		0.00683783*t*t -
		0.05481717*rh*rh +
		0.00122874*t*t*rh +
		0.00085282*t*rh*rh -
		0.00000199*t*t*rh*rh

	switch {
	case rh < 13 && t >= 80 && t <= 112:
		hi -= (13 - rh) * 0.25 * math.Sqrt((17-math.Abs(t-95))*0.05882)
	case rh > 85 && t >= 80 && t <= 87:
		hi += (rh - 85) * 0.1 * ((87 - t) * 0.2)
	}
	return hi
}
