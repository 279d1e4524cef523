package sensor

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestNewReadingConverts(t *testing.T) {
	r := NewReading(25, 40)
	if !near(r.TempF, 77, 1e-9) {
		t.Errorf("expected 77F, got %v", r.TempF)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNaN(t *testing.T) {
	tests := []Reading{
		{Humidity: math.NaN(), TempC: 20, TempF: 68},
		{Humidity: 50, TempC: math.NaN(), TempF: 68},
		{Humidity: 50, TempC: 20, TempF: math.NaN()},
	}
	for i, r := range tests {
		if err := r.Validate(); !errors.Is(err, ErrInvalidReading) {
			t.Errorf("case %d: expected ErrInvalidReading, got %v", i, err)
		}
	}
}

func TestHeatIndexF(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		rh   float64
		want float64
	}{
		// Below the regression threshold the simple form applies.
		{"mild", 70, 50, 69.05},
		{"regression", 90, 60, 99.68},
		{"dry adjustment", 100, 10, 94.12},
		{"humid adjustment", 82, 90, 91.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeatIndexF(tt.t, tt.rh); !near(got, tt.want, 0.01) {
				t.Errorf("HeatIndexF(%v, %v) = %.2f, want ~%.2f", tt.t, tt.rh, got, tt.want)
			}
		})
	}
}

func TestHeatIndexCelsiusMatchesFahrenheit(t *testing.T) {
	r := NewReading(32, 60)
	if !near(r.HeatIndexC(), FToC(r.HeatIndexF()), 1e-9) {
		t.Errorf("C=%v F=%v disagree", r.HeatIndexC(), r.HeatIndexF())
	}
	if r.HeatIndexC() <= r.TempC {
		t.Errorf("hot humid air should feel hotter: %v", r.HeatIndexC())
	}
}

func TestFakeSequence(t *testing.T) {
	f := NewFake(NewReading(18, 40), NewReading(25, 40))
	f.Errors = []error{nil, errors.New("timeout")}

	r, err := f.Read()
	if err != nil || r.TempC != 18 {
		t.Fatalf("first: %v %v", r, err)
	}
	if _, err := f.Read(); err == nil {
		t.Error("expected scripted error")
	}
	// Exhausted: repeats last index, still the scripted error.
	if _, err := f.Read(); err == nil {
		t.Error("expected repeat of scripted error")
	}
}

func TestFakeNaN(t *testing.T) {
	f := NewFake(Reading{Humidity: math.NaN()})
	if _, err := f.Read(); !errors.Is(err, ErrInvalidReading) {
		t.Errorf("expected ErrInvalidReading, got %v", err)
	}
}

func writeIIO(t *testing.T, temp, humidity string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, iioTemp), []byte(temp), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, iioHumidity), []byte(humidity), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestIIOReader(t *testing.T) {
	dir := writeIIO(t, "23400\n", "51200\n")

	r, err := NewIIOReader(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reading, err := r.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(reading.TempC, 23.4, 1e-9) || !near(reading.Humidity, 51.2, 1e-9) {
		t.Errorf("got %+v", reading)
	}
}

func TestIIOReaderBadValue(t *testing.T) {
	dir := writeIIO(t, "garbage", "51200")
	r, _ := NewIIOReader(dir)
	if _, err := r.Read(); err == nil {
		t.Error("expected parse error")
	}
}

func TestIIOReaderMissingDevice(t *testing.T) {
	if _, err := NewIIOReader(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing device")
	}
}
