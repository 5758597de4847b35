package light

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestMeterPrimesOnFirstSample(t *testing.T) {
	m := NewMeter(DefaultAlpha)
	m.Sample(1000)
	if m.Smoothed() != 1000 {
		t.Errorf("smoothed after priming: got %v, want 1000", m.Smoothed())
	}
}

func TestMeterSettlesWithinFewSamples(t *testing.T) {
	m := NewMeter(DefaultAlpha)
	m.Sample(10)

	// Full-scale jump: with alpha 0.5 the average should be within 5% of
	// the new value after 5 samples.
	for i := 0; i < 5; i++ {
		m.Sample(2000)
	}
	if diff := math.Abs(m.Smoothed()-2000) / 2000; diff > 0.05 {
		t.Errorf("not settled after 5 samples: smoothed=%v (diff %.1f%%)", m.Smoothed(), diff*100)
	}
}

func TestMeterDampsSingleSpike(t *testing.T) {
	m := NewMeter(0.2)
	for i := 0; i < 10; i++ {
		m.Sample(100)
	}
	before := m.Smoothed()
	m.Sample(4000) // one noisy sample
	after := m.Smoothed()
	if after-before > 0.25*(4000-before) {
		t.Errorf("spike not damped: %v -> %v", before, after)
	}
}

func TestLevelClampsToBounds(t *testing.T) {
	tests := []struct {
		name string
		raw  int
		want func(level float64) bool
	}{
		{"darkness maps to min", 1, func(l float64) bool { return l == 0.1 }},
		{"saturated maps to max", 4095, func(l float64) bool { return l == 0.9 }},
		{"mid range stays within bounds", 200, func(l float64) bool { return l > 0.1 && l < 0.9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeter(1.0)
			m.Sample(tt.raw)
			level := m.Level(0.1, 0.9)
			if !tt.want(level) {
				t.Errorf("raw %d: level %v out of expectation", tt.raw, level)
			}
		})
	}
}

func TestLevelMonotonicInReading(t *testing.T) {
	prev := -1.0
	for _, raw := range []int{10, 50, 200, 800, 2000} {
		m := NewMeter(1.0)
		m.Sample(raw)
		l := m.Level(0, 1)
		if l < prev {
			t.Errorf("level not monotonic: raw %d gave %v after %v", raw, l, prev)
		}
		prev = l
	}
}

func TestLevelUnprimedUsesMidRange(t *testing.T) {
	m := NewMeter(DefaultAlpha)
	if got := m.Level(0.2, 0.6); got != 0.4 {
		t.Errorf("unprimed level: got %v, want 0.4", got)
	}
}

func TestRealReaderParsesSysfsValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_illuminance_raw")
	if err := os.WriteFile(path, []byte("1234\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := NewRealReader(path)
	if err != nil {
		t.Fatalf("NewRealReader: %v", err)
	}
	v, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 1234 {
		t.Errorf("got %d, want 1234", v)
	}
}

func TestRealReaderMissingPathFailsAtStartup(t *testing.T) {
	if _, err := NewRealReader(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected probe error for missing sensor path")
	}
}
