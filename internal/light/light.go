// Package light samples ambient brightness and maps it to a display level.
// The real implementation reads a sysfs IIO illuminance attribute; the fake
// allows testing without hardware.
package light

import "math"

// Reader reads the raw ambient light level.
type Reader interface {
	// Read returns the raw sensor reading. The usable range of the sensor
	// behind the Galactic Unicorn is roughly 10-2000 out of 0-4095.
	Read() (int, error)

	// Close releases sensor resources.
	Close() error
}

// Log-scale normalization constants, tuned on hardware: the raw reading's
// usable range becomes 0..1 via log(raw)/scale + shift.
const (
	logShift = -0.3
	logScale = 6.0
)

// DefaultAlpha damps single-sample sensor noise while letting a full-scale
// light change settle visibly within a few samples (about a second at the
// default cadence).
const DefaultAlpha = 0.5

// Meter smooths raw readings with an exponential moving average and maps
// the result to a display brightness level. Not safe for concurrent use;
// the scheduler samples and the renderer reads on the same goroutine.
type Meter struct {
	alpha    float64
	smoothed float64
	primed   bool
}

// NewMeter creates a Meter with the given EMA decay factor in (0,1].
func NewMeter(alpha float64) *Meter {
	return &Meter{alpha: alpha}
}

// Sample feeds one raw reading into the average. The first sample primes
// the average directly so startup brightness does not ramp from zero.
func (m *Meter) Sample(raw int) {
	v := float64(raw)
	if !m.primed {
		m.smoothed = v
		m.primed = true
		return
	}
	m.smoothed += m.alpha * (v - m.smoothed)
}

// Smoothed returns the current averaged raw value.
func (m *Meter) Smoothed() float64 {
	return m.smoothed
}

// Level maps the smoothed reading into [min, max]: log-normalize to 0..1,
// then interpolate linearly between the configured bounds, clamped.
func (m *Meter) Level(min, max float64) float64 {
	if !m.primed {
		// No reading yet: middle of the configured range.
		return min + (max-min)/2
	}
	n := normalize(m.smoothed)
	return min + n*(max-min)
}

// normalize converts a raw reading to 0..1 on the sensor's log curve.
func normalize(raw float64) float64 {
	if raw < 1 {
		raw = 1
	}
	n := math.Log(raw)/logScale + logShift
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
