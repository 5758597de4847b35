package light

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RealReader reads a sysfs IIO illuminance attribute, e.g.
// /sys/bus/iio/devices/iio:device0/in_illuminance_raw.
type RealReader struct {
	path string
}

// NewRealReader creates a reader for the given sysfs attribute. The file is
// probed once so a misconfigured path fails at startup, not mid-run.
func NewRealReader(path string) (*RealReader, error) {
	r := &RealReader{path: path}
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("probe light sensor: %w", err)
	}
	return r, nil
}

// Read returns the current raw reading.
func (r *RealReader) Read() (int, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", r.path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", r.path, err)
	}
	return v, nil
}

// Close releases sensor resources. sysfs needs no teardown.
func (r *RealReader) Close() error {
	return nil
}
