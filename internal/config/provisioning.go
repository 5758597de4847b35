package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provisioning is the read-only bootstrap file supplied at install time. It
// seeds the first-boot runtime record (broker, credentials, NTP server) and
// carries the tuning knobs that are deliberately not remotely mutable.
type Provisioning struct {
	DeviceID string `yaml:"device_id"`

	MQTT struct {
		Broker   string `yaml:"broker"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"mqtt"`

	NTPServer string `yaml:"ntp_server"`

	Sensor struct {
		// Path of the sysfs IIO illuminance attribute to poll.
		Path            string `yaml:"path"`
		IntervalSeconds int    `yaml:"interval_seconds"`
	} `yaml:"sensor"`

	Buttons struct {
		Chip    string `yaml:"chip"`
		PinUp   int    `yaml:"pin_up"`
		PinDown int    `yaml:"pin_down"`
	} `yaml:"buttons"`

	Tuning struct {
		QueueCapacity       int `yaml:"queue_capacity"`
		SyncIntervalMinutes int `yaml:"sync_interval_minutes"`
		StaleThreshold      int `yaml:"stale_threshold"`
		BackoffFloorMs      int `yaml:"backoff_floor_ms"`
		BackoffCapMs        int `yaml:"backoff_cap_ms"`
		FrameRateHz         int `yaml:"frame_rate_hz"`
	} `yaml:"tuning"`
}

// LoadProvisioning reads the YAML provisioning file and fills unset tuning
// values with conservative defaults. A missing file yields pure defaults.
func LoadProvisioning(path string) (*Provisioning, error) {
	var p Provisioning
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.applyDefaults()
			return &p, nil
		}
		return nil, fmt.Errorf("config: open provisioning %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("config: decode provisioning %s: %w", path, err)
	}
	p.applyDefaults()
	return &p, nil
}

func (p *Provisioning) applyDefaults() {
	if p.DeviceID == "" {
		p.DeviceID = "matrix-clock"
	}
	if p.Sensor.Path == "" {
		p.Sensor.Path = "/sys/bus/iio/devices/iio:device0/in_illuminance_raw"
	}
	if p.Sensor.IntervalSeconds <= 0 {
		p.Sensor.IntervalSeconds = 2
	}
	if p.Buttons.Chip == "" {
		p.Buttons.Chip = "gpiochip0"
	}
	if p.Buttons.PinUp <= 0 {
		p.Buttons.PinUp = 5
	}
	if p.Buttons.PinDown <= 0 {
		p.Buttons.PinDown = 6
	}
	if p.Tuning.QueueCapacity <= 0 {
		p.Tuning.QueueCapacity = 10
	}
	if p.Tuning.SyncIntervalMinutes <= 0 {
		p.Tuning.SyncIntervalMinutes = 60
	}
	if p.Tuning.StaleThreshold <= 0 {
		p.Tuning.StaleThreshold = 3
	}
	if p.Tuning.BackoffFloorMs <= 0 {
		p.Tuning.BackoffFloorMs = 1000
	}
	if p.Tuning.BackoffCapMs <= 0 {
		p.Tuning.BackoffCapMs = 30000
	}
	if p.Tuning.FrameRateHz <= 0 {
		p.Tuning.FrameRateHz = 20
	}
}

// SensorInterval returns the light sensor polling cadence.
func (p *Provisioning) SensorInterval() time.Duration {
	return time.Duration(p.Sensor.IntervalSeconds) * time.Second
}

// SyncInterval returns the periodic NTP resync cadence.
func (p *Provisioning) SyncInterval() time.Duration {
	return time.Duration(p.Tuning.SyncIntervalMinutes) * time.Minute
}

// BackoffFloor returns the initial reconnect/resync backoff delay.
func (p *Provisioning) BackoffFloor() time.Duration {
	return time.Duration(p.Tuning.BackoffFloorMs) * time.Millisecond
}

// BackoffCap returns the maximum backoff delay.
func (p *Provisioning) BackoffCap() time.Duration {
	return time.Duration(p.Tuning.BackoffCapMs) * time.Millisecond
}

// FramePeriod returns the render tick period.
func (p *Provisioning) FramePeriod() time.Duration {
	return time.Second / time.Duration(p.Tuning.FrameRateHz)
}

// Defaults returns Default() overlaid with the provisioned broker,
// credentials, and NTP server. Used to seed the runtime record on first
// boot or after a corrupt record.
func (p *Provisioning) Defaults() Config {
	c := Default()
	if p.MQTT.Broker != "" {
		c.Broker = p.MQTT.Broker
	}
	c.Username = p.MQTT.Username
	c.Password = p.MQTT.Password
	if p.NTPServer != "" {
		c.NTPServer = p.NTPServer
	}
	return c
}
