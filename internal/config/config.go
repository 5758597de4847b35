// Package config owns the clock's runtime configuration: a single validated
// record that is loaded from disk at boot, mutated only through validated
// partial updates (normally arriving over MQTT), and persisted with a
// write-then-verify-then-swap so a power cut mid-write cannot corrupt it.
package config

import (
	"fmt"
)

// Bounds for validated fields.
const (
	// UTC offsets are accepted in whole minutes within +/- 24 hours.
	MinUTCOffsetMin = -24 * 60
	MaxUTCOffsetMin = 24 * 60

	// Scroll speed in milliseconds per column of horizontal movement.
	MinScrollMs = 10
	MaxScrollMs = 1000

	// Upper bound for any string field in the record. The record lives in
	// a small flash partition on some deployments, so strings stay short.
	MaxStringLen = 128
)

// colorNames lists the message colors the renderer can produce. Updates
// naming any other color are rejected.
var colorNames = map[string]bool{
	"black":  true,
	"white":  true,
	"red":    true,
	"green":  true,
	"blue":   true,
	"yellow": true,
	"purple": true,
	"cyan":   true,
	"orange": true,
}

// Config is the runtime configuration record. Values are always copied, never
// shared: readers receive snapshots and cannot observe a partial update.
type Config struct {
	// Display
	TwentyFour    bool    `json:"24_hour"`
	BrightnessMin float64 `json:"brightness_min"` // 0..1
	BrightnessMax float64 `json:"brightness_max"` // 0..1
	ScrollMs      int     `json:"scroll_ms"`      // ms per scrolled column
	MessageFG     string  `json:"message_fg"`
	MessageBG     string  `json:"message_bg"`

	// Time
	NTPServer    string `json:"ntp_server"`
	UTCOffsetMin int    `json:"utc_offset_min"`

	// MQTT
	Broker   string `json:"broker"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Update is a partial configuration change. Pointer fields distinguish
// "absent" from "set to zero value", so a JSON payload only touches the
// keys it names.
type Update struct {
	TwentyFour    *bool    `json:"24_hour"`
	BrightnessMin *float64 `json:"brightness_min"`
	BrightnessMax *float64 `json:"brightness_max"`
	ScrollMs      *int     `json:"scroll_ms"`
	MessageFG     *string  `json:"message_fg"`
	MessageBG     *string  `json:"message_bg"`
	NTPServer     *string  `json:"ntp_server"`
	UTCOffsetMin  *int     `json:"utc_offset_min"`
	Broker        *string  `json:"broker"`
	Username      *string  `json:"username"`
	Password      *string  `json:"password"`
}

// Empty reports whether the update names no fields at all.
func (u Update) Empty() bool {
	return u.TwentyFour == nil && u.BrightnessMin == nil && u.BrightnessMax == nil &&
		u.ScrollMs == nil && u.MessageFG == nil && u.MessageBG == nil &&
		u.NTPServer == nil && u.UTCOffsetMin == nil && u.Broker == nil &&
		u.Username == nil && u.Password == nil
}

// ValidationError describes a rejected configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}

// Default returns the documented fallback configuration used when no stored
// record exists or the stored record fails validation.
func Default() Config {
	return Config{
		TwentyFour:    true,
		BrightnessMin: 0.1,
		BrightnessMax: 0.8,
		ScrollMs:      50,
		MessageFG:     "blue",
		MessageBG:     "black",
		NTPServer:     "pool.ntp.org",
		UTCOffsetMin:  0,
		Broker:        "tcp://localhost:1883",
	}
}

// Validate checks every invariant on the record. A Config that passes
// Validate is safe to commit and persist.
func Validate(c Config) error {
	if c.BrightnessMin < 0 || c.BrightnessMin > 1 {
		return &ValidationError{"brightness_min", fmt.Sprintf("%v outside [0,1]", c.BrightnessMin)}
	}
	if c.BrightnessMax < 0 || c.BrightnessMax > 1 {
		return &ValidationError{"brightness_max", fmt.Sprintf("%v outside [0,1]", c.BrightnessMax)}
	}
	if c.BrightnessMin > c.BrightnessMax {
		return &ValidationError{"brightness_min", fmt.Sprintf("%v greater than brightness_max %v", c.BrightnessMin, c.BrightnessMax)}
	}
	if c.ScrollMs < MinScrollMs || c.ScrollMs > MaxScrollMs {
		return &ValidationError{"scroll_ms", fmt.Sprintf("%d outside [%d,%d]", c.ScrollMs, MinScrollMs, MaxScrollMs)}
	}
	if c.UTCOffsetMin < MinUTCOffsetMin || c.UTCOffsetMin > MaxUTCOffsetMin {
		return &ValidationError{"utc_offset_min", fmt.Sprintf("%d outside [%d,%d]", c.UTCOffsetMin, MinUTCOffsetMin, MaxUTCOffsetMin)}
	}
	if !colorNames[c.MessageFG] {
		return &ValidationError{"message_fg", fmt.Sprintf("unknown color %q", c.MessageFG)}
	}
	if !colorNames[c.MessageBG] {
		return &ValidationError{"message_bg", fmt.Sprintf("unknown color %q", c.MessageBG)}
	}
	if c.NTPServer == "" {
		return &ValidationError{"ntp_server", "empty"}
	}
	if c.Broker == "" {
		return &ValidationError{"broker", "empty"}
	}
	for field, v := range map[string]string{
		"ntp_server": c.NTPServer,
		"broker":     c.Broker,
		"username":   c.Username,
		"password":   c.Password,
		"message_fg": c.MessageFG,
		"message_bg": c.MessageBG,
	} {
		if len(v) > MaxStringLen {
			return &ValidationError{field, fmt.Sprintf("longer than %d bytes", MaxStringLen)}
		}
	}
	return nil
}

// merged returns a copy of base with the update's present fields applied.
func merged(base Config, u Update) Config {
	c := base
	if u.TwentyFour != nil {
		c.TwentyFour = *u.TwentyFour
	}
	if u.BrightnessMin != nil {
		c.BrightnessMin = *u.BrightnessMin
	}
	if u.BrightnessMax != nil {
		c.BrightnessMax = *u.BrightnessMax
	}
	if u.ScrollMs != nil {
		c.ScrollMs = *u.ScrollMs
	}
	if u.MessageFG != nil {
		c.MessageFG = *u.MessageFG
	}
	if u.MessageBG != nil {
		c.MessageBG = *u.MessageBG
	}
	if u.NTPServer != nil {
		c.NTPServer = *u.NTPServer
	}
	if u.UTCOffsetMin != nil {
		c.UTCOffsetMin = *u.UTCOffsetMin
	}
	if u.Broker != nil {
		c.Broker = *u.Broker
	}
	if u.Username != nil {
		c.Username = *u.Username
	}
	if u.Password != nil {
		c.Password = *u.Password
	}
	return c
}
