package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrCorruptConfig is returned (wrapped) by Load when the stored record is
// unreadable or fails validation. The store falls back to defaults in that
// case; the caller should log and continue.
var ErrCorruptConfig = errors.New("config: stored record corrupt")

// Store owns the runtime configuration record. It is not safe for concurrent
// use; the scheduler is the only writer and all reads happen on the
// scheduler goroutine (readers elsewhere hold value snapshots).
type Store struct {
	path     string
	defaults Config
	cur      Config
	loaded   bool
}

// NewStore creates a store persisting to path. The defaults (normally
// Default() overlaid with provisioning values) are used when no valid
// record exists on disk.
func NewStore(path string, defaults Config) *Store {
	return &Store{path: path, defaults: defaults, cur: defaults}
}

// Load reads the persisted record. Missing file is not an error: the
// defaults are adopted silently (first boot). A corrupt or invalid record
// also yields the defaults, but with ErrCorruptConfig so the caller can log
// it. Load never leaves the store without a valid configuration.
func (s *Store) Load() (Config, error) {
	s.loaded = true
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.cur = s.defaults
		if os.IsNotExist(err) {
			return s.cur, nil
		}
		return s.cur, fmt.Errorf("%w: read %s: %v", ErrCorruptConfig, s.path, err)
	}

	c, err := decode(data)
	if err != nil {
		s.cur = s.defaults
		return s.cur, fmt.Errorf("%w: %v", ErrCorruptConfig, err)
	}

	s.cur = c
	return s.cur, nil
}

// Current returns an immutable snapshot of the configuration.
func (s *Store) Current() Config {
	return s.cur
}

// Apply validates the partial update against the current record and, if every
// named field passes, commits the merged record in one step. The caller is
// expected to Save afterwards. On error the current record is untouched.
func (s *Store) Apply(u Update) (Config, error) {
	if u.Empty() {
		return s.cur, &ValidationError{"update", "no recognized fields"}
	}
	next := merged(s.cur, u)
	if err := Validate(next); err != nil {
		return s.cur, err
	}
	s.cur = next
	return s.cur, nil
}

// Save persists the current record using write-then-verify-then-swap: the
// record is written to a staging file, read back and decoded, and only then
// renamed over the canonical path. A crash at any point leaves either the
// old record or the complete new one.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.cur, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	staging := s.path + ".staging"
	if err := os.WriteFile(staging, data, 0o600); err != nil {
		return fmt.Errorf("config: write staging: %w", err)
	}

	// Verify: the staged bytes must round-trip to the record we hold.
	readBack, err := os.ReadFile(staging)
	if err != nil {
		return fmt.Errorf("config: verify staging: %w", err)
	}
	if !bytes.Equal(readBack, data) {
		return fmt.Errorf("config: verify staging: read-back mismatch")
	}
	if _, err := decode(readBack); err != nil {
		return fmt.Errorf("config: verify staging: %w", err)
	}

	if err := os.Rename(staging, s.path); err != nil {
		return fmt.Errorf("config: swap: %w", err)
	}
	return nil
}

// decode parses and validates a stored record.
func decode(data []byte) (Config, error) {
	var c Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := Validate(c); err != nil {
		return Config{}, err
	}
	return c, nil
}
