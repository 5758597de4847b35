// Package clock maintains the wall-clock estimate for the display. Time is
// anchored to the last successful NTP sync: the displayed instant is the
// synced epoch plus the monotonic delta since the sync. Until a sync has
// succeeded the clock is Unset and reports no time at all.
//
// The package holds no timers and performs no I/O of its own; the scheduler
// drives attempts and supplies the current local time, and the NTP query is
// injected so tests never touch the network.
package clock

import "time"

// Status is the sync state of the clock.
type Status string

const (
	// StatusUnset: no sync attempt has completed yet.
	StatusUnset Status = "UNSET"
	// StatusSynced: the last sync succeeded recently.
	StatusSynced Status = "SYNCED"
	// StatusStale: a sync has succeeded in the past, but the configured
	// number of consecutive attempts have failed since. Time is still
	// shown, flagged as possibly drifted.
	StatusStale Status = "STALE"
	// StatusFailed: attempts have been made and none has ever succeeded.
	StatusFailed Status = "FAILED"
)

// QueryFunc fetches the authoritative time from an NTP server.
type QueryFunc func(server string) (time.Time, error)

// Source tracks the time state machine. Not safe for concurrent use; all
// calls happen on the scheduler goroutine.
type Source struct {
	query          QueryFunc
	syncInterval   time.Duration
	staleThreshold int
	backoffFloor   time.Duration
	backoffCap     time.Duration

	status      Status
	anchorWall  time.Time // NTP time at the last successful sync
	anchorMono  time.Time // local reading at that moment
	failures    int       // consecutive failures since the last success
	nextAttempt time.Time
	lastErr     error
}

// New creates a Source. The first attempt is due immediately.
func New(query QueryFunc, syncInterval time.Duration, staleThreshold int, backoffFloor, backoffCap time.Duration) *Source {
	return &Source{
		query:          query,
		syncInterval:   syncInterval,
		staleThreshold: staleThreshold,
		backoffFloor:   backoffFloor,
		backoffCap:     backoffCap,
		status:         StatusUnset,
	}
}

// Sync performs one sync attempt against the given server, using now as the
// local monotonic reference. It updates the state machine and the next
// attempt deadline, and returns the query error on failure.
func (s *Source) Sync(server string, now time.Time) error {
	wall, err := s.query(server)
	if err != nil {
		s.lastErr = err
		s.failures++
		if s.anchorMono.IsZero() {
			s.status = StatusFailed
		} else if s.failures >= s.staleThreshold {
			s.status = StatusStale
		}
		s.nextAttempt = now.Add(s.backoff())
		return err
	}

	// The anchor is held in UTC regardless of the location the query
	// attached; callers apply the configured civil offset themselves.
	s.anchorWall = wall.UTC()
	s.anchorMono = now
	s.failures = 0
	s.lastErr = nil
	s.status = StatusSynced
	s.nextAttempt = now.Add(s.syncInterval)
	return nil
}

// Now returns the current wall-clock estimate. ok is false until the first
// successful sync (Unset and Failed states), in which case the display must
// show a placeholder rather than a fabricated time.
func (s *Source) Now(now time.Time) (t time.Time, ok bool) {
	if s.anchorMono.IsZero() {
		return time.Time{}, false
	}
	return s.anchorWall.Add(now.Sub(s.anchorMono)), true
}

// Status returns the current sync state.
func (s *Source) Status() Status {
	return s.status
}

// NextAttempt returns when the next sync attempt is due. Zero means
// immediately (no attempt has been made yet).
func (s *Source) NextAttempt() time.Time {
	return s.nextAttempt
}

// Due reports whether a sync attempt should run at the given time.
func (s *Source) Due(now time.Time) bool {
	return !now.Before(s.nextAttempt)
}

// Failures returns the consecutive failure count since the last success.
func (s *Source) Failures() int {
	return s.failures
}

// LastError returns the error from the most recent failed attempt, or nil.
func (s *Source) LastError() error {
	return s.lastErr
}

// LastSync returns the NTP time recorded at the last successful sync and
// whether one has occurred.
func (s *Source) LastSync() (time.Time, bool) {
	return s.anchorWall, !s.anchorMono.IsZero()
}

// backoff returns the capped exponential delay for the current failure
// count: floor, 2*floor, 4*floor, ... up to cap.
func (s *Source) backoff() time.Duration {
	d := s.backoffFloor
	for i := 1; i < s.failures; i++ {
		d *= 2
		if d >= s.backoffCap {
			return s.backoffCap
		}
	}
	if d > s.backoffCap {
		return s.backoffCap
	}
	return d
}
