package clock

import (
	"errors"
	"testing"
	"time"
)

var errUnreachable = errors.New("server unreachable")

// scriptedQuery returns a QueryFunc that replays the given outcomes. A nil
// entry means success at the given wall time; non-nil means failure.
func scriptedQuery(walls []time.Time, errs []error) QueryFunc {
	i := 0
	return func(server string) (time.Time, error) {
		defer func() { i++ }()
		if errs[i] != nil {
			return time.Time{}, errs[i]
		}
		return walls[i], nil
	}
}

func newTestSource(q QueryFunc) *Source {
	return New(q, time.Hour, 3, time.Second, 30*time.Second)
}

func TestInitialStateUnset(t *testing.T) {
	s := newTestSource(nil)
	if s.Status() != StatusUnset {
		t.Errorf("status: got %s, want UNSET", s.Status())
	}
	if _, ok := s.Now(time.Now()); ok {
		t.Error("Now should report no time before the first sync")
	}
	if !s.Due(time.Now()) {
		t.Error("first attempt should be due immediately")
	}
}

func TestSyncSuccess(t *testing.T) {
	local := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	wall := time.Date(2026, 3, 1, 9, 0, 2, 0, time.UTC) // local clock 2s behind

	s := newTestSource(scriptedQuery([]time.Time{wall}, []error{nil}))
	if err := s.Sync("pool.ntp.org", local); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Status() != StatusSynced {
		t.Errorf("status: got %s, want SYNCED", s.Status())
	}
	if !s.NextAttempt().Equal(local.Add(time.Hour)) {
		t.Errorf("next attempt: got %v, want %v", s.NextAttempt(), local.Add(time.Hour))
	}

	// 90 seconds of local monotonic time later, displayed time has advanced
	// by exactly 90 seconds from the synced epoch.
	got, ok := s.Now(local.Add(90 * time.Second))
	if !ok {
		t.Fatal("Now should report a time after sync")
	}
	if want := wall.Add(90 * time.Second); !got.Equal(want) {
		t.Errorf("Now: got %v, want %v", got, want)
	}
}

func TestNeverSyncedGoesFailed(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTestSource(scriptedQuery(
		[]time.Time{{}, {}},
		[]error{errUnreachable, errUnreachable},
	))

	if err := s.Sync("pool.ntp.org", now); err == nil {
		t.Fatal("expected error")
	}
	if s.Status() != StatusFailed {
		t.Errorf("status after first failure: got %s, want FAILED", s.Status())
	}
	if _, ok := s.Now(now); ok {
		t.Error("Now must not fabricate a time in FAILED")
	}

	s.Sync("pool.ntp.org", now.Add(time.Second))
	if s.Status() != StatusFailed {
		t.Errorf("status: got %s, want FAILED", s.Status())
	}
	if s.Failures() != 2 {
		t.Errorf("failures: got %d, want 2", s.Failures())
	}
}

func TestSyncedGoesStaleAtThreshold(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	wall := now.Add(time.Second)

	walls := []time.Time{wall, {}, {}, {}, {}, {}}
	errs := []error{nil, errUnreachable, errUnreachable, errUnreachable, errUnreachable, errUnreachable}
	s := newTestSource(scriptedQuery(walls, errs))

	if err := s.Sync("pool.ntp.org", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Threshold is 3: the first two failures keep SYNCED, the third flips
	// to STALE, further failures stay STALE.
	wantStatus := []Status{StatusSynced, StatusSynced, StatusStale, StatusStale, StatusStale}
	for i, want := range wantStatus {
		s.Sync("pool.ntp.org", now.Add(time.Duration(i+1)*time.Minute))
		if s.Status() != want {
			t.Errorf("failure %d: status got %s, want %s", i+1, s.Status(), want)
		}
	}

	// Time is still shown while stale.
	if _, ok := s.Now(now.Add(10 * time.Minute)); !ok {
		t.Error("Now should still report a time in STALE")
	}
}

func TestStaleRecoversToSynced(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	walls := []time.Time{now, {}, {}, {}, now.Add(time.Hour)}
	errs := []error{nil, errUnreachable, errUnreachable, errUnreachable, nil}
	s := newTestSource(scriptedQuery(walls, errs))

	for i := 0; i < 4; i++ {
		s.Sync("pool.ntp.org", now.Add(time.Duration(i)*time.Minute))
	}
	if s.Status() != StatusStale {
		t.Fatalf("status: got %s, want STALE", s.Status())
	}

	if err := s.Sync("pool.ntp.org", now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status() != StatusSynced {
		t.Errorf("status: got %s, want SYNCED", s.Status())
	}
	if s.Failures() != 0 {
		t.Errorf("failures should reset on success, got %d", s.Failures())
	}
}

func TestFailureBackoffGrowsAndCaps(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	errs := make([]error, 8)
	walls := make([]time.Time, 8)
	for i := range errs {
		errs[i] = errUnreachable
	}
	s := New(scriptedQuery(walls, errs), time.Hour, 3, time.Second, 30*time.Second)

	// 1s, 2s, 4s, 8s, 16s, 30s, 30s, 30s
	want := []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second, 30 * time.Second,
	}
	for i, w := range want {
		at := now.Add(time.Duration(i) * time.Minute)
		s.Sync("pool.ntp.org", at)
		if got := s.NextAttempt().Sub(at); got != w {
			t.Errorf("failure %d: backoff got %v, want %v", i+1, got, w)
		}
	}
}

func TestSuccessResetsBackoffSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	walls := []time.Time{{}, {}, now}
	errs := []error{errUnreachable, errUnreachable, nil}
	s := newTestSource(scriptedQuery(walls, errs))

	s.Sync("pool.ntp.org", now)
	s.Sync("pool.ntp.org", now.Add(time.Second))
	s.Sync("pool.ntp.org", now.Add(3*time.Second))

	// After success the next attempt is the regular interval, not a backoff.
	if got := s.NextAttempt().Sub(now.Add(3 * time.Second)); got != time.Hour {
		t.Errorf("next attempt after recovery: got %v, want 1h", got)
	}
}

func TestSyncNormalizesQueryLocation(t *testing.T) {
	// The production query derives its result from time.Now(), which
	// carries the host's local zone. The anchor must not.
	est := time.FixedZone("EST", -5*60*60)
	local := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	wall := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	s := newTestSource(scriptedQuery([]time.Time{wall.In(est)}, []error{nil}))
	if err := s.Sync("pool.ntp.org", local); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := s.Now(local)
	if !ok {
		t.Fatal("Now should report a time after a successful sync")
	}
	if got.Location() != time.UTC {
		t.Errorf("location: got %v, want UTC", got.Location())
	}
	if got.Hour() != 15 {
		t.Errorf("hour: got %d, want 15", got.Hour())
	}
	if !got.Equal(wall) {
		t.Errorf("instant: got %v, want %v", got, wall)
	}
}
