package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/matrix-clock/internal/clock"
	"github.com/sweeney/matrix-clock/internal/config"
	"github.com/sweeney/matrix-clock/internal/display"
	"github.com/sweeney/matrix-clock/internal/light"
	"github.com/sweeney/matrix-clock/internal/msgqueue"
	"github.com/sweeney/matrix-clock/internal/mqtt"
	"github.com/sweeney/matrix-clock/internal/render"
)

// TestIntegrationClockFlow drives the component chain from NTP sync to
// rendered frames using fakes, simulating the scheduler's frame loop.
func TestIntegrationClockFlow(t *testing.T) {
	boot := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ntpTime := time.Date(2026, 1, 1, 11, 59, 30, 0, time.UTC)

	store := config.NewStore(filepath.Join(t.TempDir(), "config.json"), config.Default())
	if _, err := store.Load(); err != nil {
		t.Fatalf("load config: %v", err)
	}

	src := clock.New(func(server string) (time.Time, error) {
		return ntpTime, nil
	}, time.Hour, 3, time.Second, 30*time.Second)

	meter := light.NewMeter(light.DefaultAlpha)
	sensor := light.NewFakeReader([]int{50, 60, 55})
	queue := msgqueue.New(10)
	renderer := render.New()
	driver := display.NewFakeDriver()

	// Startup: sync, then prime the light meter.
	if err := src.Sync(store.Current().NTPServer, boot); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if src.Status() != clock.StatusSynced {
		t.Fatalf("clock status: got %s, want SYNCED", src.Status())
	}
	raw, err := sensor.Read()
	if err != nil {
		t.Fatalf("light read: %v", err)
	}
	meter.Sample(raw)

	// A config update arrives over MQTT.
	cmd, err := mqtt.ParseCommand([]byte(`{"type": "config", "utc_offset_min": 60}`))
	if err != nil {
		t.Fatalf("parse config command: %v", err)
	}
	if _, err := store.Apply(cmd.Update); err != nil {
		t.Fatalf("apply config: %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("save config: %v", err)
	}

	// Then a message injection.
	cmd, err = mqtt.ParseCommand([]byte(`{"type": "message", "message": "HELLO", "foreground": "green"}`))
	if err != nil {
		t.Fatalf("parse message command: %v", err)
	}
	queue.Push(msgqueue.Message{
		Text:       cmd.Text,
		Foreground: cmd.Foreground,
		Repeat:     cmd.Repeat,
		EnqueuedAt: boot,
	})

	// Frame loop: 20Hz for 4 simulated seconds. The short message holds
	// for 3 seconds, then the clock face returns.
	cfg := store.Current()
	frame := 50 * time.Millisecond
	var messageDone bool
	for i := 1; i <= 80; i++ {
		now := boot.Add(time.Duration(i) * frame)
		st := render.State{
			TwentyFour: cfg.TwentyFour,
			DefaultFG:  cfg.MessageFG,
			DefaultBG:  cfg.MessageBG,
			ScrollMs:   cfg.ScrollMs,
			Brightness: meter.Level(cfg.BrightnessMin, cfg.BrightnessMax),
			Message:    queue.Active(),
		}
		if utc, ok := src.Now(now); ok {
			st.Civil = utc.Add(time.Duration(cfg.UTCOffsetMin) * time.Minute)
			st.HasTime = true
		}
		f, done := renderer.Tick(frame, st)
		if done {
			queue.Advance()
			messageDone = true
		}
		if err := driver.Push(f); err != nil {
			t.Fatalf("frame %d: push error: %v", i, err)
		}
	}

	if !messageDone {
		t.Error("message never completed its hold")
	}
	if queue.Active() != nil {
		t.Error("queue should be empty after the message completed")
	}
	if len(driver.Frames) != 80 {
		t.Fatalf("frames pushed: got %d, want 80", len(driver.Frames))
	}

	// The final frame shows the clock face with the configured offset:
	// 12:59:34 local (11:59:34 UTC estimate + 60 minutes).
	last := driver.Last()
	if last.Brightness <= 0 {
		t.Errorf("final brightness: got %v, want > 0", last.Brightness)
	}
	utc, ok := src.Now(boot.Add(4 * time.Second))
	if !ok {
		t.Fatal("clock lost its anchor")
	}
	civil := utc.Add(time.Duration(store.Current().UTCOffsetMin) * time.Minute)
	if civil.Hour() != 12 || civil.Minute() != 59 || civil.Second() != 34 {
		t.Errorf("civil time: got %s, want 12:59:34", civil.Format("15:04:05"))
	}
}

// TestIntegrationStaleRecovery walks the clock through failure into STALE
// and back to SYNCED.
func TestIntegrationStaleRecovery(t *testing.T) {
	boot := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	results := []bool{true, false, false, false, true}
	i := 0
	src := clock.New(func(server string) (time.Time, error) {
		ok := results[i]
		i++
		if !ok {
			return time.Time{}, &timeoutError{}
		}
		return boot.Add(time.Duration(i) * time.Hour), nil
	}, time.Hour, 3, time.Second, 30*time.Second)

	now := boot
	wantStatus := []clock.Status{
		clock.StatusSynced,
		clock.StatusSynced,
		clock.StatusSynced,
		clock.StatusStale,
		clock.StatusSynced,
	}
	for n, want := range wantStatus {
		src.Sync("pool.ntp.org", now)
		if src.Status() != want {
			t.Fatalf("attempt %d: status %s, want %s", n, src.Status(), want)
		}
		now = src.NextAttempt()
	}

	// Time is still available throughout, even while stale.
	if _, ok := src.Now(now); !ok {
		t.Error("expected a usable time after recovery")
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string { return "i/o timeout" }
