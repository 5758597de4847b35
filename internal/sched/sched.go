// Package sched runs the daemon's steady-state loop. One goroutine owns
// every mutable component (config store, clock source, light meter, message
// queue, renderer); MQTT traffic and hardware polls arrive as channel events
// so no component needs its own locking.
package sched

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/matrix-clock/internal/buttons"
	"github.com/sweeney/matrix-clock/internal/clock"
	"github.com/sweeney/matrix-clock/internal/config"
	"github.com/sweeney/matrix-clock/internal/display"
	"github.com/sweeney/matrix-clock/internal/light"
	"github.com/sweeney/matrix-clock/internal/msgqueue"
	"github.com/sweeney/matrix-clock/internal/mqtt"
	"github.com/sweeney/matrix-clock/internal/render"
	"github.com/sweeney/matrix-clock/internal/status"
)

// Deps are the components the scheduler drives. All of them are owned by
// the scheduler goroutine once Run starts. Light and Buttons may be nil
// when the hardware is absent; the meter then stays at mid-range and no
// manual brightness override is available.
type Deps struct {
	Store    *config.Store
	Clock    *clock.Source
	Meter    *light.Meter
	Light    light.Reader
	Queue    *msgqueue.Queue
	Link     mqtt.Link
	Renderer *render.Renderer
	Driver   display.Driver
	Buttons  buttons.Reader
	Tracker  *status.Tracker
}

// Scheduler coordinates the daemon's components.
type Scheduler struct {
	d Deps

	brightnessOffset float64
	lastFrame        time.Time
	connectedOnce    bool
}

// New creates a Scheduler.
func New(d Deps) *Scheduler {
	return &Scheduler{d: d}
}

// Run drives the loop until a signal arrives. Tick channels and the time
// source are injected so tests can step the loop deterministically.
func (s *Scheduler) Run(now func() time.Time, frameTick, sensorTick, buttonTick <-chan time.Time, sig <-chan os.Signal) error {
	s.lastFrame = now()

	// First sync attempt happens before the first frame so the panel can
	// show real time immediately when the network is up. Failures fall
	// back to the placeholder face and the backoff schedule.
	if s.d.Clock.Due(s.lastFrame) {
		s.sync(s.lastFrame)
	}
	s.d.Link.Start()

	for {
		select {
		case sg := <-sig:
			return s.shutdown(sg)

		case <-frameTick:
			s.frame(now())

		case <-sensorTick:
			t := now()
			s.sampleLight()
			if s.d.Clock.Due(t) {
				s.sync(t)
			}

		case <-buttonTick:
			s.pollButtons()

		case ev := <-s.d.Link.Events():
			s.linkEvent(ev, now())
		}
	}
}

// frame composes and pushes one display frame.
func (s *Scheduler) frame(t time.Time) {
	elapsed := t.Sub(s.lastFrame)
	s.lastFrame = t

	cfg := s.d.Store.Current()
	level := s.d.Meter.Level(cfg.BrightnessMin, cfg.BrightnessMax) + s.brightnessOffset
	level = clamp(level, 0, 1)
	s.d.Tracker.SetBrightness(level)

	st := render.State{
		TwentyFour: cfg.TwentyFour,
		DefaultFG:  cfg.MessageFG,
		DefaultBG:  cfg.MessageBG,
		ScrollMs:   cfg.ScrollMs,
		Brightness: level,
		Message:    s.d.Queue.Active(),
	}
	if utc, ok := s.d.Clock.Now(t); ok {
		st.Civil = utc.Add(time.Duration(cfg.UTCOffsetMin) * time.Minute)
		st.HasTime = true
		st.Stale = s.d.Clock.Status() == clock.StatusStale
	}

	f, done := s.d.Renderer.Tick(elapsed, st)
	if done {
		s.d.Queue.Advance()
		s.d.Tracker.SetQueue(s.d.Queue.Len(), s.d.Queue.Dropped())
	}
	if err := s.d.Driver.Push(f); err != nil {
		log.Printf("display push error: %v", err)
	}
}

func (s *Scheduler) sampleLight() {
	if s.d.Light == nil {
		return
	}
	raw, err := s.d.Light.Read()
	if err != nil {
		// Keep the last smoothed level; the sensor often recovers.
		log.Printf("light read error: %v", err)
		return
	}
	s.d.Meter.Sample(raw)
}

// sync performs one NTP sync attempt and records the outcome.
func (s *Scheduler) sync(t time.Time) {
	cfg := s.d.Store.Current()
	err := s.d.Clock.Sync(cfg.NTPServer, t)
	last, ok := s.d.Clock.LastSync()
	s.d.Tracker.SetClock(s.d.Clock.Status(), last, ok)
	if err != nil {
		s.d.Tracker.IncSyncFailure()
		log.Printf("ntp sync failed (attempt %d, state %s): %v",
			s.d.Clock.Failures(), s.d.Clock.Status(), err)
		return
	}
	s.d.Tracker.IncSync()
	log.Printf("ntp synced from %s", cfg.NTPServer)
}

func (s *Scheduler) pollButtons() {
	if s.d.Buttons == nil {
		return
	}
	up, down, err := s.d.Buttons.Read()
	if err != nil {
		log.Printf("button read error: %v", err)
		return
	}
	if up == down {
		return
	}
	if up {
		s.brightnessOffset = clamp(s.brightnessOffset+buttons.Step, -1, 1)
	} else {
		s.brightnessOffset = clamp(s.brightnessOffset-buttons.Step, -1, 1)
	}
}

// linkEvent handles one MQTT link event on the scheduler goroutine.
func (s *Scheduler) linkEvent(ev mqtt.Event, t time.Time) {
	switch ev.Kind {
	case mqtt.EventConnected:
		s.d.Tracker.SetMQTT(mqtt.StateConnected)
		event := "STARTUP"
		if s.connectedOnce {
			event = "RECONNECTED"
			s.d.Tracker.IncReconnect()
		}
		s.connectedOnce = true
		snap := s.d.Tracker.Snapshot()
		if err := s.d.Link.PublishStatus(status.FormatStatusEvent(snap, event, "")); err != nil {
			log.Printf("status publish error: %v", err)
		}
		s.feedback("MQTT CONNECTED", "green", t)
		log.Printf("mqtt connected (%s)", event)

	case mqtt.EventDisconnected:
		s.d.Tracker.SetMQTT(s.d.Link.State())
		log.Printf("mqtt disconnected: %v", ev.Err)

	case mqtt.EventMessage:
		s.command(ev.Payload, t)
	}
}

// command parses and dispatches one command-topic payload.
func (s *Scheduler) command(payload []byte, t time.Time) {
	cmd, err := mqtt.ParseCommand(payload)
	if err != nil {
		s.reject(err.Error(), t)
		return
	}

	switch cmd.Type {
	case mqtt.CmdConfig:
		s.applyConfig(cmd.Update, t)

	case mqtt.CmdMessage:
		s.d.Queue.Push(msgqueue.Message{
			Text:       cmd.Text,
			Foreground: cmd.Foreground,
			Background: cmd.Background,
			Repeat:     cmd.Repeat,
			EnqueuedAt: t,
		})
		s.d.Tracker.IncMessage()
		s.d.Tracker.SetQueue(s.d.Queue.Len(), s.d.Queue.Dropped())
		log.Printf("queued message (%d chars, repeat %d)", len(cmd.Text), cmd.Repeat)

	case mqtt.CmdSync:
		s.sync(t)
		if s.d.Clock.Status() == clock.StatusSynced {
			s.feedback("TIME SYNCED", "green", t)
		} else {
			s.feedback("SYNC FAILED", "red", t)
		}
	}
}

// applyConfig validates, commits and persists a partial update.
func (s *Scheduler) applyConfig(u config.Update, t time.Time) {
	before := s.d.Store.Current()
	cfg, err := s.d.Store.Apply(u)
	if err != nil {
		s.reject(err.Error(), t)
		s.feedback("CONFIG REJECTED", "red", t)
		return
	}
	if err := s.d.Store.Save(); err != nil {
		// The in-memory record is already committed; surface the
		// persistence failure but keep running with the new values.
		log.Printf("config save error: %v", err)
	}

	s.d.Tracker.IncConfigUpdate()
	if cfg.Broker != before.Broker {
		s.d.Tracker.SetBroker(cfg.Broker)
		log.Printf("broker changed to %s, takes effect on restart", cfg.Broker)
	}
	if cfg.NTPServer != before.NTPServer {
		s.d.Tracker.SetNTPServer(cfg.NTPServer)
	}
	s.feedback("CONFIG SAVED", "green", t)
	log.Printf("config updated")
}

// reject publishes an error acknowledgment and counts the rejection.
func (s *Scheduler) reject(reason string, t time.Time) {
	s.d.Tracker.IncConfigReject()
	if err := s.d.Link.PublishError(mqtt.FormatError(reason, t)); err != nil {
		log.Printf("error publish failed: %v", err)
	}
	log.Printf("rejected command: %s", reason)
}

// feedback queues an internal scroll message so outcomes are visible on
// the panel itself, not just over MQTT.
func (s *Scheduler) feedback(text, color string, t time.Time) {
	s.d.Queue.Push(msgqueue.Message{
		Text:       text,
		Foreground: color,
		Repeat:     1,
		EnqueuedAt: t,
		Internal:   true,
	})
	s.d.Tracker.SetQueue(s.d.Queue.Len(), s.d.Queue.Dropped())
}

func (s *Scheduler) shutdown(sg os.Signal) error {
	name := "UNKNOWN"
	if sg == syscall.SIGINT {
		name = "SIGINT"
	} else if sg == syscall.SIGTERM {
		name = "SIGTERM"
	}
	log.Printf("received %v, shutting down", sg)

	snap := s.d.Tracker.Snapshot()
	if err := s.d.Link.PublishStatus(status.FormatStatusEvent(snap, "SHUTDOWN", name)); err != nil {
		log.Printf("shutdown status publish error: %v", err)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
