// Package status provides a thread-safe status tracker for the matrix-clock
// daemon. It is read by the HTTP status server and serialized into MQTT
// status snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/matrix-clock/internal/clock"
	"github.com/sweeney/matrix-clock/internal/mqtt"
)

// Config contains daemon configuration for display.
type Config struct {
	DeviceID  string
	Broker    string
	NTPServer string
	FrameMs   int64
	SensorMs  int64
	HTTPAddr  string
}

// Counts tracks lifetime event counters since startup.
type Counts struct {
	Syncs           int
	SyncFailures    int
	Reconnects      int
	Messages        int
	MessagesDropped int
	ConfigUpdates   int
	ConfigRejects   int
}

// Snapshot is a point-in-time view of daemon state. It is a value type,
// safe to use after the lock is released.
type Snapshot struct {
	Clock      clock.Status
	LastSync   time.Time
	SyncOK     bool
	MQTT       mqtt.ConnState
	Brightness float64
	QueueDepth int
	Counts     Counts
	StartTime  time.Time
	Now        time.Time
	Config     Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Clock:     clock.StatusUnset,
			MQTT:      mqtt.StateDisconnected,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetClock records the clock state after a sync attempt.
func (t *Tracker) SetClock(status clock.Status, lastSync time.Time, ok bool) {
	t.mu.Lock()
	t.snap.Clock = status
	t.snap.LastSync = lastSync
	t.snap.SyncOK = ok
	t.mu.Unlock()
}

// SetMQTT records the connection state.
func (t *Tracker) SetMQTT(state mqtt.ConnState) {
	t.mu.Lock()
	t.snap.MQTT = state
	t.mu.Unlock()
}

// SetBrightness records the current display brightness level.
func (t *Tracker) SetBrightness(level float64) {
	t.mu.Lock()
	t.snap.Brightness = level
	t.mu.Unlock()
}

// SetQueue records the message queue depth and lifetime drop count.
func (t *Tracker) SetQueue(depth, dropped int) {
	t.mu.Lock()
	t.snap.QueueDepth = depth
	t.snap.Counts.MessagesDropped = dropped
	t.mu.Unlock()
}

// SetBroker updates the displayed broker address after a config change.
func (t *Tracker) SetBroker(broker string) {
	t.mu.Lock()
	t.snap.Config.Broker = broker
	t.mu.Unlock()
}

// SetNTPServer updates the displayed NTP server after a config change.
func (t *Tracker) SetNTPServer(server string) {
	t.mu.Lock()
	t.snap.Config.NTPServer = server
	t.mu.Unlock()
}

// IncSync counts a successful NTP sync.
func (t *Tracker) IncSync() {
	t.mu.Lock()
	t.snap.Counts.Syncs++
	t.mu.Unlock()
}

// IncSyncFailure counts a failed NTP sync attempt.
func (t *Tracker) IncSyncFailure() {
	t.mu.Lock()
	t.snap.Counts.SyncFailures++
	t.mu.Unlock()
}

// IncReconnect counts an MQTT reconnection.
func (t *Tracker) IncReconnect() {
	t.mu.Lock()
	t.snap.Counts.Reconnects++
	t.mu.Unlock()
}

// IncMessage counts an accepted scroll message.
func (t *Tracker) IncMessage() {
	t.mu.Lock()
	t.snap.Counts.Messages++
	t.mu.Unlock()
}

// IncConfigUpdate counts an applied configuration update.
func (t *Tracker) IncConfigUpdate() {
	t.mu.Lock()
	t.snap.Counts.ConfigUpdates++
	t.mu.Unlock()
}

// IncConfigReject counts a rejected configuration update.
func (t *Tracker) IncConfigReject() {
	t.mu.Lock()
	t.snap.Counts.ConfigRejects++
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state. The Now field
// is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
