package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Clock         ClockJSON  `json:"clock"`
	MQTT          MQTTStatus `json:"mqtt"`
	Brightness    float64    `json:"brightness"`
	QueueDepth    int        `json:"queue_depth"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// ClockJSON reports time sync state.
type ClockJSON struct {
	State    string `json:"state"`
	LastSync string `json:"last_sync,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	State  string `json:"state"`
	Broker string `json:"broker"`
}

// CountsJSON is the JSON representation of the lifetime counters.
type CountsJSON struct {
	Syncs           int `json:"syncs"`
	SyncFailures    int `json:"sync_failures"`
	Reconnects      int `json:"reconnects"`
	Messages        int `json:"messages"`
	MessagesDropped int `json:"messages_dropped"`
	ConfigUpdates   int `json:"config_updates"`
	ConfigRejects   int `json:"config_rejects"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DeviceID  string `json:"device_id"`
	Broker    string `json:"broker"`
	NTPServer string `json:"ntp_server"`
	FrameMs   int64  `json:"frame_ms"`
	SensorMs  int64  `json:"sensor_ms"`
	HTTPAddr  string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Clock:         ClockJSON{State: string(snap.Clock)},
		MQTT:          MQTTStatus{State: string(snap.MQTT), Broker: snap.Config.Broker},
		Brightness:    snap.Brightness,
		QueueDepth:    snap.QueueDepth,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Syncs:           snap.Counts.Syncs,
			SyncFailures:    snap.Counts.SyncFailures,
			Reconnects:      snap.Counts.Reconnects,
			Messages:        snap.Counts.Messages,
			MessagesDropped: snap.Counts.MessagesDropped,
			ConfigUpdates:   snap.Counts.ConfigUpdates,
			ConfigRejects:   snap.Counts.ConfigRejects,
		},
		Config: ConfigJSON{
			DeviceID:  snap.Config.DeviceID,
			Broker:    snap.Config.Broker,
			NTPServer: snap.Config.NTPServer,
			FrameMs:   snap.Config.FrameMs,
			SensorMs:  snap.Config.SensorMs,
			HTTPAddr:  snap.Config.HTTPAddr,
		},
	}
	if snap.SyncOK {
		inner.Clock.LastSync = snap.LastSync.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT status event
// (STARTUP, RECONNECTED, SHUTDOWN).
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
