// Package mqtt maintains the broker link: subscriptions to the command
// topic, retained status publishes, and reconnection with jittered backoff.
// Inbound traffic is handed to the scheduler as Events; this package never
// touches the configuration store or the message queue itself.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/matrix-clock/internal/config"
)

// ConnState is the explicit connection state machine. No publish or
// subscribe is attempted outside StateConnected.
type ConnState string

const (
	StateDisconnected ConnState = "DISCONNECTED"
	StateConnecting   ConnState = "CONNECTING"
	StateConnected    ConnState = "CONNECTED"
)

// Topic names, per device.
func topicCmd(deviceID string) string    { return "clock/" + deviceID + "/cmd" }
func topicStatus(deviceID string) string { return "clock/" + deviceID + "/status" }
func topicErrors(deviceID string) string { return "clock/" + deviceID + "/errors" }

// EventKind discriminates link events.
type EventKind int

const (
	// EventConnected: the link (re)connected and subscriptions are in place.
	EventConnected EventKind = iota
	// EventDisconnected: the transport dropped; reconnection is underway.
	EventDisconnected
	// EventMessage: a payload arrived on the command topic.
	EventMessage
)

// Event is delivered to the scheduler over the Events channel.
type Event struct {
	Kind    EventKind
	Payload []byte // EventMessage only
	Err     error  // EventDisconnected only: the transport error
}

// Link is the broker connection.
type Link interface {
	// Start begins connecting. Connection progress and inbound messages
	// are reported on Events.
	Start()

	// Events delivers link events. The channel is never closed while the
	// link is open.
	Events() <-chan Event

	// PublishStatus publishes a retained status payload. Fails when not
	// connected; the caller logs and drops (status is re-published on the
	// next reconnect anyway).
	PublishStatus(payload []byte) error

	// PublishError publishes an error acknowledgment.
	PublishError(payload []byte) error

	// State returns the current connection state.
	State() ConnState

	// Close tears the link down, cancelling any pending reconnect.
	Close() error
}

// CommandType discriminates command payloads.
type CommandType string

const (
	CmdConfig  CommandType = "config"
	CmdMessage CommandType = "message"
	CmdSync    CommandType = "sync"
)

// Command is a parsed command-topic payload.
type Command struct {
	Type CommandType

	// Update is set for CmdConfig.
	Update config.Update

	// Message fields, set for CmdMessage.
	Text       string
	Foreground string
	Background string
	Repeat     int
}

// envelope is the common part of every command payload.
type envelope struct {
	Type string `json:"type"`
}

// messageBody is the message-injection payload.
type messageBody struct {
	Text       string `json:"message"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
	Repeat     int    `json:"repeat"`
}

// ParseCommand decodes a command-topic payload. Config payloads carry the
// partial update fields at top level beside "type", matching the record's
// own JSON keys.
func ParseCommand(payload []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Command{}, fmt.Errorf("mqtt: decode command: %w", err)
	}

	switch CommandType(env.Type) {
	case CmdConfig:
		var u config.Update
		if err := json.Unmarshal(payload, &u); err != nil {
			return Command{}, fmt.Errorf("mqtt: decode config update: %w", err)
		}
		return Command{Type: CmdConfig, Update: u}, nil

	case CmdMessage:
		var body messageBody
		if err := json.Unmarshal(payload, &body); err != nil {
			return Command{}, fmt.Errorf("mqtt: decode message: %w", err)
		}
		if body.Text == "" {
			return Command{}, fmt.Errorf("mqtt: empty message text")
		}
		return Command{
			Type:       CmdMessage,
			Text:       body.Text,
			Foreground: body.Foreground,
			Background: body.Background,
			Repeat:     body.Repeat,
		}, nil

	case CmdSync:
		return Command{Type: CmdSync}, nil

	default:
		return Command{}, fmt.Errorf("mqtt: unknown command type %q", env.Type)
	}
}

// presencePayload is the online/offline status message. The offline form is
// registered as the broker-side will so watchers see the device drop even
// on an unclean disconnect.
type presencePayload struct {
	Presence presenceInner `json:"presence"`
}

type presenceInner struct {
	Device    string `json:"device"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp,omitempty"`
}

// FormatOnline returns the retained online presence payload.
func FormatOnline(deviceID string, now time.Time) []byte {
	data, _ := json.Marshal(presencePayload{presenceInner{
		Device:    deviceID,
		State:     "online",
		Timestamp: now.UTC().Format(time.RFC3339),
	}})
	return data
}

// FormatOffline returns the will payload. No timestamp: it is composed at
// connect time, not at death.
func FormatOffline(deviceID string) []byte {
	data, _ := json.Marshal(presencePayload{presenceInner{
		Device: deviceID,
		State:  "offline",
	}})
	return data
}

// errorPayload is the error acknowledgment published when a command is
// rejected.
type errorPayload struct {
	Error errorInner `json:"error"`
}

type errorInner struct {
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// FormatError returns an error acknowledgment payload.
func FormatError(reason string, now time.Time) []byte {
	data, _ := json.Marshal(errorPayload{errorInner{
		Reason:    reason,
		Timestamp: now.UTC().Format(time.RFC3339),
	}})
	return data
}
