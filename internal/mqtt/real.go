package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Network operation timeouts. Exceeding any of them is treated like a
// transport failure.
const (
	connectTimeout   = 10 * time.Second
	subscribeTimeout = 10 * time.Second
	publishTimeout   = 5 * time.Second
	keepAlive        = 30 * time.Second
	pingTimeout      = 5 * time.Second
)

// eventBuffer bounds the scheduler-bound event queue. If the scheduler
// stalls long enough to fill it, further inbound messages are dropped and
// counted rather than blocking paho's network loop.
const eventBuffer = 32

// RealLink connects to an actual broker via paho. Reconnection is driven by
// the explicit state machine here, not paho's auto-reconnect, so the backoff
// behavior is fully owned by this package.
type RealLink struct {
	deviceID string
	client   paho.Client
	backoff  *Backoff
	events   chan Event

	mu      sync.Mutex
	state   ConnState
	retry   *time.Timer
	closed  bool
	dropped int
}

// NewRealLink creates a link to the given broker. Start must be called to
// begin connecting.
func NewRealLink(broker, deviceID, username, password string, backoff *Backoff) *RealLink {
	l := &RealLink{
		deviceID: deviceID,
		backoff:  backoff,
		events:   make(chan Event, eventBuffer),
		state:    StateDisconnected,
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(deviceID).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive).
		SetPingTimeout(pingTimeout).
		SetCleanSession(true).
		SetBinaryWill(topicStatus(deviceID), FormatOffline(deviceID), 1, true).
		SetOnConnectHandler(l.onConnect).
		SetConnectionLostHandler(l.onConnectionLost).
		SetDefaultPublishHandler(l.onMessage)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}

	l.client = paho.NewClient(opts)
	return l
}

// Start begins the first connection attempt.
func (l *RealLink) Start() {
	go l.connect()
}

// Events delivers link events to the scheduler.
func (l *RealLink) Events() <-chan Event {
	return l.events
}

// State returns the current connection state.
func (l *RealLink) State() ConnState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// connect performs one connection attempt, scheduling a retry on failure.
func (l *RealLink) connect() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.state = StateConnecting
	l.mu.Unlock()

	token := l.client.Connect()
	if !token.WaitTimeout(connectTimeout + time.Second) {
		l.connectFailed(fmt.Errorf("connect timeout"))
		return
	}
	if err := token.Error(); err != nil {
		l.connectFailed(err)
		return
	}
	// Success path continues in onConnect.
}

func (l *RealLink) connectFailed(err error) {
	l.mu.Lock()
	l.state = StateDisconnected
	l.mu.Unlock()
	log.Printf("mqtt: connect failed: %v", err)
	l.scheduleRetry()
}

// onConnect runs on every successful (re)connect: resubscribe, announce
// presence, reset the backoff schedule.
func (l *RealLink) onConnect(c paho.Client) {
	token := c.Subscribe(topicCmd(l.deviceID), 1, nil)
	if !token.WaitTimeout(subscribeTimeout) || token.Error() != nil {
		err := token.Error()
		if err == nil {
			err = fmt.Errorf("subscribe timeout")
		}
		log.Printf("mqtt: subscribe %s: %v", topicCmd(l.deviceID), err)
		c.Disconnect(250)
		l.mu.Lock()
		l.state = StateDisconnected
		l.mu.Unlock()
		l.scheduleRetry()
		return
	}

	l.mu.Lock()
	l.state = StateConnected
	// A pending retry timer must not fire after a successful connect.
	if l.retry != nil {
		l.retry.Stop()
		l.retry = nil
	}
	l.mu.Unlock()
	l.backoff.Reset()

	// Best-effort presence; the scheduler publishes a full status snapshot
	// when it sees the Connected event.
	online := c.Publish(topicStatus(l.deviceID), 1, true, FormatOnline(l.deviceID, time.Now()))
	if online.WaitTimeout(publishTimeout) && online.Error() != nil {
		log.Printf("mqtt: publish online presence: %v", online.Error())
	}

	log.Printf("mqtt: connected, subscribed to %s", topicCmd(l.deviceID))
	l.emit(Event{Kind: EventConnected})
}

func (l *RealLink) onConnectionLost(c paho.Client, err error) {
	l.mu.Lock()
	l.state = StateDisconnected
	l.mu.Unlock()
	log.Printf("mqtt: connection lost: %v", err)
	l.emit(Event{Kind: EventDisconnected, Err: err})
	l.scheduleRetry()
}

// scheduleRetry arms the reconnect timer with the next backoff delay.
func (l *RealLink) scheduleRetry() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if l.retry != nil {
		l.retry.Stop()
	}
	delay := l.backoff.Next()
	log.Printf("mqtt: reconnecting in %v (attempt %d)", delay.Truncate(time.Millisecond), l.backoff.Attempt())
	l.retry = time.AfterFunc(delay, l.connect)
}

// onMessage forwards command-topic payloads to the scheduler. The payload
// is copied because paho reuses its buffer.
func (l *RealLink) onMessage(c paho.Client, msg paho.Message) {
	payload := make([]byte, len(msg.Payload()))
	copy(payload, msg.Payload())
	l.emit(Event{Kind: EventMessage, Payload: payload})
}

// emit delivers an event without ever blocking paho's network goroutine.
func (l *RealLink) emit(ev Event) {
	select {
	case l.events <- ev:
	default:
		l.mu.Lock()
		l.dropped++
		n := l.dropped
		l.mu.Unlock()
		log.Printf("mqtt: event queue full, dropped %d events", n)
	}
}

// PublishStatus publishes a retained status payload.
func (l *RealLink) PublishStatus(payload []byte) error {
	return l.publish(topicStatus(l.deviceID), 1, true, payload)
}

// PublishError publishes an error acknowledgment.
func (l *RealLink) PublishError(payload []byte) error {
	return l.publish(topicErrors(l.deviceID), 0, false, payload)
}

func (l *RealLink) publish(topic string, qos byte, retained bool, payload []byte) error {
	if l.State() != StateConnected {
		return fmt.Errorf("mqtt: not connected, dropping publish to %s", topic)
	}
	token := l.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", topic, err)
	}
	return nil
}

// Close cancels any pending reconnect and disconnects.
func (l *RealLink) Close() error {
	l.mu.Lock()
	l.closed = true
	if l.retry != nil {
		l.retry.Stop()
		l.retry = nil
	}
	l.state = StateDisconnected
	l.mu.Unlock()

	if l.client.IsConnected() {
		l.client.Disconnect(1000)
	}
	return nil
}
