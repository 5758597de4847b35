// Package msgqueue holds pending scroll messages in a fixed-capacity FIFO.
// When the queue is full the oldest message is dropped to make room: a
// burst of MQTT messages can never grow memory or block the sender.
//
// Single producer (MQTT dispatch), single consumer (renderer), both running
// on the scheduler goroutine, so no locking is needed.
package msgqueue

import (
	"time"
	"unicode/utf8"
)

// MaxTextLen bounds the text payload of a single message, in bytes. Longer
// payloads are truncated on push, at a rune boundary.
const MaxTextLen = 256

// Message is one scroll message.
type Message struct {
	Text       string
	Foreground string // renderer color name; empty = configured default
	Background string
	Repeat     int // number of times to scroll; <1 is treated as 1
	EnqueuedAt time.Time
	Internal   bool // status/error feedback rather than user content

	remaining int
}

// Queue is a bounded FIFO of scroll messages with a drop-oldest overflow
// policy. Not safe for concurrent use.
type Queue struct {
	buf      []Message
	capacity int
	head     int // index of the active (oldest) message
	count    int
	dropped  int
}

// New creates a queue with the given capacity (minimum 1).
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		buf:      make([]Message, capacity),
		capacity: capacity,
	}
}

// Push inserts a message, dropping the oldest queued message if full. It
// never blocks and never fails.
func (q *Queue) Push(m Message) {
	if len(m.Text) > MaxTextLen {
		cut := MaxTextLen
		for cut > 0 && !utf8.RuneStart(m.Text[cut]) {
			cut--
		}
		m.Text = m.Text[:cut]
	}
	if m.Repeat < 1 {
		m.Repeat = 1
	}
	m.remaining = m.Repeat

	if q.count == q.capacity {
		// Drop the oldest: advance head over it.
		q.head = (q.head + 1) % q.capacity
		q.count--
		q.dropped++
	}
	q.buf[(q.head+q.count)%q.capacity] = m
	q.count++
}

// Active returns the message currently being scrolled, or nil if the queue
// is empty. The returned pointer is valid until the next Push or Advance.
func (q *Queue) Active() *Message {
	if q.count == 0 {
		return nil
	}
	return &q.buf[q.head]
}

// Advance records that the active message has fully scrolled off once. The
// message is popped when its repeat count is exhausted.
func (q *Queue) Advance() {
	if q.count == 0 {
		return
	}
	m := &q.buf[q.head]
	m.remaining--
	if m.remaining > 0 {
		return
	}
	q.buf[q.head] = Message{} // release text for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
}

// Len returns the number of queued messages, including the active one.
func (q *Queue) Len() int {
	return q.count
}

// Dropped returns the number of messages discarded by the overflow policy
// since creation.
func (q *Queue) Dropped() int {
	return q.dropped
}
