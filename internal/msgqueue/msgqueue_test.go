package msgqueue

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEmptyQueue(t *testing.T) {
	q := New(4)
	if q.Active() != nil {
		t.Error("Active on empty queue should be nil")
	}
	if q.Len() != 0 {
		t.Errorf("Len: got %d, want 0", q.Len())
	}
	q.Advance() // must not panic
}

func TestFIFOOrder(t *testing.T) {
	q := New(4)
	for _, text := range []string{"one", "two", "three"} {
		q.Push(Message{Text: text})
	}

	for _, want := range []string{"one", "two", "three"} {
		m := q.Active()
		if m == nil {
			t.Fatalf("expected active message %q, got nil", want)
		}
		if m.Text != want {
			t.Errorf("active: got %q, want %q", m.Text, want)
		}
		q.Advance()
	}
	if q.Active() != nil {
		t.Error("queue should be empty after draining")
	}
}

func TestOverflowDropsOldest(t *testing.T) {
	// Pushing 2N messages into a queue of capacity N retains exactly the N
	// most recent, in arrival order.
	const n = 5
	q := New(n)
	for i := 0; i < 2*n; i++ {
		q.Push(Message{Text: fmt.Sprintf("msg-%d", i)})
	}

	if q.Len() != n {
		t.Fatalf("Len: got %d, want %d", q.Len(), n)
	}
	if q.Dropped() != n {
		t.Errorf("Dropped: got %d, want %d", q.Dropped(), n)
	}

	for i := n; i < 2*n; i++ {
		m := q.Active()
		if m == nil {
			t.Fatalf("expected msg-%d, queue empty", i)
		}
		if want := fmt.Sprintf("msg-%d", i); m.Text != want {
			t.Errorf("active: got %q, want %q", m.Text, want)
		}
		q.Advance()
	}
}

func TestRepeatCountsScrolls(t *testing.T) {
	q := New(4)
	q.Push(Message{Text: "again", Repeat: 3})
	q.Push(Message{Text: "next"})

	for i := 0; i < 3; i++ {
		m := q.Active()
		if m == nil || m.Text != "again" {
			t.Fatalf("pass %d: expected active %q", i, "again")
		}
		q.Advance()
	}

	if m := q.Active(); m == nil || m.Text != "next" {
		t.Errorf("after repeats exhausted, expected %q", "next")
	}
}

func TestTextTruncatedToBound(t *testing.T) {
	q := New(1)
	q.Push(Message{Text: strings.Repeat("x", MaxTextLen+50)})
	if got := len(q.Active().Text); got != MaxTextLen {
		t.Errorf("text length: got %d, want %d", got, MaxTextLen)
	}
}

func TestTruncationKeepsRuneBoundary(t *testing.T) {
	// A two-byte rune straddling the byte limit must be dropped whole,
	// not split into an invalid trailing byte.
	q := New(1)
	q.Push(Message{Text: strings.Repeat("x", MaxTextLen-1) + "é"})

	got := q.Active().Text
	if !utf8.ValidString(got) {
		t.Errorf("truncated text is not valid UTF-8: %q", got[len(got)-4:])
	}
	if n := len(got); n != MaxTextLen-1 {
		t.Errorf("text length: got %d, want %d", n, MaxTextLen-1)
	}
}

func TestWrapAroundAfterInterleavedOps(t *testing.T) {
	q := New(3)
	q.Push(Message{Text: "a"})
	q.Push(Message{Text: "b"})
	q.Advance() // consume "a"
	q.Push(Message{Text: "c"})
	q.Push(Message{Text: "d"}) // queue now b,c,d with wrapped indices
	q.Push(Message{Text: "e"}) // drops "b"

	var got []string
	for q.Active() != nil {
		got = append(got, q.Active().Text)
		q.Advance()
	}
	want := "c,d,e"
	if strings.Join(got, ",") != want {
		t.Errorf("drain order: got %s, want %s", strings.Join(got, ","), want)
	}
}
