// Package render composes display frames: the clock face with its
// time-of-day gradient background, and scrolling text messages. It only
// reads already-computed state handed to it each tick and never performs
// I/O; pushing the frame to the panel is the scheduler's job.
package render

import (
	"fmt"
	"math"
	"time"

	"github.com/sweeney/matrix-clock/internal/display"
	"github.com/sweeney/matrix-clock/internal/msgqueue"
)

// Layout margins, matching the panel's usable text area.
const (
	textMarginX = 2
	textMarginY = 2
)

// shortHold is how long a message that fits on screen is held, centered,
// instead of scrolling.
const shortHold = 3 * time.Second

// Background gradient constants for the day/night cycle. Hue values above
// 1.0 wrap around the color wheel.
const (
	middayHue      = 1.1
	midnightHue    = 0.8
	hueOffset      = -0.1
	middayValue    = 0.8
	midnightValue  = 0.3
	gradSaturation = 1.0
)

// State is everything the renderer reads for one frame. Civil is the
// local civil time (UTC offset already applied); it is meaningless unless
// HasTime is set.
type State struct {
	Civil      time.Time
	HasTime    bool
	Stale      bool
	TwentyFour bool
	DefaultFG  string
	DefaultBG  string
	ScrollMs   int
	Brightness float64
	Message    *msgqueue.Message
}

// Renderer holds scroll position between ticks. Not safe for concurrent
// use; Tick runs on the scheduler goroutine.
type Renderer struct {
	active    bool
	msgText   string
	msgSince  time.Time
	textWidth int
	fits      bool
	scrollX   int
	hold      time.Duration
	accum     time.Duration
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Tick composes one frame. elapsed is the time since the previous tick and
// drives scroll speed. The returned flag is true when the active message
// has fully scrolled off (or its hold expired); the caller should then
// advance the message queue.
func (r *Renderer) Tick(elapsed time.Duration, s State) (display.Frame, bool) {
	var f display.Frame
	f.Brightness = s.Brightness

	if s.Message == nil {
		r.active = false
		r.drawClock(&f, s)
		return f, false
	}

	if !r.active || r.msgText != s.Message.Text || !r.msgSince.Equal(s.Message.EnqueuedAt) {
		r.start(s.Message)
	}

	done := r.step(elapsed, s.ScrollMs)
	r.drawMessage(&f, s)
	if done {
		// Force a restart next tick in case the same message repeats.
		r.active = false
	}
	return f, done
}

// start initializes scroll state for a newly active message.
func (r *Renderer) start(m *msgqueue.Message) {
	r.active = true
	r.msgText = m.Text
	r.msgSince = m.EnqueuedAt
	r.textWidth = measureText(m.Text)
	r.fits = r.textWidth <= display.Width-2*textMarginX
	r.scrollX = display.Width
	r.hold = shortHold
	r.accum = 0
}

// step advances the scroll position and reports completion.
func (r *Renderer) step(elapsed time.Duration, scrollMs int) bool {
	if r.fits {
		r.hold -= elapsed
		return r.hold <= 0
	}

	if scrollMs <= 0 {
		scrollMs = 50
	}
	r.accum += elapsed
	per := time.Duration(scrollMs) * time.Millisecond
	for r.accum >= per {
		r.accum -= per
		r.scrollX--
	}
	return r.scrollX <= -r.textWidth
}

func (r *Renderer) drawMessage(f *display.Frame, s State) {
	m := s.Message
	fgName := m.Foreground
	if fgName == "" {
		fgName = s.DefaultFG
	}
	bgName := m.Background
	if bgName == "" {
		bgName = s.DefaultBG
	}
	fg := Color(fgName, "white")
	bg := Color(bgName, "black")

	f.Fill(bg)
	x := r.scrollX
	if r.fits {
		x = (display.Width - r.textWidth) / 2
	}
	drawText(f, m.Text, x, textMarginY, fg)
}

func (r *Renderer) drawClock(f *display.Frame, s State) {
	if !s.HasTime {
		// No trustworthy time yet: placeholder, no gradient.
		text := "--:--:--"
		x := (display.Width - measureText(text)) / 2
		drawText(f, text, x, textMarginY, Color("yellow", "white"))
		return
	}

	drawGradient(f, percentToMidday(s.Civil))

	text := formatTime(s.Civil, s.TwentyFour)
	x := (display.Width - measureText(text)) / 2
	outlineText(f, text, x, textMarginY)

	if s.Stale {
		// Distinct marker so drifted time is never mistaken for synced.
		f.Set(display.Width-1, 0, Color("orange", "red"))
	}
}

// formatTime renders HH:MM:SS, with a 12-hour clock showing 12 at midnight
// and noon.
func formatTime(t time.Time, twentyFour bool) string {
	h := t.Hour()
	if !twentyFour {
		h = h % 12
		if h == 0 {
			h = 12
		}
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, t.Minute(), t.Second())
}

// percentToMidday maps the time of day onto 0..1, peaking at noon.
func percentToMidday(t time.Time) float64 {
	secs := float64(t.Hour()*3600 + t.Minute()*60 + t.Second())
	p := secs / 86400
	return 1.0 - (math.Cos(p*2*math.Pi)+1)/2
}

// drawGradient paints the mirrored horizontal background gradient whose
// color tracks the position in the day.
func drawGradient(f *display.Frame, toMidday float64) {
	hue := (middayHue-midnightHue)*toMidday + midnightHue
	val := (middayValue-midnightValue)*toMidday + midnightValue

	half := display.Width / 2
	for x := 0; x <= half; x++ {
		t := float64(x) / float64(half)
		c := fromHSV(hue+hueOffset*t, gradSaturation, val)
		for y := 0; y < display.Height; y++ {
			f.Set(x, y, c)
			f.Set(display.Width-x-1, y, c)
		}
	}
}

// outlineText draws white text with a one-pixel black outline so the
// digits stay legible over the gradient.
func outlineText(f *display.Frame, s string, x, y int) {
	black := Color("black", "black")
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawText(f, s, x+dx, y+dy, black)
		}
	}
	drawText(f, s, x, y, Color("white", "white"))
}

// fromHSV converts hue/saturation/value (hue wraps beyond 1.0) to RGB.
func fromHSV(h, s, v float64) display.RGB {
	i := math.Floor(h * 6)
	frac := h*6 - i
	v *= 255
	p := v * (1 - s)
	q := v * (1 - frac*s)
	t := v * (1 - (1-frac)*s)

	var rf, gf, bf float64
	switch int(math.Abs(i)) % 6 {
	case 0:
		rf, gf, bf = v, t, p
	case 1:
		rf, gf, bf = q, v, p
	case 2:
		rf, gf, bf = p, v, t
	case 3:
		rf, gf, bf = p, q, v
	case 4:
		rf, gf, bf = t, p, v
	case 5:
		rf, gf, bf = v, p, q
	}
	return display.RGB{R: uint8(rf), G: uint8(gf), B: uint8(bf)}
}
