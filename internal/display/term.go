package display

import (
	"fmt"
	"io"
	"strings"
)

// TermDriver renders frames as ANSI half-block art for development without
// a panel attached.
type TermDriver struct {
	w io.Writer
}

// NewTermDriver creates a terminal preview driver writing to w.
func NewTermDriver(w io.Writer) *TermDriver {
	return &TermDriver{w: w}
}

// Push draws the frame. Two matrix rows share one character cell using the
// upper-half-block glyph; brightness scales the colors.
func (d *TermDriver) Push(f Frame) error {
	var b strings.Builder
	b.WriteString("\x1b[H\x1b[2J")
	for y := 0; y < Height; y += 2 {
		for x := 0; x < Width; x++ {
			top := scale(f.Pix[y][x], f.Brightness)
			var bottom RGB
			if y+1 < Height {
				bottom = scale(f.Pix[y+1][x], f.Brightness)
			}
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		b.WriteString("\x1b[0m\n")
	}
	_, err := io.WriteString(d.w, b.String())
	return err
}

// Close resets terminal colors.
func (d *TermDriver) Close() error {
	_, err := io.WriteString(d.w, "\x1b[0m\n")
	return err
}

// NullDriver discards frames. Used when the daemon runs headless.
type NullDriver struct{}

// Push discards the frame.
func (NullDriver) Push(Frame) error { return nil }

// Close is a no-op.
func (NullDriver) Close() error { return nil }

func scale(c RGB, brightness float64) RGB {
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 1 {
		brightness = 1
	}
	return RGB{
		R: uint8(float64(c.R) * brightness),
		G: uint8(float64(c.G) * brightness),
		B: uint8(float64(c.B) * brightness),
	}
}
