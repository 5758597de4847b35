// Package display is the boundary to the LED matrix driver. A composed
// frame plus a global brightness scalar goes in; nothing comes back. The
// real panel driver lives outside this module; the drivers here are a test
// fake, a terminal preview, and a sink.
package display

// Panel dimensions of the Galactic Unicorn matrix.
const (
	Width  = 53
	Height = 11
)

// RGB is one pixel.
type RGB struct {
	R, G, B uint8
}

// Frame is a composed image plus the global brightness to apply, in 0..1.
// Pixels are indexed [y][x].
type Frame struct {
	Pix        [Height][Width]RGB
	Brightness float64
}

// Set assigns a pixel, ignoring out-of-range coordinates so drawing code
// can clip at the frame edge without bounds checks.
func (f *Frame) Set(x, y int, c RGB) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	f.Pix[y][x] = c
}

// Fill paints every pixel with the given color.
func (f *Frame) Fill(c RGB) {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			f.Pix[y][x] = c
		}
	}
}

// Driver pushes composed frames to a display. Push is expected to be fast
// and non-blocking; the render tick runs on the scheduler goroutine.
type Driver interface {
	Push(f Frame) error
	Close() error
}
