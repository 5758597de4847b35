package render

import "github.com/sweeney/matrix-clock/internal/display"

// Named colors accepted in message payloads and configuration. The set must
// stay in sync with the names the config package validates.
var palette = map[string]display.RGB{
	"black":  {R: 0, G: 0, B: 0},
	"white":  {R: 255, G: 255, B: 255},
	"red":    {R: 255, G: 0, B: 0},
	"green":  {R: 0, G: 255, B: 0},
	"blue":   {R: 0, G: 0, B: 255},
	"yellow": {R: 255, G: 255, B: 0},
	"purple": {R: 255, G: 0, B: 255},
	"cyan":   {R: 0, G: 255, B: 255},
	"orange": {R: 255, G: 127, B: 0},
}

// Color resolves a color name, falling back to the given name for unknown
// or empty input.
func Color(name, fallback string) display.RGB {
	if c, ok := palette[name]; ok {
		return c
	}
	return palette[fallback]
}
