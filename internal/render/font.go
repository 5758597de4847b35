package render

import (
	"unicode"

	"github.com/sweeney/matrix-clock/internal/display"
)

// glyph is a bitmap character: up to 5 columns wide, 7 rows tall. Each row
// byte holds the leftmost pixel in bit width-1.
type glyph struct {
	width int
	rows  [7]byte
}

// glyphSpacing is the blank column between characters.
const glyphSpacing = 1

var font = map[rune]glyph{
	' ':  {width: 3},
	'0':  {5, [7]byte{0b01110, 0b10001, 0b10011, 0b10101, 0b11001, 0b10001, 0b01110}},
	'1':  {5, [7]byte{0b00100, 0b01100, 0b00100, 0b00100, 0b00100, 0b00100, 0b01110}},
	'2':  {5, [7]byte{0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b01000, 0b11111}},
	'3':  {5, [7]byte{0b11111, 0b00010, 0b00100, 0b00010, 0b00001, 0b10001, 0b01110}},
	'4':  {5, [7]byte{0b00010, 0b00110, 0b01010, 0b10010, 0b11111, 0b00010, 0b00010}},
	'5':  {5, [7]byte{0b11111, 0b10000, 0b11110, 0b00001, 0b00001, 0b10001, 0b01110}},
	'6':  {5, [7]byte{0b00110, 0b01000, 0b10000, 0b11110, 0b10001, 0b10001, 0b01110}},
	'7':  {5, [7]byte{0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b01000, 0b01000}},
	'8':  {5, [7]byte{0b01110, 0b10001, 0b10001, 0b01110, 0b10001, 0b10001, 0b01110}},
	'9':  {5, [7]byte{0b01110, 0b10001, 0b10001, 0b01111, 0b00001, 0b00010, 0b01100}},
	'A':  {5, [7]byte{0b01110, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001}},
	'B':  {5, [7]byte{0b11110, 0b10001, 0b10001, 0b11110, 0b10001, 0b10001, 0b11110}},
	'C':  {5, [7]byte{0b01110, 0b10001, 0b10000, 0b10000, 0b10000, 0b10001, 0b01110}},
	'D':  {5, [7]byte{0b11100, 0b10010, 0b10001, 0b10001, 0b10001, 0b10010, 0b11100}},
	'E':  {5, [7]byte{0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b11111}},
	'F':  {5, [7]byte{0b11111, 0b10000, 0b10000, 0b11110, 0b10000, 0b10000, 0b10000}},
	'G':  {5, [7]byte{0b01110, 0b10001, 0b10000, 0b10111, 0b10001, 0b10001, 0b01111}},
	'H':  {5, [7]byte{0b10001, 0b10001, 0b10001, 0b11111, 0b10001, 0b10001, 0b10001}},
	'I':  {3, [7]byte{0b111, 0b010, 0b010, 0b010, 0b010, 0b010, 0b111}},
	'J':  {5, [7]byte{0b00111, 0b00010, 0b00010, 0b00010, 0b00010, 0b10010, 0b01100}},
	'K':  {5, [7]byte{0b10001, 0b10010, 0b10100, 0b11000, 0b10100, 0b10010, 0b10001}},
	'L':  {5, [7]byte{0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b10000, 0b11111}},
	'M':  {5, [7]byte{0b10001, 0b11011, 0b10101, 0b10101, 0b10001, 0b10001, 0b10001}},
	'N':  {5, [7]byte{0b10001, 0b10001, 0b11001, 0b10101, 0b10011, 0b10001, 0b10001}},
	'O':  {5, [7]byte{0b01110, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110}},
	'P':  {5, [7]byte{0b11110, 0b10001, 0b10001, 0b11110, 0b10000, 0b10000, 0b10000}},
	'Q':  {5, [7]byte{0b01110, 0b10001, 0b10001, 0b10001, 0b10101, 0b10010, 0b01101}},
	'R':  {5, [7]byte{0b11110, 0b10001, 0b10001, 0b11110, 0b10100, 0b10010, 0b10001}},
	'S':  {5, [7]byte{0b01111, 0b10000, 0b10000, 0b01110, 0b00001, 0b00001, 0b11110}},
	'T':  {5, [7]byte{0b11111, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100, 0b00100}},
	'U':  {5, [7]byte{0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01110}},
	'V':  {5, [7]byte{0b10001, 0b10001, 0b10001, 0b10001, 0b10001, 0b01010, 0b00100}},
	'W':  {5, [7]byte{0b10001, 0b10001, 0b10001, 0b10101, 0b10101, 0b10101, 0b01010}},
	'X':  {5, [7]byte{0b10001, 0b10001, 0b01010, 0b00100, 0b01010, 0b10001, 0b10001}},
	'Y':  {5, [7]byte{0b10001, 0b10001, 0b01010, 0b00100, 0b00100, 0b00100, 0b00100}},
	'Z':  {5, [7]byte{0b11111, 0b00001, 0b00010, 0b00100, 0b01000, 0b10000, 0b11111}},
	':':  {1, [7]byte{0, 1, 0, 0, 0, 1, 0}},
	'.':  {1, [7]byte{0, 0, 0, 0, 0, 0, 1}},
	',':  {2, [7]byte{0, 0, 0, 0, 0, 0b01, 0b10}},
	'!':  {1, [7]byte{1, 1, 1, 1, 1, 0, 1}},
	'?':  {5, [7]byte{0b01110, 0b10001, 0b00001, 0b00010, 0b00100, 0b00000, 0b00100}},
	'-':  {3, [7]byte{0, 0, 0, 0b111, 0, 0, 0}},
	'\'': {1, [7]byte{1, 1, 0, 0, 0, 0, 0}},
	'/':  {5, [7]byte{0b00001, 0b00001, 0b00010, 0b00100, 0b01000, 0b10000, 0b10000}},
	'%':  {5, [7]byte{0b11001, 0b11001, 0b00010, 0b00100, 0b01000, 0b10011, 0b10011}},
	'+':  {3, [7]byte{0, 0b010, 0b010, 0b111, 0b010, 0b010, 0}},
}

// lookupGlyph resolves a rune, folding lowercase to uppercase. Unknown
// runes render as '?'.
func lookupGlyph(r rune) glyph {
	if g, ok := font[r]; ok {
		return g
	}
	if g, ok := font[unicode.ToUpper(r)]; ok {
		return g
	}
	return font['?']
}

// measureText returns the pixel width of the string in this font.
func measureText(s string) int {
	w := 0
	for _, r := range s {
		if w > 0 {
			w += glyphSpacing
		}
		w += lookupGlyph(r).width
	}
	return w
}

// drawText paints the string with its top-left corner at (x, y). Pixels
// outside the frame are clipped.
func drawText(f *display.Frame, s string, x, y int, c display.RGB) {
	for _, r := range s {
		g := lookupGlyph(r)
		for row := 0; row < 7; row++ {
			bits := g.rows[row]
			for col := 0; col < g.width; col++ {
				if bits&(1<<(g.width-1-col)) != 0 {
					f.Set(x+col, y+row, c)
				}
			}
		}
		x += g.width + glyphSpacing
	}
}
