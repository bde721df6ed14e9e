package image

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and common symbols.
// Each letter is represented as 5 rows of 3 bits.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'*': {0b000, 0b101, 0b010, 0b101, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	':': {0b000, 0b010, 0b000, 0b010, 0b000},
	'_': {0b000, 0b000, 0b000, 0b000, 0b111},
	'/': {0b001, 0b001, 0b010, 0b100, 0b100},
	'#': {0b101, 0b111, 0b101, 0b111, 0b101},
	'?': {0b111, 0b001, 0b010, 0b000, 0b010},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	// Convert lowercase to uppercase
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{} // Empty pattern for unsupported characters
}

const (
	glyphWidth  = 3
	glyphHeight = 5
)

// LabelSize returns the pixel size of text drawn by DrawLabel at the given
// scale, without the background padding.
func LabelSize(text string, scale int) (w, h int) {
	scale = clampScale(scale)
	n := len([]rune(text))
	if n == 0 {
		return 0, 0
	}
	return n*glyphWidth*scale + (n-1)*scale, glyphHeight * scale
}

// DrawLabel draws text in the built-in 3x5 pixel font with its top-left
// corner at pt. When bg is not nil a box padded by one font pixel is drawn
// behind the text first. Characters without a glyph are left blank.
func DrawLabel(dst *image.RGBA, text string, pt image.Point, fg, bg color.Color, scale int) {
	if text == "" {
		return
	}
	scale = clampScale(scale)
	w, h := LabelSize(text, scale)

	if bg != nil {
		box := image.Rect(pt.X-scale, pt.Y-scale, pt.X+w+scale, pt.Y+h+scale)
		draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Over)
	}

	src := image.NewUniform(fg)
	for i, ch := range []rune(text) {
		pattern := getCharPattern(ch)
		charX := pt.X + i*(glyphWidth+1)*scale
		for row := 0; row < glyphHeight; row++ {
			for c := 0; c < glyphWidth; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				px := image.Rect(charX+c*scale, pt.Y+row*scale, charX+(c+1)*scale, pt.Y+(row+1)*scale)
				draw.Draw(dst, px.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
			}
		}
	}
}

func clampScale(scale int) int {
	if scale < 1 {
		return 1
	}
	if scale > 6 {
		return 6
	}
	return scale
}
