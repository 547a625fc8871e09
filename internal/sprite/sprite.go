// Package sprite renders the pet as pixel art. The same bitmap, palette and
// scaling run on both the relay and the desk client, so identical state
// always yields identical bytes.
package sprite

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/costalopes/focusgato/internal/cat"
)

const (
	gridSize = 16
	// Scale is the nearest-neighbor upscale factor for the final PNG.
	Scale = 8
)

// Palette is the fur color set selected by the pet's color index.
type Palette struct {
	Body color.RGBA
	Dark color.RGBA
}

var palettes = []Palette{
	{Body: color.RGBA{0xF5, 0xA9, 0x5C, 0xFF}, Dark: color.RGBA{0xB5, 0x6A, 0x2A, 0xFF}}, // laranja
	{Body: color.RGBA{0x8D, 0x8D, 0x94, 0xFF}, Dark: color.RGBA{0x55, 0x55, 0x5C, 0xFF}}, // cinza
	{Body: color.RGBA{0x3A, 0x3A, 0x40, 0xFF}, Dark: color.RGBA{0x1C, 0x1C, 0x20, 0xFF}}, // preto
	{Body: color.RGBA{0xF2, 0xE8, 0xD8, 0xFF}, Dark: color.RGBA{0xC4, 0xB4, 0x98, 0xFF}}, // creme
	{Body: color.RGBA{0xC9, 0x8A, 0x6B, 0xFF}, Dark: color.RGBA{0x8F, 0x5A, 0x41, 0xFF}}, // marrom
}

// PaletteFor wraps the color index into the palette table, so any int the
// desk client persists picks a stable palette.
func PaletteFor(colorIdx int) Palette {
	n := len(palettes)
	idx := ((colorIdx % n) + n) % n
	return palettes[idx]
}

// The base cat, 16x16:
//
//	. transparent   B body   D dark outline   W white   P pink
//	e/m rows are replaced per mood (eyes, mouth).
var baseGrid = [gridSize]string{
	"................",
	"..D..........D..",
	".DBD........DBD.",
	".DBBD......DBBD.",
	".DBBBDDDDDDBBBD.",
	".DBBBBBBBBBBBBD.",
	".DBBBBBBBBBBBBD.",
	".DBeeBBBBBBeeBD.",
	".DBBBBBPPBBBBBD.",
	".DBBBBmmmmBBBBD.",
	".DBBBBBBBBBBBBD.",
	"..DBBBBBBBBBBD..",
	"..DBBDBBBBDBBD..",
	"..DBBDBBBBDBBD..",
	"..DDDDDDDDDDDD..",
	"................",
}

// eyes and mouth cells per mood. Each entry patches the 'e' and 'm'
// placeholder cells of the base grid.
type face struct {
	eye   byte // character drawn in eye cells
	mouth byte // character drawn in mouth cells
}

var faces = map[cat.Mood]face{
	cat.MoodNeutral: {eye: 'D', mouth: 'B'},
	cat.MoodHappy:   {eye: 'U', mouth: 'P'},
	cat.MoodEating:  {eye: 'U', mouth: 'W'},
	cat.MoodHungry:  {eye: 'D', mouth: 'W'},
	cat.MoodSleepy:  {eye: '-', mouth: 'B'},
	cat.MoodSad:     {eye: 'v', mouth: 'D'},
}

func cellColor(ch byte, p Palette) (color.RGBA, bool) {
	switch ch {
	case 'B':
		return p.Body, true
	case 'D', 'v':
		return p.Dark, true
	case 'W':
		return color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, true
	case 'P':
		return color.RGBA{0xE8, 0x7A, 0x90, 0xFF}, true
	case 'U': // closed happy eye, drawn dark
		return p.Dark, true
	case '-': // sleepy lid
		return p.Dark, true
	default:
		return color.RGBA{}, false
	}
}

// Draw renders the 16x16 cat for the given mood and color index.
func Draw(mood cat.Mood, colorIdx int) *image.RGBA {
	p := PaletteFor(colorIdx)
	f, ok := faces[mood]
	if !ok {
		f = faces[cat.MoodNeutral]
	}

	img := image.NewRGBA(image.Rect(0, 0, gridSize, gridSize))
	for y := 0; y < gridSize; y++ {
		row := baseGrid[y]
		for x := 0; x < gridSize; x++ {
			ch := row[x]
			switch ch {
			case 'e':
				ch = f.eye
			case 'm':
				ch = f.mouth
			}
			if c, ok := cellColor(ch, p); ok {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}

// RenderPNG draws the cat and upscales it with nearest-neighbor so the pixels
// stay crisp, returning the encoded PNG bytes.
func RenderPNG(mood cat.Mood, colorIdx int) ([]byte, error) {
	src := Draw(mood, colorIdx)

	size := gridSize * Scale
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode sprite: %w", err)
	}
	return buf.Bytes(), nil
}
