/*
   Color model for Piet source images.

   Copyright (c) 2024, Piet Authors

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package color defines the twenty-color Piet palette, the
// (lightness, hue) lattice used to decode color differences into
// instructions, and the bit-exact RGB values of the reference palette.
package color

import "fmt"

// Lightness selects one of the three rows of the chromatic palette.
type Lightness int

const (
	Light Lightness = iota
	Regular
	Dark
)

// Hue selects one of the six columns of the chromatic palette.
type Hue int

const (
	Red Hue = iota
	Yellow
	Green
	Cyan
	Blue
	Magenta
)

// Kind distinguishes chromatic colors from the two special colors.
type Kind int

const (
	Chromatic Kind = iota
	White
	Black
)

// Color is a tagged value: White, Black, or a (lightness, hue) pair.
type Color struct {
	Kind      Kind
	Lightness Lightness
	Hue       Hue
}

// MakeChromatic builds a chromatic color from its lattice coordinates.
func MakeChromatic(l Lightness, h Hue) Color {
	return Color{Kind: Chromatic, Lightness: l, Hue: h}
}

// WhiteColor and BlackColor are the two special, non-chromatic colors.
var (
	WhiteColor = Color{Kind: White}
	BlackColor = Color{Kind: Black}
)

func (c Color) String() string {
	switch c.Kind {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return lightnessNames[c.Lightness] + hueNames[c.Hue]
	}
}

var lightnessNames = [...]string{"Light", "Regular", "Dark"}
var hueNames = [...]string{"Red", "Yellow", "Green", "Cyan", "Blue", "Magenta"}

// rgb is the bit-exact RGB triple for one palette entry.
type rgb struct {
	r, g, b uint8
}

// palette holds the twenty reference RGB triples, indexed
// [lightness][hue] for chromatic entries.
var palette = [3][6]rgb{
	Light:   {Red: {0xFF, 0xC0, 0xC0}, Yellow: {0xFF, 0xFF, 0xC0}, Green: {0xC0, 0xFF, 0xC0}, Cyan: {0xC0, 0xFF, 0xFF}, Blue: {0xC0, 0xC0, 0xFF}, Magenta: {0xFF, 0xC0, 0xFF}},
	Regular: {Red: {0xFF, 0x00, 0x00}, Yellow: {0xFF, 0xFF, 0x00}, Green: {0x00, 0xFF, 0x00}, Cyan: {0x00, 0xFF, 0xFF}, Blue: {0x00, 0x00, 0xFF}, Magenta: {0xFF, 0x00, 0xFF}},
	Dark:    {Red: {0xC0, 0x00, 0x00}, Yellow: {0xC0, 0xC0, 0x00}, Green: {0x00, 0xC0, 0x00}, Cyan: {0x00, 0xC0, 0xC0}, Blue: {0x00, 0x00, 0xC0}, Magenta: {0xC0, 0x00, 0xC0}},
}

var (
	whiteRGB = rgb{0xFF, 0xFF, 0xFF}
	blackRGB = rgb{0x00, 0x00, 0x00}
)

// FromRGB maps a bit-exact palette RGB triple to a Color. ok is false
// for any triple not in the twenty-entry reference palette.
func FromRGB(r, g, b uint8) (c Color, ok bool) {
	switch (rgb{r, g, b}) {
	case whiteRGB:
		return WhiteColor, true
	case blackRGB:
		return BlackColor, true
	}
	for l := Light; l <= Dark; l++ {
		for h := Red; h <= Magenta; h++ {
			if palette[l][h] == (rgb{r, g, b}) {
				return MakeChromatic(l, h), true
			}
		}
	}
	return Color{}, false
}

// RGB returns the bit-exact reference RGB triple for c.
func (c Color) RGB() (r, g, b uint8) {
	switch c.Kind {
	case White:
		return whiteRGB.r, whiteRGB.g, whiteRGB.b
	case Black:
		return blackRGB.r, blackRGB.g, blackRGB.b
	default:
		v := palette[c.Lightness][c.Hue]
		return v.r, v.g, v.b
	}
}

// Diff is a color-difference pair (deltaLightness mod 3, deltaHue mod 6),
// defined only between two chromatic colors.
type Diff struct {
	DeltaLightness int
	DeltaHue       int
}

// ErrNotChromatic is returned by Difference when either color is
// White or Black: color difference is undefined against them.
var ErrNotChromatic = fmt.Errorf("color difference undefined for non-chromatic color")

// Difference computes the color difference from src to dst:
// deltaL = dest.lightness - src.lightness mod 3,
// deltaH = dest.hue - src.hue mod 6 — both measured dest-relative-to-src,
// matching the worked example and decode table of spec.md §6 and §8
// (the lightness component of spec.md's prose formula is stated
// source-relative but its own worked example only checks out under
// the dest-relative convention used here, which also matches the
// reference Piet language's definition).
func Difference(src, dst Color) (Diff, error) {
	if src.Kind != Chromatic || dst.Kind != Chromatic {
		return Diff{}, ErrNotChromatic
	}
	dl := (int(dst.Lightness) - int(src.Lightness)) % 3
	if dl < 0 {
		dl += 3
	}
	dh := (int(dst.Hue) - int(src.Hue)) % 6
	if dh < 0 {
		dh += 6
	}
	return Diff{DeltaLightness: dl, DeltaHue: dh}, nil
}
