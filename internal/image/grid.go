/*
   Image grid: the decoded Piet source in codel-independent pixel
   coordinates.

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

// Package image decodes a Piet source image into an immutable,
// codel-independent Grid and infers the codel width. The raster
// decode step (PNG/GIF/BMP) is an external collaborator, contracted
// only by the RGB pixel buffer it produces (spec.md §1).
package image

import (
	"fmt"

	piet "github.com/pietlang/pietc/internal/color"
)

// Position identifies one pixel in the grid, in pixel (not codel) units.
type Position struct {
	Row, Col int
}

// UnknownPolicy controls how a pixel whose RGB triple is not one of
// the twenty reference colors is handled at load time (spec.md §6).
type UnknownPolicy int

const (
	// RejectUnknown fails image load (spec.md §7 fatal-at-load).
	RejectUnknown UnknownPolicy = iota
	// TreatAsWhite maps unknown pixels to White (--uw).
	TreatAsWhite
	// TreatAsBlack maps unknown pixels to Black (--ub).
	TreatAsBlack
)

// Grid is the immutable, row-major decoded source image: a mapping
// from (row, col) to Color, backed by a flat slice for cache locality
// (the same shape the teacher's emu/memory uses for a flat,
// linearly-addressed byte space standing in for a 2D-addressed one).
type Grid struct {
	Height, Width int
	cells         []piet.Color
}

// NewGrid allocates an empty grid of the given pixel dimensions.
func NewGrid(height, width int) *Grid {
	return &Grid{Height: height, Width: width, cells: make([]piet.Color, height*width)}
}

// At returns the color at (row, col). It panics if out of range;
// callers must check InBounds first when the coordinate may have
// walked off the edge of the image (spec.md §4.3 white-trace).
func (g *Grid) At(row, col int) piet.Color {
	return g.cells[row*g.Width+col]
}

// Set stores the color at (row, col).
func (g *Grid) Set(row, col int, c piet.Color) {
	g.cells[row*g.Width+col] = c
}

// InBounds reports whether (row, col) lies within the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Height && col >= 0 && col < g.Width
}

// ErrUnknownColor is returned by decoders when a pixel's RGB triple is
// not one of the twenty reference colors and policy is RejectUnknown.
type ErrUnknownColor struct {
	Row, Col int
	R, G, B  uint8
}

func (e *ErrUnknownColor) Error() string {
	return fmt.Sprintf("unknown pixel color #%02X%02X%02X at row %d, col %d", e.R, e.G, e.B, e.Row, e.Col)
}

// classify resolves a decoded RGB triple to a Color under the given
// unknown-pixel policy.
func classify(r, g, b uint8, row, col int, policy UnknownPolicy) (piet.Color, error) {
	c, ok := piet.FromRGB(r, g, b)
	if ok {
		return c, nil
	}
	switch policy {
	case TreatAsWhite:
		return piet.WhiteColor, nil
	case TreatAsBlack:
		return piet.BlackColor, nil
	default:
		return piet.Color{}, &ErrUnknownColor{Row: row, Col: col, R: r, G: g, B: b}
	}
}
