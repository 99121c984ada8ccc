/*
   Region segmenter: partitions a decoded image into color blocks.

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

// Package block segments a decoded Piet image into maximal 4-connected
// monochrome color blocks, stepping in codel units (spec.md §3, §4.2).
package block

import (
	"fmt"
	"sort"

	piet "github.com/pietlang/pietc/internal/color"
	"github.com/pietlang/pietc/internal/image"
)

// Block is a maximal nonempty set of codel positions sharing one
// color, connected under 4-adjacency (spec.md §3 "Color Block").
// Pixels are the member grid positions in pixel (not codel) units, one
// per codel covered.
type Block struct {
	Color   piet.Color
	Label   string
	Pixels  []image.Position
	members map[image.Position]bool
}

// Count is the block's size in codels, the value Push places on the
// stack (spec.md §4.5).
func (b *Block) Count() int {
	return len(b.Pixels)
}

// Contains reports whether p is a member of b.
func (b *Block) Contains(p image.Position) bool {
	return b.members[p]
}

// Segmenter computes and caches color blocks over a fixed grid and
// codel width. The cache is keyed by the codel (not pixel) position
// containing the query, mirroring the teacher's emu/cpu.transAddr
// "compute once, cache by key" TLB pattern: the first BFS for any
// codel populates the cache for every codel in the resulting block, so
// later queries into the same block are O(1).
type Segmenter struct {
	grid   *image.Grid
	omega  int
	cache  map[image.Position]*Block
	labels map[string]int
}

// NewSegmenter creates a segmenter over grid with codel width omega.
func NewSegmenter(grid *image.Grid, omega int) *Segmenter {
	return &Segmenter{
		grid:   grid,
		omega:  omega,
		cache:  make(map[image.Position]*Block),
		labels: make(map[string]int),
	}
}

// BlockAt returns the color block containing the codel at (codelRow,
// codelCol), computing it via BFS on first access and caching the
// result for every codel the block covers.
func (s *Segmenter) BlockAt(codelRow, codelCol int) *Block {
	key := image.Position{Row: codelRow, Col: codelCol}
	if b, ok := s.cache[key]; ok {
		return b
	}
	return s.segment(codelRow, codelCol)
}

func (s *Segmenter) segment(startRow, startCol int) *Block {
	startPixelRow, startPixelCol := startRow*s.omega, startCol*s.omega
	c := s.grid.At(startPixelRow, startPixelCol)

	visited := map[image.Position]bool{{Row: startRow, Col: startCol}: true}
	queue := []image.Position{{Row: startRow, Col: startCol}}
	var codels []image.Position

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		codels = append(codels, p)

		for _, n := range neighbors(p) {
			if visited[n] {
				continue
			}
			pixelRow, pixelCol := n.Row*s.omega, n.Col*s.omega
			if !s.grid.InBounds(pixelRow, pixelCol) {
				continue
			}
			if s.grid.At(pixelRow, pixelCol) != c {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}

	sort.Slice(codels, func(i, j int) bool {
		if codels[i].Row != codels[j].Row {
			return codels[i].Row < codels[j].Row
		}
		return codels[i].Col < codels[j].Col
	})

	pixels := make([]image.Position, len(codels))
	members := make(map[image.Position]bool, len(codels))
	for i, cp := range codels {
		pr, pc := cp.Row*s.omega, cp.Col*s.omega
		pixels[i] = image.Position{Row: pr, Col: pc}
		members[pixels[i]] = true
	}

	label := s.labelFor(c, codels[0])
	b := &Block{Color: c, Label: label, Pixels: pixels, members: members}
	for _, cp := range codels {
		s.cache[cp] = b
	}
	return b
}

// labelFor derives a block's canonical label from its color and the
// lexicographically smallest codel position it contains (spec.md §3).
// The block containing (0,0) is always labelled Entry.
func (s *Segmenter) labelFor(c piet.Color, smallest image.Position) string {
	if smallest.Row == 0 && smallest.Col == 0 {
		return "Entry"
	}
	return fmt.Sprintf("%s_%d_%d", c, smallest.Row, smallest.Col)
}

func neighbors(p image.Position) [4]image.Position {
	return [4]image.Position{
		{Row: p.Row - 1, Col: p.Col},
		{Row: p.Row + 1, Col: p.Col},
		{Row: p.Row, Col: p.Col - 1},
		{Row: p.Row, Col: p.Col + 1},
	}
}

// CodelDims returns the grid's dimensions in codel units for the
// segmenter's configured omega.
func (s *Segmenter) CodelDims() (rows, cols int) {
	return s.grid.Height / s.omega, s.grid.Width / s.omega
}

// Omega returns the segmenter's configured codel width.
func (s *Segmenter) Omega() int {
	return s.omega
}
