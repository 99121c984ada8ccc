/*
   PCFG builder: the Piet control-flow graph.

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

// Package pcfg builds the Piet Control-Flow Graph: one node per color
// block, one edge per (dp, cc) exit that successfully reaches another
// block, possibly through a white corridor (spec.md §4.3).
package pcfg

import (
	"fmt"

	"github.com/pietlang/pietc/internal/block"
	piet "github.com/pietlang/pietc/internal/color"
	"github.com/pietlang/pietc/internal/image"
)

// Transition is one edge out of a PCFG node (spec.md §3 "PCFG edge").
type Transition struct {
	EntryState  piet.Pointer
	ExitState   piet.Pointer
	Instruction piet.Instruction
	HasInstr    bool
	Destination string // block label
}

// Node is a PCFG node: a color block plus its outgoing transitions, in
// the deterministic order they were discovered (spec.md §3 "PCFG node").
type Node struct {
	Block       *block.Block
	Transitions []Transition
}

// Graph is the complete PCFG: every reachable node, keyed by label,
// plus the label of the entry node.
type Graph struct {
	Nodes map[string]*Node
	Entry string
}

// Builder constructs a Graph from a segmented image.
type Builder struct {
	grid  *image.Grid
	segs  *block.Segmenter
	omega int
}

// NewBuilder creates a builder over grid using seg (already configured
// with the chosen codel width).
func NewBuilder(grid *image.Grid, seg *block.Segmenter) *Builder {
	return &Builder{grid: grid, segs: seg, omega: seg.Omega()}
}

// Build runs the algorithm of spec.md §4.3 starting from the block
// containing (0,0), and returns the resulting graph plus any
// diagnostic warnings (the sufficient non-termination signal).
func (bd *Builder) Build() (*Graph, []string) {
	start := bd.segs.BlockAt(0, 0)

	nodes := map[string]*Node{}
	seen := map[string]bool{start.Label: true}
	queue := []*block.Block{start}

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		node := &Node{Block: b}
		nodes[b.Label] = node

		extrema := bd.extrema(b)
		for _, p := range piet.EightStates {
			landing, ok := bd.stepOne(extrema[p.Index()], p.DP)
			if !ok {
				continue // left the grid or hit Black; handled at runtime by rotation
			}

			switch bd.grid.At(landing.Row, landing.Col).Kind {
			case piet.Chromatic:
				dest := bd.segs.BlockAt(landing.Row/bd.omega, landing.Col/bd.omega)
				diff, err := piet.Difference(b.Color, dest.Color)
				if err != nil {
					panic(fmt.Sprintf("pcfg: chromatic difference failed: %v", err))
				}
				instr, hasInstr := piet.Decode(diff)
				node.Transitions = append(node.Transitions, Transition{
					EntryState: p, ExitState: p, Instruction: instr, HasInstr: hasInstr,
					Destination: dest.Label,
				})
				bd.enqueue(dest, seen, &queue)

			case piet.White:
				exitState, destPos, ok := bd.whiteTrace(landing, p)
				if !ok {
					continue // sealed after eight rotations
				}
				dest := bd.segs.BlockAt(destPos.Row/bd.omega, destPos.Col/bd.omega)
				node.Transitions = append(node.Transitions, Transition{
					EntryState: p, ExitState: exitState, HasInstr: false,
					Destination: dest.Label,
				})
				bd.enqueue(dest, seen, &queue)
			}
		}
	}

	return &Graph{Nodes: nodes, Entry: start.Label}, bd.nonTerminationWarnings(nodes)
}

func (bd *Builder) enqueue(dest *block.Block, seen map[string]bool, queue *[]*block.Block) {
	if !seen[dest.Label] {
		seen[dest.Label] = true
		*queue = append(*queue, dest)
	}
}

// nonTerminationWarnings implements the one-sided check of spec.md
// §4.3: if every node has out-degree >= 1, no terminating path exists.
func (bd *Builder) nonTerminationWarnings(nodes map[string]*Node) []string {
	for _, n := range nodes {
		if len(n.Transitions) == 0 {
			return nil
		}
	}
	return []string{"every PCFG node has at least one outgoing transition: no terminating path exists (this is a sufficient, not necessary, signal)"}
}

// stepOne steps one codel in dp from pos. ok is false if the step
// leaves the grid or lands on Black.
func (bd *Builder) stepOne(pos image.Position, dp piet.DP) (image.Position, bool) {
	dr, dc := dp.Delta()
	next := image.Position{Row: pos.Row + dr*bd.omega, Col: pos.Col + dc*bd.omega}
	if !bd.grid.InBounds(next.Row, next.Col) {
		return image.Position{}, false
	}
	if bd.grid.At(next.Row, next.Col).Kind == piet.Black {
		return image.Position{}, false
	}
	return next, true
}

// whiteTrace walks a white corridor from landing in direction p,
// rotating (dp, cc) together whenever blocked, per spec.md §4.3 step
// 4. ok is false if the corridor seals after eight rotations.
func (bd *Builder) whiteTrace(landing image.Position, p piet.Pointer) (piet.Pointer, image.Position, bool) {
	current := landing
	dp, cc := p.DP, p.CC

	for rotations := 0; ; {
		dr, dc := dp.Delta()
		next := image.Position{Row: current.Row + dr*bd.omega, Col: current.Col + dc*bd.omega}

		blocked := !bd.grid.InBounds(next.Row, next.Col)
		if !blocked && bd.grid.At(next.Row, next.Col).Kind == piet.Black {
			blocked = true
		}
		if blocked {
			rotations++
			if rotations == 8 {
				return piet.Pointer{}, image.Position{}, false
			}
			dp = dp.Rotate(1)
			cc = cc.Toggle(1)
			continue
		}

		if bd.grid.At(next.Row, next.Col).Kind == piet.White {
			current = next
			continue
		}

		return piet.Pointer{DP: dp, CC: cc}, next, true
	}
}

// extrema returns, for each of the eight pointer states (indexed as in
// piet.EightStates), the member pixel furthest in that state's dp
// direction, tied toward its cc side (spec.md §4.3 step 1).
func (bd *Builder) extrema(b *block.Block) [8]image.Position {
	var result [8]image.Position
	for i, p := range piet.EightStates {
		result[i] = extremePixel(b.Pixels, p.DP, p.CC)
	}
	return result
}

func extremePixel(pixels []image.Position, dp piet.DP, cc piet.CC) image.Position {
	primary := primaryKey(dp)
	sr, sc := sideVector(dp, cc)

	best := pixels[0]
	bestPrimary := primary(best)
	bestSide := best.Row*sr + best.Col*sc

	for _, p := range pixels[1:] {
		pv := primary(p)
		switch {
		case pv > bestPrimary:
			best, bestPrimary, bestSide = p, pv, p.Row*sr+p.Col*sc
		case pv == bestPrimary:
			ps := p.Row*sr + p.Col*sc
			if ps > bestSide {
				best, bestSide = p, ps
			}
		}
	}
	return best
}

// primaryKey returns, for dp, a function ranking pixels by how far
// they extend in the dp direction (larger is further).
func primaryKey(dp piet.DP) func(image.Position) int {
	switch dp {
	case piet.Right:
		return func(p image.Position) int { return p.Col }
	case piet.Left:
		return func(p image.Position) int { return -p.Col }
	case piet.Down:
		return func(p image.Position) int { return p.Row }
	default: // Up
		return func(p image.Position) int { return -p.Row }
	}
}

// sideVector returns the unit (drow, dcol) vector pointing toward cc's
// side, perpendicular to dp.
func sideVector(dp piet.DP, cc piet.CC) (dr, dc int) {
	switch dp {
	case piet.Right:
		if cc == piet.CCLeft {
			return -1, 0
		}
		return 1, 0
	case piet.Down:
		if cc == piet.CCLeft {
			return 0, 1
		}
		return 0, -1
	case piet.Left:
		if cc == piet.CCLeft {
			return 1, 0
		}
		return -1, 0
	default: // Up
		if cc == piet.CCLeft {
			return 0, -1
		}
		return 0, 1
	}
}
