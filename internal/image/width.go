package image

import (
	piet "github.com/pietlang/pietc/internal/color"
)

// InferCodelWidth computes the codel width per spec.md §4.1: segment
// the whole image into color blocks at omega=1, and for each block
// take the gcd of the block's longest horizontal run with the image
// width and the gcd of its longest vertical run with the image
// height; the candidate omega is the gcd of all such per-block
// values. If the result does not divide both dimensions, fall back to
// 1. Always returns at least 1.
func InferCodelWidth(g *Grid) int {
	visited := make([]bool, g.Height*g.Width)
	candidate := 0

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			idx := row*g.Width + col
			if visited[idx] {
				continue
			}
			c := g.At(row, col)
			maxRun := runLengthsOf(g, visited, row, col, c)
			candidate = gcd(candidate, gcd(maxRun.horizontal, g.Width))
			candidate = gcd(candidate, gcd(maxRun.vertical, g.Height))
		}
	}

	if candidate == 0 {
		return 1
	}
	if g.Width%candidate != 0 || g.Height%candidate != 0 {
		return 1
	}
	return candidate
}

type runs struct {
	horizontal, vertical int
}

// runLengthsOf floods the 4-connected monochrome region starting at
// (row, col), marking visited and returning the longest unbroken
// horizontal and vertical run of that color found anywhere in the
// region (not merely through the start pixel).
func runLengthsOf(g *Grid, visited []bool, row, col int, c piet.Color) runs {
	type pos struct{ row, col int }
	queue := []pos{{row, col}}
	visited[row*g.Width+col] = true

	var best runs
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if h := horizontalRun(g, p.row, p.col, c); h > best.horizontal {
			best.horizontal = h
		}
		if v := verticalRun(g, p.row, p.col, c); v > best.vertical {
			best.vertical = v
		}

		for _, n := range [4]pos{
			{p.row - 1, p.col}, {p.row + 1, p.col},
			{p.row, p.col - 1}, {p.row, p.col + 1},
		} {
			if !g.InBounds(n.row, n.col) {
				continue
			}
			idx := n.row*g.Width + n.col
			if visited[idx] || g.At(n.row, n.col) != c {
				continue
			}
			visited[idx] = true
			queue = append(queue, n)
		}
	}
	return best
}

// horizontalRun returns the length of the unbroken run of color c
// through (row, col) along the row.
func horizontalRun(g *Grid, row, col int, c piet.Color) int {
	start := col
	for start > 0 && g.At(row, start-1) == c {
		start--
	}
	end := col
	for end < g.Width-1 && g.At(row, end+1) == c {
		end++
	}
	return end - start + 1
}

// verticalRun returns the length of the unbroken run of color c
// through (row, col) along the column.
func verticalRun(g *Grid, row, col int, c piet.Color) int {
	start := row
	for start > 0 && g.At(start-1, col) == c {
		start--
	}
	end := row
	for end < g.Height-1 && g.At(end+1, col) == c {
		end++
	}
	return end - start + 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
