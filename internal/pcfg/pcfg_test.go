package pcfg

import (
	"testing"

	"github.com/pietlang/pietc/internal/block"
	piet "github.com/pietlang/pietc/internal/color"
	"github.com/pietlang/pietc/internal/image"
)

// TestBuildSingleBlock covers spec.md §8 scenario 2: a single-codel,
// single-color image has exactly one PCFG node and no outgoing
// transitions (every exit attempt immediately leaves the grid).
func TestBuildSingleBlock(t *testing.T) {
	g := image.NewGrid(1, 1)
	g.Set(0, 0, piet.MakeChromatic(piet.Light, piet.Red))

	seg := block.NewSegmenter(g, 1)
	graph, warnings := NewBuilder(g, seg).Build()

	if len(graph.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(graph.Nodes))
	}
	entry, ok := graph.Nodes[graph.Entry]
	if !ok {
		t.Fatalf("entry node %q missing from Nodes", graph.Entry)
	}
	if len(entry.Transitions) != 0 {
		t.Errorf("len(Transitions) = %d, want 0", len(entry.Transitions))
	}
	if warnings != nil {
		t.Errorf("warnings = %v, want nil (a dead end always terminates)", warnings)
	}
}

// TestBuildPushTransition covers spec.md §8 scenario 3: two adjacent
// Light-Red codels followed by one Regular-Red codel. Stepping right
// off the Light-Red block's rightmost codel lands on Regular-Red,
// decoding to a Push of the block's own size (2).
func TestBuildPushTransition(t *testing.T) {
	g := image.NewGrid(1, 3)
	lightRed := piet.MakeChromatic(piet.Light, piet.Red)
	regularRed := piet.MakeChromatic(piet.Regular, piet.Red)
	g.Set(0, 0, lightRed)
	g.Set(0, 1, lightRed)
	g.Set(0, 2, regularRed)

	seg := block.NewSegmenter(g, 1)
	graph, _ := NewBuilder(g, seg).Build()

	entry, ok := graph.Nodes["Entry"]
	if !ok {
		t.Fatalf("Nodes missing Entry; have %v", graph.Nodes)
	}
	if entry.Block.Count() != 2 {
		t.Fatalf("entry block size = %d, want 2 (the Push operand)", entry.Block.Count())
	}

	var found *Transition
	for i := range entry.Transitions {
		tr := &entry.Transitions[i]
		if tr.EntryState.DP == piet.Right && tr.EntryState.CC == piet.CCLeft {
			found = tr
			break
		}
	}
	if found == nil {
		t.Fatalf("no transition for (dp=Right, cc=Left); transitions = %+v", entry.Transitions)
	}
	if !found.HasInstr || found.Instruction != piet.Push {
		t.Errorf("transition = %+v, want Push", found)
	}

	dest, ok := graph.Nodes[found.Destination]
	if !ok {
		t.Fatalf("destination node %q not present in graph", found.Destination)
	}
	if dest.Block.Count() != 1 {
		t.Errorf("destination block size = %d, want 1", dest.Block.Count())
	}
}

// TestBuildReachesAllBlocks is the universal invariant from spec.md §8
// (#2): segmentation partitions every chromatic pixel into exactly one
// reachable block, and the entry node is discovered first.
func TestBuildReachesAllBlocks(t *testing.T) {
	g := image.NewGrid(1, 3)
	lightRed := piet.MakeChromatic(piet.Light, piet.Red)
	regularRed := piet.MakeChromatic(piet.Regular, piet.Red)
	g.Set(0, 0, lightRed)
	g.Set(0, 1, lightRed)
	g.Set(0, 2, regularRed)

	seg := block.NewSegmenter(g, 1)
	graph, _ := NewBuilder(g, seg).Build()

	if graph.Entry != "Entry" {
		t.Errorf("Entry label = %q, want Entry", graph.Entry)
	}
	if len(graph.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(graph.Nodes))
	}

	total := 0
	for _, n := range graph.Nodes {
		total += n.Block.Count()
	}
	if total != 3 {
		t.Errorf("total codels across nodes = %d, want 3", total)
	}
}

// TestBuildEveryTransitionLeavesFromAnExtremum checks invariant #1 from
// spec.md §8: a transition's entry pointer always corresponds to one of
// the source block's eight extrema, i.e. every reported transition
// actually originates at a pixel that is a member of the source block.
func TestBuildEveryTransitionLeavesFromAnExtremum(t *testing.T) {
	g := image.NewGrid(2, 2)
	red := piet.MakeChromatic(piet.Light, piet.Red)
	green := piet.MakeChromatic(piet.Light, piet.Green)
	g.Set(0, 0, red)
	g.Set(0, 1, red)
	g.Set(1, 0, green)
	g.Set(1, 1, green)

	seg := block.NewSegmenter(g, 1)
	bd := NewBuilder(g, seg)
	graph, _ := bd.Build()

	for _, node := range graph.Nodes {
		extrema := bd.extrema(node.Block)
		for _, tr := range node.Transitions {
			p := extrema[tr.EntryState.Index()]
			if !node.Block.Contains(p) {
				t.Errorf("node %q transition %+v: extremum %v not a member of its own block", node.Block.Label, tr, p)
			}
		}
	}
}
