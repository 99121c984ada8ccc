package interp

import (
	"strings"
	"testing"

	"github.com/pietlang/pietc/internal/block"
	piet "github.com/pietlang/pietc/internal/color"
	"github.com/pietlang/pietc/internal/image"
	"github.com/pietlang/pietc/internal/pcfg"
)

// twoNodeGraph builds Entry --Push--> Done, where Done has no
// outgoing transitions (so the interpreter completes after one step).
func twoNodeGraph(blockSize int) *pcfg.Graph {
	entryBlock := &block.Block{Color: piet.MakeChromatic(piet.Light, piet.Red), Label: "Entry", Pixels: make([]image.Position, blockSize)}
	doneBlock := &block.Block{Color: piet.MakeChromatic(piet.Regular, piet.Red), Label: "Done", Pixels: make([]image.Position, 1)}

	entry := &pcfg.Node{
		Block: entryBlock,
		Transitions: []pcfg.Transition{
			{
				EntryState:  piet.Pointer{DP: piet.Right, CC: piet.CCLeft},
				ExitState:   piet.Pointer{DP: piet.Right, CC: piet.CCLeft},
				Instruction: piet.Push,
				HasInstr:    true,
				Destination: "Done",
			},
		},
	}
	done := &pcfg.Node{Block: doneBlock}

	return &pcfg.Graph{
		Nodes: map[string]*pcfg.Node{"Entry": entry, "Done": done},
		Entry: "Entry",
	}
}

func TestStepPushesBlockSizeAndCompletes(t *testing.T) {
	g := twoNodeGraph(5)
	ex := New(g, Concrete)

	status := ex.Step()
	if status != Running {
		t.Fatalf("Step() = %v, want Running", status)
	}
	if got := ex.Stack(); len(got) != 1 || got[0] != 5 {
		t.Fatalf("stack = %v, want [5]", got)
	}
	if ex.Block() != "Done" {
		t.Fatalf("block = %q, want Done", ex.Block())
	}

	status = ex.Step()
	if status != Completed {
		t.Fatalf("second Step() = %v, want Completed", status)
	}
}

func TestRunWithUnboundedMaxStepsRunsToCompletion(t *testing.T) {
	g := twoNodeGraph(1)
	ex := New(g, Concrete)
	status := ex.Run(0) // unbounded: runs to Completed
	if status != Completed {
		t.Fatalf("Run(0) = %v, want Completed", status)
	}
}

// loopingGraph builds two nodes that push into each other forever,
// the "every node has out-degree >= 1" non-termination shape.
func loopingGraph() *pcfg.Graph {
	aBlock := &block.Block{Pixels: make([]image.Position, 1)}
	bBlock := &block.Block{Pixels: make([]image.Position, 1)}
	a := &pcfg.Node{Block: aBlock, Transitions: []pcfg.Transition{
		{EntryState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft}, ExitState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft}, Destination: "B"},
	}}
	b := &pcfg.Node{Block: bBlock, Transitions: []pcfg.Transition{
		{EntryState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft}, ExitState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft}, Destination: "A"},
	}}
	return &pcfg.Graph{Nodes: map[string]*pcfg.Node{"A": a, "B": b}, Entry: "A"}
}

func TestRunStopsAtMaxSteps(t *testing.T) {
	g := loopingGraph()
	ex := New(g, Concrete)
	status := ex.Run(10)
	if status != MaxSteps {
		t.Fatalf("Run(10) on a non-terminating graph = %v, want MaxSteps", status)
	}
	if ex.Steps() != 10 {
		t.Fatalf("Steps() = %d, want 10", ex.Steps())
	}
}

// graphWithIntOut builds Entry --Push--> Printer --IntOut--> Done.
func graphWithIntOut() *pcfg.Graph {
	entryBlock := &block.Block{Pixels: make([]image.Position, 7)}
	printerBlock := &block.Block{Pixels: make([]image.Position, 1)}
	doneBlock := &block.Block{Pixels: make([]image.Position, 1)}

	entry := &pcfg.Node{Block: entryBlock, Transitions: []pcfg.Transition{
		{EntryState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft}, ExitState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft},
			Instruction: piet.Push, HasInstr: true, Destination: "Printer"},
	}}
	printer := &pcfg.Node{Block: printerBlock, Transitions: []pcfg.Transition{
		{EntryState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft}, ExitState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft},
			Instruction: piet.IntOut, HasInstr: true, Destination: "Done"},
	}}
	done := &pcfg.Node{Block: doneBlock}

	return &pcfg.Graph{
		Nodes: map[string]*pcfg.Node{"Entry": entry, "Printer": printer, "Done": done},
		Entry: "Entry",
	}
}

func TestIntOutCapturesAndWritesStdout(t *testing.T) {
	g := graphWithIntOut()
	ex := New(g, Concrete)
	var out strings.Builder
	ex.SetStdout(&out)

	status := ex.Run(0)
	if status != Completed {
		t.Fatalf("Run = %v, want Completed", status)
	}
	if out.String() != "7" {
		t.Fatalf("stdout = %q, want %q", out.String(), "7")
	}
	entries := ex.Stdout()
	if len(entries) != 1 || entries[0].Int != 7 {
		t.Fatalf("captured stdout = %+v, want [{Int:7}]", entries)
	}
}

func TestAbstractModeHaltsOnInput(t *testing.T) {
	entryBlock := &block.Block{Pixels: make([]image.Position, 1)}
	readerBlock := &block.Block{Pixels: make([]image.Position, 1)}
	entry := &pcfg.Node{Block: entryBlock, Transitions: []pcfg.Transition{
		{EntryState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft}, ExitState: piet.Pointer{DP: piet.Right, CC: piet.CCLeft},
			Instruction: piet.IntIn, HasInstr: true, Destination: "Reader"},
	}}
	reader := &pcfg.Node{Block: readerBlock}
	g := &pcfg.Graph{Nodes: map[string]*pcfg.Node{"Entry": entry, "Reader": reader}, Entry: "Entry"}

	result := Evaluate(g, 100)
	if result.Outcome != Partial {
		t.Fatalf("Outcome = %v, want Partial", result.Outcome)
	}
	if result.Status != NeedsInput {
		t.Fatalf("Status = %v, want NeedsInput", result.Status)
	}
	if result.NextBlock != "Reader" {
		t.Fatalf("NextBlock = %q, want Reader", result.NextBlock)
	}
}

func TestEvaluateCompleteHasNoNextBlock(t *testing.T) {
	g := twoNodeGraph(3)
	result := Evaluate(g, 100)
	if result.Outcome != Complete {
		t.Fatalf("Outcome = %v, want Complete", result.Outcome)
	}
	if len(result.Stack) != 1 || result.Stack[0] != 3 {
		t.Fatalf("Stack = %v, want [3]", result.Stack)
	}
	if result.NextBlock != "" {
		t.Fatalf("NextBlock = %q, want empty for a Complete result", result.NextBlock)
	}
}
