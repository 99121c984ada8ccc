/*
   Interpreter driver and static evaluator.

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

// Package interp walks the PCFG (spec.md §4.4) and, run in Abstract
// mode, doubles as the static evaluator (§4.6): spec.md §9 mandates
// these be the same machinery, one execute loop serving both the
// free-running interpreter and the bounded partial evaluator, the way
// the teacher's emu/cpu.execute serves both the free-running core and
// the interactive console.
package interp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	piet "github.com/pietlang/pietc/internal/color"
	"github.com/pietlang/pietc/internal/pcfg"
	"github.com/pietlang/pietc/internal/stack"
)

// Mode selects concrete execution (real stdin/stdout) or abstract
// execution (the static evaluator: input halts, output is recorded
// but may be suppressed).
type Mode int

const (
	Concrete Mode = iota
	Abstract
)

// Status is the execution state machine of spec.md §3 "Execution state".
type Status int

const (
	Running Status = iota
	Completed
	MaxSteps
	NeedsInput
)

func (s Status) String() string {
	return [...]string{"Running", "Completed", "MaxSteps", "NeedsInput"}[s]
}

// OutEntry is one captured stdout event: either a character or a
// printed integer (spec.md §3 "captured stdout").
type OutEntry struct {
	IsChar bool
	Char   rune
	Int    int64
}

func (e OutEntry) String() string {
	if e.IsChar {
		return string(e.Char)
	}
	return strconv.FormatInt(e.Int, 10)
}

// Executor walks a PCFG, maintaining pointer state, the operand
// stack, captured stdout, and the step counter. The same type drives
// free-running interpretation, the interactive debugger's
// single-stepping, and the static evaluator's bounded abstract run.
type Executor struct {
	graph   *pcfg.Graph
	mode    Mode
	stk     *stack.Stack
	pointer piet.Pointer
	block   string
	stdout  []OutEntry
	steps   int

	stdin  *bufio.Reader
	real   io.Writer // receives real CharOut/IntOut bytes; nil suppresses real output
	onWarn func(format string, args ...any)
}

// New creates an Executor positioned at graph's entry node.
func New(graph *pcfg.Graph, mode Mode) *Executor {
	return &Executor{
		graph: graph,
		mode:  mode,
		stk:   stack.New(),
		block: graph.Entry,
	}
}

// SetStdin installs the stream CharIn/IntIn read from (concrete mode
// only; abstract mode never consumes it).
func (e *Executor) SetStdin(r io.Reader) { e.stdin = bufio.NewReader(r) }

// SetStdout installs the stream CharOut/IntOut write to in addition
// to being captured in Stdout(). Pass nil to capture without any real
// output (used by the static evaluator to suppress printing).
func (e *Executor) SetStdout(w io.Writer) { e.real = w }

// SetWarnFunc installs a callback invoked on every recoverable
// primitive-op failure (spec.md §7 "verbosity >= 2").
func (e *Executor) SetWarnFunc(f func(format string, args ...any)) { e.onWarn = f }

// Stack returns the current stack snapshot, bottom first.
func (e *Executor) Stack() []int64 { return e.stk.Snapshot() }

// Pointer returns the current (dp, cc) pair.
func (e *Executor) Pointer() piet.Pointer { return e.pointer }

// Block returns the label of the current PCFG node.
func (e *Executor) Block() string { return e.block }

// Stdout returns the captured stdout sequence so far.
func (e *Executor) Stdout() []OutEntry { return e.stdout }

// Steps returns the number of transitions taken so far.
func (e *Executor) Steps() int { return e.steps }

func (e *Executor) warn(format string, args ...any) {
	if e.onWarn != nil {
		e.onWarn(format, args...)
	}
}

// Step executes a single interpreter step (spec.md §4.4 steps 1-4),
// returning the status after the step. Once Completed is returned,
// calling Step again is a no-op that returns Completed. The step bound
// (MaxSteps) is enforced by Run, not by Step.
func (e *Executor) Step() Status {
	node, ok := e.graph.Nodes[e.block]
	if !ok || len(node.Transitions) == 0 {
		return Completed
	}

	tr := e.selectTransition(node)
	srcCount := node.Block.Count()

	e.pointer = tr.ExitState
	e.block = tr.Destination

	if tr.HasInstr {
		if status, halted := e.apply(tr.Instruction, srcCount); halted {
			return status
		}
	}

	e.steps++
	return Running
}

// selectTransition implements spec.md §4.4 step 2: choose the
// transition minimizing the rotation distance from the current
// pointer to its entry_state, breaking ties by the smaller rotation
// distance between entry_state and exit_state.
func (e *Executor) selectTransition(node *pcfg.Node) pcfg.Transition {
	best := node.Transitions[0]
	bestEntryDist := piet.RotationDistance(e.pointer, best.EntryState)
	bestInternalDist := piet.RotationDistance(best.EntryState, best.ExitState)

	for _, tr := range node.Transitions[1:] {
		entryDist := piet.RotationDistance(e.pointer, tr.EntryState)
		internalDist := piet.RotationDistance(tr.EntryState, tr.ExitState)
		switch {
		case entryDist < bestEntryDist:
			best, bestEntryDist, bestInternalDist = tr, entryDist, internalDist
		case entryDist == bestEntryDist && internalDist < bestInternalDist:
			best, bestEntryDist, bestInternalDist = tr, entryDist, internalDist
		}
	}
	return best
}

// apply performs instr on the stack (spec.md §4.5). halted is true
// when the op requires input in abstract mode and execution must stop
// with NeedsInput.
func (e *Executor) apply(instr piet.Instruction, srcBlockCount int) (status Status, halted bool) {
	switch instr {
	case piet.Push:
		e.stk.Push(srcBlockCount)
	case piet.Pop:
		e.warnIf(e.stk.Pop(), "pop")
	case piet.Add:
		e.warnIf(e.stk.Add(), "add")
	case piet.Sub:
		e.warnIf(e.stk.Sub(), "sub")
	case piet.Mul:
		e.warnIf(e.stk.Mul(), "mul")
	case piet.Div:
		e.warnIf(e.stk.Div(), "div")
	case piet.Mod:
		e.warnIf(e.stk.Mod(), "mod")
	case piet.Not:
		e.warnIf(e.stk.Not(), "not")
	case piet.Gt:
		e.warnIf(e.stk.Gt(), "gt")
	case piet.Ptr:
		n, warned := e.stk.Ptr()
		if warned {
			e.warn("ptr: stack underflow")
		} else {
			e.pointer = e.pointer.Rotate(int(n))
		}
	case piet.Swi:
		n, warned := e.stk.Swi()
		if warned {
			e.warn("swi: stack underflow")
		} else {
			e.pointer = e.pointer.Toggle(int(n))
		}
	case piet.Dup:
		e.warnIf(e.stk.Dup(), "dup")
	case piet.Roll:
		e.warnIf(e.stk.Roll(), "roll")
	case piet.CharIn:
		if e.mode == Abstract {
			return NeedsInput, true
		}
		v, err := e.readChar()
		if err != nil {
			e.warn("charin: %v", err)
		} else {
			e.stk.PushValue(int64(v))
		}
	case piet.IntIn:
		if e.mode == Abstract {
			return NeedsInput, true
		}
		v, err := e.readInt()
		if err != nil {
			e.warn("intin: %v", err)
		} else {
			e.stk.PushValue(v)
		}
	case piet.CharOut:
		v, ok := e.peekTop()
		if !ok {
			e.warn("charout: stack underflow")
			break
		}
		e.stk.Pop()
		e.stdout = append(e.stdout, OutEntry{IsChar: true, Char: rune(v)})
		if e.real != nil {
			fmt.Fprint(e.real, string(rune(v)))
		}
	case piet.IntOut:
		v, ok := e.peekTop()
		if !ok {
			e.warn("intout: stack underflow")
			break
		}
		e.stk.Pop()
		e.stdout = append(e.stdout, OutEntry{Int: v})
		if e.real != nil {
			fmt.Fprintf(e.real, "%d", v)
		}
	}
	return Running, false
}

func (e *Executor) warnIf(warned bool, op string) {
	if warned {
		e.warn("%s: stack precondition not met", op)
	}
}

func (e *Executor) peekTop() (int64, bool) {
	snap := e.stk.Snapshot()
	if len(snap) == 0 {
		return 0, false
	}
	return snap[len(snap)-1], true
}

func (e *Executor) readChar() (rune, error) {
	r, _, err := e.stdin.ReadRune()
	return r, err
}

func (e *Executor) readInt() (int64, error) {
	line, err := e.stdin.ReadString('\n')
	if err != nil && line == "" {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(line), 10, 64)
}

// Run drives Step to completion or until maxSteps transitions have
// been taken, returning the final status.
func (e *Executor) Run(maxSteps int) Status {
	for {
		if maxSteps > 0 && e.steps >= maxSteps {
			return MaxSteps
		}
		status := e.Step()
		if status != Running {
			return status
		}
	}
}

// Outcome is the result kind of the static evaluator (spec.md §4.6).
type Outcome int

const (
	Complete Outcome = iota
	Partial
)

// EvalResult is the static evaluator's output.
type EvalResult struct {
	Outcome   Outcome
	Stdout    []OutEntry
	Stack     []int64
	Pointer   piet.Pointer
	NextBlock string // only meaningful when Outcome == Partial
	Status    Status
}

// Evaluate runs graph in abstract mode bounded by maxSteps and
// returns a Complete or Partial result (spec.md §4.6).
func Evaluate(graph *pcfg.Graph, maxSteps int) EvalResult {
	ex := New(graph, Abstract)
	status := ex.Run(maxSteps)

	if status == Completed {
		return EvalResult{
			Outcome: Complete,
			Stdout:  ex.Stdout(),
			Stack:   ex.Stack(),
			Pointer: ex.Pointer(),
			Status:  status,
		}
	}
	return EvalResult{
		Outcome:   Partial,
		Stdout:    ex.Stdout(),
		Stack:     ex.Stack(),
		Pointer:   ex.Pointer(),
		NextBlock: ex.Block(),
		Status:    status,
	}
}
