/*
   Code generator: PCFG to textual LLVM-style IR.

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

// Package codegen lowers a PCFG (plus an optional partial-evaluation
// residual) into textual LLVM-style IR (spec.md §4.7). There is no
// LLVM Go binding anywhere in the retrieval pack, so emission follows
// the teacher's emu/assemble approach of building the output text
// directly with strings.Builder, templated per repeated shape with
// text/template.
package codegen

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	piet "github.com/pietlang/pietc/internal/color"
	"github.com/pietlang/pietc/internal/interp"
	"github.com/pietlang/pietc/internal/pcfg"
)

// OptLevel mirrors the four LLVM optimization pipelines selectable
// from the CLI's --o1/--o2/--o3 flags (spec.md §4.7 "platform optimization pass
// pipeline at level None/Less/Default/Aggressive").
type OptLevel int

const (
	OptNone OptLevel = iota
	OptLess
	OptDefault
	OptAggressive
)

func (o OptLevel) String() string {
	return [...]string{"None", "Less", "Default", "Aggressive"}[o]
}

// DefaultStackCells is the default operand-stack capacity (spec.md
// §4.7 "size configurable; default >= 2^20").
const DefaultStackCells = 1 << 20

// Generator lowers one PCFG into IR text.
type Generator struct {
	Graph      *pcfg.Graph
	StackCells int
	Opt        OptLevel
	// Bootstrap, if non-nil, is a static-evaluator Partial/Complete
	// result the entry function replays instead of running the PCFG
	// from scratch (spec.md §4.7 part 5).
	Bootstrap *interp.EvalResult
}

// New creates a Generator over graph with the default stack size.
func New(graph *pcfg.Graph, opt OptLevel) *Generator {
	return &Generator{Graph: graph, StackCells: DefaultStackCells, Opt: opt}
}

// Emit lowers the generator's graph into a complete textual IR module.
func (g *Generator) Emit() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; pietc generated module, opt=%s\n\n", g.Opt)
	g.emitGlobals(&b)
	g.emitRuntimePrimitives(&b)
	g.emitDispatch(&b)
	g.emitEntry(&b)
	return b.String()
}

// emitGlobals emits module globals: the operand stack, its index
// counter, pointer state, the retry counter, format strings, and host
// runtime declarations (spec.md §4.7 part 1).
func (g *Generator) emitGlobals(b *strings.Builder) {
	tmpl := template.Must(template.New("globals").Parse(globalsTemplate))
	_ = tmpl.Execute(b, map[string]any{"StackCells": g.StackCells})
}

const globalsTemplate = `@stack = global [{{.StackCells}} x i64] zeroinitializer
@stack_top = global i64 0
@dp = global i8 0
@cc = global i8 0
@retry = global i8 0
@fmt.int = private constant [4 x i8] c"%ld\00"
@fmt.char = private constant [3 x i8] c"%c\00"
@fmt.overflow = private constant [22 x i8] c"piet: stack overflow\0A\00"

declare i32 @printf(i8*, ...)
declare i32 @scanf(i8*, ...)
declare void @exit(i32)
declare i8* @malloc(i64)
declare i8* @fdopen(i32, i8*)
declare i32 @setvbuf(i8*, i8*, i32, i64)

`

// stackArrayType returns the declared type of @stack, needed to GEP
// into it since LLVM getelementptr requires the pointee's static type.
func (g *Generator) stackArrayType() string {
	return fmt.Sprintf("[%d x i64]", g.StackCells)
}

// gepStack emits a getelementptr computing the address of @stack[%idxReg]
// into a new register %destReg.
func gepStack(b *strings.Builder, destReg, idxReg, arrType string) {
	fmt.Fprintf(b, "  %%%s = getelementptr inbounds %s, %s* @stack, i64 0, i64 %%%s\n", destReg, arrType, arrType, idxReg)
}

// allInstructions lists the seventeen primitive operations (spec.md §4.5).
var allInstructions = [...]piet.Instruction{
	piet.Push, piet.Pop, piet.Add, piet.Sub, piet.Mul, piet.Div, piet.Mod,
	piet.Not, piet.Gt, piet.Ptr, piet.Swi, piet.Dup, piet.Roll,
	piet.CharIn, piet.IntIn, piet.CharOut, piet.IntOut,
}

// stackNeeds returns the minimum stack depth instr requires already on
// the stack before it runs (not counting any value it itself pushes).
func stackNeeds(instr piet.Instruction) int {
	switch instr {
	case piet.Push, piet.CharIn, piet.IntIn:
		return 0
	case piet.Pop, piet.Not, piet.Ptr, piet.Swi, piet.Dup, piet.CharOut, piet.IntOut:
		return 1
	default:
		return 2
	}
}

// growsStack reports whether instr can push the stack past capacity
// (the only ops that leave it with a net gain of one cell).
func growsStack(instr piet.Instruction) bool {
	switch instr {
	case piet.Push, piet.Dup, piet.CharIn, piet.IntIn:
		return true
	default:
		return false
	}
}

// emitRuntimePrimitives emits one IR function per §4.5 operation, each
// performing that operation's concrete effect on @stack/@stack_top (and
// @dp/@cc for Ptr/Swi), guarded by the bounds check stackNeeds/growsStack
// describe (spec.md §4.7 part 2).
func (g *Generator) emitRuntimePrimitives(b *strings.Builder) {
	arrType := g.stackArrayType()

	fmt.Fprintf(b, "define void @terminate() {\n")
	fmt.Fprintf(b, "  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([22 x i8], [22 x i8]* @fmt.overflow, i64 0, i64 0))\n")
	fmt.Fprintf(b, "  call void @exit(i32 1)\n")
	fmt.Fprintf(b, "  ret void\n}\n\n")

	for _, instr := range allInstructions {
		g.emitRuntimePrimitive(b, instr, arrType)
	}
}

func (g *Generator) emitRuntimePrimitive(b *strings.Builder, instr piet.Instruction, arrType string) {
	if instr == piet.Push {
		fmt.Fprintf(b, "define void @op_push(i64 %%count) {\n")
	} else {
		fmt.Fprintf(b, "define void @op_%s() {\n", instr)
	}
	fmt.Fprintf(b, "entry:\n")
	fmt.Fprintf(b, "  %%top = load i64, i64* @stack_top\n")
	g.emitGuard(b, instr)
	g.emitPrimitiveBody(b, instr, arrType)
	fmt.Fprintf(b, "}\n\n")
}

// emitGuard emits the underflow check every op needs (stackNeeds),
// which returns without touching the stack, as internal/stack does, and,
// for ops that push a new cell, the overflow check against stack
// capacity — Push included, so pushing past capacity always terminates
// instead of silently corrupting adjacent globals.
func (g *Generator) emitGuard(b *strings.Builder, instr piet.Instruction) {
	fmt.Fprintf(b, "  %%under = icmp slt i64 %%top, %d\n", stackNeeds(instr))
	if growsStack(instr) {
		fmt.Fprintf(b, "  br i1 %%under, label %%underflow, label %%capcheck\n")
		fmt.Fprintf(b, "capcheck:\n")
		fmt.Fprintf(b, "  %%over = icmp sge i64 %%top, %d\n", g.StackCells)
		fmt.Fprintf(b, "  br i1 %%over, label %%overflow, label %%body\n")
		fmt.Fprintf(b, "overflow:\n")
		fmt.Fprintf(b, "  call void @terminate()\n")
		fmt.Fprintf(b, "  ret void\n")
	} else {
		fmt.Fprintf(b, "  br i1 %%under, label %%underflow, label %%body\n")
	}
	fmt.Fprintf(b, "underflow:\n")
	fmt.Fprintf(b, "  ret void\n")
	fmt.Fprintf(b, "body:\n")
}

// emitPrimitiveBody emits instr's concrete effect, mirroring
// internal/stack's semantics exactly: wrapping Add/Sub/Mul, truncating
// Div, Euclidean Mod, Euclidean dp/cc rotation for Ptr/Swi, and
// window-rotation for Roll (spec.md §4.5, §9 Open Question decisions).
func (g *Generator) emitPrimitiveBody(b *strings.Builder, instr piet.Instruction, arrType string) {
	switch instr {
	case piet.Push:
		gepStack(b, "slot", "top", arrType)
		fmt.Fprintf(b, "  store i64 %%count, i64* %%slot\n")
		fmt.Fprintf(b, "  %%top1 = add i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		fmt.Fprintf(b, "  ret void\n")

	case piet.Pop:
		fmt.Fprintf(b, "  %%top1 = sub i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		fmt.Fprintf(b, "  ret void\n")

	case piet.Add, piet.Sub, piet.Mul, piet.Gt:
		fmt.Fprintf(b, "  %%idxa = sub i64 %%top, 1\n")
		fmt.Fprintf(b, "  %%idxb = sub i64 %%top, 2\n")
		gepStack(b, "ptra", "idxa", arrType)
		gepStack(b, "ptrb", "idxb", arrType)
		fmt.Fprintf(b, "  %%a = load i64, i64* %%ptra\n")
		fmt.Fprintf(b, "  %%b = load i64, i64* %%ptrb\n")
		switch instr {
		case piet.Add:
			fmt.Fprintf(b, "  %%result = add i64 %%b, %%a\n")
		case piet.Sub:
			fmt.Fprintf(b, "  %%result = sub i64 %%b, %%a\n")
		case piet.Mul:
			fmt.Fprintf(b, "  %%result = mul i64 %%b, %%a\n")
		case piet.Gt:
			fmt.Fprintf(b, "  %%cmp = icmp sgt i64 %%b, %%a\n")
			fmt.Fprintf(b, "  %%result = zext i1 %%cmp to i64\n")
		}
		fmt.Fprintf(b, "  store i64 %%result, i64* %%ptrb\n")
		fmt.Fprintf(b, "  %%top1 = sub i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		fmt.Fprintf(b, "  ret void\n")

	case piet.Div, piet.Mod:
		fmt.Fprintf(b, "  %%idxa = sub i64 %%top, 1\n")
		fmt.Fprintf(b, "  %%idxb = sub i64 %%top, 2\n")
		gepStack(b, "ptra", "idxa", arrType)
		gepStack(b, "ptrb", "idxb", arrType)
		fmt.Fprintf(b, "  %%a = load i64, i64* %%ptra\n")
		fmt.Fprintf(b, "  %%b = load i64, i64* %%ptrb\n")
		fmt.Fprintf(b, "  %%iszero = icmp eq i64 %%a, 0\n")
		fmt.Fprintf(b, "  br i1 %%iszero, label %%noop, label %%compute\n")
		fmt.Fprintf(b, "noop:\n")
		fmt.Fprintf(b, "  ret void\n")
		fmt.Fprintf(b, "compute:\n")
		if instr == piet.Div {
			fmt.Fprintf(b, "  %%result = sdiv i64 %%b, %%a\n")
		} else {
			fmt.Fprintf(b, "  %%rem = srem i64 %%b, %%a\n")
			fmt.Fprintf(b, "  %%remneg = icmp slt i64 %%rem, 0\n")
			fmt.Fprintf(b, "  %%aneg = icmp slt i64 %%a, 0\n")
			fmt.Fprintf(b, "  %%anegated = sub i64 0, %%a\n")
			fmt.Fprintf(b, "  %%aabs = select i1 %%aneg, i64 %%anegated, i64 %%a\n")
			fmt.Fprintf(b, "  %%remadj = add i64 %%rem, %%aabs\n")
			fmt.Fprintf(b, "  %%result = select i1 %%remneg, i64 %%remadj, i64 %%rem\n")
		}
		fmt.Fprintf(b, "  store i64 %%result, i64* %%ptrb\n")
		fmt.Fprintf(b, "  %%top1 = sub i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		fmt.Fprintf(b, "  ret void\n")

	case piet.Not:
		fmt.Fprintf(b, "  %%idx = sub i64 %%top, 1\n")
		gepStack(b, "ptr", "idx", arrType)
		fmt.Fprintf(b, "  %%v = load i64, i64* %%ptr\n")
		fmt.Fprintf(b, "  %%iszero = icmp eq i64 %%v, 0\n")
		fmt.Fprintf(b, "  %%result = select i1 %%iszero, i64 1, i64 0\n")
		fmt.Fprintf(b, "  store i64 %%result, i64* %%ptr\n")
		fmt.Fprintf(b, "  ret void\n")

	case piet.Ptr, piet.Swi:
		modulus := 4
		global := "@dp"
		if instr == piet.Swi {
			modulus = 2
			global = "@cc"
		}
		fmt.Fprintf(b, "  %%idx = sub i64 %%top, 1\n")
		gepStack(b, "ptr", "idx", arrType)
		fmt.Fprintf(b, "  %%n = load i64, i64* %%ptr\n")
		fmt.Fprintf(b, "  %%top1 = sub i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		fmt.Fprintf(b, "  %%cur = load i8, i8* %s\n", global)
		fmt.Fprintf(b, "  %%cur64 = sext i8 %%cur to i64\n")
		fmt.Fprintf(b, "  %%sum = add i64 %%cur64, %%n\n")
		fmt.Fprintf(b, "  %%rem = srem i64 %%sum, %d\n", modulus)
		fmt.Fprintf(b, "  %%remneg = icmp slt i64 %%rem, 0\n")
		fmt.Fprintf(b, "  %%remadj = add i64 %%rem, %d\n", modulus)
		fmt.Fprintf(b, "  %%result = select i1 %%remneg, i64 %%remadj, i64 %%rem\n")
		fmt.Fprintf(b, "  %%result8 = trunc i64 %%result to i8\n")
		fmt.Fprintf(b, "  store i8 %%result8, i8* %s\n", global)
		fmt.Fprintf(b, "  ret void\n")

	case piet.Dup:
		fmt.Fprintf(b, "  %%idx = sub i64 %%top, 1\n")
		gepStack(b, "src", "idx", arrType)
		fmt.Fprintf(b, "  %%v = load i64, i64* %%src\n")
		gepStack(b, "slot", "top", arrType)
		fmt.Fprintf(b, "  store i64 %%v, i64* %%slot\n")
		fmt.Fprintf(b, "  %%top1 = add i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		fmt.Fprintf(b, "  ret void\n")

	case piet.Roll:
		g.emitRollBody(b, arrType)

	case piet.CharIn, piet.IntIn:
		if instr == piet.CharIn {
			fmt.Fprintf(b, "  %%cbuf = alloca i8\n")
			fmt.Fprintf(b, "  %%r = call i32 (i8*, ...) @scanf(i8* getelementptr inbounds ([3 x i8], [3 x i8]* @fmt.char, i64 0, i64 0), i8* %%cbuf)\n")
			fmt.Fprintf(b, "  %%c = load i8, i8* %%cbuf\n")
			fmt.Fprintf(b, "  %%v = sext i8 %%c to i64\n")
		} else {
			fmt.Fprintf(b, "  %%ibuf = alloca i64\n")
			fmt.Fprintf(b, "  %%r = call i32 (i8*, ...) @scanf(i8* getelementptr inbounds ([4 x i8], [4 x i8]* @fmt.int, i64 0, i64 0), i64* %%ibuf)\n")
			fmt.Fprintf(b, "  %%v = load i64, i64* %%ibuf\n")
		}
		gepStack(b, "slot", "top", arrType)
		fmt.Fprintf(b, "  store i64 %%v, i64* %%slot\n")
		fmt.Fprintf(b, "  %%top1 = add i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		fmt.Fprintf(b, "  ret void\n")

	case piet.CharOut, piet.IntOut:
		fmt.Fprintf(b, "  %%idx = sub i64 %%top, 1\n")
		gepStack(b, "ptr", "idx", arrType)
		fmt.Fprintf(b, "  %%v = load i64, i64* %%ptr\n")
		fmt.Fprintf(b, "  %%top1 = sub i64 %%top, 1\n")
		fmt.Fprintf(b, "  store i64 %%top1, i64* @stack_top\n")
		if instr == piet.CharOut {
			fmt.Fprintf(b, "  %%c = trunc i64 %%v to i8\n")
			fmt.Fprintf(b, "  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([3 x i8], [3 x i8]* @fmt.char, i64 0, i64 0), i8 %%c)\n")
		} else {
			fmt.Fprintf(b, "  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([4 x i8], [4 x i8]* @fmt.int, i64 0, i64 0), i64 %%v)\n")
		}
		fmt.Fprintf(b, "  ret void\n")
	}
}

// emitRollBody implements Roll: pop a (shift) then n (depth), rotate the
// n cells below them by euclideanMod(a, n) steps, no-op when n is out of
// range — exactly internal/stack.Roll, restated as a copy-to-buffer then
// write-back loop since IR has no slice append.
func (g *Generator) emitRollBody(b *strings.Builder, arrType string) {
	fmt.Fprintf(b, "  %%idxa = sub i64 %%top, 1\n")
	fmt.Fprintf(b, "  %%idxn = sub i64 %%top, 2\n")
	gepStack(b, "ptra", "idxa", arrType)
	gepStack(b, "ptrn", "idxn", arrType)
	fmt.Fprintf(b, "  %%a = load i64, i64* %%ptra\n")
	fmt.Fprintf(b, "  %%n = load i64, i64* %%ptrn\n")
	fmt.Fprintf(b, "  %%top2 = sub i64 %%top, 2\n")
	fmt.Fprintf(b, "  %%nneg = icmp slt i64 %%n, 0\n")
	fmt.Fprintf(b, "  %%ntoobig = icmp sgt i64 %%n, %%top2\n")
	fmt.Fprintf(b, "  %%badn = or i1 %%nneg, %%ntoobig\n")
	fmt.Fprintf(b, "  br i1 %%badn, label %%noop, label %%ok\n")
	fmt.Fprintf(b, "noop:\n")
	fmt.Fprintf(b, "  ret void\n")
	fmt.Fprintf(b, "ok:\n")
	fmt.Fprintf(b, "  store i64 %%top2, i64* @stack_top\n")
	fmt.Fprintf(b, "  %%toosmall = icmp slt i64 %%n, 2\n")
	fmt.Fprintf(b, "  br i1 %%toosmall, label %%done, label %%setup\n")
	fmt.Fprintf(b, "setup:\n")
	fmt.Fprintf(b, "  %%start = sub i64 %%top2, %%n\n")
	fmt.Fprintf(b, "  %%buf = alloca i64, i64 %%n\n")
	fmt.Fprintf(b, "  br label %%copy\n")
	fmt.Fprintf(b, "copy:\n")
	fmt.Fprintf(b, "  %%ci = phi i64 [0, %%setup], [%%cinext, %%copy]\n")
	fmt.Fprintf(b, "  %%csrcidx = add i64 %%start, %%ci\n")
	gepStack(b, "csrc", "csrcidx", arrType)
	fmt.Fprintf(b, "  %%cv = load i64, i64* %%csrc\n")
	fmt.Fprintf(b, "  %%cdst = getelementptr inbounds i64, i64* %%buf, i64 %%ci\n")
	fmt.Fprintf(b, "  store i64 %%cv, i64* %%cdst\n")
	fmt.Fprintf(b, "  %%cinext = add i64 %%ci, 1\n")
	fmt.Fprintf(b, "  %%cdone = icmp eq i64 %%cinext, %%n\n")
	fmt.Fprintf(b, "  br i1 %%cdone, label %%shiftcalc, label %%copy\n")
	fmt.Fprintf(b, "shiftcalc:\n")
	fmt.Fprintf(b, "  %%srem = srem i64 %%a, %%n\n")
	fmt.Fprintf(b, "  %%sremneg = icmp slt i64 %%srem, 0\n")
	fmt.Fprintf(b, "  %%sremadj = add i64 %%srem, %%n\n")
	fmt.Fprintf(b, "  %%shift = select i1 %%sremneg, i64 %%sremadj, i64 %%srem\n")
	fmt.Fprintf(b, "  br label %%write\n")
	fmt.Fprintf(b, "write:\n")
	fmt.Fprintf(b, "  %%wj = phi i64 [0, %%shiftcalc], [%%wjnext, %%write]\n")
	fmt.Fprintf(b, "  %%wsrc = getelementptr inbounds i64, i64* %%buf, i64 %%wj\n")
	fmt.Fprintf(b, "  %%wv = load i64, i64* %%wsrc\n")
	fmt.Fprintf(b, "  %%wshifted = add i64 %%wj, %%shift\n")
	fmt.Fprintf(b, "  %%wmod = srem i64 %%wshifted, %%n\n")
	fmt.Fprintf(b, "  %%wdstidx = add i64 %%start, %%wmod\n")
	gepStack(b, "wdst", "wdstidx", arrType)
	fmt.Fprintf(b, "  store i64 %%wv, i64* %%wdst\n")
	fmt.Fprintf(b, "  %%wjnext = add i64 %%wj, 1\n")
	fmt.Fprintf(b, "  %%wdone = icmp eq i64 %%wjnext, %%n\n")
	fmt.Fprintf(b, "  br i1 %%wdone, label %%done, label %%write\n")
	fmt.Fprintf(b, "done:\n")
	fmt.Fprintf(b, "  ret void\n")
}

// emitDispatch emits one function per PCFG node containing a chained
// conditional per outgoing transition and a final rotate_pointers block
// that calls that node's retry routine (spec.md §4.7 part 3-4).
func (g *Generator) emitDispatch(b *strings.Builder) {
	labels := make([]string, 0, len(g.Graph.Nodes))
	for label := range g.Graph.Nodes {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		node := g.Graph.Nodes[label]
		fmt.Fprintf(b, "define void @block_%s() {\n", mangled(label))
		fmt.Fprintf(b, "entry:\n")
		fmt.Fprintf(b, "  %%dp = load i8, i8* @dp\n")
		fmt.Fprintf(b, "  %%cc = load i8, i8* @cc\n")

		for i, tr := range node.Transitions {
			fmt.Fprintf(b, "  ; attempt %d: dp=%s cc=%s\n", i, tr.EntryState.DP, tr.EntryState.CC)
			fmt.Fprintf(b, "  %%dpeq%d = icmp eq i8 %%dp, %d\n", i, int(tr.EntryState.DP))
			fmt.Fprintf(b, "  %%cceq%d = icmp eq i8 %%cc, %d\n", i, int(tr.EntryState.CC))
			fmt.Fprintf(b, "  %%match%d = and i1 %%dpeq%d, %%cceq%d\n", i, i, i)
			fmt.Fprintf(b, "  br i1 %%match%d, label %%take%d, label %%next%d\n", i, i, i)
			fmt.Fprintf(b, "take%d:\n", i)
			if tr.HasInstr {
				if tr.Instruction == piet.Push {
					fmt.Fprintf(b, "  call void @op_push(i64 %d)\n", node.Block.Count())
				} else {
					fmt.Fprintf(b, "  call void @op_%s()\n", tr.Instruction)
				}
			}
			fmt.Fprintf(b, "  store i8 %d, i8* @dp\n", int(tr.ExitState.DP))
			fmt.Fprintf(b, "  store i8 %d, i8* @cc\n", int(tr.ExitState.CC))
			fmt.Fprintf(b, "  store i8 0, i8* @retry\n")
			fmt.Fprintf(b, "  call void @block_%s()\n", mangled(tr.Destination))
			fmt.Fprintf(b, "  ret void\n")
			fmt.Fprintf(b, "next%d:\n", i)
		}
		fmt.Fprintf(b, "  br label %%rotate_pointers\n")
		fmt.Fprintf(b, "rotate_pointers:\n")
		fmt.Fprintf(b, "  call void @retry_%s()\n", mangled(label))
		fmt.Fprintf(b, "  ret void\n")
		fmt.Fprintf(b, "}\n\n")

		g.emitRetryRoutine(b, label, len(node.Transitions))
	}

	fmt.Fprintf(b, "define void @ret() {\n  ret void\n}\n\n")
}

// emitRetryRoutine emits the retry routine for one node: it alternates
// toggling cc (r even) and rotating dp (r odd), advances r, and loops
// back to the node's dispatch head; after eight retries with no match
// (r == 8) it branches to the module-level ret block (spec.md §4.7
// part 4).
func (g *Generator) emitRetryRoutine(b *strings.Builder, label string, transitionCount int) {
	fmt.Fprintf(b, "define void @retry_%s() {\n", mangled(label))
	fmt.Fprintf(b, "entry:\n")
	fmt.Fprintf(b, "  %%r = load i8, i8* @retry\n")
	fmt.Fprintf(b, "  %%sealed = icmp eq i8 %%r, 8\n")
	fmt.Fprintf(b, "  br i1 %%sealed, label %%seal, label %%rotate\n")
	fmt.Fprintf(b, "seal:\n")
	fmt.Fprintf(b, "  call void @ret()\n")
	fmt.Fprintf(b, "  ret void\n")
	fmt.Fprintf(b, "rotate:\n")
	fmt.Fprintf(b, "  %%odd = and i8 %%r, 1\n")
	fmt.Fprintf(b, "  %%isodd = icmp ne i8 %%odd, 0\n")
	fmt.Fprintf(b, "  br i1 %%isodd, label %%rotate_dp, label %%toggle_cc\n")
	fmt.Fprintf(b, "rotate_dp:\n")
	fmt.Fprintf(b, "  %%dp = load i8, i8* @dp\n")
	fmt.Fprintf(b, "  %%dpinc = add i8 %%dp, 1\n")
	fmt.Fprintf(b, "  %%dp2 = urem i8 %%dpinc, 4\n")
	fmt.Fprintf(b, "  store i8 %%dp2, i8* @dp\n")
	fmt.Fprintf(b, "  br label %%advance\n")
	fmt.Fprintf(b, "toggle_cc:\n")
	fmt.Fprintf(b, "  %%cc = load i8, i8* @cc\n")
	fmt.Fprintf(b, "  %%ccinc = add i8 %%cc, 1\n")
	fmt.Fprintf(b, "  %%cc2 = urem i8 %%ccinc, 2\n")
	fmt.Fprintf(b, "  store i8 %%cc2, i8* @cc\n")
	fmt.Fprintf(b, "  br label %%advance\n")
	fmt.Fprintf(b, "advance:\n")
	fmt.Fprintf(b, "  %%rinc = add i8 %%r, 1\n")
	fmt.Fprintf(b, "  store i8 %%rinc, i8* @retry\n")
	fmt.Fprintf(b, "  call void @block_%s()\n", mangled(label))
	fmt.Fprintf(b, "  ret void\n")
	fmt.Fprintf(b, "}\n\n")
	_ = transitionCount
}

// emitEntry emits main: it sets stdout unbuffered, then either
// bootstraps from a static-evaluation residual or calls the entry block
// directly (spec.md §4.7 part 5). The operand stack is the statically
// sized @stack global; main does not allocate it.
func (g *Generator) emitEntry(b *strings.Builder) {
	fmt.Fprintf(b, "define i32 @main() {\n")
	fmt.Fprintf(b, "entry:\n")
	fmt.Fprintf(b, "  %%stdout = call i8* @fdopen(i32 1, i8* null)\n")
	fmt.Fprintf(b, "  %%unbuffered = call i32 @setvbuf(i8* %%stdout, i8* null, i32 4, i64 0)\n")

	if g.Bootstrap == nil {
		fmt.Fprintf(b, "  call void @block_%s()\n", mangled(g.Graph.Entry))
		fmt.Fprintf(b, "  ret i32 0\n}\n")
		return
	}

	switch g.Bootstrap.Outcome {
	case interp.Complete:
		g.emitStdoutReplay(b, g.Bootstrap.Stdout)
		fmt.Fprintf(b, "  ret i32 0\n}\n")
	case interp.Partial:
		for i, v := range g.Bootstrap.Stack {
			fmt.Fprintf(b, "  ; bootstrap push[%d] = %d\n", i, v)
			fmt.Fprintf(b, "  call void @op_push(i64 %d)\n", v)
		}
		g.emitStdoutReplay(b, g.Bootstrap.Stdout)
		fmt.Fprintf(b, "  store i8 %d, i8* @dp\n", int(g.Bootstrap.Pointer.DP))
		fmt.Fprintf(b, "  store i8 %d, i8* @cc\n", int(g.Bootstrap.Pointer.CC))
		fmt.Fprintf(b, "  call void @block_%s()\n", mangled(g.Bootstrap.NextBlock))
		fmt.Fprintf(b, "  ret i32 0\n}\n")
	}
}

func (g *Generator) emitStdoutReplay(b *strings.Builder, entries []interp.OutEntry) {
	for _, e := range entries {
		if e.IsChar {
			fmt.Fprintf(b, "  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([3 x i8], [3 x i8]* @fmt.char, i64 0, i64 0), i8 %d)\n", e.Char)
		} else {
			fmt.Fprintf(b, "  call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([4 x i8], [4 x i8]* @fmt.int, i64 0, i64 0), i64 %d)\n", e.Int)
		}
	}
}

// mangled turns a PCFG block label into a valid IR identifier
// fragment (labels may contain characters IR identifiers forbid).
func mangled(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
