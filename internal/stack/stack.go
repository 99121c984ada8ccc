/*
   Operand stack: the seventeen Piet primitive operations.

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

// Package stack implements the Piet operand stack and its seventeen
// primitive operations (spec.md §4.5). Every op that can fail reports
// failure by returning warned=true and leaving the stack untouched:
// Piet stack underflow is a recoverable warning, never fatal.
package stack

import (
	"fmt"
	"io"
)

// Stack is a stack of 64-bit signed integers, Piet's only storage.
type Stack struct {
	values []int64
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Len reports the number of values currently on the stack.
func (s *Stack) Len() int {
	return len(s.values)
}

// Snapshot returns a copy of the stack contents, bottom first, for
// dumps and Partial evaluator results.
func (s *Stack) Snapshot() []int64 {
	out := make([]int64, len(s.values))
	copy(out, s.values)
	return out
}

func (s *Stack) peek(depthFromTop int) int64 {
	return s.values[len(s.values)-1-depthFromTop]
}

func (s *Stack) push(v int64) {
	s.values = append(s.values, v)
}

func (s *Stack) drop(n int) {
	s.values = s.values[:len(s.values)-n]
}

// Push pushes the Push instruction's operand: the size of the color
// block the interpreter just exited. It never fails.
func (s *Stack) Push(blockSize int) bool {
	s.push(int64(blockSize))
	return false
}

// PushValue pushes an already-known value (used by CharIn/IntIn after
// the caller has read and parsed the input).
func (s *Stack) PushValue(v int64) {
	s.push(v)
}

// Pop discards the top value.
func (s *Stack) Pop() (warned bool) {
	if s.Len() < 1 {
		return true
	}
	s.drop(1)
	return false
}

func (s *Stack) binary(op func(b, a int64) int64) (warned bool) {
	if s.Len() < 2 {
		return true
	}
	a, b := s.peek(0), s.peek(1)
	s.drop(2)
	s.push(op(b, a))
	return false
}

// Add pushes b+a (a=top, b=next).
func (s *Stack) Add() bool { return s.binary(func(b, a int64) int64 { return b + a }) }

// Sub pushes b-a.
func (s *Stack) Sub() bool { return s.binary(func(b, a int64) int64 { return b - a }) }

// Mul pushes b*a.
func (s *Stack) Mul() bool { return s.binary(func(b, a int64) int64 { return b * a }) }

// Div pushes the truncating quotient b/a. Fails (no-op) when a=0.
func (s *Stack) Div() (warned bool) {
	if s.Len() < 2 {
		return true
	}
	a := s.peek(0)
	if a == 0 {
		return true
	}
	b := s.peek(1)
	s.drop(2)
	s.push(b / a)
	return false
}

// Mod pushes the Euclidean remainder of b mod a, in [0, |a|). Fails
// (no-op) when a=0.
func (s *Stack) Mod() (warned bool) {
	if s.Len() < 2 {
		return true
	}
	a := s.peek(0)
	if a == 0 {
		return true
	}
	b := s.peek(1)
	s.drop(2)
	r := b % a
	if r < 0 {
		abs := a
		if abs < 0 {
			abs = -abs
		}
		r += abs
	}
	s.push(r)
	return false
}

// Not pushes 1 if the top is 0, else 0.
func (s *Stack) Not() (warned bool) {
	if s.Len() < 1 {
		return true
	}
	v := s.peek(0)
	s.drop(1)
	if v == 0 {
		s.push(1)
	} else {
		s.push(0)
	}
	return false
}

// Gt pushes 1 if b>a (a=top, b=next), else 0.
func (s *Stack) Gt() (warned bool) {
	if s.Len() < 2 {
		return true
	}
	a, b := s.peek(0), s.peek(1)
	s.drop(2)
	if b > a {
		s.push(1)
	} else {
		s.push(0)
	}
	return false
}

// Ptr pops and returns n, the dp rotation count. The caller (the
// interpreter, which owns pointer state) applies the rotation.
func (s *Stack) Ptr() (n int64, warned bool) {
	if s.Len() < 1 {
		return 0, true
	}
	n = s.peek(0)
	s.drop(1)
	return n, false
}

// Swi pops and returns n, the cc toggle count.
func (s *Stack) Swi() (n int64, warned bool) {
	if s.Len() < 1 {
		return 0, true
	}
	n = s.peek(0)
	s.drop(1)
	return n, false
}

// Dup pushes a copy of the top value.
func (s *Stack) Dup() (warned bool) {
	if s.Len() < 1 {
		return true
	}
	s.push(s.peek(0))
	return false
}

// Roll pops a then n and cyclically rotates the n entries below them
// by a steps (positive buries the top entry to depth n; negative
// brings the entry at depth n to the top). No-op when the stack holds
// fewer than 2 entries, n is negative, or n exceeds the remaining
// depth (spec.md §9 Open Question: treated as a no-op, not an error).
func (s *Stack) Roll() (warned bool) {
	if s.Len() < 2 {
		return true
	}
	a, n := s.peek(0), s.peek(1)
	if n < 0 || int(n) > s.Len()-2 {
		return true
	}
	depth := int(n)
	s.drop(2)
	if depth < 2 {
		return false
	}
	start := len(s.values) - depth
	window := make([]int64, depth)
	copy(window, s.values[start:])

	shift := int(euclideanMod(a, int64(depth)))
	rotated := make([]int64, 0, depth)
	rotated = append(rotated, window[depth-shift:]...)
	rotated = append(rotated, window[:depth-shift]...)
	copy(s.values[start:], rotated)
	return false
}

func euclideanMod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// CharOut pops the top value and writes it to w as a single rune.
func (s *Stack) CharOut(w io.Writer) (warned bool) {
	if s.Len() < 1 {
		return true
	}
	v := s.peek(0)
	s.drop(1)
	fmt.Fprint(w, string(rune(v)))
	return false
}

// IntOut pops the top value and writes it to w as a decimal integer.
func (s *Stack) IntOut(w io.Writer) (warned bool) {
	if s.Len() < 1 {
		return true
	}
	v := s.peek(0)
	s.drop(1)
	fmt.Fprintf(w, "%d", v)
	return false
}
