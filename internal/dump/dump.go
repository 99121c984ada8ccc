/*
   Stack dump formatting.

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

// Package dump formats an operand stack for the interactive debugger
// (the generated program's overflow handler prints a fixed message and
// does not dump the stack), in the same
// "write straight into a strings.Builder" style as the teacher's
// util/hex, trimmed to the one format Piet's 64-bit signed stack
// needs.
package dump

import "strings"

// FormatStack renders values top-first as "N: hex (decimal)" lines,
// joined by newlines, with no trailing newline.
func FormatStack(values []int64) string {
	if len(values) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i := len(values) - 1; i >= 0; i-- {
		if b.Len() != 0 {
			b.WriteByte('\n')
		}
		v := values[i]
		b.WriteString(formatEntry(len(values)-1-i, v))
	}
	return b.String()
}

func formatEntry(depth int, v int64) string {
	var b strings.Builder
	writeDecimal(&b, depth)
	b.WriteString(": 0x")
	writeHex(&b, uint64(v))
	b.WriteString(" (")
	writeDecimal(&b, int(v))
	b.WriteByte(')')
	return b.String()
}

const hexDigits = "0123456789abcdef"

func writeHex(b *strings.Builder, v uint64) {
	if v == 0 {
		b.WriteByte('0')
		return
	}
	var digits [16]byte
	n := 0
	for v > 0 {
		digits[n] = hexDigits[v&0xf]
		v >>= 4
		n++
	}
	for i := n - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
	}
}

func writeDecimal(b *strings.Builder, v int) {
	if v < 0 {
		b.WriteByte('-')
		v = -v
	}
	if v == 0 {
		b.WriteByte('0')
		return
	}
	var digits [20]byte
	n := 0
	for v > 0 {
		digits[n] = byte('0' + v%10)
		v /= 10
		n++
	}
	for i := n - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
	}
}
