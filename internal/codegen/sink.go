/*
   Output sink: IR text, bitcode, or native executable.

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

package codegen

import (
	"os"
	"os/exec"
)

// Sink persists emitted IR in whatever final form the CLI requested.
// The host linker/assembler is an external collaborator (spec.md §1):
// this package only contracts it through Sink's Write method.
type Sink interface {
	Write(ir string) error
}

// TextSink writes the textual .ll IR verbatim — the canonical
// artifact this package produces directly.
type TextSink struct {
	Path string
}

func (s TextSink) Write(ir string) error {
	return os.WriteFile(s.Path, []byte(ir), 0o644)
}

// ToolSink writes IR to a temporary .ll file and invokes an external
// tool (e.g. llvm-as for bitcode, clang for a native executable) to
// produce the final artifact at Path.
type ToolSink struct {
	Path string
	Tool string
	Args []string
}

func (s ToolSink) Write(ir string) error {
	tmp, err := os.CreateTemp("", "pietc-*.ll")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(ir); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	args := append(append([]string{}, s.Args...), tmp.Name(), "-o", s.Path)
	cmd := exec.Command(s.Tool, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// BitcodeSink produces a .bc file via llvm-as.
func BitcodeSink(path string) Sink {
	return ToolSink{Path: path, Tool: "llvm-as"}
}

// ExecutableSink produces a native executable via clang, the default
// output form when neither --emit-llvm nor --emit-llvm-bitcode is given.
func ExecutableSink(path string, opt OptLevel) Sink {
	return ToolSink{Path: path, Tool: "clang", Args: []string{"-x", "ir", "-O" + optFlag(opt)}}
}

func optFlag(o OptLevel) string {
	switch o {
	case OptLess:
		return "1"
	case OptDefault:
		return "2"
	case OptAggressive:
		return "3"
	default:
		return "0"
	}
}
