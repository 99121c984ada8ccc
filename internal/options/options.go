/*
   Command-line options.

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

// Package options parses the CLI surface of spec.md §6 into one flat
// Options struct, built once in main, the way the teacher builds one
// config set per invocation but simplified to the single-program case
// (there is no per-device config file here, just flags).
package options

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pietlang/pietc/internal/codegen"
	"github.com/pietlang/pietc/internal/image"
	"github.com/pietlang/pietc/internal/logging"
)

// Options is every flag from spec.md §6, parsed and validated.
type Options struct {
	ImagePath string

	Interpret bool
	OutPath   string

	ForceWidth    int // 0 means "infer"
	ForceWidthOne bool

	EmitLLVM        bool
	EmitLLVMBitcode bool

	Verbosity logging.Verbosity
	OptLevel  codegen.OptLevel

	UnknownPolicy image.UnknownPolicy

	WarnNoExit bool

	Debug bool // --debug: interactive step debugger (enrichment, see DESIGN.md)
}

// ErrUsage is returned when argument parsing or validation fails; the
// caller should print the message and exit 1 without printing a stack
// trace (spec.md §7 "fatal at load").
type ErrUsage struct{ msg string }

func (e *ErrUsage) Error() string { return e.msg }

// Parse parses args (typically os.Args[1:]) into an Options value.
func Parse(args []string) (*Options, error) {
	set := getopt.New()

	optInterpret := set.BoolLong("interpret", 'i', "Interpret and exit")
	optOut := set.StringLong("out", 'o', "program.out", "Emit native executable to <path>")
	optForceWidth := set.IntLong("codel-size", 's', 0, "Force codel width n; must divide both image dimensions")
	optForceOne := set.BoolLong("force-one", 'd', "Force codel width 1")
	optEmitLLVM := set.BoolLong("emit-llvm", 0, "Emit textual IR (.ll) instead of binary")
	optEmitBitcode := set.BoolLong("emit-llvm-bitcode", 0, "Emit bitcode (.bc) instead of binary")
	optVerbosity := set.IntLong("verbosity", 'v', 1, "Verbosity: 0=silent 1=normal 2=verbose")
	optO1 := set.BoolLong("o1", 0, "Optimization level 1")
	optO2 := set.BoolLong("o2", 0, "Optimization level 2")
	optO3 := set.BoolLong("o3", 0, "Optimization level 3")
	optUW := set.BoolLong("uw", 0, "Treat unknown-colored pixels as White")
	optUB := set.BoolLong("ub", 0, "Treat unknown-colored pixels as Black")
	optWarn := set.BoolLong("w", 'w', "Emit a warning if no PCFG node has out-degree 0")
	optDebug := set.BoolLong("debug", 0, "Run the interactive step debugger instead of free-running interpretation")
	optHelp := set.BoolLong("help", 'h', "Help")

	if err := set.Getopt(append([]string{"pietc"}, args...), nil); err != nil {
		return nil, &ErrUsage{msg: err.Error()}
	}
	if *optHelp {
		set.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	rest := set.Args()
	if len(rest) != 1 {
		return nil, &ErrUsage{msg: "expected exactly one image path argument"}
	}

	opts := &Options{
		ImagePath:       rest[0],
		Interpret:       *optInterpret,
		OutPath:         *optOut,
		ForceWidth:      *optForceWidth,
		ForceWidthOne:   *optForceOne,
		EmitLLVM:        *optEmitLLVM,
		EmitLLVMBitcode: *optEmitBitcode,
		WarnNoExit:      *optWarn,
		Debug:           *optDebug,
	}

	switch *optVerbosity {
	case 0:
		opts.Verbosity = logging.Quiet
	case 1:
		opts.Verbosity = logging.Normal
	case 2:
		opts.Verbosity = logging.Verbose
	default:
		return nil, &ErrUsage{msg: fmt.Sprintf("invalid -v %d: must be 0, 1, or 2", *optVerbosity)}
	}

	switch {
	case *optO1 && !*optO2 && !*optO3:
		opts.OptLevel = codegen.OptLess
	case *optO2 && !*optO1 && !*optO3:
		opts.OptLevel = codegen.OptDefault
	case *optO3 && !*optO1 && !*optO2:
		opts.OptLevel = codegen.OptAggressive
	case *optO1 || *optO2 || *optO3:
		return nil, &ErrUsage{msg: "--o1, --o2, --o3 are mutually exclusive"}
	default:
		opts.OptLevel = codegen.OptNone
	}
	if opts.OptLevel != codegen.OptNone && opts.Interpret {
		return nil, &ErrUsage{msg: "optimization flags are incompatible with -i/--interpret"}
	}

	switch {
	case *optUW && *optUB:
		return nil, &ErrUsage{msg: "--uw and --ub are mutually exclusive"}
	case *optUW:
		opts.UnknownPolicy = image.TreatAsWhite
	case *optUB:
		opts.UnknownPolicy = image.TreatAsBlack
	default:
		opts.UnknownPolicy = image.RejectUnknown
	}

	if opts.ForceWidthOne {
		opts.ForceWidth = 1
	}

	return opts, nil
}
