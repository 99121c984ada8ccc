/*
 * pietc - Main process.
 *
 * Copyright 2024, Piet Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pietlang/pietc/internal/block"
	"github.com/pietlang/pietc/internal/codegen"
	"github.com/pietlang/pietc/internal/debugger"
	"github.com/pietlang/pietc/internal/image"
	"github.com/pietlang/pietc/internal/interp"
	"github.com/pietlang/pietc/internal/logging"
	"github.com/pietlang/pietc/internal/options"
	"github.com/pietlang/pietc/internal/pcfg"
)

var Logger *slog.Logger

func main() {
	opts, err := options.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "pietc: "+err.Error())
		os.Exit(1)
	}

	Logger = slog.New(logging.NewHandler(os.Stderr, nil, opts.Verbosity))
	slog.SetDefault(Logger)

	grid, err := image.Load(opts.ImagePath, opts.UnknownPolicy)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	omega := opts.ForceWidth
	switch {
	case omega == 0:
		omega = image.InferCodelWidth(grid)
	case grid.Width%omega != 0 || grid.Height%omega != 0:
		Logger.Error(fmt.Sprintf("codel width %d does not divide image dimensions %dx%d", omega, grid.Width, grid.Height))
		os.Exit(1)
	}
	if opts.Verbosity >= logging.Verbose {
		Logger.Info(fmt.Sprintf("codel width = %d", omega))
	}

	seg := block.NewSegmenter(grid, omega)
	graph, warnings := pcfg.NewBuilder(grid, seg).Build()
	if opts.Verbosity >= logging.Verbose {
		Logger.Info(fmt.Sprintf("PCFG built: %d nodes", len(graph.Nodes)))
	}
	if opts.WarnNoExit {
		for _, w := range warnings {
			Logger.Warn(w)
		}
	}

	if opts.Interpret {
		runInterpreter(opts, graph)
		return
	}
	runCodegen(opts, graph)
}

func runInterpreter(opts *options.Options, graph *pcfg.Graph) {
	ex := interp.New(graph, interp.Concrete)
	ex.SetStdin(os.Stdin)
	ex.SetStdout(os.Stdout)
	ex.SetWarnFunc(func(format string, args ...any) {
		if opts.Verbosity >= logging.Verbose {
			Logger.Warn(fmt.Sprintf(format, args...))
		}
	})

	if opts.Debug {
		dbg := debugger.New(ex, os.Stdout)
		if err := dbg.Run(); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	status := ex.Run(0)
	if opts.Verbosity >= logging.Verbose {
		Logger.Info(fmt.Sprintf("interpretation finished: %s in %d steps", status, ex.Steps()))
	}
}

// defaultMaxEvalSteps bounds the static evaluator's attempt to run a
// program to completion at compile time before falling back to a
// Partial bootstrap (spec.md §4.6).
const defaultMaxEvalSteps = 1 << 20

func runCodegen(opts *options.Options, graph *pcfg.Graph) {
	result := interp.Evaluate(graph, defaultMaxEvalSteps)
	if opts.Verbosity >= logging.Verbose {
		Logger.Info(fmt.Sprintf("static evaluation: %v", result.Outcome))
	}

	gen := codegen.New(graph, opts.OptLevel)
	gen.Bootstrap = &result
	ir := gen.Emit()

	sink := chooseSink(opts)
	if err := sink.Write(ir); err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
}

func chooseSink(opts *options.Options) codegen.Sink {
	switch {
	case opts.EmitLLVM:
		path := opts.OutPath
		if !strings.HasSuffix(path, ".ll") {
			path += ".ll"
		}
		return codegen.TextSink{Path: path}
	case opts.EmitLLVMBitcode:
		return codegen.BitcodeSink(opts.OutPath)
	default:
		return codegen.ExecutableSink(opts.OutPath, opts.OptLevel)
	}
}
