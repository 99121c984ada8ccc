/*
   Logging: a slog handler parameterized by the compiler's -v verbosity.

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

// Package logging wraps slog with a handler whose verbosity follows
// the compiler's three-tier -v flag (spec.md SPEC_FULL AMBIENT STACK,
// carried over from original_source's Verbosity enum), rather than a
// bool debug flag as the teacher's util/logger uses.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Verbosity is the three-tier level selected by -v.
type Verbosity int

const (
	// Quiet reports only warnings and errors.
	Quiet Verbosity = iota
	// Normal additionally reports Info records (the default).
	Normal
	// Verbose additionally reports Debug records; main also logs codel
	// width, PCFG node count and per-op recoverable warnings only at
	// this level.
	Verbose
)

// Level maps a Verbosity to the slog.Level it enables at or above.
func (v Verbosity) Level() slog.Level {
	switch v {
	case Quiet:
		return slog.LevelWarn
	case Verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Handler is a slog.Handler that writes a single timestamped line per
// record, optionally mirrored to a second writer (the teacher's
// util/logger.LogHandler mirrors to stderr; this mirrors to a sink
// chosen by the caller, e.g. the debugger's transcript file).
type Handler struct {
	out    io.Writer
	mirror io.Writer
	h      slog.Handler
	mu     *sync.Mutex
}

// NewHandler returns a Handler writing to out at verbosity v, also
// mirroring every record to mirror when non-nil.
func NewHandler(out, mirror io.Writer, v Verbosity) *Handler {
	level := new(slog.LevelVar)
	level.Set(v.Level())
	return &Handler{
		out:    out,
		mirror: mirror,
		h:      slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		mu:     &sync.Mutex{},
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, mirror: h.mirror, h: h.h.WithAttrs(attrs), mu: h.mu}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, mirror: h.mirror, h: h.h.WithGroup(name), mu: h.mu}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	formattedTime := r.Time.Format("2006/01/02 15:04:05")
	strs := []string{formattedTime, r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, a.Key+"="+a.Value.String())
		return true
	})
	line := []byte(strings.Join(strs, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(line)
	}
	if h.mirror != nil {
		_, err = h.mirror.Write(line)
	}
	return err
}
