// Package model defines the value types produced by a harness run.
package model

import (
	"fmt"
	"strings"
)

// Frame is a single traceback frame. Frames within a Failure are
// ordered outermost first, so the last frame points at the panic site.
type Frame struct {
	File     string
	Line     int
	Function string
	Source   string // stripped source line, empty when the file is unreadable
}

// String renders the frame in traceback form: a location line followed
// by the source line when one is available.
func (f Frame) String() string {
	loc := fmt.Sprintf("  File %q, line %d, in %s", f.File, f.Line, f.Function)
	if f.Source == "" {
		return loc
	}

	return loc + "\n    " + f.Source
}

// Failure records a single failed test.
type Failure struct {
	Test   string            // local unit name, e.g. TestParser
	Group  string            // qualified group name, e.g. calc.TestParser
	Err    string            // panic value rendered as "panic: <value>"
	Frames []Frame           // outermost first
	Output string            // stdout captured while the test ran
	Locals map[string]string // best-effort local variables, nil when unavailable
}

// Traceback joins the frames and the panic line into a plain-text
// traceback body without a trailing newline.
func (f Failure) Traceback() string {
	var b strings.Builder

	for _, frame := range f.Frames {
		b.WriteString(frame.String())
		b.WriteString("\n")
	}

	b.WriteString(f.Err)

	return b.String()
}
