// Package stack collects structured call frames at a panic site and
// decorates them with source excerpts.
package stack

import (
	"os"
	"runtime"
	"slices"
	"strings"

	m "github.com/mouse-blink/debugrun/model"
)

const maxDepth = 128

// Collect gathers the call frames leading to its caller, ordered
// outermost first. Frames from the runtime, from reflection shims and
// from method value wrappers are dropped. Frames matching one of the
// hide prefixes are dropped as well, together with every frame outer
// to the outermost match, so only the calls made inside the hidden
// region remain. trim removes that many additional outermost frames
// afterwards.
//
// Collect is meant to run inside a deferred function while a panic is
// being recovered, where the stack still holds the panic site.
func Collect(trim int, hide ...string) []m.Frame {
	pc := make([]uintptr, maxDepth)
	n := runtime.Callers(2, pc)

	frames := runtime.CallersFrames(pc[:n])
	collected := []m.Frame{}
	src := newSourceCache()

	cut := -1

	for {
		frame, more := frames.Next()

		switch {
		case frame.Function == "" || hidden(frame.Function):
		case matchesHide(frame.Function, hide):
			cut = len(collected)
		default:
			collected = append(collected, m.Frame{
				File:     frame.File,
				Line:     frame.Line,
				Function: ShortName(frame.Function),
				Source:   src.line(frame.File, frame.Line),
			})
		}

		if !more {
			break
		}
	}

	// Everything outer to the outermost hide match is the host
	// program's own call chain.
	if cut >= 0 {
		collected = collected[:cut]
	}

	slices.Reverse(collected)

	if trim > len(collected) {
		trim = len(collected)
	}

	return collected[trim:]
}

// ShortName reduces a fully qualified runtime function name to its
// bare identifier, e.g. "pkg/path.(*Suite).TestOne" to "TestOne".
func ShortName(fn string) string {
	fn = strings.TrimSuffix(fn, "-fm")

	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}

	if i := strings.LastIndex(fn, "."); i >= 0 {
		fn = fn[i+1:]
	}

	return fn
}

func hidden(fn string) bool {
	if strings.HasPrefix(fn, "runtime.") || strings.HasPrefix(fn, "reflect.") {
		return true
	}

	// Method value wrappers sit between the caller and the method body
	// with an autogenerated file position.
	return strings.HasSuffix(fn, "-fm")
}

func matchesHide(fn string, hide []string) bool {
	for _, prefix := range hide {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}

	return false
}

// sourceCache reads source files once per collection.
type sourceCache struct {
	files map[string][]string
}

func newSourceCache() *sourceCache {
	return &sourceCache{files: map[string][]string{}}
}

// line returns the stripped source text at the given position, or an
// empty string when the file cannot be read.
func (c *sourceCache) line(file string, n int) string {
	lines, ok := c.files[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err != nil {
			c.files[file] = nil

			return ""
		}

		lines = strings.Split(string(data), "\n")
		c.files[file] = lines
	}

	if n < 1 || n > len(lines) {
		return ""
	}

	return strings.TrimSpace(lines[n-1])
}
