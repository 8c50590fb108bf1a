// Package capture diverts the process stdout stream into in-memory
// buffers so a harness can collect everything a test prints.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// ErrNotSaved reports a named buffer that does not exist, either never
// stored or already consumed.
var ErrNotSaved = errors.New("no saved output under that name")

// Switch redirects os.Stdout into an in-memory buffer between Begin
// and exactly one End call. The stream active when the Switch was
// created stays reachable as the console, and named buffers stored
// with EndSave are kept until read or printed.
//
// A Switch mutates process state, so at most one capture may be active
// and every Begin must be paired with one End. Misuse panics.
type Switch struct {
	console  *os.File
	saved    map[string]string
	diverted bool

	pipeW *os.File
	drain *errgroup.Group
	buf   bytes.Buffer
}

// New returns a Switch bound to the current os.Stdout as its console
// stream.
func New() *Switch {
	return &Switch{
		console: os.Stdout,
		saved:   map[string]string{},
	}
}

// Begin starts capturing: stdout is pointed at a fresh buffer and the
// previous capture contents are gone. Panics when a capture is already
// active.
func (s *Switch) Begin() {
	if s.diverted {
		panic("capture: Begin while a capture is already active")
	}

	r, w, err := os.Pipe()
	if err != nil {
		panic(fmt.Sprintf("capture: failed to allocate pipe: %v", err))
	}

	s.pipeW = w
	s.buf.Reset()
	s.drain = &errgroup.Group{}
	s.drain.Go(func() error {
		defer r.Close() //nolint:errcheck // read end, nothing left to flush

		_, err := s.buf.ReadFrom(r)

		return err
	})

	os.Stdout = w
	s.diverted = true
}

// EndDiscard stops capturing and drops everything collected.
func (s *Switch) EndDiscard() {
	_ = s.end()
}

// EndRead stops capturing and returns everything collected.
func (s *Switch) EndRead() string {
	return s.end()
}

// EndSave stops capturing and stores the collected output under name,
// replacing any previous entry with that name.
func (s *Switch) EndSave(name string) {
	s.saved[name] = s.end()
}

// EndPrint stops capturing and replays the collected output on the
// console stream.
func (s *Switch) EndPrint() {
	fmt.Fprint(s.console, s.end())
}

// ReadSaved removes and returns the buffer stored under name. It
// returns ErrNotSaved when nothing is stored under that name, which
// includes a buffer a previous call already consumed.
func (s *Switch) ReadSaved(name string) (string, error) {
	out, ok := s.saved[name]
	if !ok {
		return "", fmt.Errorf("failed to read saved output %q: %w", name, ErrNotSaved)
	}

	delete(s.saved, name)

	return out, nil
}

// PrintSaved removes the buffer stored under name and replays it on
// the console stream. The console is used directly, so the replay is
// visible even while a capture is active.
func (s *Switch) PrintSaved(name string) error {
	out, err := s.ReadSaved(name)
	if err != nil {
		return err
	}

	fmt.Fprint(s.console, out)

	return nil
}

// Diverted reports whether a capture is active.
func (s *Switch) Diverted() bool {
	return s.diverted
}

// Console returns the real console stream, usable for output that must
// bypass an active capture.
func (s *Switch) Console() io.Writer {
	return s.console
}

// end restores the console stream, joins the drain goroutine and
// returns everything written while the capture was active.
func (s *Switch) end() string {
	if !s.diverted {
		panic("capture: End without a matching Begin")
	}

	os.Stdout = s.console
	s.diverted = false

	if err := s.pipeW.Close(); err != nil {
		panic(fmt.Sprintf("capture: failed to close capture pipe: %v", err))
	}

	if err := s.drain.Wait(); err != nil {
		panic(fmt.Sprintf("capture: failed to drain captured output: %v", err))
	}

	return s.buf.String()
}
