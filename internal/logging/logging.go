// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init routes diagnostic logging to w. Verbose lowers the level to debug;
// otherwise only warnings and errors get through, keeping the test report
// clean.
func Init(verbose bool, w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// InitForCLI wires diagnostics to stderr, away from the report stream
// on stdout.
func InitForCLI(verbose bool) {
	Init(verbose, os.Stderr)
}
