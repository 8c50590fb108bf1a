package controller

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewUI creates the console reporter for a command. Styling is applied
// only when color is true.
func NewUI(cmd *cobra.Command, color bool) *Console {
	return NewConsole(cmd.OutOrStdout(), color)
}

// IsTTY checks if the given writer is a terminal (TTY).
// Returns true if the output is an interactive terminal.
// Returns false if the output is redirected to a file or pipe.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
