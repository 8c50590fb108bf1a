// Package controller renders harness runs on the console and in the
// interactive failure browser.
package controller

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	m "github.com/mouse-blink/debugrun/model"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Console prints the line-oriented run protocol: a gathering header
// per group, one progress line per test and the closing summary with
// a block per failure.
type Console struct {
	w     io.Writer
	color bool
	width int
}

// NewConsole creates a console reporter writing to w. Styling is
// applied only when color is true.
func NewConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

// GroupStarted prints the gathering header and fixes the padding width
// for the group from its unit names.
func (c *Console) GroupStarted(group string, units []string) {
	c.width = 0

	for _, name := range units {
		if w := runewidth.StringWidth(name); w > c.width {
			c.width = w
		}
	}

	c.printf("\nGathering tests for %s:\n", group)
}

// UnitStarted prints the running line without a newline so the result
// suffix lands on the same line.
func (c *Console) UnitStarted(name string) {
	c.printf("  running %s", name)
}

// UnitPassed completes the progress line with the success suffix.
func (c *Console) UnitPassed(name string) {
	c.printf("%s...%s\n", c.dots(name), c.paint("success", styleSuccess))
}

// UnitFailed completes the progress line with the failure suffix.
func (c *Console) UnitFailed(name string) {
	c.printf("%s......%s\n", c.dots(name), c.paint("FAIL", styleFail))
}

// Summary prints the one-line totals followed by one block per
// recorded failure.
func (c *Console) Summary(results *m.Results) {
	succeeded := c.paint(fmt.Sprintf("%d", results.Succeeded()), styleSuccess)

	failed := fmt.Sprintf("%d", results.Failed)
	if results.Failed > 0 {
		failed = c.paint(failed, styleFail)
	}

	c.printf("\n%d tests: %s succeeded, %s failed\n", results.Total, succeeded, failed)

	for _, failure := range results.Failures {
		c.failureBlock(failure)
	}
}

// failureBlock prints an interpreter-style report: a header line, the
// traceback and the captured output when the test printed anything.
// Exactly one trailing newline is stripped before printing, so blank
// lines at the end of the captured output survive.
func (c *Console) failureBlock(f m.Failure) {
	block := fmt.Sprintf("\n%s: %s\n%s", c.paint("FAILED TEST", styleFail), f.Test, f.Traceback())

	if f.Output != "" {
		block += "\n  Captured stdout calls:\n" + f.Output
	}

	c.printf("%s\n", strings.TrimSuffix(block, "\n"))
}

// dots pads short names so the result suffixes align. A padding of a
// single dot is dropped.
func (c *Console) dots(name string) string {
	n := c.width - runewidth.StringWidth(name)
	if n <= 1 {
		return ""
	}

	return strings.Repeat(".", n)
}

func (c *Console) paint(s string, style lipgloss.Style) string {
	if !c.color {
		return s
	}

	return style.Render(s)
}

func (c *Console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.w, format, args...)
}
