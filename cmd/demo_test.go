package cmd

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCmd_ReportsFailures(t *testing.T) {
	cmd, out := newTestRoot(t)
	cmd.AddCommand(newDemoCmd())

	cmd.SetArgs([]string{"demo"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 5 tests failed")

	output := out.String()
	for _, want := range []string{
		"Gathering tests for demo:",
		"Gathering tests for demo.DemoMathSuite:",
		"  running DemoGreeting...success",
		"  running DemoNumbers...success",
		"  running DemoBroken........FAIL",
		"  running DemoAdd......success",
		"  running DemoDivide......FAIL",
		"5 tests: 3 succeeded, 2 failed",
		"FAILED TEST: DemoBroken",
		"panic: runtime error: index out of range [2] with length 2",
		"in DemoBroken",
		"FAILED TEST: DemoDivide",
		"panic: runtime error: integer divide by zero",
		"in divide",
		"Captured stdout calls:",
		"routes: home, about",
		"a=4 b=0",
	} {
		assert.Contains(t, output, want)
	}

	// The CLI's own call chain stays out of the tracebacks.
	for _, leak := range []string{"in tRunner", "in main", "spf13/cobra"} {
		assert.NotContains(t, output, leak)
	}
}

func TestDemoCmd_Filter(t *testing.T) {
	cmd, out := newTestRoot(t)
	cmd.AddCommand(newDemoCmd())

	cmd.SetArgs([]string{"demo", "DemoGreeting"})
	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "1 tests: 1 succeeded, 0 failed")
	assert.NotContains(t, output, "FAIL")
}

func TestDemoCmd_List(t *testing.T) {
	cmd, out := newTestRoot(t)
	cmd.AddCommand(newDemoCmd())

	cmd.SetArgs([]string{"demo", "--list"})
	require.NoError(t, cmd.Execute())

	output := out.String()
	for _, want := range []string{"DemoBroken", "DemoGreeting", "demo.DemoMathSuite", "TOTAL", "5"} {
		assert.Contains(t, output, want)
	}

	assert.NotContains(t, output, "running")
}

func TestDemoCmd_FailFast_ProcessLevel(t *testing.T) {
	if os.Getenv("TEST_DEMO_FAILFAST_SUBPROCESS") == "1" {
		// This runs in the subprocess. The first failure re-panics, so
		// Execute never returns.
		rootCmd.SetArgs([]string{"demo", "--fail-fast"})
		Execute()
		return
	}

	// Parent process: spawn subprocess
	cmd := exec.Command(os.Args[0], "-test.run=TestDemoCmd_FailFast_ProcessLevel")
	cmd.Env = append(os.Environ(), "TEST_DEMO_FAILFAST_SUBPROCESS=1", "HOME="+t.TempDir())
	output, err := cmd.CombinedOutput()

	if err == nil {
		t.Fatalf("expected the re-raised panic to kill the process, output: %s", output)
	}

	got := string(output)
	for _, want := range []string{
		"running DemoBroken",
		"FAIL",
		"panic: runtime error: index out of range",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("subprocess output missing %q:\n%s", want, got)
		}
	}

	if strings.Contains(got, "running DemoGreeting") {
		t.Errorf("tests kept running after the first failure:\n%s", got)
	}

	if strings.Contains(got, "tests:") {
		t.Errorf("summary printed despite fail-fast:\n%s", got)
	}
}
