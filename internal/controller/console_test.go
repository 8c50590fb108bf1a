package controller

import (
	"bytes"
	"strings"
	"testing"

	m "github.com/mouse-blink/debugrun/model"
)

func TestConsole_ProgressProtocol(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.GroupStarted("calc", []string{"TestDivision", "TestSum"})
	c.UnitStarted("TestSum")
	c.UnitPassed("TestSum")
	c.UnitStarted("TestDivision")
	c.UnitFailed("TestDivision")

	want := "\nGathering tests for calc:\n" +
		"  running TestSum........success\n" +
		"  running TestDivision......FAIL\n"

	if got := buf.String(); got != want {
		t.Fatalf("protocol output = %q, want %q", got, want)
	}
}

func TestConsole_Padding(t *testing.T) {
	tests := []struct {
		name  string
		units []string
		unit  string
		want  string
	}{
		{
			name:  "longest name gets no dots",
			units: []string{"TestAlpha"},
			unit:  "TestAlpha",
			want:  "  running TestAlpha...success\n",
		},
		{
			name:  "padding of one is dropped",
			units: []string{"TestAa", "TestA"},
			unit:  "TestA",
			want:  "  running TestA...success\n",
		},
		{
			name:  "padding of two is kept",
			units: []string{"TestAaa", "TestA"},
			unit:  "TestA",
			want:  "  running TestA.....success\n",
		},
		{
			name:  "wide runes use display width",
			units: []string{"TestAlphaBeta", "Test数据"},
			unit:  "Test数据",
			want:  "  running Test数据........success\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewConsole(&buf, false)

			c.GroupStarted("calc", tt.units)
			buf.Reset()

			c.UnitStarted(tt.unit)
			c.UnitPassed(tt.unit)

			if got := buf.String(); got != tt.want {
				t.Fatalf("progress line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsole_Summary_NoFailures(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Summary(&m.Results{Total: 2})

	want := "\n2 tests: 2 succeeded, 0 failed\n"
	if got := buf.String(); got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}

func TestConsole_Summary_WithFailure(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	results := &m.Results{Total: 2, Failed: 1}
	results.Failures = []m.Failure{
		{
			Test: "TestDivision",
			Err:  "panic: runtime error: integer divide by zero",
			Frames: []m.Frame{
				{File: "main.go", Line: 12, Function: "TestDivision", Source: "q := a / b"},
			},
			// Ends with a blank line the report must keep.
			Output: "a=4 b=0\n\n",
		},
	}

	c.Summary(results)

	want := "\n2 tests: 1 succeeded, 1 failed\n" +
		"\nFAILED TEST: TestDivision\n" +
		"  File \"main.go\", line 12, in TestDivision\n" +
		"    q := a / b\n" +
		"panic: runtime error: integer divide by zero\n" +
		"  Captured stdout calls:\n" +
		"a=4 b=0\n" +
		"\n"

	if got := buf.String(); got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}

func TestConsole_Summary_NoCapturedSection(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	results := &m.Results{Total: 1, Failed: 1}
	results.Failures = []m.Failure{{Test: "TestBoom", Err: "panic: boom"}}

	c.Summary(results)

	if strings.Contains(buf.String(), "Captured stdout calls") {
		t.Fatalf("Summary() = %q, want no captured section for silent test", buf.String())
	}
}

func TestConsole_Color_KeepsContent(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.GroupStarted("calc", []string{"TestSum"})
	c.UnitStarted("TestSum")
	c.UnitPassed("TestSum")
	c.Summary(&m.Results{Total: 1})

	output := buf.String()

	for _, want := range []string{"Gathering tests for calc:", "running TestSum", "success", "1 tests:"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q\noutput:\n%s", want, output)
		}
	}
}
