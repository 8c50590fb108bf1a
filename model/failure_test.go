package model

import (
	"strings"
	"testing"
)

func TestFrame_String(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{
			name: "with source line",
			frame: Frame{
				File:     "/tmp/calc/main.go",
				Line:     42,
				Function: "TestDivision",
				Source:   "q := a / b",
			},
			want: "  File \"/tmp/calc/main.go\", line 42, in TestDivision\n    q := a / b",
		},
		{
			name: "without source line",
			frame: Frame{
				File:     "/tmp/calc/main.go",
				Line:     7,
				Function: "TestDivision",
			},
			want: "  File \"/tmp/calc/main.go\", line 7, in TestDivision",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFailure_Traceback(t *testing.T) {
	failure := Failure{
		Test: "TestDivision",
		Err:  "panic: runtime error: integer divide by zero",
		Frames: []Frame{
			{File: "main.go", Line: 30, Function: "main", Source: "mod.Run()"},
			{File: "main.go", Line: 12, Function: "TestDivision", Source: "q := a / b"},
		},
	}

	got := failure.Traceback()

	if strings.Count(got, "\n") != 4 {
		t.Fatalf("Traceback() = %q, want four line breaks", got)
	}

	if !strings.HasSuffix(got, "panic: runtime error: integer divide by zero") {
		t.Fatalf("Traceback() = %q, want panic line last", got)
	}

	if strings.HasSuffix(got, "\n") {
		t.Fatalf("Traceback() = %q, want no trailing newline", got)
	}

	outer := strings.Index(got, "in main")
	inner := strings.Index(got, "in TestDivision")

	if outer < 0 || inner < 0 || outer > inner {
		t.Fatalf("Traceback() = %q, want outermost frame first", got)
	}
}

func TestFailure_Traceback_NoFrames(t *testing.T) {
	failure := Failure{Test: "TestEmpty", Err: "panic: boom"}

	if got := failure.Traceback(); got != "panic: boom" {
		t.Fatalf("Traceback() = %q, want %q", got, "panic: boom")
	}
}
