package harness_test

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mouse-blink/debugrun/harness"
)

// CheckSuite is a harness suite, not a go test helper.
type CheckSuite struct {
	log *[]string
}

func (s *CheckSuite) CheckOne() { *s.log = append(*s.log, "one") }
func (s *CheckSuite) CheckTwo() { *s.log = append(*s.log, "two") }

// Helper lacks the prefix and must be skipped during discovery.
func (s *CheckSuite) Helper() { *s.log = append(*s.log, "helper") }

type CheckBadSuite struct{}

func (s *CheckBadSuite) CheckBad(x int) { _ = x }

type WrongSuite struct{}

func (s *WrongSuite) CheckOk() {}

func TestModule_RegisterSuite_RunsPrefixedMethods(t *testing.T) {
	ui := &fakeUI{}
	log := []string{}

	mod := harness.New(harness.WithName("calc"), harness.WithPrefix("Check"), harness.WithUI(ui))
	mod.RegisterSuite(&CheckSuite{log: &log})

	results := mod.Run()

	if results.Total != 2 || results.Failed != 0 {
		t.Fatalf("results = %d total, %d failed, want 2 and 0", results.Total, results.Failed)
	}

	if strings.Join(log, ",") != "one,two" {
		t.Fatalf("log = %v, want the prefixed methods in order", log)
	}

	if !ui.has("group calc.CheckSuite [CheckOne,CheckTwo]") {
		t.Fatalf("calls = %v, want the qualified suite group", ui.calls)
	}
}

func TestModule_RegisterSuite_RejectsWrongTypeName(t *testing.T) {
	mod := harness.New(harness.WithName("calc"), harness.WithPrefix("Check"))

	expectPanic(t, "suite type", func() {
		mod.RegisterSuite(&WrongSuite{})
	})
}

func TestModule_RegisterSuite_RejectsBadSignature(t *testing.T) {
	mod := harness.New(harness.WithName("calc"), harness.WithPrefix("Check"))

	expectPanic(t, "must take no arguments", func() {
		mod.RegisterSuite(&CheckBadSuite{})
	})
}

func TestModule_Units_Order(t *testing.T) {
	log := []string{}
	mod := harness.New(harness.WithName("calc"), harness.WithPrefix("Check"))

	mod.Register(CheckConcat, CheckAdd)
	mod.RegisterSuite(&CheckSuite{log: &log})

	units := mod.Units()

	if len(units) != 2 {
		t.Fatalf("Units() returned %d groups, want 2", len(units))
	}

	if units[0].Name != "calc" || strings.Join(units[0].Units, ",") != "CheckAdd,CheckConcat" {
		t.Fatalf("module group = %+v, want sorted functions first", units[0])
	}

	if units[1].Name != "calc.CheckSuite" || strings.Join(units[1].Units, ",") != "CheckOne,CheckTwo" {
		t.Fatalf("suite group = %+v, want the qualified suite second", units[1])
	}
}

func TestModule_Run_FilterReachesSuites(t *testing.T) {
	ui := &fakeUI{}
	log := []string{}

	mod := harness.New(harness.WithName("calc"), harness.WithPrefix("Check"), harness.WithUI(ui))
	mod.Register(CheckAdd)
	mod.RegisterSuite(&CheckSuite{log: &log})

	results := mod.Run("CheckTwo")

	if results.Total != 1 {
		t.Fatalf("Total = %d, want 1", results.Total)
	}

	if strings.Join(log, ",") != "two" {
		t.Fatalf("log = %v, want only CheckTwo", log)
	}

	if !ui.has("group calc []") {
		t.Fatalf("calls = %v, want the module group emptied by the filter", ui.calls)
	}
}

func TestModule_Run_OneRunAtATime(t *testing.T) {
	ui := &fakeUI{}

	var active, overlapped int32

	mod := harness.New(harness.WithName("calc"), harness.WithPrefix("Check"), harness.WithUI(ui))
	mod.RegisterNamed("CheckSlow", func() {
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.StoreInt32(&overlapped, 1)
		}

		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
	})

	var wg sync.WaitGroup

	for range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			mod.Run()
		}()
	}

	wg.Wait()

	if atomic.LoadInt32(&overlapped) != 0 {
		t.Fatal("two runs overlapped despite the run gate")
	}
}
