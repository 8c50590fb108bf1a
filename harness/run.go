package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mouse-blink/debugrun/internal/stack"
	m "github.com/mouse-blink/debugrun/model"
)

func (mod *module) Run(names ...string) *m.Results {
	if err := mod.gate.Acquire(context.Background(), 1); err != nil {
		panic(fmt.Sprintf("harness: failed to acquire run gate: %v", err))
	}
	defer mod.gate.Release(1)

	filter := map[string]bool{}
	for _, name := range names {
		filter[name] = true
	}

	results := &m.Results{}

	for _, g := range mod.groups() {
		mod.runGroup(g, filter, results)
	}

	mod.cfg.UI.Summary(results)

	return results
}

func (mod *module) Units() []m.Group {
	groups := mod.groups()
	out := make([]m.Group, len(groups))

	for i, g := range groups {
		names := make([]string, len(g.units))
		for j, u := range g.units {
			names[j] = u.name
		}

		out[i] = m.Group{Name: g.name, Units: names}
	}

	return out
}

// groups assembles the run order: the module-level group first, then
// one group per suite, each sorted by name. The module group is always
// present, even when nothing is registered in it, and duplicate names
// are kept so every registration runs.
func (mod *module) groups() []group {
	funcs := make([]unit, len(mod.funcs))
	copy(funcs, mod.funcs)
	slices.SortStableFunc(funcs, func(a, b unit) int { return strings.Compare(a.name, b.name) })

	suites := make([]group, len(mod.suites))
	copy(suites, mod.suites)
	slices.SortStableFunc(suites, func(a, b group) int { return strings.Compare(a.name, b.name) })

	all := []group{{name: mod.cfg.Name, units: funcs}}

	for _, s := range suites {
		all = append(all, group{name: mod.cfg.Name + "." + s.name, units: s.units})
	}

	return all
}

func (mod *module) runGroup(g group, filter map[string]bool, results *m.Results) {
	units := g.units
	if len(filter) > 0 {
		kept := []unit{}

		for _, u := range units {
			if filter[u.name] {
				kept = append(kept, u)
			}
		}

		units = kept
	}

	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.name
	}

	mod.cfg.UI.GroupStarted(g.name, names)

	for _, u := range units {
		mod.runUnit(g, u, results)
	}
}

// runUnit executes one test under capture. A panic from the test body
// becomes a Failure; a clean return discards the captured output.
func (mod *module) runUnit(g group, u unit, results *m.Results) {
	mod.cfg.UI.UnitStarted(u.name)
	mod.cfg.Switch.Begin()

	defer func() {
		r := recover()
		if r == nil {
			mod.cfg.Switch.EndDiscard()
			results.Pass()
			mod.cfg.UI.UnitPassed(u.name)

			return
		}

		frames := stack.Collect(mod.cfg.FrameTrim, harnessPkg)

		failure := m.Failure{
			Test:   u.name,
			Group:  g.name,
			Err:    fmt.Sprintf("panic: %v", r),
			Frames: frames,
			Output: mod.cfg.Switch.EndRead(),
		}
		failure.Locals = mod.collectLocals(r, frames)

		results.Record(failure)
		mod.cfg.UI.UnitFailed(u.name)

		if mod.cfg.FailFast {
			panic(r)
		}
	}()

	u.fn()
}

// collectLocals asks the configured hook for the failing test's local
// variables. The hook is diagnostic only: a panic inside it yields nil
// instead of a second failure.
func (mod *module) collectLocals(r any, frames []m.Frame) (locals map[string]string) {
	if mod.cfg.Locals == nil {
		return nil
	}

	defer func() {
		if recover() != nil {
			locals = nil
		}
	}()

	return mod.cfg.Locals(r, frames)
}
