package harness

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/mouse-blink/debugrun/internal/stack"
)

func (mod *module) Register(fns ...func()) {
	for _, fn := range fns {
		name := funcName(fn)
		if !mod.prefixed(name) {
			panic(fmt.Sprintf("harness: registered function %q does not start with prefix %q", name, mod.cfg.Prefix))
		}

		mod.funcs = append(mod.funcs, unit{name: name, fn: fn})
	}
}

func (mod *module) RegisterNamed(name string, fn func()) {
	if !mod.prefixed(name) {
		panic(fmt.Sprintf("harness: registered name %q does not start with prefix %q", name, mod.cfg.Prefix))
	}

	if fn == nil {
		panic(fmt.Sprintf("harness: registered name %q has a nil function", name))
	}

	mod.funcs = append(mod.funcs, unit{name: name, fn: fn})
}

func (mod *module) RegisterSuite(suite any) {
	v := reflect.ValueOf(suite)
	t := v.Type()

	name := t.Name()
	if t.Kind() == reflect.Pointer {
		name = t.Elem().Name()
	}

	if !mod.prefixed(name) {
		panic(fmt.Sprintf("harness: suite type %q does not start with prefix %q", name, mod.cfg.Prefix))
	}

	units := []unit{}

	for i := range t.NumMethod() {
		method := t.Method(i)
		if !mod.prefixed(method.Name) {
			continue
		}

		// The receiver counts as the first argument here.
		if method.Type.NumIn() != 1 || method.Type.NumOut() != 0 {
			panic(fmt.Sprintf(
				"harness: suite method %s.%s must take no arguments and return nothing", name, method.Name))
		}

		fn, ok := v.Method(i).Interface().(func())
		if !ok {
			panic(fmt.Sprintf("harness: suite method %s.%s is not callable as func()", name, method.Name))
		}

		units = append(units, unit{name: method.Name, fn: fn})
	}

	mod.suites = append(mod.suites, group{name: name, units: units})
}

func (mod *module) prefixed(name string) bool {
	return name != "" && strings.HasPrefix(name, mod.cfg.Prefix)
}

// funcName resolves the local name of a registered function, e.g.
// "TestParser" for github.com/acme/calc.TestParser. Anonymous
// functions resolve to names like "func1" and fail the prefix check.
func funcName(fn func()) string {
	if fn == nil {
		return ""
	}

	rf := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if rf == nil {
		return ""
	}

	return stack.ShortName(rf.Name())
}
