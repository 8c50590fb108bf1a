// Package harness runs registered test functions sequentially under
// stdout capture and reports the outcome as structured records.
//
// A test module registers its tests with a Module and calls Run from
// its own main function, so the whole run stays inside one ordinary
// process and a debugger can step straight into a failing test.
package harness

import (
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/mouse-blink/debugrun/capture"
	"github.com/mouse-blink/debugrun/internal/controller"
	m "github.com/mouse-blink/debugrun/model"
)

const defaultPrefix = "Test"

// harnessPkg marks the runner's own frames in collected tracebacks:
// they are hidden, along with every caller outer to them, so a failure
// points at the test body alone. The trailing dot keeps sibling
// package paths out of the match.
const harnessPkg = "github.com/mouse-blink/debugrun/harness."

// UI receives the progress protocol of a run: a header per group, a
// start and an outcome call per unit, and the final summary.
type UI interface {
	GroupStarted(group string, units []string)
	UnitStarted(name string)
	UnitPassed(name string)
	UnitFailed(name string)
	Summary(results *m.Results)
}

// LocalsFunc supplies best-effort local variables for a failure. The
// returned map lands in Failure.Locals untouched; a nil map or a panic
// inside the hook leaves the record without locals.
type LocalsFunc func(recovered any, frames []m.Frame) map[string]string

// Module runs a set of registered tests.
type Module interface {
	// Register adds module-level test functions. Each must be a named
	// function whose local name starts with the module prefix.
	Register(fns ...func())

	// RegisterNamed adds a single test function under an explicit
	// name, for closures whose runtime name carries no identifier.
	RegisterNamed(name string, fn func())

	// RegisterSuite adds every prefixed exported method of suite as a
	// test. The dynamic type name of suite must start with the module
	// prefix. Pass a pointer so methods on the pointer receiver are
	// included.
	RegisterSuite(suite any)

	// Name returns the module name used in group headers.
	Name() string

	// Units returns the groups and unit names in the order a Run
	// would execute them, without running anything.
	Units() []m.Group

	// Run executes the registered tests and reports the outcome. When
	// names are given, only units whose local name matches one of
	// them run. Failures accumulate unless the module was built with
	// WithFailFast, in which case the first panic is recorded and
	// then re-raised, skipping the summary.
	Run(names ...string) *m.Results
}

// Config collects the knobs a Module is created with.
type Config struct {
	Name      string
	Prefix    string
	FailFast  bool
	FrameTrim int
	Locals    LocalsFunc
	UI        UI
	Switch    *capture.Switch
}

// Option adjusts the module configuration.
type Option func(*Config)

// WithName overrides the module name. The default is the stem of the
// file that calls New.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithPrefix overrides the name prefix that marks functions, suite
// types and suite methods as tests. The default is "Test".
func WithPrefix(prefix string) Option {
	return func(c *Config) { c.Prefix = prefix }
}

// WithFailFast makes Run re-raise the first test panic after recording
// it instead of accumulating failures.
func WithFailFast(failFast bool) Option {
	return func(c *Config) { c.FailFast = failFast }
}

// WithFrameTrim drops n additional outermost frames from recorded
// tracebacks, for modules that route every registered test through a
// shared wrapper of their own.
func WithFrameTrim(n int) Option {
	return func(c *Config) {
		if n < 0 {
			n = 0
		}

		c.FrameTrim = n
	}
}

// WithLocals installs a hook that supplies local variables for failure
// records.
func WithLocals(fn LocalsFunc) Option {
	return func(c *Config) { c.Locals = fn }
}

// WithUI replaces the console reporter with a custom sink.
func WithUI(ui UI) Option {
	return func(c *Config) { c.UI = ui }
}

// WithSwitch makes the module capture through an existing Switch
// instead of creating its own.
func WithSwitch(sw *capture.Switch) Option {
	return func(c *Config) { c.Switch = sw }
}

// unit is a single runnable test.
type unit struct {
	name string
	fn   func()
}

// group is a named collection of units reported under one header. For
// suites the name is the bare type name until Run qualifies it.
type group struct {
	name  string
	units []unit
}

type module struct {
	cfg    Config
	funcs  []unit
	suites []group
	gate   *semaphore.Weighted
}

// New creates a test module. Without options the module is named after
// the calling file, discovers by the "Test" prefix, accumulates
// failures and reports on the console the process started with.
func New(opts ...Option) Module {
	cfg := Config{
		Name:   callerStem(),
		Prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Prefix == "" {
		panic("harness: prefix must not be empty")
	}

	if cfg.Switch == nil {
		cfg.Switch = capture.New()
	}

	if cfg.UI == nil {
		cfg.UI = controller.NewConsole(cfg.Switch.Console(), controller.IsTTY(cfg.Switch.Console()))
	}

	return &module{
		cfg:  cfg,
		gate: semaphore.NewWeighted(1),
	}
}

func (mod *module) Name() string {
	return mod.cfg.Name
}

// callerStem derives the default module name from the file that calls
// New, so a module declared in calc.go reports as "calc".
func callerStem() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		return "module"
	}

	base := filepath.Base(file)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
