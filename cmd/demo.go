package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/debugrun/harness"
	"github.com/mouse-blink/debugrun/internal/controller"
)

var demoFailFastFlag bool
var demoInteractiveFlag bool
var demoListFlag bool

// demoCmd represents the demo command.
var demoCmd = newDemoCmd()

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [tests...]",
		Short: "Run the built-in demo module",
		Long: `Run a small built-in module that shows how debugrun reports passing
tests, failing tests and captured output. Optional arguments narrow the
run down to the named tests.

With --fail-fast the first failure's panic escapes the harness and takes
the process down, the way it would surface in a debugger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mod := newDemoModule(cmd)

			if demoListFlag {
				controller.ListUnits(cmd.OutOrStdout(), mod.Units())
				return nil
			}

			results := mod.Run(args...)
			if results.Failed == 0 {
				return nil
			}

			if browseFailures() {
				if err := controller.ShowBrowser(mod.Name(), results); err != nil {
					return err
				}
			}

			return fmt.Errorf("%d of %d tests failed", results.Failed, results.Total)
		},
	}
	cmd.Flags().BoolVarP(&demoFailFastFlag, "fail-fast", "f", false, "stop at the first failing test")
	cmd.Flags().BoolVarP(&demoInteractiveFlag, "interactive", "i", false, "browse failures after the run")
	cmd.Flags().BoolVarP(&demoListFlag, "list", "l", false, "list the demo tests without running them")

	return cmd
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func newDemoModule(cmd *cobra.Command) harness.Module {
	color := cfg.ColorEnabled(controller.IsTTY(os.Stdout))

	mod := harness.New(
		harness.WithName("demo"),
		harness.WithPrefix("Demo"),
		harness.WithUI(controller.NewUI(cmd, color)),
		harness.WithFailFast(demoFailFastFlag || cfg.FailFast),
		harness.WithFrameTrim(cfg.FrameTrim),
	)

	mod.Register(DemoGreeting, DemoNumbers, DemoBroken)
	mod.RegisterSuite(DemoMathSuite{})

	slog.Debug("assembled demo module", "groups", len(mod.Units()))

	return mod
}

func browseFailures() bool {
	return (demoInteractiveFlag || cfg.Interactive) && controller.IsTTY(os.Stdout)
}

// The demo tests below mix passing, printing and panicking behavior so a
// single run shows every reporting path.

// DemoGreeting passes after a short print.
func DemoGreeting() {
	fmt.Println("hello from the demo module")
}

// DemoNumbers prints a few lines that stay captured on success.
func DemoNumbers() {
	for i := 1; i <= 3; i++ {
		fmt.Println("counting", i)
	}
}

// DemoBroken walks off the end of a slice, so its report carries both a
// traceback and the output printed before the panic.
func DemoBroken() {
	routes := []string{"home", "about"}
	fmt.Println("routes:", strings.Join(routes, ", "))

	want := 2
	fmt.Println("looking up route", want)
	fmt.Println("picked", routes[want])
}

// DemoMathSuite groups a passing and a failing arithmetic test.
type DemoMathSuite struct{}

func (DemoMathSuite) DemoAdd() {
	if got := add(19, 23); got != 42 {
		panic(fmt.Sprintf("add(19, 23) = %d, want 42", got))
	}
}

func (DemoMathSuite) DemoDivide() {
	a, b := 4, 0
	fmt.Printf("a=%d b=%d\n", a, b)
	fmt.Println("quotient", divide(a, b))
}

func add(a, b int) int { return a + b }

func divide(a, b int) int { return a / b }
