// Debugrun is a debugger-friendly test harness: tests are plain
// functions, failures are panics, and reports keep the stdout each
// test printed.
package main

import "github.com/mouse-blink/debugrun/cmd"

func main() {
	cmd.Execute()
}
