// Command fpscam-scenario runs Lua camera scenarios and prints a report for each.
// It exits non-zero when a scenario cannot be run or an expectation fails.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	s, err := parseSettings(flag.CommandLine, os.Args[1:])
	if err != nil {
		exitf("Error: %v", err)
	}
	if err := run(s, os.Stdout, os.Stderr); err != nil {
		exitf("Error: %v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
