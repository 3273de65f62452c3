// cfgstore reads, edits and converts configuration files.
package main

import (
	"fmt"
	"os"

	"cfgstore/internal/cmd"
)

var (
	run    = func() error { return cmd.Execute() }
	osExit = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}
