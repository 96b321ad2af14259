// Command scorecli analyzes student score workbooks and CSV files from the
// terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scorecli: %v\n", err)
		os.Exit(1)
	}
}
