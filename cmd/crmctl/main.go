// Command crmctl browses CRM list views from a terminal. Filter state is kept
// per view in a local JSON file, so each invocation picks up where the last
// one left off.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
