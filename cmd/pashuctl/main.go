// Command pashuctl administers a PashuVision instance: seeding sample data,
// exporting registrations, reporting statistics, triggering a sync pass, and
// migrating the central registry schema.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
