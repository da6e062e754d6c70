// Command biostream serves the workflow editor over HTTP and manages its
// database.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
