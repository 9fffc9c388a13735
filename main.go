// The main package for the scraper executable.
package main

import (
	"github.com/OptimNow/my-scraper/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
