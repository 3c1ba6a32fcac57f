// The main package for the tiktok-scraper executable.
package main

import (
	"github.com/haianibrahim/tiktok-scraper/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
