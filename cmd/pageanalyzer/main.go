// The main package for the pageanalyzer executable.
package main

import "github.com/JakeFAU/page-analyzer/cmd"

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
