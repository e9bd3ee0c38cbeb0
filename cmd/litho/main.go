// Command litho runs the component framework's terminal demo and its
// inspection tools.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/litho/cmd/litho/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
