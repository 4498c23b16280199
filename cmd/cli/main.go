package main

import (
	"fmt"
	"os"

	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Sinks:     export.DefaultRegistry(),
		Output:    os.Stdout,
		ErrOutput: os.Stderr,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
