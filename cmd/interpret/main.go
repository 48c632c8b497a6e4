package main

import (
	"fmt"
	"os"

	"crime-case-workers/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
