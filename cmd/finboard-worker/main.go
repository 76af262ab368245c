package main

import (
	"fmt"
	"os"

	"finboard/internal/cli"
)

func main() {
	if err := cli.NewWorkerRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
