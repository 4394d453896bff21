package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/cartographer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Failed attempts have already printed their message
		if !errors.Is(err, cli.ErrAnalysisFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
