package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// A cancelled run already reported why; keep the exit code only.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "sc2dataset: %v\n", err)
		}
		os.Exit(1)
	}
}
