package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-declaration/pkg/renderers/tui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "declaration-cli: %v\n", err)
		os.Exit(1)
	}
}
