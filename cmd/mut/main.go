// Package main is the entry point for the Manx Utilities meter TUI.
// It wires configuration, the poller and the chosen front end.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/j-veylop/manx-utilities-tui/internal/services/meter"
)

// Exit codes beyond the generic failure.
const (
	exitFailure = 1
	exitAuth    = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		var authErr *meter.AuthenticationError
		if errors.As(err, &authErr) {
			os.Exit(exitAuth)
		}
		os.Exit(exitFailure)
	}
}
