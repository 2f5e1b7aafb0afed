// Package main provides the atlas command-line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &cli{}
	err := newRootCmd(rt).ExecuteContext(ctx)
	rt.Close()
	if err == nil {
		return
	}

	// Failures already shown to the user only set the exit code.
	var shown *shownError
	if !errors.As(err, &shown) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
