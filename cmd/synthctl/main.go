package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"synthctl/internal/cli"
)

func main() {
	// Ctrl+C / SIGTERM cancel any in-flight package-manager invocation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(cli.Main(ctx))
}
