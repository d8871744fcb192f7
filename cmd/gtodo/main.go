// Package main is the entry point for the gtodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gtodo/internal/cli"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	code := cli.Execute(ctx, os.Args[1:], cli.Options{EnvFile: ".env"})
	cancel()
	os.Exit(code)
}
