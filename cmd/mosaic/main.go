// Package main is the entry point for the mosaic orchestrator.
//
// mosaic provisions self-service dataset templates: a NocoDB table for
// storage, a public shared entry form, and a Grafana dashboard per numeric
// field, then registers the result in the portal database.
//
// Commands: serve, migrate, init, cleanup, version.
//
// For detailed usage information, run:
//
//	mosaic --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaic-portal/mosaic/cmd/mosaic/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
