// Command server is the bare SupplyDesk HTTP binary for container images:
// it boots from config and serves until SIGINT/SIGTERM. Use
// cmd/supplydesk for migrations and admin tasks.
package main

import (
	"context"
	"os"

	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/internal/kernel"
	"github.com/shashiranjanraj/supplydesk/internal/server"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
)

func main() {
	if err := run(context.Background()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	a, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return server.Start(ctx, ":"+config.AppPort(), a.Handler())
}
