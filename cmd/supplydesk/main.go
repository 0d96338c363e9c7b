package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register migrations and seeders from their init() funcs.
	_ "github.com/shashiranjanraj/supplydesk/database/migrations"
	_ "github.com/shashiranjanraj/supplydesk/database/seeders"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "supplydesk",
	Short:         "SupplyDesk office-supply request service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(adminHashCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Requests
	rootCmd.AddCommand(requestsListCmd)
	rootCmd.AddCommand(requestsStatusCmd)
	rootCmd.AddCommand(requestsDeleteCmd)
	rootCmd.AddCommand(requestsExportCmd)
	rootCmd.AddCommand(notifyCmd)
}
