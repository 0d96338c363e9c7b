package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/database/seeders"
	"github.com/shashiranjanraj/supplydesk/pkg/database"
	"github.com/shashiranjanraj/supplydesk/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}

// supplydesk migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		fmt.Println("Running migrations…")
		return migration.New(database.DB).Run()
	},
}

// supplydesk migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		fmt.Println("Rolling back last batch…")
		return migration.New(database.DB).Rollback()
	},
}

// supplydesk migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		return migration.New(database.DB).Status()
	},
}

// supplydesk seed
var seedCmd = &cobra.Command{
	Use:   "seed [name...]",
	Short: "Run the database seeders (all, or only the named ones)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		fmt.Println("Running seeders…")
		return seeders.Run(database.DB, args...)
	},
}
