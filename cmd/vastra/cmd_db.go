package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/database/seeders"
	"github.com/shashiranjanraj/vastra/pkg/database"
	"github.com/shashiranjanraj/vastra/pkg/migration"
)

// withDB loads config, opens the database and closes it after fn.
func withDB(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	db, err := database.Connect(ctx)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

// vastra migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			ran, err := migration.New(db).Run(cmd.Context())
			for _, name := range ran {
				fmt.Println("Migrated:", name)
			}
			if err == nil && len(ran) == 0 {
				fmt.Println("Nothing to migrate.")
			}
			return err
		})
	},
}

// vastra migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			undone, err := migration.New(db).Rollback(cmd.Context())
			for _, name := range undone {
				fmt.Println("Rolled back:", name)
			}
			if err == nil && len(undone) == 0 {
				fmt.Println("Nothing to roll back.")
			}
			return err
		})
	},
}

// vastra migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			rows, err := migration.New(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
			for _, s := range rows {
				ran, batch := "No", "-"
				if s.Ran {
					ran, batch = "Yes", fmt.Sprint(s.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, s.Name)
			}
			return w.Flush()
		})
	},
}

// vastra db:seed
var seedCmd = &cobra.Command{
	Use:     "db:seed",
	Aliases: []string{"seed"},
	Short:   "Seed the admin user and the demo catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			return seeders.RunAll(cmd.Context(), db, os.Stdout)
		})
	},
}
