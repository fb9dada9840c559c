package main

import (
	"github.com/spf13/cobra"

	"folio/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Migrate(db)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Status(db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample categories, projects and comments into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}
		return database.Seed(db)
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}
