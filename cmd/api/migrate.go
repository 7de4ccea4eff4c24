package main

import (
	"github.com/spf13/cobra"

	"fileapi/internal/database"
	"fileapi/internal/database/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.NewPostgres(cmd.Context(), cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return err
		}
		defer db.Close()

		return migration.Up(cmd.Context(), db, logger, cfg.Database.Host)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
