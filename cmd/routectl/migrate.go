package main

import (
	"backend-velohub/internal/config"
	"backend-velohub/internal/db"

	"github.com/spf13/cobra"
)

var migrateFn = db.Migrate

func newMigrateCmd() *cobra.Command {
	var version int
	var url string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations.",
		Long: `Migrate the database schema.

Without --version the schema is brought to the latest version.
--version 0 rolls every migration back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				url = cfg.PostgresURL
			}
			return migrateFn(url, version)
		},
	}
	cmd.Flags().IntVar(&version, "version", -1, "target schema version")
	cmd.Flags().StringVar(&url, "database-url", "", "postgres URL (defaults to POSTGRES_URL)")
	return cmd
}
