package main

import (
	"github.com/spf13/cobra"

	"github.com/diewo77/clientsync/internal/db"
)

func (a *app) migrateCmd() *cobra.Command {
	var useSQL bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		Long: `Apply the database schema and exit.

By default the schema comes from the gorm models. With --sql the files in
the migrations directory are applied with golang-migrate (PostgreSQL only).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(conn) }()
			if useSQL {
				a.cfg.App.Migrations = true
			}
			if err := a.migrate(conn); err != nil {
				return err
			}
			a.log.Info("migrations completed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&useSQL, "sql", false, "apply SQL migration files instead of AutoMigrate")
	return cmd
}
