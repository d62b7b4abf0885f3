package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diewo77/clientsync/internal/db"
)

func (a *app) cleanupCmd() *cobra.Command {
	var (
		userID string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove inactive clients and their tasks",
		Long: `Remove inactive clients and their tasks.

  clientsync cleanup --user <id>   remove every inactive client of one user
  clientsync cleanup --all         remove inactive clients older than the
                                   retention period for all users`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (userID == "") == !all {
				return errors.New("specify exactly one of --user or --all")
			}
			conn, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(conn) }()
			svc := a.newService(conn)

			if all {
				n, err := svc.CleanupAllUsers(cmd.Context())
				a.log.Info("cleanup finished", zap.Int("deleted", n), zap.Duration("retention", svc.Retention()))
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d inactive clients\n", n)
				return err
			}
			res := svc.TriggerCleanup(cmd.Context(), userID)
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			if !res.Success {
				return errors.New(res.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to clean up")
	cmd.Flags().BoolVar(&all, "all", false, "clean up every user, honouring the retention period")
	return cmd
}
