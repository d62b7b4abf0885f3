// Command clientsync runs the ClientSync API server and its maintenance
// tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/clientsync/auth"
	"github.com/diewo77/clientsync/internal/config"
	"github.com/diewo77/clientsync/internal/db"
	"github.com/diewo77/clientsync/internal/logging"
	"github.com/diewo77/clientsync/internal/services"
)

var Version = "dev"

// app carries what PersistentPreRunE prepares for every subcommand.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "clientsync",
		Short:        "ClientSync API server and maintenance commands",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "optional YAML config file")
	root.AddCommand(a.serveCmd(), a.migrateCmd(), a.cleanupCmd())
	return root
}

func (a *app) init() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	auth.SetSecret(cfg.App.SessionSecret)
	return nil
}

func (a *app) openDB(ctx context.Context) (*gorm.DB, error) {
	return db.Open(ctx, a.cfg.Database, a.log)
}

func (a *app) migrate(conn *gorm.DB) error {
	return db.Migrate(conn, a.cfg.App.Migrations, a.cfg.App.MigrationsDir, a.cfg.Database.DSN(), a.log)
}

func (a *app) newService(conn *gorm.DB) *services.DashboardService {
	opts := []services.Option{
		services.WithRetention(a.cfg.Cleanup.Retention),
		services.WithCleanupOnRead(a.cfg.Cleanup.OnDashboard),
		services.WithSenderTTL(a.cfg.Mail.SenderTTL),
	}
	if st := a.cfg.Storage; st.AvatarDir != "" {
		opts = append(opts, services.WithAvatarStore(&services.FileAvatarStore{
			Dir:      st.AvatarDir,
			BaseURL:  st.AvatarBaseURL,
			MaxBytes: st.MaxAvatarSize,
		}))
	}
	return services.NewDashboardService(conn, a.log, opts...)
}
