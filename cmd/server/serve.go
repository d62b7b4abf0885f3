package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diewo77/clientsync/internal/config"
	"github.com/diewo77/clientsync/internal/db"
	"github.com/diewo77/clientsync/internal/emailgen"
	"github.com/diewo77/clientsync/internal/mailer"
	"github.com/diewo77/clientsync/internal/server"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	conn, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()
	if err := a.migrate(conn); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	drafter, err := newDrafter(ctx, a.cfg.AI)
	if err != nil {
		a.log.Warn("email drafting disabled", zap.String("provider", a.cfg.AI.Provider), zap.Error(err))
	}
	var gen *emailgen.Generator
	if drafter != nil {
		gen = emailgen.NewGenerator(drafter, a.log)
	}
	sender, err := newSender(a.cfg.Mail)
	if err != nil {
		a.log.Warn("email sending disabled", zap.String("provider", a.cfg.Mail.Provider), zap.Error(err))
	}

	handler := server.New(server.Deps{
		DB:        conn,
		Service:   a.newService(conn),
		Generator: gen,
		Mailer:    sender,
		FromEmail: a.cfg.Mail.From,
		AvatarDir: a.cfg.Storage.AvatarDir,
		AvatarURL: a.cfg.Storage.AvatarBaseURL,
		Log:       a.log,
	})
	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("dev", a.cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	a.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("server stopped gracefully")
	return nil
}

// newDrafter returns nil when the selected provider has no credentials.
func newDrafter(ctx context.Context, cfg config.AIConfig) (emailgen.Drafter, error) {
	switch cfg.Provider {
	case "gemini":
		d, err := emailgen.NewGeminiDrafter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		cc := emailgen.DefaultGroqConfig(cfg.GroqAPIKey)
		if cfg.GroqBaseURL != "" {
			cc.BaseURL = cfg.GroqBaseURL
		}
		if cfg.GroqModel != "" {
			cc.Model = cfg.GroqModel
		}
		if cfg.Timeout > 0 {
			cc.Timeout = cfg.Timeout
		}
		d, err := emailgen.NewChatDrafter(cc)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// newSender returns nil when the selected provider is not configured.
func newSender(cfg config.MailConfig) (mailer.Sender, error) {
	switch cfg.Provider {
	case "smtp":
		s, err := mailer.NewSMTPSender(mailer.SMTPConfig{Addr: cfg.SMTPAddr, Username: cfg.SMTPUser, Password: cfg.SMTPPassword})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := mailer.NewResendSender(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
