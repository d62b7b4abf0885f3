// Package db opens the gorm connection and applies the schema.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/clientsync/internal/config"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Dialector picks the gorm driver for a normalised DSN.
func Dialector(dsn string) gorm.Dialector {
	if path, ok := SQLitePath(dsn); ok {
		return sqlite.Open(path)
	}
	return postgres.Open(dsn)
}

// Open connects with retries so the server can start before the database
// is ready, then pings it.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DSN())
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is empty")
	}
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < connectAttempts; i++ {
		conn, err = gorm.Open(Dialector(dsn), gcfg)
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", i+1), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := conn.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Info("database connected", zap.String("dsn", MaskDSN(dsn)))
	return conn, nil
}

// Close releases the underlying pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
