package db

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/clientsync/internal/models"
)

// Tables that must exist once the schema is applied.
var requiredTables = []string{"users", "profiles", "clients", "tasks"}

// AutoMigrate creates or updates tables from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range []any{&models.User{}, &models.Profile{}, &models.Client{}, &models.Task{}} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations applies migrations/*.sql with golang-migrate. Only
// PostgreSQL DSNs are supported.
func RunSQLMigrations(dir, dsn string) error {
	if _, ok := SQLitePath(dsn); ok {
		return errors.New("sql migrations require a postgres DSN")
	}
	m, err := migrate.New("file://"+dir, ToURLDSN(dsn))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Migrate applies the schema, through SQL files when useSQL is set and
// through AutoMigrate otherwise, then checks the core tables exist.
func Migrate(conn *gorm.DB, useSQL bool, dir, dsn string, log *zap.Logger) error {
	if useSQL {
		log.Info("running sql migrations", zap.String("dir", dir))
		if err := RunSQLMigrations(dir, NormalizeDSN(dsn)); err != nil {
			return err
		}
	} else if err := AutoMigrate(conn); err != nil {
		return err
	}
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
