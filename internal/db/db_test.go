package db

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/diewo77/clientsync/internal/config"
)

func TestNormalizeDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{`"postgres://u:p@h:5432/d"`, "postgres://u:p@h:5432/d"},
		{"host=h  user=u   dbname=d", "host=h user=u dbname=d sslmode=disable"},
		{"host=h user=u dbname=d sslmode=require", "host=h user=u dbname=d sslmode=require"},
		{"sqlite://file::memory:", "sqlite://file::memory:"},
	}
	for _, tc := range cases {
		if got := NormalizeDSN(tc.in); got != tc.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=h password=secret dbname=d"); got != "host=h password=*** dbname=d" {
		t.Errorf("kv mask = %q", got)
	}
	if got := MaskDSN("postgres://u:secret@h:5432/d"); strings.Contains(got, "secret") {
		t.Errorf("url mask leaked password: %q", got)
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=cs password=pw dbname=clientsync sslmode=disable")
	want := "postgres://cs:pw@db:5432/clientsync?sslmode=disable"
	if got != want {
		t.Errorf("ToURLDSN = %q, want %q", got, want)
	}
	if got := ToURLDSN("host=db"); got != "host=db" {
		t.Errorf("partial DSN changed: %q", got)
	}
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	cfg := config.DatabaseConfig{RawDSN: "sqlite://file:" + t.Name() + "?mode=memory&cache=shared"}
	log := zaptest.NewLogger(t)

	conn, err := Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = Close(conn) })

	if err := Migrate(conn, false, "", cfg.DSN(), log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
	if err := RunSQLMigrations("migrations", cfg.DSN()); err == nil {
		t.Error("expected sql migrations to reject sqlite DSN")
	}
}
