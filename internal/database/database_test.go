package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kaniyamudhan/rupeeraiser/internal/config"
	"github.com/kaniyamudhan/rupeeraiser/internal/credentials"
)

func TestNewConfig(t *testing.T) {
	t.Run("rejects unknown drivers", func(t *testing.T) {
		if _, err := NewConfig("mysql", ""); err == nil {
			t.Fatal("expected error for unsupported driver")
		}
	})

	t.Run("builds postgres connection strings", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "6543")
		t.Setenv("DB_USER", "rr")
		t.Setenv("DB_PASSWORD", "pw")
		t.Setenv("DB_NAME", "creds")
		t.Setenv("DB_SSLMODE", "require")

		cfg, err := NewConfig(config.DriverPostgres, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, want := cfg.DSN(), "host=db.internal port=6543 user=rr password=pw dbname=creds sslmode=require"; got != want {
			t.Errorf("DSN = %q, want %q", got, want)
		}
		if got, want := cfg.MigrateURL(), "postgres://rr:pw@db.internal:6543/creds?sslmode=require"; got != want {
			t.Errorf("MigrateURL = %q, want %q", got, want)
		}
	})
}

func TestManager_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.db")
	cfg, err := NewConfig(config.DriverSQLite, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := m.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ctx := context.Background()
	store := credentials.NewGormStore(m.DB())
	if err := store.Save(ctx, credentials.Credential{Token: "tok", UserName: "Asha"}); err != nil {
		t.Fatalf("failed to save credential: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	// The credential survives a reopen of the same file.
	m, err = NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to reopen sqlite: %v", err)
	}
	defer func() { _ = m.Close() }()
	if err := m.Migrate(); err != nil {
		t.Fatalf("failed to migrate reopened database: %v", err)
	}

	cred, ok, err := credentials.NewGormStore(m.DB()).Load(ctx)
	if err != nil || !ok {
		t.Fatalf("expected stored credential, got ok=%v err=%v", ok, err)
	}
	if cred.Token != "tok" || cred.UserName != "Asha" {
		t.Errorf("unexpected credential %+v", cred)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("expected matching up/down migrations, got %d up and %d down", up, down)
	}
}
