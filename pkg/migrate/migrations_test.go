package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestEstimatesMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_estimates_tables.sql")

	checks := []string{
		"CREATE TYPE estimate_status AS ENUM",
		"'no-response'",
		"CREATE TYPE amount_type AS ENUM",
		"CREATE TABLE IF NOT EXISTS estimates",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_estimates_number",
		"CREATE TABLE IF NOT EXISTS estimate_positions",
		"REFERENCES estimates(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInvoicesMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_invoices_tables.sql")

	checks := []string{
		"CREATE TYPE invoice_status AS ENUM",
		"CREATE TABLE IF NOT EXISTS invoices",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_number",
		"CREATE TABLE IF NOT EXISTS invoice_positions",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add estimate Notes!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_estimate_notes.sql") {
		t.Fatalf("unexpected file name %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestValidateDirRejectsBrokenMigrations(t *testing.T) {
	cases := map[string]struct {
		files   map[string]string
		wantErr string
	}{
		"bad name": {
			files:   map[string]string{"add_notes.sql": "-- +goose Up\n-- +goose Down\n"},
			wantErr: "invalid migration filename",
		},
		"missing down": {
			files:   map[string]string{"20240101000000_add_notes.sql": "-- +goose Up\nSELECT 1;\n"},
			wantErr: "missing",
		},
		"duplicate version": {
			files: map[string]string{
				"20240101000000_add_notes.sql": "-- +goose Up\n-- +goose Down\n",
				"20240101000000_add_owner.sql": "-- +goose Up\n-- +goose Down\n",
			},
			wantErr: "duplicate migration version 20240101000000",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			for file, body := range tc.files {
				if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
					t.Fatalf("write %s: %v", file, err)
				}
			}
			err := migrate.ValidateDir(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q in error, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplySQLiteSchemaIsIdempotent(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := migrate.ApplySQLiteSchema(context.Background(), conn); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	for _, table := range []string{"users", "estimates", "estimate_positions", "invoices", "invoice_positions"} {
		if !conn.Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestRunnerGuards(t *testing.T) {
	ctx := context.Background()
	if err := migrate.Run(ctx, nil, migrate.DefaultDir, "up"); err == nil || !strings.Contains(err.Error(), "db is required") {
		t.Fatalf("expected missing db error, got %v", err)
	}
	if err := migrate.MigrateToVersion(ctx, nil, migrate.DefaultDir, "20240101000000"); err == nil {
		t.Fatal("expected missing db error")
	}
}
