package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDir_Migrations(t *testing.T) {
	t.Parallel()

	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir(migrations) error: %v", err)
	}
}

func TestValidateDir_RejectsBadFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "001_bad.sql")
	if err := os.WriteFile(path, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for short version prefix, got nil")
	}
}

func TestValidateDir_RejectsMissingDown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "20250901000001_only_up.sql")
	if err := os.WriteFile(path, []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for missing Down section, got nil")
	}
}

func TestCreateSQLMigration_SanitizesName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Price Lists!")
	if err != nil {
		t.Fatalf("CreateSQLMigration error: %v", err)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration failed validation: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("migration written outside dir: %s", path)
	}
}
