package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMigrationFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const wellFormed = "-- +goose Up\nCREATE TABLE t (id INT);\n\n-- +goose Down\nDROP TABLE t;\n"

func TestValidateDirAcceptsWellFormedMigrations(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "20260101120000_create_t.sql", wellFormed)
	writeMigrationFile(t, dir, "20260102120000_alter_t.sql", wellFormed)
	writeMigrationFile(t, dir, "README.md", "not a migration")

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("expected valid dir, got %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "create_t.sql", wellFormed)

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "invalid migration filename") {
		t.Fatalf("expected filename error, got %v", err)
	}
}

func TestValidateDirRejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "20260101120000_create_t.sql", wellFormed)
	writeMigrationFile(t, dir, "20260101120000_create_u.sql", wellFormed)

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestValidateDirRejectsMissingGooseMarkers(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "20260101120000_create_t.sql", "-- +goose Up\nCREATE TABLE t (id INT);\n")

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "goose Down") {
		t.Fatalf("expected missing marker error, got %v", err)
	}
}

func TestValidateDirReportsAllProblems(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "badname.sql", wellFormed)
	writeMigrationFile(t, dir, "20260101120000_create_t.sql", "-- +goose Up\nCREATE TABLE t (id INT);\n")

	err := ValidateDir(dir)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	if !strings.Contains(err.Error(), "invalid migration filename") || !strings.Contains(err.Error(), "goose Down") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}

func TestCreateSQLMigrationWritesSkeleton(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Bid Index!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	base := filepath.Base(path)
	if !sqlFileRe.MatchString(base) {
		t.Fatalf("created filename %q does not match migration pattern", base)
	}
	if !strings.Contains(base, "add_bid_index") {
		t.Fatalf("expected sanitized name in %q", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created migration: %v", err)
	}
	if !strings.Contains(string(data), "-- +goose Up") || !strings.Contains(string(data), "-- +goose Down") {
		t.Fatalf("skeleton missing goose markers: %s", data)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created skeleton should validate, got %v", err)
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "   "); err == nil {
		t.Fatalf("expected error for name with no usable characters")
	}
}
