package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"010_waitlist.sql": "SELECT 10;",
		"002_quota.sql":    "SELECT 2;",
		"001_patient.sql":  "SELECT 1;",
		"005_slot.sql":     "SELECT 5;",
	})

	migrations, err := NewMigrator(nil, dir, "").LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	want := []int{1, 2, 5, 10}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migrations))
	}
	for i, v := range want {
		if migrations[i].Version != v {
			t.Errorf("migration[%d]: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
	if migrations[0].SQL != "SELECT 1;" {
		t.Errorf("unexpected SQL %q", migrations[0].SQL)
	}
}

func TestLoadMigrations_SkipsUnversionedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"001_patient.sql": "SELECT 1;",
		"readme.sql":      "-- no prefix",
		"notes.txt":       "not sql",
		"abc_bad.sql":     "-- non-numeric prefix",
	})
	if err := os.Mkdir(filepath.Join(dir, "002_dir.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	migrations, err := NewMigrator(nil, dir, "").LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 1 || migrations[0].Name != "001_patient.sql" {
		t.Fatalf("expected only 001_patient.sql, got %+v", migrations)
	}
}

func TestLoadMigrations_EmptyAndMissingDir(t *testing.T) {
	migrations, err := NewMigrator(nil, t.TempDir(), "").LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected no migrations, got %d", len(migrations))
	}

	if _, err := NewMigrator(nil, "/nonexistent/migrations", "").LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestNewMigrator_Schema(t *testing.T) {
	m := NewMigrator(nil, "migrations", "")
	if m.schema != "public" {
		t.Errorf("expected default schema public, got %s", m.schema)
	}
	if got := m.table(); got != `"public"."schema_migrations"` {
		t.Errorf("unexpected table name %s", got)
	}

	m = NewMigrator(nil, "migrations", `clinic"; DROP`)
	if got := m.table(); got != `"clinic""; DROP"."schema_migrations"` {
		t.Errorf("schema not sanitized: %s", got)
	}
}

func TestStatusOf(t *testing.T) {
	at := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	migrations := []Migration{
		{Version: 1, Name: "001_patient.sql"},
		{Version: 2, Name: "002_schedule.sql"},
	}

	got := statusOf(migrations, map[int]time.Time{1: at})
	if len(got) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(got))
	}
	if !got[0].Applied || got[0].AppliedAt == nil || !got[0].AppliedAt.Equal(at) {
		t.Errorf("expected 001 applied at %v, got %+v", at, got[0])
	}
	if got[1].Applied || got[1].AppliedAt != nil {
		t.Errorf("expected 002 pending, got %+v", got[1])
	}
}
