package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	s, err := NewSQLiteStorage(db)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	if err := s.SetItem(t.Context(), "dashboard-todos", "[]"); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}
	got, err := s.GetItem(t.Context(), "dashboard-todos")
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got != "[]" {
		t.Fatalf("unexpected value after roundtrip: %q", got)
	}
}
