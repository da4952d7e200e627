package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestInitMigrationCoversCoreTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var initFile string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_init.sql") {
			initFile = filepath.Join("migrations", e.Name())
			break
		}
	}
	if initFile == "" {
		t.Fatal("init migration not found")
	}

	b, err := os.ReadFile(initFile)
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := string(b)

	tables := []string{
		"users", "organizations", "org_members", "artists", "releases",
		"tracks", "split_shares", "qc_items", "delivery_jobs",
		"report_rows", "audit_logs",
	}
	for _, table := range tables {
		if !strings.Contains(sql, "CREATE TABLE "+table) {
			t.Errorf("init migration missing table %s", table)
		}
	}

	types := []string{"release_status", "delivery_target", "qc_severity", "user_role"}
	for _, typ := range types {
		if !strings.Contains(sql, "CREATE TYPE "+typ) {
			t.Errorf("init migration missing enum type %s", typ)
		}
	}
}
