package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN(), 5)
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only writes into an empty categories table; calling it twice must
	// not duplicate anything. A database that already has categories is
	// left alone, so only idempotence can be checked there.
	var existing int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&existing); err != nil {
		t.Fatalf("count categories: %v", err)
	}

	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	var before int
	if err := db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&before); err != nil {
		t.Fatalf("count projects: %v", err)
	}

	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	var after int
	if err := db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&after); err != nil {
		t.Fatalf("count projects: %v", err)
	}

	if existing == 0 && before < 1 {
		t.Errorf("expected seeded projects, got %d", before)
	}
	if after != before {
		t.Errorf("second Seed changed project count: %d -> %d", before, after)
	}
}
