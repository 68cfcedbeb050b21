// Package testutil provides shared test helpers for setting up databases
// and services.
package testutil

import (
	"os"
	"testing"

	"github.com/fieldworks/outreach/internal/caseservice"
	"github.com/fieldworks/outreach/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "outreach-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestService creates a case service over a temporary database, with no
// locator and no event publisher.
func TestService(t *testing.T) (*caseservice.Service, *store.DB) {
	t.Helper()
	db := TestDB(t)
	return caseservice.NewService(db, nil, nil, "testworker"), db
}
