package data

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

// Creates a database for testing. For the sake of simplicity, this only uses the
// SQLite engine and creates a new database on every invocation since it is relatively
// cheap to do so (especially given the low number of tests).
func setUpDatabase(t *testing.T) *gorm.DB {
	testDBFile := filepath.Join(t.TempDir(), "test.db")
	db, err := Open("sqlite", testDBFile, false)
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}
	t.Cleanup(func() { Shutdown(db) })
	return db
}

func TestOpen_UnsupportedEngine(t *testing.T) {
	if _, err := Open("mysql", "whatever", false); err == nil {
		t.Error("expected an error for an unsupported engine")
	}
}
