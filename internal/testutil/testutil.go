package testutil

import (
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/db"
)

// OpenInMemoryDB opens a fresh in-memory SQLite database named after the test
// and applies migrations. The database is closed on test cleanup.
func OpenInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := db.Open(db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// a single connection keeps the shared in-memory database alive and serialized
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// NewLogger returns a logger that discards output.
func NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
