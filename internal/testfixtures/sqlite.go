package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/irfit-gateway/internal/persistence"
	"github.com/example/irfit-gateway/internal/persistence/sqlite"
)

// SQLiteHarness gives tests a migrated session store in a temporary file.
type SQLiteHarness struct {
	Storage  *sqlite.Storage
	Sessions persistence.SessionRepository

	cleanup func()
}

// Close releases the database. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a fresh database under tb.TempDir.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "irfit.db")
	storage, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:  storage,
		Sessions: sqlite.NewSessionStore(storage),
		cleanup: func() {
			_ = storage.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
