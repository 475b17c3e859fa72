package sqlite

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds SQLite connection settings.
type Config struct {
	// DSN is a file path or a "file:" URI understood by modernc.org/sqlite.
	DSN string
	// BusyTimeout sets how long a connection waits for a lock.
	BusyTimeout time.Duration
	// JournalMode sets the journal mode, WAL unless overridden.
	JournalMode string
	// MaxOpenConns caps the pool size. Zero leaves the database/sql default.
	MaxOpenConns int
}

// DefaultConfig returns the settings used by the gateway for dsn.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:         dsn,
		BusyTimeout: 5 * time.Second,
		JournalMode: "WAL",
	}
}

// driverDSN appends the pragmas to the DSN so that every pooled connection
// gets them, not just the first one.
func (c Config) driverDSN() (string, error) {
	dsn := strings.TrimSpace(c.DSN)
	if dsn == "" {
		return "", fmt.Errorf("sqlite: empty DSN")
	}

	busy := c.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	journal := strings.ToUpper(strings.TrimSpace(c.JournalMode))
	if journal == "" {
		journal = "WAL"
	}

	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", journal))

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params.Encode(), nil
}
