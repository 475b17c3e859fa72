package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/irfit-gateway/internal/persistence"
)

const sessionColumns = `id, token_digest, user_id, user_id_numeric, role, name, expires_at, created_at, updated_at, revoked_at`

// SessionStore implements persistence.SessionRepository on SQLite.
type SessionStore struct {
	storage *Storage
}

var _ persistence.SessionRepository = (*SessionStore)(nil)

// NewSessionStore returns a session store backed by storage.
func NewSessionStore(storage *Storage) *SessionStore {
	return &SessionStore{storage: storage}
}

// CreateSession inserts a new session.
func (s *SessionStore) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	normalized, err := normalizeSession(session)
	if err != nil {
		return persistence.Session{}, err
	}

	var revokedAt sql.NullString
	if normalized.RevokedAt != nil {
		revokedAt = sql.NullString{String: formatTime(*normalized.RevokedAt), Valid: true}
	}

	_, err = s.storage.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		normalized.ID,
		normalized.TokenDigest,
		normalized.UserID,
		boolToInt(normalized.UserIDNumeric),
		normalized.Role,
		normalized.Name,
		formatTime(normalized.ExpiresAt),
		formatTime(normalized.CreatedAt),
		formatTime(normalized.UpdatedAt),
		revokedAt,
	)
	if err != nil {
		return persistence.Session{}, MapError(err)
	}
	return normalized, nil
}

// GetSessionByDigest loads the session whose token hashes to digest.
func (s *SessionStore) GetSessionByDigest(ctx context.Context, digest string) (persistence.Session, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	row := s.storage.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_digest = ?`, digest)
	return scanSession(row)
}

// TouchSession records activity on the session.
func (s *SessionStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	result, err := s.storage.db.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch session rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// RevokeSession marks the session as revoked. Revoking an already revoked
// session keeps the original revocation time.
func (s *SessionStore) RevokeSession(ctx context.Context, digest string, revokedAt time.Time) (persistence.Session, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var out persistence.Session
	err := s.storage.withTransaction(ctx, func(tx *sql.Tx) error {
		current, err := scanSession(tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_digest = ?`, digest))
		if err != nil {
			return err
		}
		if current.RevokedAt != nil {
			out = current
			return nil
		}

		at := revokedAt.UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE id = ?`,
			formatTime(at), formatTime(at), current.ID,
		); err != nil {
			return MapError(err)
		}
		current.RevokedAt = &at
		current.UpdatedAt = at
		out = current
		return nil
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return out, nil
}

// DeleteExpiredSessions removes sessions that expired on or before reference
// and reports how many were removed.
func (s *SessionStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	result, err := s.storage.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference))
	if err != nil {
		return 0, MapError(err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions rows affected: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session                         persistence.Session
		numeric                         int
		expiresAt, createdAt, updatedAt string
		revokedAt                       sql.NullString
	)
	err := row.Scan(
		&session.ID,
		&session.TokenDigest,
		&session.UserID,
		&numeric,
		&session.Role,
		&session.Name,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, MapError(err)
	}
	session.UserIDNumeric = numeric == 1

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, fmt.Errorf("parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, fmt.Errorf("parse updated_at: %w", err)
	}
	if revokedAt.Valid {
		revoked, err := parseTime(revokedAt.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("parse revoked_at: %w", err)
		}
		session.RevokedAt = &revoked
	}
	return session, nil
}

func normalizeSession(session persistence.Session) (persistence.Session, error) {
	session.ID = strings.TrimSpace(session.ID)
	session.TokenDigest = strings.TrimSpace(session.TokenDigest)
	session.UserID = strings.TrimSpace(session.UserID)
	session.Role = strings.TrimSpace(session.Role)
	if session.ID == "" || session.TokenDigest == "" || session.UserID == "" || session.Role == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	if session.ExpiresAt.IsZero() {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	session.ExpiresAt = session.ExpiresAt.UTC()
	session.CreatedAt = session.CreatedAt.UTC()
	session.UpdatedAt = session.UpdatedAt.UTC()
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC()
		session.RevokedAt = &revoked
	}
	return session, nil
}

// Timestamps use a fixed-width layout so that string comparison in SQL
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Parse(time.RFC3339Nano, value)
	}
	return t, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
