package persistence

import "time"

// Session represents a gateway session issued after a successful login.
//
// Only a keyed digest of the bearer token is stored; the token itself never
// reaches persistence.
type Session struct {
	ID            string
	TokenDigest   string
	UserID        string
	UserIDNumeric bool
	Role          string
	Name          string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	RevokedAt     *time.Time
}
