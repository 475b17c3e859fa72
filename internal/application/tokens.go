package application

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// TokenDigester derives the stored form of session tokens with a keyed
// BLAKE2b-256 hash, so a leaked session table cannot be replayed.
type TokenDigester struct {
	key []byte
}

// NewTokenDigester builds a digester keyed by secret. Secrets longer than
// the BLAKE2b key limit are compressed to 32 bytes first.
func NewTokenDigester(secret string) (*TokenDigester, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("application: session secret is empty")
	}
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &TokenDigester{key: key}, nil
}

// Digest returns the hex encoded keyed digest of token.
func (d *TokenDigester) Digest(token string) string {
	h, err := blake2b.New256(d.key)
	if err != nil {
		// The key length is checked in NewTokenDigester.
		panic(err)
	}
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}
