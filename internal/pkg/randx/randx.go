/*
Package randx generates the identifiers used across the chat server:
session tokens, permanent user ids, and connection instance ids.

Session tokens come from crypto/rand over a Base62 alphabet; the id helpers
are UUID v4 strings.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// base62Chars is the alphabet for session tokens (0-9, A-Z, a-z).
	base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// SessionTokenLength is the fixed length of a session token.
	SessionTokenLength = 32
)

// SessionToken generates a high-entropy Base62 session token of
// SessionTokenLength characters. Uniqueness against the active session set
// is the caller's responsibility.
func SessionToken() (string, error) {
	result := make([]byte, SessionTokenLength)
	alphabetLen := big.NewInt(int64(len(base62Chars)))

	for i := range result {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for session token: %w", err)
		}

		result[i] = base62Chars[num.Int64()]
	}

	return string(result), nil
}

// UserID generates a permanent user identity. Assigned once at
// registration and never reused.
func UserID() string {
	return uuid.New().String()
}

// ConnectionID generates a process-unique connection instance id,
// distinguishing successive connections that reuse the same session token.
func ConnectionID() string {
	return uuid.New().String()
}
