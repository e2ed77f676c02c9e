// Package token provides access token generation and comparison utilities.
package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Equal compares a submitted value against the expected token.
//
// Uses constant-time comparison to prevent timing attacks. Length is
// leaked, which is acceptable: the token length is public knowledge.
func Equal(submitted, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) == 1
}

// Fingerprint returns a short identifier for a token, safe for logging.
//
// The fingerprint is the first 8 hex characters of the SHA-256 hash.
// It identifies the token for operator correlation without revealing it.
func Fingerprint(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])[:8]
}
