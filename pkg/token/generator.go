// Package token provides access token generation and comparison utilities.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// DefaultLength is the default token length in bytes.
const DefaultLength = 16

// Generate generates a cryptographically secure random access token.
//
// The returned token is uppercase hex encoded for easy manual entry.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token with the specified byte length.
func GenerateWithLength(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(bytes)), nil
}
