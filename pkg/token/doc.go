// Package token provides access token generation and comparison utilities.
//
// This package implements cryptographically secure generation of the
// shared relay access token and constant-time submission checking.
//
// Token Format:
//
//   - Body: uppercase hex encoding of N random bytes (default 16)
//   - A 16 byte token encodes to 32 hex characters
//
// Security:
//
//   - Uses crypto/rand for CSPRNG
//   - Submissions are compared in constant time
//   - The token value itself is never logged, only its fingerprint
package token
