// Package domain defines the core domain models for relaychat.
package domain

import (
	"crypto/rand"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session constraints.
const (
	// SessionIDPrefix is the prefix for session IDs.
	SessionIDPrefix = "rcss-"

	// MaxAddrLength bounds the remote address key (IPv6 host:port).
	MaxAddrLength = 64
)

// Session represents one live connection to the relay.
//
// A session is created when a connection from a non-banned origin is
// accepted, and removed on disconnect, ban, or token rejection. The
// coordinator goroutine is the sole owner: no field is safe for
// concurrent access.
type Session struct {
	// ID is a unique identifier used for log correlation only.
	// Format: rcss-{ulid_lowercase}.
	ID string

	// Addr is the remote host:port address, the session table key.
	Addr string

	// Conn is the shared connection handle. The coordinator writes
	// notices and broadcasts through it and force-closes it on ban
	// or rejection; the reader goroutine owns the receive side.
	Conn io.WriteCloser

	// LastAccepted is the timestamp of the last message accepted for
	// broadcast. Compared against the fixed rate interval.
	LastAccepted time.Time

	// Strikes is the accumulated abuse counter. Monotonically
	// non-decreasing until reset by an accepted message.
	Strikes int

	// Authenticated reports whether the session passed the token gate.
	Authenticated bool
}

// NewSession creates a Session for a freshly accepted connection.
//
// LastAccepted is backdated by two rate intervals so the very first
// message is never counted as a rate violation.
func NewSession(addr string, conn io.WriteCloser, now time.Time, rate time.Duration) *Session {
	return &Session{
		ID:           NewSessionID(),
		Addr:         addr,
		Conn:         conn,
		LastAccepted: now.Add(-2 * rate),
	}
}

// NewSessionID generates a new session ID using ULID.
// Format: rcss-{ulid_lowercase}.
func NewSessionID() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	return SessionIDPrefix + strings.ToLower(id.String())
}

// OnTime reports whether a message arriving at now respects the fixed
// rate interval.
//
// A negative elapsed duration means the wall clock moved backward; the
// check fails open and the message counts as on time.
func (s *Session) OnTime(now time.Time, rate time.Duration) bool {
	elapsed := now.Sub(s.LastAccepted)
	if elapsed < 0 {
		return true
	}
	return elapsed >= rate
}

// Accept records an accepted broadcast message: the strike counter
// resets and the rate window restarts at now.
func (s *Session) Accept(now time.Time) {
	s.Strikes = 0
	s.LastAccepted = now
}

// Strike increments the abuse counter and reports whether the session
// has reached the given strike limit.
func (s *Session) Strike(limit int) bool {
	s.Strikes++
	return s.Strikes >= limit
}
