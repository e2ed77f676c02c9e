// Package domain defines the core domain models for relaychat.
package domain

import "time"

// Ban records a temporary block of one origin host.
//
// Bans are keyed by IP (not host:port) so every connection from the
// origin shares the block. Expiry is evaluated lazily at the next
// connection attempt; there is no background sweep.
type Ban struct {
	// IP is the banned origin host address.
	IP string

	// At is the timestamp the ban began.
	At time.Time
}

// Expired reports whether the ban window has fully elapsed at now.
//
// A negative elapsed duration (clock moved backward) keeps the ban in
// place rather than panicking; the remaining time is clamped to the
// full window.
func (b Ban) Expired(now time.Time, window time.Duration) bool {
	elapsed := now.Sub(b.At)
	return elapsed >= window
}

// Remaining returns how long the ban still holds at now.
//
// Returns zero for an expired ban, never a negative duration.
func (b Ban) Remaining(now time.Time, window time.Duration) time.Duration {
	elapsed := now.Sub(b.At)
	if elapsed < 0 {
		return window
	}
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}
