// Package domain defines the core domain models for relaychat.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling:
//
//   - session.go: the per-connection Session entity and rate/strike policy
//   - ban.go: the per-origin Ban record and its lazy expiry rules
//   - errors.go: structured domain errors with stable error codes
//
// All mutation of sessions and bans happens on the coordinator
// goroutine; the types here carry no locking of their own.
package domain
