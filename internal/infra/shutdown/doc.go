// Package shutdown provides graceful shutdown for relaychat.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic triggering for fatal runtime errors
//   - Timeout-based forced shutdown
//   - Cleanup hook registration, run in reverse order
package shutdown
