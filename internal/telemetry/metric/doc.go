// Package metric provides Prometheus metrics for relaychat.
//
// This package implements metrics collection and exposition:
//
//   - metrics.go: the instrument set updated by the coordinator and
//     the accept loop
//   - handler.go: the HTTP exposition handler
//
// Metrics include:
//
//   - Connection and session counts
//   - Broadcast, strike, and ban counters
//   - Event queue depth
//
// Exposition is optional and disabled by default; when enabled it is
// served on a separate address so the chat port stays the only
// mandatory network surface.
package metric
