// Package chatserver implements the relaychat TCP server.
//
// The server is built around three cooperating pieces:
//
//   - One reader goroutine per connection (reader.go) that reframes the
//     raw byte stream into newline-delimited messages and emits events.
//   - An unbounded many-producer single-consumer event queue (queue.go)
//     through which all cross-connection activity funnels.
//   - A single coordinator goroutine (coordinator.go) that exclusively
//     owns the session and ban tables and runs the connect, auth,
//     rate-limit and ban state machine.
//
// Because every event passes through the single consumer, the session
// and ban tables need no locking: the coordinator imposes a total order
// on all state transitions. Readers never touch shared state directly.
//
// The queue is deliberately unbounded: a slow coordinator under heavy
// connection load grows the queue instead of blocking readers. This is
// a documented limitation, not an oversight.
package chatserver
