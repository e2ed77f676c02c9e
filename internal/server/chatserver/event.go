// Package chatserver implements the relaychat TCP server.
package chatserver

// eventKind discriminates the messages readers send to the coordinator.
type eventKind int

const (
	// eventConnected announces a freshly accepted connection.
	eventConnected eventKind = iota
	// eventDisconnected announces that a reader observed EOF or a
	// read error and has exited.
	eventDisconnected
	// eventMessage carries one newline-delimited frame from a client.
	eventMessage
	// eventShutdown asks the coordinator to close every session and
	// stop. Only the server emits it, exactly once.
	eventShutdown
)

// event is an immutable message from a reader to the coordinator.
//
// Readers never mutate shared state; all session and ban mutation is a
// reaction to one of these.
type event struct {
	kind eventKind

	// conn is set for eventConnected only.
	conn *Conn

	// addr is the remote host:port, set for eventDisconnected and
	// eventMessage.
	addr string

	// payload is the raw frame including its trailing delimiter, set
	// for eventMessage. Not required to be valid UTF-8.
	payload []byte
}

func connectedEvent(c *Conn) event {
	return event{kind: eventConnected, conn: c}
}

func disconnectedEvent(addr string) event {
	return event{kind: eventDisconnected, addr: addr}
}

func messageEvent(addr string, payload []byte) event {
	return event{kind: eventMessage, addr: addr, payload: payload}
}
