// Package chatserver implements the relaychat TCP server.
package chatserver

import (
	"bytes"

	"github.com/yndnr/relaychat-go/internal/telemetry/logger"
)

// readChunkSize is the transient read buffer size. Frames larger than
// one chunk accumulate across reads.
const readChunkSize = 512

// runReader owns the receive side of one connection.
//
// It announces the connection, then reframes the byte stream into
// newline-delimited messages. Partial frames stay buffered across
// reads. Any read error, including EOF and the error produced when the
// coordinator force-closed the socket, ends the loop with a single
// Disconnected event.
func runReader(c *Conn, q *eventQueue, log logger.Logger) {
	addr := c.RemoteAddr()

	if !q.push(connectedEvent(c)) {
		// Coordinator already gone; nothing will ever service this
		// connection.
		_ = c.Close()
		return
	}

	var acc []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := c.Read(chunk)
		if n > 0 {
			acc = append(acc, chunk[:n]...)
			for {
				pos := bytes.IndexByte(acc, '\n')
				if pos < 0 {
					break
				}
				// Hand off one frame, delimiter included. The slice
				// must be copied: acc is reused for the remainder.
				frame := make([]byte, pos+1)
				copy(frame, acc[:pos+1])
				acc = acc[pos+1:]
				if !q.push(messageEvent(addr, frame)) {
					_ = c.Close()
					return
				}
			}
		}
		if err != nil {
			log.Debug("reader closing", "remote_addr", addr, "reason", err)
			if !q.push(disconnectedEvent(addr)) {
				_ = c.Close()
			}
			return
		}
	}
}
