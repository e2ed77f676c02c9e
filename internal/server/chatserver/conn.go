// Package chatserver implements the relaychat TCP server.
package chatserver

import (
	"net"
	"sync/atomic"
)

// Conn is the shared handle for one client socket.
//
// Ownership is split: the reader goroutine receives from it, the
// coordinator writes notices and broadcasts to it, and either side may
// close it. Close is idempotent so a coordinator-initiated shutdown
// racing the reader's own teardown is benign.
type Conn struct {
	netConn net.Conn
	closed  atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{netConn: c}
}

// Read reads from the underlying socket.
func (c *Conn) Read(p []byte) (int, error) {
	return c.netConn.Read(p)
}

// Write writes to the underlying socket.
func (c *Conn) Write(p []byte) (int, error) {
	return c.netConn.Write(p)
}

// WriteLine writes s followed by a newline as one outbound frame.
func (c *Conn) WriteLine(s string) error {
	_, err := c.netConn.Write(append([]byte(s), '\n'))
	return err
}

// Close closes the underlying socket exactly once.
//
// Subsequent calls return nil. The reader observing the resulting
// read error treats it as a normal end of stream.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the remote host:port of the connection.
func (c *Conn) RemoteAddr() string {
	return c.netConn.RemoteAddr().String()
}

// RemoteIP returns the remote host without the port, the ban table key.
func (c *Conn) RemoteIP() string {
	return hostOnly(c.RemoteAddr())
}

// hostOnly strips the port from a host:port address. Addresses that do
// not parse are returned unchanged so they still form a stable key.
func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
