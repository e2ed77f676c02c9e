package tui

import (
	"bufio"
	"net"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// dialTimeout bounds the initial connection attempt.
const dialTimeout = 10 * time.Second

// serverLineMsg carries one line received from the relay.
type serverLineMsg string

// disconnectedMsg is sent when the server connection ends, for any
// reason including a ban or a rejected token.
type disconnectedMsg struct {
	err error
}

// Connection is the client side of a relay session.
type Connection struct {
	netConn net.Conn
}

// Dial connects to the relay at addr.
func Dial(addr string) (*Connection, error) {
	c, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &Connection{netConn: c}, nil
}

// Send transmits one chat line. The newline delimiter is appended here;
// the text itself must not contain one.
func (c *Connection) Send(line string) error {
	line = strings.TrimRight(line, "\r\n")
	_, err := c.netConn.Write([]byte(line + "\n"))
	return err
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.netConn.Close()
}

// readPump forwards server lines into the program until the connection
// ends, then reports the disconnect. Runs in its own goroutine.
func (c *Connection) readPump(send func(tea.Msg)) {
	scanner := bufio.NewScanner(c.netConn)
	for scanner.Scan() {
		send(serverLineMsg(strings.TrimRight(scanner.Text(), "\r")))
	}
	send(disconnectedMsg{err: scanner.Err()})
}

// Run connects to the relay and blocks in the TUI until the user quits
// or the connection drops.
func Run(addr string) error {
	conn, err := Dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	m := NewModel(addr, conn.Send)
	p := tea.NewProgram(m, tea.WithAltScreen())

	go conn.readPump(p.Send)

	_, err = p.Run()
	return err
}
