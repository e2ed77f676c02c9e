package chatserver

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/yndnr/relaychat-go/internal/telemetry/logger"
)

// testLogger returns a logger that stays quiet during tests.
func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "error", Output: io.Discard})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

// collectEvents pops n events or fails the test on timeout.
func collectEvents(t *testing.T, q *eventQueue, n int) []event {
	t.Helper()
	out := make([]event, 0, n)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			ev, ok := q.pop()
			if !ok {
				return
			}
			out = append(out, ev)
		}
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out after %d of %d events", len(out), n)
	}
	if len(out) != n {
		t.Fatalf("queue closed after %d of %d events", len(out), n)
	}
	return out
}

func TestRunReader_ReframesAcrossReads(t *testing.T) {
	client, server := net.Pipe()
	q := newEventQueue()

	go runReader(newConn(server), q, testLogger(t))

	go func() {
		client.Write([]byte("hel"))
		client.Write([]byte("lo\nwor"))
		client.Write([]byte("ld\n"))
		client.Close()
	}()

	events := collectEvents(t, q, 4)

	if events[0].kind != eventConnected {
		t.Fatalf("event 0 kind = %v, want connected", events[0].kind)
	}
	if events[1].kind != eventMessage || string(events[1].payload) != "hello\n" {
		t.Errorf("event 1 = %v %q, want message %q", events[1].kind, events[1].payload, "hello\n")
	}
	if events[2].kind != eventMessage || string(events[2].payload) != "world\n" {
		t.Errorf("event 2 = %v %q, want message %q", events[2].kind, events[2].payload, "world\n")
	}
	if events[3].kind != eventDisconnected {
		t.Errorf("event 3 kind = %v, want disconnected", events[3].kind)
	}
}

func TestRunReader_MultipleFramesPerRead(t *testing.T) {
	client, server := net.Pipe()
	q := newEventQueue()

	go runReader(newConn(server), q, testLogger(t))

	go func() {
		client.Write([]byte("a\nb\nc\n"))
		client.Close()
	}()

	events := collectEvents(t, q, 5)

	want := []string{"a\n", "b\n", "c\n"}
	for i, w := range want {
		ev := events[i+1]
		if ev.kind != eventMessage || string(ev.payload) != w {
			t.Errorf("event %d = %v %q, want message %q", i+1, ev.kind, ev.payload, w)
		}
	}
	if events[4].kind != eventDisconnected {
		t.Errorf("last event kind = %v, want disconnected", events[4].kind)
	}
}

func TestRunReader_PartialFrameDiscardedOnDisconnect(t *testing.T) {
	client, server := net.Pipe()
	q := newEventQueue()

	go runReader(newConn(server), q, testLogger(t))

	go func() {
		client.Write([]byte("complete\nincompl"))
		client.Close()
	}()

	events := collectEvents(t, q, 3)

	if events[1].kind != eventMessage || string(events[1].payload) != "complete\n" {
		t.Errorf("event 1 = %v %q, want message %q", events[1].kind, events[1].payload, "complete\n")
	}
	// The unterminated tail never becomes a message.
	if events[2].kind != eventDisconnected {
		t.Errorf("event 2 kind = %v, want disconnected", events[2].kind)
	}
}

func TestRunReader_ClosedQueueClosesConn(t *testing.T) {
	fc := &fakeNetConn{remote: "192.0.2.9:4000"}
	q := newEventQueue()
	q.close()

	runReader(newConn(fc), q, testLogger(t))

	if !fc.isClosed() {
		t.Error("connection should be closed when the queue is gone")
	}
}
