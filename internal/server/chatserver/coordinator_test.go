package chatserver

import (
	"fmt"
	"testing"
	"time"

	"github.com/yndnr/relaychat-go/internal/core/domain"
	"github.com/yndnr/relaychat-go/internal/telemetry/metric"
)

const testToken = "2B5CA3B5E1D4FE0A"

// fakeClock is a manually advanced clock for deterministic rate and ban
// window tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) Rewind(d time.Duration)  { c.t = c.t.Add(-d) }

func newTestCoordinator(t *testing.T, cfg *Config) (*coordinator, *fakeClock) {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	co := newCoordinator(cfg, newEventQueue(), testToken, testLogger(t), metric.NewUnregistered())
	clk := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	co.now = clk.Now
	return co, clk
}

// connect admits a fake client at addr and returns its connection.
func connect(t *testing.T, co *coordinator, addr string) *fakeNetConn {
	t.Helper()
	fc := &fakeNetConn{remote: addr}
	co.handleConnected(newConn(fc))
	return fc
}

// authenticate submits the shared token for the client at addr.
func authenticate(t *testing.T, co *coordinator, addr string) {
	t.Helper()
	co.handleMessage(addr, []byte(testToken+"\n"))
	sess, ok := co.sessions[addr]
	if !ok {
		t.Fatalf("session %s removed during authentication", addr)
	}
	if !sess.Authenticated {
		t.Fatalf("session %s not authenticated after token submission", addr)
	}
}

func hasLine(fc *fakeNetConn, want string) bool {
	for _, line := range fc.lines() {
		if line == want {
			return true
		}
	}
	return false
}

func TestCoordinator_AuthFlow(t *testing.T) {
	co, _ := newTestCoordinator(t, nil)

	fc := connect(t, co, "192.0.2.1:5000")
	if !hasLine(fc, noticePrompt) {
		t.Fatalf("client did not receive token prompt, got %q", fc.lines())
	}

	authenticate(t, co, "192.0.2.1:5000")
	if !hasLine(fc, noticeWelcome) {
		t.Errorf("client did not receive welcome, got %q", fc.lines())
	}
}

func TestCoordinator_TokenWhitespaceTolerated(t *testing.T) {
	co, _ := newTestCoordinator(t, nil)

	connect(t, co, "192.0.2.1:5000")
	co.handleMessage("192.0.2.1:5000", []byte("  "+testToken+"\r\n"))

	sess := co.sessions["192.0.2.1:5000"]
	if sess == nil || !sess.Authenticated {
		t.Error("token with surrounding whitespace should authenticate")
	}
}

func TestCoordinator_WrongTokenRejectsWithoutStrike(t *testing.T) {
	co, _ := newTestCoordinator(t, nil)
	addr := "192.0.2.1:5000"

	fc := connect(t, co, addr)
	co.handleMessage(addr, []byte("0000000000000000\n"))

	if !hasLine(fc, noticeRejected) {
		t.Errorf("client did not receive rejection, got %q", fc.lines())
	}
	if !fc.isClosed() {
		t.Error("connection should be closed after rejection")
	}
	if _, ok := co.sessions[addr]; ok {
		t.Error("session should be removed after rejection")
	}
	if len(co.bans) != 0 {
		t.Errorf("rejection must not contribute to bans, got %d entries", len(co.bans))
	}

	// An immediate reconnect from the same origin is admitted.
	fc2 := connect(t, co, addr)
	if !hasLine(fc2, noticePrompt) {
		t.Error("rejected origin should be re-prompted on reconnect")
	}
	if fc2.isClosed() {
		t.Error("reconnect after rejection should not be closed")
	}
}

func TestCoordinator_BroadcastSkipsAuthorAndUnauthenticated(t *testing.T) {
	co, clk := newTestCoordinator(t, nil)

	a := connect(t, co, "192.0.2.1:5000")
	authenticate(t, co, "192.0.2.1:5000")
	b := connect(t, co, "192.0.2.2:5000")
	authenticate(t, co, "192.0.2.2:5000")
	c := connect(t, co, "192.0.2.3:5000")

	clk.Advance(2 * time.Second)
	co.handleMessage("192.0.2.1:5000", []byte("hello room\n"))

	if !hasLine(b, "hello room") {
		t.Errorf("authenticated peer missed broadcast, got %q", b.lines())
	}
	if hasLine(a, "hello room") {
		t.Error("author must not receive its own message")
	}
	if hasLine(c, "hello room") {
		t.Error("unauthenticated peer must not receive broadcasts")
	}
}

func TestCoordinator_BroadcastStripsCRLF(t *testing.T) {
	co, clk := newTestCoordinator(t, nil)

	connect(t, co, "192.0.2.1:5000")
	authenticate(t, co, "192.0.2.1:5000")
	b := connect(t, co, "192.0.2.2:5000")
	authenticate(t, co, "192.0.2.2:5000")

	clk.Advance(2 * time.Second)
	co.handleMessage("192.0.2.1:5000", []byte("windows line\r\n"))

	if !hasLine(b, "windows line") {
		t.Errorf("expected CRLF stripped before relay, got %q", b.lines())
	}
}

func TestCoordinator_FirstMessageAfterConnectIsOnTime(t *testing.T) {
	co, _ := newTestCoordinator(t, nil)

	connect(t, co, "192.0.2.1:5000")
	authenticate(t, co, "192.0.2.1:5000")
	b := connect(t, co, "192.0.2.2:5000")
	authenticate(t, co, "192.0.2.2:5000")

	// No clock advance: the session timestamp is backdated at admission
	// so the first message never counts as a rate violation.
	co.handleMessage("192.0.2.1:5000", []byte("first\n"))

	if !hasLine(b, "first") {
		t.Errorf("first message should relay immediately, got %q", b.lines())
	}
	if got := co.sessions["192.0.2.1:5000"].Strikes; got != 0 {
		t.Errorf("strikes = %d, want 0", got)
	}
}

func TestCoordinator_RateViolationsAccumulateToBan(t *testing.T) {
	co, clk := newTestCoordinator(t, nil)
	addr := "192.0.2.1:5000"

	fc := connect(t, co, addr)
	authenticate(t, co, addr)

	clk.Advance(2 * time.Second)
	co.handleMessage(addr, []byte("ok\n"))

	// Rapid-fire messages within the same instant all violate the rate.
	for i := 0; i < co.strikeLimit-1; i++ {
		co.handleMessage(addr, []byte("spam\n"))
		if fc.isClosed() {
			t.Fatalf("banned after %d strikes, limit is %d", i+1, co.strikeLimit)
		}
	}
	co.handleMessage(addr, []byte("spam\n"))

	if !fc.isClosed() {
		t.Fatal("connection should be closed at the strike limit")
	}
	want := fmt.Sprintf(noticeBannedFmt, co.banWindow.Seconds())
	if !hasLine(fc, want) {
		t.Errorf("missing ban notice %q, got %q", want, fc.lines())
	}
	if _, ok := co.sessions[addr]; ok {
		t.Error("banned session should be removed")
	}
	if _, ok := co.bans["192.0.2.1"]; !ok {
		t.Error("ban table should key the origin IP without port")
	}
}

func TestCoordinator_BannedOriginRejectedThenReadmitted(t *testing.T) {
	co, clk := newTestCoordinator(t, nil)

	co.bans["192.0.2.1"] = domain.Ban{IP: "192.0.2.1", At: clk.Now()}

	// Within the window: rejected with remaining time, never a session.
	fc := connect(t, co, "192.0.2.1:6000")
	if !fc.isClosed() {
		t.Error("banned origin should be disconnected")
	}
	if _, ok := co.sessions["192.0.2.1:6000"]; ok {
		t.Error("banned origin must not get a session")
	}
	lines := fc.lines()
	if len(lines) != 1 || lines[0] == noticePrompt {
		t.Errorf("banned origin should only see the ban notice, got %q", lines)
	}

	// A different port on the same IP is still the same origin.
	fc2 := connect(t, co, "192.0.2.1:6001")
	if !fc2.isClosed() {
		t.Error("ban applies to the IP, not the full address")
	}

	// Past the window: readmitted and the record discarded.
	clk.Advance(co.banWindow + time.Second)
	fc3 := connect(t, co, "192.0.2.1:6002")
	if fc3.isClosed() {
		t.Error("origin should be readmitted after the window")
	}
	if !hasLine(fc3, noticePrompt) {
		t.Errorf("readmitted origin should be prompted, got %q", fc3.lines())
	}
	if _, ok := co.bans["192.0.2.1"]; ok {
		t.Error("expired ban record should be dropped on readmission")
	}
}

func TestCoordinator_AcceptResetsStrikes(t *testing.T) {
	co, clk := newTestCoordinator(t, nil)
	addr := "192.0.2.1:5000"

	connect(t, co, addr)
	authenticate(t, co, addr)

	clk.Advance(2 * time.Second)
	co.handleMessage(addr, []byte("ok\n"))
	co.handleMessage(addr, []byte("fast\n"))
	co.handleMessage(addr, []byte("fast\n"))
	if got := co.sessions[addr].Strikes; got != 2 {
		t.Fatalf("strikes = %d, want 2", got)
	}

	clk.Advance(2 * time.Second)
	co.handleMessage(addr, []byte("calm again\n"))
	if got := co.sessions[addr].Strikes; got != 0 {
		t.Errorf("strikes after accepted message = %d, want 0", got)
	}
}

func TestCoordinator_UndecodablePayloadStrikes(t *testing.T) {
	co, clk := newTestCoordinator(t, nil)
	addr := "192.0.2.1:5000"

	// Pre-auth: garbage goes down the abuse path, not the rejection path.
	fc := connect(t, co, addr)
	co.handleMessage(addr, []byte{0xff, 0xfe, '\n'})

	sess, ok := co.sessions[addr]
	if !ok {
		t.Fatal("undecodable submission must not remove the session")
	}
	if sess.Strikes != 1 {
		t.Errorf("strikes = %d, want 1", sess.Strikes)
	}
	if fc.isClosed() {
		t.Error("undecodable submission must not close the connection")
	}

	// Post-auth: same path even when the message is on time.
	authenticate(t, co, addr)
	clk.Advance(2 * time.Second)
	co.handleMessage(addr, []byte{0xc3, 0x28, '\n'})
	if got := co.sessions[addr].Strikes; got != 2 {
		t.Errorf("strikes = %d, want 2", got)
	}
}

func TestCoordinator_BackwardClockJumpIsOnTime(t *testing.T) {
	co, clk := newTestCoordinator(t, nil)
	addr := "192.0.2.1:5000"

	connect(t, co, addr)
	authenticate(t, co, addr)

	clk.Advance(2 * time.Second)
	co.handleMessage(addr, []byte("before jump\n"))

	clk.Rewind(time.Hour)
	co.handleMessage(addr, []byte("after jump\n"))

	if got := co.sessions[addr].Strikes; got != 0 {
		t.Errorf("strikes after backward clock jump = %d, want 0", got)
	}
}

func TestCoordinator_MessageForUnknownAddrIgnored(t *testing.T) {
	co, _ := newTestCoordinator(t, nil)
	// Must not panic or create state.
	co.handleMessage("198.51.100.1:1234", []byte("ghost\n"))
	if len(co.sessions) != 0 {
		t.Error("stray message must not create a session")
	}
}

func TestCoordinator_AuthDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthRequired = false
	co, _ := newTestCoordinator(t, cfg)

	a := connect(t, co, "192.0.2.1:5000")
	b := connect(t, co, "192.0.2.2:5000")

	if len(a.lines()) != 0 {
		t.Errorf("no prompt expected with auth disabled, got %q", a.lines())
	}

	co.handleMessage("192.0.2.1:5000", []byte("open relay\n"))
	if !hasLine(b, "open relay") {
		t.Errorf("peer missed broadcast, got %q", b.lines())
	}
}

func TestCoordinator_RunShutdownClosesSessions(t *testing.T) {
	co, _ := newTestCoordinator(t, nil)

	go co.run()

	fc := &fakeNetConn{remote: "192.0.2.1:5000"}
	co.queue.push(connectedEvent(newConn(fc)))
	co.queue.push(event{kind: eventShutdown})

	select {
	case <-co.done:
	case <-time.After(3 * time.Second):
		t.Fatal("coordinator did not stop on shutdown event")
	}
	if !fc.isClosed() {
		t.Error("shutdown should force-close remaining sessions")
	}
}
