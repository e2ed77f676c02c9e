// Package chatserver implements the relaychat TCP server.
package chatserver

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yndnr/relaychat-go/internal/core/domain"
	"github.com/yndnr/relaychat-go/internal/telemetry/metric"
	"github.com/yndnr/relaychat-go/pkg/token"
)

// Client-visible control messages. Plain text lines, not structured.
const (
	noticePrompt    = "please enter the access token:"
	noticeWelcome   = "welcome! you are now authenticated"
	noticeRejected  = "invalid token, disconnecting"
	noticeBannedFmt = "you are banned: %.1f seconds remaining"
)

// coordinator is the single goroutine that owns all mutable relay
// state. Sessions and bans are plain maps: only run() ever touches
// them, so the total event order is the only synchronization needed.
type coordinator struct {
	authRequired bool
	accessToken  string
	messageRate  time.Duration
	strikeLimit  int
	banWindow    time.Duration

	queue    *eventQueue
	sessions map[string]*domain.Session
	bans     map[string]domain.Ban

	log     logging
	metrics *metric.Metrics

	// now is the wall clock, replaceable in tests.
	now func() time.Time

	// done closes when the run loop has exited.
	done chan struct{}
}

// logging is the subset of the application logger the coordinator uses.
type logging interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func newCoordinator(cfg *Config, q *eventQueue, accessToken string, log logging, m *metric.Metrics) *coordinator {
	return &coordinator{
		authRequired: cfg.AuthRequired,
		accessToken:  accessToken,
		messageRate:  cfg.MessageRate,
		strikeLimit:  cfg.StrikeLimit,
		banWindow:    cfg.BanWindow,
		queue:        q,
		sessions:     make(map[string]*domain.Session),
		bans:         make(map[string]domain.Ban),
		log:          log,
		metrics:      m,
		now:          time.Now,
		done:         make(chan struct{}),
	}
}

// run consumes events strictly in arrival order until the queue drains
// after close or a shutdown event arrives. It must be the only
// goroutine ever reading co.sessions or co.bans.
func (co *coordinator) run() {
	defer close(co.done)

	for {
		ev, ok := co.queue.pop()
		if !ok {
			co.closeAll()
			return
		}
		co.metrics.QueueDepth.Set(float64(co.queue.depth()))

		switch ev.kind {
		case eventConnected:
			co.handleConnected(ev.conn)
		case eventDisconnected:
			co.handleDisconnected(ev.addr)
		case eventMessage:
			co.handleMessage(ev.addr, ev.payload)
		case eventShutdown:
			co.closeAll()
			return
		}
	}
}

// handleConnected admits, rejects, or readmits a fresh connection
// according to the ban table.
func (co *coordinator) handleConnected(c *Conn) {
	now := co.now()
	addr := c.RemoteAddr()
	ip := c.RemoteIP()

	if ban, ok := co.bans[ip]; ok {
		if !ban.Expired(now, co.banWindow) {
			remaining := ban.Remaining(now, co.banWindow)
			co.log.Info("rejected banned origin",
				"remote_addr", addr,
				"remaining", remaining)
			co.metrics.BannedRejectsTotal.Inc()
			co.writeNotice(c, addr, fmt.Sprintf(noticeBannedFmt, remaining.Seconds()))
			_ = c.Close()
			return
		}
		// Ban window elapsed; the record is discarded lazily, right
		// here, and the origin starts over with zero strikes.
		delete(co.bans, ip)
	}

	sess := domain.NewSession(addr, c, now, co.messageRate)
	if !co.authRequired {
		sess.Authenticated = true
	}
	co.sessions[addr] = sess
	co.metrics.ConnectionsTotal.Inc()
	co.metrics.ActiveSessions.Set(float64(len(co.sessions)))

	co.log.Info("client connected",
		"session_id", sess.ID,
		"remote_addr", addr,
		"auth_required", co.authRequired)

	if co.authRequired {
		co.writeNotice(c, addr, noticePrompt)
	}
}

// handleDisconnected removes the session. A miss is fine: the
// coordinator may already have removed it on ban or rejection.
func (co *coordinator) handleDisconnected(addr string) {
	sess, ok := co.sessions[addr]
	if !ok {
		return
	}
	co.removeSession(sess)
	co.log.Info("client disconnected",
		"session_id", sess.ID,
		"remote_addr", addr)
}

// handleMessage runs the per-session state machine for one frame.
func (co *coordinator) handleMessage(addr string, payload []byte) {
	sess, ok := co.sessions[addr]
	if !ok {
		// Frame raced with the session's removal.
		return
	}

	if !sess.Authenticated {
		co.handleTokenSubmission(sess, payload)
		return
	}

	now := co.now()
	if !sess.OnTime(now, co.messageRate) {
		co.log.Debug("rate violation",
			"session_id", sess.ID,
			"remote_addr", addr,
			"strikes", sess.Strikes+1)
		co.strike(sess)
		return
	}

	text, ok := decodeText(payload)
	if !ok {
		co.log.Info("undecodable payload",
			"session_id", sess.ID,
			"remote_addr", addr,
			"strikes", sess.Strikes+1)
		co.strike(sess)
		return
	}

	sess.Accept(now)
	co.broadcast(sess, strings.TrimRight(text, "\r\n"))
}

// handleTokenSubmission interprets the first message of an
// unauthenticated session as its token submission.
//
// A mismatch is a one-shot gate failure: notice, close, remove. It
// never counts as a strike and never contributes to a ban. Undecodable
// submissions go down the shared abuse path instead.
func (co *coordinator) handleTokenSubmission(sess *domain.Session, payload []byte) {
	text, ok := decodeText(payload)
	if !ok {
		co.log.Info("undecodable payload",
			"session_id", sess.ID,
			"remote_addr", sess.Addr,
			"strikes", sess.Strikes+1)
		co.strike(sess)
		return
	}

	if token.Equal(strings.TrimSpace(text), co.accessToken) {
		sess.Authenticated = true
		co.log.Info("client authenticated",
			"session_id", sess.ID,
			"remote_addr", sess.Addr)
		co.writeNotice(sess.Conn, sess.Addr, noticeWelcome)
		return
	}

	co.metrics.AuthFailuresTotal.Inc()
	co.log.Info("authentication failed",
		"session_id", sess.ID,
		"remote_addr", sess.Addr)
	co.writeNotice(sess.Conn, sess.Addr, noticeRejected)
	_ = sess.Conn.Close()
	co.removeSession(sess)
}

// strike charges one abuse signal and bans the origin when the limit
// is reached. Shared by the rate-violation and undecodable-payload
// paths, pre- and post-auth alike.
func (co *coordinator) strike(sess *domain.Session) {
	co.metrics.StrikesTotal.Inc()
	if !sess.Strike(co.strikeLimit) {
		return
	}

	now := co.now()
	ip := hostOnly(sess.Addr)
	co.bans[ip] = domain.Ban{IP: ip, At: now}
	co.metrics.BansTotal.Inc()

	co.log.Info("client banned",
		"session_id", sess.ID,
		"remote_addr", sess.Addr,
		"strikes", sess.Strikes,
		"window", co.banWindow)

	co.writeNotice(sess.Conn, sess.Addr, fmt.Sprintf(noticeBannedFmt, co.banWindow.Seconds()))
	_ = sess.Conn.Close()
	co.removeSession(sess)
}

// broadcast relays one accepted line to every other authenticated
// session. Fan-out is synchronous: no other event is processed until
// every peer write finished, so broadcasts never interleave.
func (co *coordinator) broadcast(from *domain.Session, line string) {
	out := []byte(line + "\n")
	for addr, peer := range co.sessions {
		if addr == from.Addr || !peer.Authenticated {
			continue
		}
		if _, err := peer.Conn.Write(out); err != nil {
			co.log.Error("broadcast write failed",
				"remote_addr", addr,
				"error", err)
		}
	}
	co.metrics.BroadcastsTotal.Inc()
	co.log.Debug("message relayed",
		"session_id", from.ID,
		"bytes", len(line))
}

// removeSession drops the session from the table and updates the
// active-sessions gauge. The entry disappears exactly once.
func (co *coordinator) removeSession(sess *domain.Session) {
	delete(co.sessions, sess.Addr)
	co.metrics.ActiveSessions.Set(float64(len(co.sessions)))
}

// closeAll force-closes every remaining session during shutdown.
// Readers observe the close as EOF and exit on their own.
func (co *coordinator) closeAll() {
	for addr, sess := range co.sessions {
		_ = sess.Conn.Close()
		delete(co.sessions, addr)
	}
	co.metrics.ActiveSessions.Set(0)
}

// writeNotice writes one control line to a client. Write failures are
// logged and otherwise ignored: the reader will surface the broken
// connection as a Disconnected event.
func (co *coordinator) writeNotice(w io.Writer, addr, msg string) {
	if _, err := w.Write(append([]byte(msg), '\n')); err != nil {
		co.log.Error("could not send notice",
			"remote_addr", addr,
			"error", err)
	}
}

// decodeText validates a payload as UTF-8 text. Invalid payloads are
// an abuse signal, never an error.
func decodeText(payload []byte) (string, bool) {
	if !utf8.Valid(payload) {
		return "", false
	}
	return string(payload), true
}
