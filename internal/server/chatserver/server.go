// Package chatserver implements the relaychat TCP server.
package chatserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/relaychat-go/internal/core/domain"
	"github.com/yndnr/relaychat-go/internal/telemetry/logger"
	"github.com/yndnr/relaychat-go/internal/telemetry/metric"
	"github.com/yndnr/relaychat-go/pkg/token"
)

// Config holds the chat server configuration.
type Config struct {
	// Addr is the TCP listen address. A bind failure is fatal.
	Addr string
	// AuthRequired gates broadcast behind the startup token.
	AuthRequired bool
	// TokenLength is the token size in bytes before hex encoding.
	TokenLength int
	// MessageRate is the minimum spacing between accepted messages.
	// One last-accepted timestamp per session, not a sliding window.
	MessageRate time.Duration
	// StrikeLimit is the abuse count that triggers a ban.
	StrikeLimit int
	// BanWindow is how long a banned origin stays blocked.
	BanWindow time.Duration
	// ConnectRate caps connection attempts per origin IP per second at
	// the accept path. Zero disables the throttle.
	ConnectRate int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "0.0.0.0:6969",
		AuthRequired: true,
		TokenLength:  token.DefaultLength,
		MessageRate:  time.Second,
		StrikeLimit:  10,
		BanWindow:    10 * time.Minute,
		ConnectRate:  0,
	}
}

// Server is the relaychat TCP server.
type Server struct {
	cfg     *Config
	log     logger.Logger
	metrics *metric.Metrics

	queue *eventQueue
	coord *coordinator

	accessToken string

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	// limiters throttles connection attempts per origin. Touched only
	// by the accept loop, so no lock.
	// TODO: prune entries for origins that stopped connecting.
	limiters map[string]*rate.Limiter
}

// New creates a chat server. When authentication is enabled the shared
// access token is generated here; a generation failure is fatal.
func New(cfg *Config, log logger.Logger, m *metric.Metrics) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}
	if m == nil {
		m = metric.NewUnregistered()
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		queue:    newEventQueue(),
		limiters: make(map[string]*rate.Limiter),
	}

	if cfg.AuthRequired {
		length := cfg.TokenLength
		if length <= 0 {
			length = token.DefaultLength
		}
		tok, err := token.GenerateWithLength(length)
		if err != nil {
			return nil, domain.ErrTokenGeneration.WithCause(err)
		}
		s.accessToken = tok
	}

	s.coord = newCoordinator(cfg, s.queue, s.accessToken, log, m)

	return s, nil
}

// Token returns the shared access token, empty when auth is disabled.
// The caller is responsible for displaying it without logging it.
func (s *Server) Token() string {
	return s.accessToken
}

// Addr returns the bound listen address, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listen port and starts the coordinator and accept
// loop. It does not block; use Shutdown to stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return domain.ErrBindFailed.WithDetails(s.cfg.Addr).WithCause(err)
	}
	s.ln = ln
	s.running.Store(true)

	s.log.Info("chat server listening",
		"addr", ln.Addr().String(),
		"auth_required", s.cfg.AuthRequired,
		"message_rate", s.cfg.MessageRate,
		"strike_limit", s.cfg.StrikeLimit,
		"ban_window", s.cfg.BanWindow)

	go s.coord.run()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(ln)
	}()

	return nil
}

// acceptLoop admits connections until the listener closes. A failed
// accept is logged and the loop continues; only listener closure or
// shutdown ends it.
func (s *Server) acceptLoop(ln net.Listener) {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Error("accept failed", "error", err)
			continue
		}

		if !s.admit(c) {
			s.metrics.ThrottledTotal.Inc()
			s.log.Debug("connection throttled",
				"remote_addr", c.RemoteAddr().String())
			_ = c.Close()
			continue
		}

		conn := newConn(c)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			runReader(conn, s.queue, s.log)
		}()
	}
}

// admit applies the optional per-origin connection throttle. It runs
// before any session state exists, so throttled origins cost nothing
// downstream.
func (s *Server) admit(c net.Conn) bool {
	if s.cfg.ConnectRate <= 0 {
		return true
	}
	ip := hostOnly(c.RemoteAddr().String())
	lim, ok := s.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(s.cfg.ConnectRate), s.cfg.ConnectRate)
		s.limiters[ip] = lim
	}
	return lim.Allow()
}

// Shutdown stops accepting, closes every session, and waits for the
// coordinator and readers to finish or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}

	// Ask the coordinator to close all sessions and exit. If the queue
	// is already closed the coordinator is gone and there is nothing
	// left to stop.
	s.queue.push(event{kind: eventShutdown})

	select {
	case <-s.coord.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	// With the coordinator gone, stop the queue so exiting readers do
	// not pile up events nobody will consume.
	s.queue.close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}
