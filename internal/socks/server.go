// Package socks implements ironcloak's local SOCKS5 listener: an accept
// loop that hands each connection to an independent handler which
// negotiates the destination, opens a stream through the overlay
// network, and relays bytes both ways until either side closes.
package socks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/ironcloak/ironcloak/internal/overlay"
	"github.com/ironcloak/ironcloak/internal/socks5"
)

// DefaultConnectTimeout bounds overlay stream establishment. Nothing
// else in the connection lifecycle is time-bounded.
const DefaultConnectTimeout = 60 * time.Second

type Config struct {
	// RejectIPLiterals drops CONNECT requests whose destination is an
	// IP literal instead of a hostname.
	RejectIPLiterals bool

	// ConnectTimeout overrides DefaultConnectTimeout when positive.
	ConnectTimeout time.Duration
}

// Server accepts SOCKS5 clients and relays them through the overlay
// client. The overlay handle is shared read-only across all handlers.
type Server struct {
	cfg     Config
	overlay overlay.Client
	log     *slog.Logger

	connID atomic.Uint64
}

func NewServer(cfg Config, client overlay.Client, logger *slog.Logger) *Server {
	return &Server{cfg: cfg, overlay: client, log: logger}
}

// ListenTCP binds the SOCKS5 listen address. Failure is fatal to the
// backend; there is no retry or port-hunting.
func ListenTCP(addr string) (net.Listener, error) {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %w", ErrBind, addr, err)
	}
	return ln, nil
}

// Serve runs the accept loop until the listener is closed. Each accepted
// connection gets the next id from the monotonic counter and runs in its
// own goroutine; handlers are fire-and-forget and their failures never
// reach this loop. Transient accept errors are logged and the loop
// continues.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Warn("accept failed", "err", err)
			continue
		}

		id := s.nextConnID()
		go s.handleConn(conn, id)
	}
}

func (s *Server) nextConnID() uint64 {
	return s.connID.Add(1)
}

func (s *Server) handleConn(conn net.Conn, id uint64) {
	defer conn.Close()

	log := s.log.With("conn", id)
	log.Debug("new connection", "remote", conn.RemoteAddr())

	if err := s.relay(conn, log); err != nil {
		log.Warn("connection error", "err", err)
	}

	log.Debug("connection closed")
}

// relay drives one connection through its full lifecycle: handshake,
// destination policy check, overlay connect under the timeout, manual
// success reply, then the bidirectional copy. Any error drops just this
// connection; no SOCKS5 failure reply is sent on error paths.
func (s *Server) relay(conn net.Conn, log *slog.Logger) error {
	if err := socks5.ServerNegotiateNoAuth(conn); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	target, err := socks5.ReadConnectTarget(conn)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	if target.IsIPLiteral && s.cfg.RejectIPLiterals {
		return fmt.Errorf("%w: %s", ErrPolicyRejected, target)
	}

	log.Info("connecting", "host", target.Host, "port", target.Port)

	timeout := s.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stream, err := s.overlay.Connect(ctx, target.Host, target.Port, overlay.StreamPrefs{})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %s", ErrConnectTimeout, target, timeout)
		}
		return fmt.Errorf("%w: %s: %w", ErrConnect, target, err)
	}
	defer stream.Close()

	log.Info("stream established", "host", target.Host, "port", target.Port)

	// The protocol layer never auto-executes the command, so the success
	// reply goes out manually once the overlay stream is up.
	if err := socks5.WriteFixedSuccessReply(conn); err != nil {
		return fmt.Errorf("%w: %w", ErrReply, err)
	}
	log.Debug("success reply sent")

	up, down, err := copyBidirectional(conn, stream)
	if err != nil {
		log.Debug("relay ended", "err", err, "up", up, "down", down)
	} else {
		log.Debug("relay complete", "up", up, "down", down)
	}
	return nil
}
