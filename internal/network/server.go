package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"remotemouse/internal/input"
	"remotemouse/internal/session"
)

// DefaultPort is the relay's well-known TCP port
const DefaultPort = 1978

// Stats is a snapshot of the server's counters
type Stats struct {
	ListenAddr     string    `json:"listen_addr"`
	Client         string    `json:"client,omitempty"`
	ConnectedSince time.Time `json:"connected_since"`
	Sessions       uint64    `json:"sessions"`
	FailedSessions uint64    `json:"failed_sessions"`
	StartedAt      time.Time `json:"started_at"`
}

// Server accepts relay clients one at a time. While a session runs no
// further connection is accepted; waiting clients queue in the kernel's
// listen backlog.
type Server struct {
	addr   string
	disp   *session.Dispatcher
	device *input.Device
	opts   session.Options

	// FatalOnBadHeader makes Serve return when a client sends an undecodable
	// header instead of only dropping that client.
	FatalOnBadHeader bool

	// OnConnect and OnDisconnect are called from the serving goroutine
	OnConnect    func(remote string)
	OnDisconnect func(remote string, err error)

	mu    sync.Mutex
	ln    net.Listener
	stats Stats
}

// NewServer creates a server for addr ("host:port")
func NewServer(addr string, disp *session.Dispatcher, device *input.Device, opts session.Options) *Server {
	return &Server{
		addr:   addr,
		disp:   disp,
		device: device,
		opts:   opts,
	}
}

// Listen binds the listening socket. Serve calls it when needed; calling it
// first lets the caller learn the bound address.
func (s *Server) Listen(ctx context.Context) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return s.ln.Addr(), nil
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.stats.ListenAddr = ln.Addr().String()
	s.stats.StartedAt = time.Now()
	log.Printf("Server: Listening on %s", ln.Addr())
	return ln.Addr(), nil
}

// Serve accepts and runs sessions until ctx is cancelled. It returns nil on
// cancellation, and an error when the listener fails or, with
// FatalOnBadHeader, when a client breaks the framing.
func (s *Server) Serve(ctx context.Context) error {
	if _, err := s.Listen(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		log.Printf("Server: waiting for client...")
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("Server: accept error: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if err := s.handle(ctx, conn); err != nil && s.FatalOnBadHeader {
			ln.Close()
			return err
		}
	}
}

// handle runs one session to completion
func (s *Server) handle(ctx context.Context, conn net.Conn) error {
	remote := conn.RemoteAddr().String()
	log.Printf("Server: accepted %s", remote)

	if tcp, ok := conn.(*net.TCPConn); ok {
		// commands are tiny and latency sensitive on the client side too
		tcp.SetNoDelay(true)
	}

	s.mu.Lock()
	s.stats.Client = remote
	s.stats.ConnectedSince = time.Now()
	s.stats.Sessions++
	s.mu.Unlock()

	s.opts.Metrics.SessionStarted()
	if s.OnConnect != nil {
		s.OnConnect(remote)
	}

	sess := session.New(conn, s.disp, s.device.NewBatch(), s.opts)
	err := sess.Run(ctx)
	conn.Close()

	s.opts.Metrics.SessionEnded()
	s.mu.Lock()
	s.stats.Client = ""
	s.stats.ConnectedSince = time.Time{}
	if err != nil {
		s.stats.FailedSessions++
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("Server: session %s aborted: %v", remote, err)
	} else {
		log.Printf("Server: session %s closed", remote)
	}
	if s.OnDisconnect != nil {
		s.OnDisconnect(remote, err)
	}
	return err
}

// Stats returns a snapshot of the server state
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
