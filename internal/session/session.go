package session

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"time"

	"remotemouse/internal/input"
	"remotemouse/internal/metrics"
	"remotemouse/internal/protocol"
)

// Options tunes a session
type Options struct {
	// IdleTimeout ends the session when no frame arrives in time. Zero waits
	// forever, so a silent client keeps the relay busy until it disconnects.
	IdleTimeout time.Duration

	Metrics *metrics.Metrics
}

// Session owns one client connection
type Session struct {
	conn   net.Conn
	remote string
	dec    *protocol.Decoder
	disp   *Dispatcher
	sink   input.Sink
	opts   Options

	state State
}

// New creates a session for an accepted connection
func New(conn net.Conn, disp *Dispatcher, sink input.Sink, opts Options) *Session {
	remote := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &Session{
		conn:   conn,
		remote: remote,
		dec:    protocol.NewDecoder(conn),
		disp:   disp,
		sink:   sink,
		opts:   opts,
	}
}

// Remote returns the client address
func (s *Session) Remote() string {
	return s.remote
}

// State returns a copy of the session state
func (s *Session) State() State {
	return s.state
}

// Run processes frames until the client disconnects, ctx is cancelled or
// the stream becomes undecodable. Only the latter is reported as an error,
// wrapping protocol.ErrInvalidLength. Run does not close the connection
// except to interrupt a blocked read on cancellation.
func (s *Session) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.opts.IdleTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.opts.IdleTimeout))
		}

		frame, err := s.dec.Next()
		switch {
		case err == nil:
			s.opts.Metrics.Frame(frame.Tag)

		case errors.Is(err, protocol.ErrTooManyTokens):
			s.opts.Metrics.Frame(frame.Tag)
			s.reject(err)
			s.flush()
			continue

		case errors.Is(err, protocol.ErrInvalidLength):
			s.opts.Metrics.ProtocolError(protocol.ErrorKind(err))
			return err

		case errors.Is(err, io.EOF):
			return nil

		case ctx.Err() != nil:
			return nil

		case errors.Is(err, os.ErrDeadlineExceeded):
			log.Printf("Session %s: idle for %s, disconnecting", s.remote, s.opts.IdleTimeout)
			return nil

		default:
			log.Printf("Session %s: read error: %v", s.remote, err)
			return nil
		}

		if err := s.disp.Dispatch(&s.state, frame, s.sink); err != nil {
			s.reject(err)
		}
		s.flush()
	}
}

func (s *Session) reject(err error) {
	log.Printf("Session %s: %v", s.remote, err)
	s.opts.Metrics.ProtocolError(protocol.ErrorKind(err))
}

func (s *Session) flush() {
	if err := s.sink.Flush(); err != nil {
		log.Printf("Session %s: inject failed: %v", s.remote, err)
	}
}
