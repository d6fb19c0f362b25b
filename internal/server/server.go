// Package server accepts connections and runs one shell session per
// connection, capped at the configured number of concurrent sessions.
package server

import (
	"context"
	"os"

	"golang.org/x/sync/semaphore"

	"shelld/config"
	sderr "shelld/internal/errors"
	"shelld/internal/metrics"
	"shelld/internal/retry"
	"shelld/internal/shell"
	"shelld/internal/transport"
	"shelld/util"
)

// Server owns the listener and spawns sessions.
type Server struct {
	Config   *config.Config
	Registry *shell.Registry
	Logger   *util.Logger
	Metrics  *metrics.Collector

	// sharedDir is non-nil in shared-cwd mode: every session then
	// edits the same working directory, as the original firmware did.
	sharedDir *shell.Workdir
}

// New builds a server from cfg.
func New(cfg *config.Config, reg *shell.Registry, logger *util.Logger, met *metrics.Collector) *Server {
	s := &Server{
		Config:   cfg,
		Registry: reg,
		Logger:   logger,
		Metrics:  met,
	}
	if cfg.SharedCWD {
		wd, err := os.Getwd()
		if err != nil {
			wd = ""
		}
		s.sharedDir = shell.NewWorkdir(wd)
	}
	return s
}

// Run binds the configured transport and serves until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// listen builds the transport listener selected by the config.
func (s *Server) listen() (transport.Listener, error) {
	addr := util.FormatAddr(s.Config.Bind, s.Config.Port)

	if s.Config.SSH {
		return transport.ListenSSH(addr, &transport.SSHOptions{
			HostKeyPath: s.Config.SSHHostKeyPath,
			Password:    s.Config.SSHPassword,
		}, s.Logger)
	}
	return transport.ListenTCP(addr)
}

// Serve accepts connections from ln until ctx is cancelled.  Each
// accepted connection gets its own goroutine running one session; the
// semaphore enforces the concurrent-session cap.
func (s *Server) Serve(ctx context.Context, ln transport.Listener) error {
	defer ln.Close()

	s.Logger.Info("%s listening on %s", s.Config.Name, ln.Addr())

	// Shut the listener down when the context expires.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	sem := semaphore.NewWeighted(int64(s.Config.MaxConns))

	for {
		conn, err := s.accept(ctx, ln)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			conn.Close()
			return nil
		}

		s.Logger.Verbose("connection from %s", conn.RemoteAddr())

		go func(c transport.Conn) {
			defer sem.Release(1)
			defer c.Close()

			sess := shell.NewSession(c, s.Registry, shell.Options{
				Logger:      s.Logger,
				Metrics:     s.Metrics,
				Dir:         s.sharedDir,
				Remote:      c.RemoteAddr().String(),
				BufferSize:  s.Config.BufferSize,
				HistorySize: s.Config.HistorySize,
				MaxArgs:     s.Config.MaxArgs,
			})
			if err := sess.Run(ctx); err != nil {
				s.Metrics.RecordError(err.Error())
				s.Logger.Warn("session %s: %v", c.RemoteAddr(), err)
			}
			s.Logger.Verbose("session %s closed", c.RemoteAddr())
		}(conn)
	}
}

// accept blocks for the next connection, retrying temporary failures
// with exponential backoff so a transient fd shortage doesn't spin or
// kill the server.
func (s *Server) accept(ctx context.Context, ln transport.Listener) (transport.Conn, error) {
	var conn transport.Conn

	backoff := &retry.Backoff{
		InitialDelay: config.DefaultAcceptInitialBackoff,
		MaxDelay:     config.DefaultAcceptMaxBackoff,
		Multiplier:   2.0,
	}

	err := backoff.Do(ctx, func(attempt int) error {
		c, err := ln.Accept()
		if err != nil {
			if sderr.IsRetryable(err) {
				s.Logger.Warn("accept (attempt %d): %v", attempt, err)
				return err
			}
			return retry.Permanent(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, sderr.Wrap("accept", ln.Addr().String(), err)
	}
	return conn, nil
}
