package shell

import (
	"context"
	"io"
	"net"
	"os"

	sderr "shelld/internal/errors"
	"shelld/internal/metrics"
	"shelld/util"
)

// noSuchCommand prefixes the message written when a finalized line
// matches no registered command and no command file.
const noSuchCommand = "no such command: "

// Options configures a Session.  Zero values fall back to the package
// defaults; a nil Dir gives the session its own working directory
// seeded from the process cwd.
type Options struct {
	Logger      *util.Logger
	Metrics     *metrics.Collector
	Dir         *Workdir
	Remote      string // peer address, used in error reports
	BufferSize  int
	HistorySize int
	MaxArgs     int
}

// Session drives one connection end to end: it owns the line editor,
// consumes raw bytes from the connection (or a redirected command
// file), dispatches finalized lines against the registry, and reacts
// to handler status codes.  A Session is strictly single-threaded;
// the only blocking point is the single-byte read.
type Session struct {
	registry *Registry
	logger   *util.Logger
	met      *metrics.Collector

	conn    io.ReadWriteCloser
	out     io.Writer // metered writer over conn
	remote  string
	dir     *Workdir
	ed      *Editor
	hist    *History
	maxArgs int

	promptPath string

	// Active input redirection; nil while reading from the live
	// connection.
	redirect     *os.File
	redirectSize int64
	redirectPos  int64
	inject       byte

	exit bool
}

// NewSession builds a session over conn using the given registry.
func NewSession(conn io.ReadWriteCloser, reg *Registry, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = util.NewLogger(0)
	}
	dir := opts.Dir
	if dir == nil {
		wd, err := os.Getwd()
		if err != nil {
			wd = ""
		}
		dir = NewWorkdir(wd)
	}
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	histSize := opts.HistorySize
	if histSize <= 0 {
		histSize = DefaultHistorySize
	}
	maxArgs := opts.MaxArgs
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArgs
	}

	s := &Session{
		registry: reg,
		logger:   opts.Logger,
		met:      opts.Metrics,
		conn:     conn,
		remote:   opts.Remote,
		dir:      dir,
		maxArgs:  maxArgs,
	}
	s.out = &meteredWriter{w: conn, met: opts.Metrics}
	s.hist = NewHistory(histSize)
	s.ed = NewEditor(s.out, bufSize, s.hist, s.promptText)
	return s
}

// Run blocks processing the session until the connection reports
// end-of-stream, the exit command runs, or ctx is cancelled (which
// closes the connection to unblock the read).  A clean end returns
// nil; a connection failure mid-session is reported as a SessionError.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.conn.Close()
		case <-done:
		}
	}()

	s.met.SessionOpened()
	defer s.met.SessionClosed()
	defer s.closeRedirect()

	s.refreshPromptPath()
	s.ed.Reprompt(false)

	var one [1]byte
	var runErr error
	for !s.exit {
		var b byte
		if s.inject != 0 {
			b, s.inject = s.inject, 0
		} else {
			n, err := s.read(one[:])
			if n <= 0 || err != nil {
				if s.redirect != nil {
					// A failed command-file read must not kill the
					// session; revert to the live connection.
					s.closeRedirect()
					continue
				}
				// EOF and a connection closed by shutdown are the
				// normal ways out; anything else is a real failure.
				if err != nil && !sderr.Is(err, io.EOF) && !sderr.Is(err, net.ErrClosed) {
					runErr = sderr.WrapSession("read", s.remote, err)
				}
				s.exit = true
				continue
			}
			b = one[0]
		}

		if s.redirect != nil && s.redirectPos >= s.redirectSize {
			s.closeRedirect()
			// The file's last line may lack its newline; synthesise
			// one so it still executes as a complete command.
			if b != '\n' {
				s.inject = '\n'
			}
		}

		line, fin := s.ed.Feed(b)
		if !fin {
			continue
		}

		s.dispatch(line)
		s.ed.Reprompt(true)
	}
	return runErr
}

// read pulls one chunk from the active input source, counting bytes.
func (s *Session) read(p []byte) (int, error) {
	if s.redirect != nil {
		n, err := s.redirect.Read(p)
		s.redirectPos += int64(n)
		return n, err
	}
	n, err := s.conn.Read(p)
	s.met.BytesReceived(int64(n))
	return n, err
}

// dispatch processes one finalized line: history, tokenization,
// command matching, file redirection, unknown-command reporting.
func (s *Session) dispatch(line string) {
	s.met.LineRead()
	s.hist.Save(line)

	args := Tokenize(line, s.maxArgs)
	if len(args) == 0 {
		return
	}

	if cmd := s.registry.Lookup(args[0]); cmd != nil {
		s.write(Newline)
		s.met.CommandDispatched()
		env := &Env{Out: s.out, Dir: s.dir, Metrics: s.met}
		code := cmd.Run(env, args[1:])
		s.finish(code, cmd)
		return
	}

	if s.redirect == nil && s.openRedirect(args[0]) {
		return
	}

	if args[0] != "" {
		s.met.UnknownCommand()
		s.write(Newline + noSuchCommand + args[0])
	}
}

// finish applies a handler status code.
func (s *Session) finish(code Status, cmd *Command) {
	switch code {
	case StatusExit:
		s.exit = true
	case StatusChdir:
		s.refreshPromptPath()
	case StatusPrintCommands:
		s.write("available commands:")
		s.registry.Walk(func(c *Command) bool {
			s.write(Newline + c.Name)
			return true
		})
	case StatusPrintUsage:
		s.write(cmd.Name + ":" + Newline + cmd.Usage)
	}
}

// ── input redirection ────────────────────────────────────────────────

// openRedirect reroutes input to the named file when it resolves to a
// non-empty regular file.  Reports whether redirection is now active.
// Failures leave the session reading from the live connection.
func (s *Session) openRedirect(name string) bool {
	path := s.dir.Resolve(name)
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() || st.Size() == 0 {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	s.redirect = f
	s.redirectSize = st.Size()
	s.redirectPos = 0
	s.logger.Debug("session: running commands from %s", path)
	return true
}

// closeRedirect restores the live connection as the input source.
func (s *Session) closeRedirect() {
	if s.redirect == nil {
		return
	}
	s.redirect.Close()
	s.redirect = nil
	s.redirectSize = 0
	s.redirectPos = 0
}

// ── prompt ───────────────────────────────────────────────────────────

// promptText renders the current prompt.  The path portion is the one
// cached at session start or at the last chdir status.
func (s *Session) promptText() string {
	if s.promptPath == "" {
		return "> "
	}
	return s.promptPath + " > "
}

func (s *Session) refreshPromptPath() { s.promptPath = s.dir.Path() }

func (s *Session) write(str string) { _, _ = io.WriteString(s.out, str) }

// meteredWriter counts bytes written to the connection.
type meteredWriter struct {
	w   io.Writer
	met *metrics.Collector
}

func (m *meteredWriter) Write(p []byte) (int, error) {
	n, err := m.w.Write(p)
	m.met.BytesSent(int64(n))
	return n, err
}
