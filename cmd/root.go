// Package cmd wires up the CLI flags and dispatches to the shell
// server core.
package cmd

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"shelld/config"
	"shelld/internal/builtin"
	"shelld/internal/metrics"
	"shelld/internal/server"
	"shelld/internal/shell"
	"shelld/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X shelld/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the shell server (or a local stdio
// session).  Precedence: flags > environment > config file > defaults.
func Execute(ctx context.Context, args []string) error {
	cfg := config.New()
	config.LoadFromEnv(cfg)

	// Flags parse into a scratch copy; only flags the user actually
	// set are merged back, so unset flags never clobber env values.
	fl := *cfg
	fs := flag.NewFlagSet("shelld", flag.ContinueOnError)

	// ── listener ─────────────────────────────────────────────────
	fs.IntVarP(&fl.Port, "port", "p", fl.Port, "Listen port")
	fs.StringVar(&fl.Bind, "bind", fl.Bind, "Bind address (default all interfaces)")
	fs.IntVarP(&fl.MaxConns, "max-conns", "n", fl.MaxConns, "Maximum concurrent sessions")
	fs.StringVar(&fl.Name, "name", fl.Name, "Server name used in logs")
	fs.StringVarP(&fl.ConfigFile, "config", "c", fl.ConfigFile, "Legacy key-value config file")

	// ── SSH transport ────────────────────────────────────────────
	fs.BoolVar(&fl.SSH, "ssh", fl.SSH, "Serve the shell over SSH")
	fs.StringVar(&fl.SSHHostKeyPath, "ssh-hostkey", fl.SSHHostKeyPath, "SSH host key file (generated when missing)")
	fs.StringVar(&fl.SSHPassword, "ssh-password", fl.SSHPassword, "Require this password from SSH clients")

	// ── shell ────────────────────────────────────────────────────
	fs.BoolVar(&fl.Stdio, "stdio", fl.Stdio, "Run one session on the local terminal and exit")
	fs.BoolVar(&fl.SharedCWD, "shared-cwd", fl.SharedCWD, "Share one working directory across all sessions (legacy)")
	fs.IntVar(&fl.BufferSize, "buffer", fl.BufferSize, "Line buffer capacity in bytes")
	fs.IntVar(&fl.HistorySize, "history", fl.HistorySize, "History ring size in lines")
	fs.IntVar(&fl.MaxArgs, "max-args", fl.MaxArgs, "Argument capacity per line")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&fl.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("shelld %s\n", version)
		return nil
	}

	// ── config file ──────────────────────────────────────────────
	if fl.ConfigFile != "" {
		cfg.ConfigFile = fl.ConfigFile
		if err := config.LoadFile(cfg.ConfigFile, cfg); err != nil {
			return err
		}
		config.LoadFromEnv(cfg) // env still outranks the file
	}

	// ── merge explicitly set flags ───────────────────────────────
	mergeFlags(fs, &fl, cfg)

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	met := metrics.New()

	reg := shell.NewRegistry()
	builtin.InstallCore(reg)
	builtin.InstallFS(reg)

	if cfg.Stdio {
		return runStdio(ctx, cfg, reg, logger, met)
	}
	return server.New(cfg, reg, logger, met).Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// mergeFlags copies every flag the user set from the scratch copy into
// cfg.
func mergeFlags(fs *flag.FlagSet, fl, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = fl.Port
		case "bind":
			cfg.Bind = fl.Bind
		case "max-conns":
			cfg.MaxConns = fl.MaxConns
		case "name":
			cfg.Name = fl.Name
		case "ssh":
			cfg.SSH = fl.SSH
		case "ssh-hostkey":
			cfg.SSHHostKeyPath = fl.SSHHostKeyPath
		case "ssh-password":
			cfg.SSHPassword = fl.SSHPassword
		case "stdio":
			cfg.Stdio = fl.Stdio
		case "shared-cwd":
			cfg.SharedCWD = fl.SharedCWD
		case "buffer":
			cfg.BufferSize = fl.BufferSize
		case "history":
			cfg.HistorySize = fl.HistorySize
		case "max-args":
			cfg.MaxArgs = fl.MaxArgs
		case "verbose":
			cfg.Verbose = fl.Verbose
		}
	})
}

// runStdio runs a single session over the process's own terminal.
// The editor needs the terminal in raw mode to see bytes as they are
// typed.
func runStdio(ctx context.Context, cfg *config.Config, reg *shell.Registry, logger *util.Logger, met *metrics.Collector) error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(fd, old) //nolint:errcheck
	}

	sess := shell.NewSession(stdioConn{}, reg, shell.Options{
		Logger:      logger,
		Metrics:     met,
		BufferSize:  cfg.BufferSize,
		HistorySize: cfg.HistorySize,
		MaxArgs:     cfg.MaxArgs,
	})
	return sess.Run(ctx)
}

// stdioConn adapts process stdio to the session's connection
// interface.
type stdioConn struct{}

func (stdioConn) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioConn) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioConn) Close() error                { return os.Stdin.Close() }

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `shelld – network shell daemon v%s

Serves an interactive command shell (line editing, history, command
files) to every connection, over raw TCP or SSH.

Usage:
  shelld [options]                 Listen for connections
  shelld --stdio                   Run a shell on this terminal
  shelld --ssh --ssh-password s3c  Serve over SSH with a password

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  shelld -p 2222 -n 10             TCP shell on 2222, 10 sessions max
  shelld -c /etc/shelld.conf       Settings from a legacy config file
  SHELLD_PORT=7000 shelld          Settings from the environment
`)
}
