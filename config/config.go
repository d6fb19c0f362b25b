// Package config defines the runtime configuration for shelld and
// provides loading from environment variables and the legacy key-value
// server config file.
package config

import (
	"fmt"

	"shelld/internal/shell"
)

// Config holds every tuneable for one shelld process.
type Config struct {
	// ── Listener ─────────────────────────────────────────────────────
	Bind     string // bind address, empty = all interfaces
	Port     int
	MaxConns int    // maximum concurrent sessions
	Name     string // server name used in logs

	// ── SSH transport ────────────────────────────────────────────────
	SSH            bool   // serve the shell over SSH instead of raw TCP
	SSHHostKeyPath string // host key file, generated when missing
	SSHPassword    string // required client password, empty = no auth

	// ── Local mode ───────────────────────────────────────────────────
	Stdio bool // run one session on the local terminal and exit

	// ── Shell tuneables ──────────────────────────────────────────────
	BufferSize  int  // line buffer capacity in bytes
	HistorySize int  // history ring size in lines
	MaxArgs     int  // argument capacity per line
	SharedCWD   bool // legacy: one working directory shared by all sessions

	// ── Files / output ───────────────────────────────────────────────
	ConfigFile string // legacy key-value config file path
	Verbose    int
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Port:           DefaultPort,
		MaxConns:       DefaultMaxConns,
		Name:           DefaultServerName,
		SSHHostKeyPath: DefaultHostKeyPath,
		BufferSize:     shell.DefaultBufferSize,
		HistorySize:    shell.DefaultHistorySize,
		MaxArgs:        shell.DefaultMaxArgs,
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Stdio && c.SSH {
		return fmt.Errorf("--stdio and --ssh are mutually exclusive")
	}

	if !c.Stdio {
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("port %d out of range 1-65535", c.Port)
		}
		if c.MaxConns < 1 {
			return fmt.Errorf("max-conns must be at least 1")
		}
	}

	if c.SSH && c.SSHHostKeyPath == "" {
		return fmt.Errorf("ssh mode requires a host key path")
	}

	if c.BufferSize < 2 {
		return fmt.Errorf("buffer size must be at least 2")
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history size must be at least 1")
	}
	if c.MaxArgs < 1 {
		return fmt.Errorf("max args must be at least 1")
	}

	return nil
}
