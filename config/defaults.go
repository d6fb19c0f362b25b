package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.  The shell buffer/history/args defaults live in the shell
// package itself.

const (
	// DefaultPort is the listen port.
	DefaultPort = 2222

	// DefaultMaxConns caps concurrent sessions, matching the original
	// server's "conns" setting.
	DefaultMaxConns = 5

	// DefaultServerName is used in logs and defaults the legacy
	// "name" config key.
	DefaultServerName = "shelld"

	// DefaultHostKeyPath is where the SSH transport persists its host
	// key.
	DefaultHostKeyPath = "shelld_host_key"

	// DefaultAcceptInitialBackoff is the first delay after a
	// temporary accept failure.
	DefaultAcceptInitialBackoff = 5 * time.Millisecond

	// DefaultAcceptMaxBackoff caps the accept retry delay.
	DefaultAcceptMaxBackoff = 1 * time.Second
)
