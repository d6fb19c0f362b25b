package config

// loader.go - configuration loading from environment variables and the
// legacy key-value config file.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (LoadFromEnv)
//   3. Config file  (LoadFile)
//   4. Defaults   (defaults.go, New)

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the SHELLD_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SHELLD_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := envInt("SHELLD_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := envInt("SHELLD_MAX_CONNS"); v > 0 {
		cfg.MaxConns = v
	}
	if v := os.Getenv("SHELLD_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("SHELLD_CONFIG"); v != "" {
		cfg.ConfigFile = v
	}

	// SSH transport
	if envBool("SHELLD_SSH") {
		cfg.SSH = true
	}
	if v := os.Getenv("SHELLD_SSH_HOSTKEY"); v != "" {
		cfg.SSHHostKeyPath = v
	}
	if v := os.Getenv("SHELLD_SSH_PASSWORD"); v != "" {
		cfg.SSHPassword = v
	}

	// Shell tuneables
	if v := envInt("SHELLD_BUFFER_SIZE"); v > 0 {
		cfg.BufferSize = v
	}
	if v := envInt("SHELLD_HISTORY_SIZE"); v > 0 {
		cfg.HistorySize = v
	}
	if v := envInt("SHELLD_MAX_ARGS"); v > 0 {
		cfg.MaxArgs = v
	}
	if envBool("SHELLD_SHARED_CWD") {
		cfg.SharedCWD = true
	}

	// Output
	if v := envInt("SHELLD_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── Legacy config file ───────────────────────────────────────────────
//
// The original server consumed a plain key-value file:
//
//	port 22
//	conns 5
//	name shelld
//
// One "key value" pair per line; blank lines and lines starting with
// '#' are skipped.  Unknown keys are ignored so the same file can
// carry settings for other daemons.

// LoadFile overlays the key-value file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return fmt.Errorf("config file %s:%d: expected \"key value\", got %q", path, lineNo, line)
		}
		value = strings.TrimSpace(value)

		switch key {
		case "port":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("config file %s:%d: invalid port %q", path, lineNo, value)
			}
			cfg.Port = n
		case "conns":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("config file %s:%d: invalid conns %q", path, lineNo, value)
			}
			cfg.MaxConns = n
		case "name":
			cfg.Name = value
		case "bind":
			cfg.Bind = value
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}
