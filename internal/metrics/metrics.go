// Package metrics provides lightweight counters for tracking runtime
// statistics of a shelld process.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics across every shell session.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	sessionsActive     atomic.Int64
	sessionsTotal      atomic.Int64
	linesRead          atomic.Int64
	commandsDispatched atomic.Int64
	unknownCommands    atomic.Int64
	bytesIn            atomic.Int64
	bytesOut           atomic.Int64
	errorsTotal        atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Session metrics ──────────────────────────────────────────────────

// SessionOpened increments both the active and total counters.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(1)
	c.sessionsTotal.Add(1)
}

// SessionClosed decrements the active session counter.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(-1)
}

// ActiveSessions returns the current number of open sessions.
func (c *Collector) ActiveSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsActive.Load()
}

// TotalSessions returns the lifetime session count.
func (c *Collector) TotalSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsTotal.Load()
}

// ── Dispatch metrics ─────────────────────────────────────────────────

// LineRead records one finalized input line.
func (c *Collector) LineRead() {
	if c == nil {
		return
	}
	c.linesRead.Add(1)
}

// CommandDispatched records one matched command invocation.
func (c *Collector) CommandDispatched() {
	if c == nil {
		return
	}
	c.commandsDispatched.Add(1)
}

// UnknownCommand records a line that matched no registered command.
func (c *Collector) UnknownCommand() {
	if c == nil {
		return
	}
	c.unknownCommands.Add(1)
}

// LinesRead returns the total number of finalized lines.
func (c *Collector) LinesRead() int64 {
	if c == nil {
		return 0
	}
	return c.linesRead.Load()
}

// CommandsDispatched returns the total matched invocations.
func (c *Collector) CommandsDispatched() int64 {
	if c == nil {
		return 0
	}
	return c.commandsDispatched.Load()
}

// UnknownCommands returns the total unmatched lines.
func (c *Collector) UnknownCommands() int64 {
	if c == nil {
		return 0
	}
	return c.unknownCommands.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from a connection.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to a connection.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime             string `json:"uptime"`
	SessionsActive     int64  `json:"sessions_active"`
	SessionsTotal      int64  `json:"sessions_total"`
	LinesRead          int64  `json:"lines_read"`
	CommandsDispatched int64  `json:"commands_dispatched"`
	UnknownCommands    int64  `json:"unknown_commands"`
	BytesIn            int64  `json:"bytes_in"`
	BytesOut           int64  `json:"bytes_out"`
	ErrorsTotal        int64  `json:"errors_total"`
	LastError          string `json:"last_error,omitempty"`
	LastErrorMessage   string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:             time.Since(c.startTime).Truncate(time.Second).String(),
		SessionsActive:     c.sessionsActive.Load(),
		SessionsTotal:      c.sessionsTotal.Load(),
		LinesRead:          c.linesRead.Load(),
		CommandsDispatched: c.commandsDispatched.Load(),
		UnknownCommands:    c.unknownCommands.Load(),
		BytesIn:            c.bytesIn.Load(),
		BytesOut:           c.bytesOut.Load(),
		ErrorsTotal:        c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
