// Package transport provides the listeners a shell server accepts
// connections from.  Transports handle the "how" of byte movement —
// plain TCP or an SSH session channel — independent of what happens
// over the connection (which is the shell session's job).
package transport

import (
	"io"
	"net"
)

// Conn is a single accepted byte-stream connection.
type Conn interface {
	io.ReadWriteCloser

	// RemoteAddr identifies the peer, for logging.
	RemoteAddr() net.Addr
}

// Listener yields inbound connections ready to carry a shell session.
// The plain TCP listener hands connections over as-is; the SSH
// listener completes the handshake first and surfaces the session
// channel.
type Listener interface {
	// Accept blocks until the next connection is ready.
	Accept() (Conn, error)

	// Close stops the listener and unblocks any pending Accept.
	Close() error

	// Addr returns the bound listen address.
	Addr() net.Addr
}
