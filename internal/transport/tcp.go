package transport

import (
	"fmt"
	"net"
)

// TCPListener accepts plain TCP connections.
type TCPListener struct {
	ln net.Listener
}

// ListenTCP binds a plain TCP listener on address.
func ListenTCP(address string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}
	return &TCPListener{ln: ln}, nil
}

// Accept returns the next raw TCP connection.
func (l *TCPListener) Accept() (Conn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close stops the listener.
func (l *TCPListener) Close() error { return l.ln.Close() }

// Addr returns the bound address.
func (l *TCPListener) Addr() net.Addr { return l.ln.Addr() }
