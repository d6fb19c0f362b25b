package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"

	sderr "shelld/internal/errors"
	"shelld/util"
)

// SSHOptions configures the SSH transport.
type SSHOptions struct {
	// HostKeyPath is where the server host key lives.  A missing file
	// is populated with a freshly generated RSA key.
	HostKeyPath string

	// Password, when non-empty, is required from every client.  When
	// empty the server accepts any client without authentication.
	Password string
}

// SSHListener accepts TCP connections, completes the SSH handshake,
// and surfaces the client's "session" channel as the shell byte
// stream.
type SSHListener struct {
	ln     net.Listener
	config *ssh.ServerConfig
	logger *util.Logger
}

// ListenSSH binds an SSH listener on address.
func ListenSSH(address string, opts *SSHOptions, logger *util.Logger) (*SSHListener, error) {
	signer, err := LoadOrGenerateHostKey(opts.HostKeyPath)
	if err != nil {
		return nil, fmt.Errorf("host key: %w", err)
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	return &SSHListener{
		ln:     ln,
		config: newServerConfig(opts, signer),
		logger: logger,
	}, nil
}

// Accept blocks until a client completes the handshake and opens a
// session channel.  Failed handshakes are logged and skipped rather
// than surfaced, so one hostile client cannot stall the server.
func (l *SSHListener) Accept() (Conn, error) {
	for {
		raw, err := l.ln.Accept()
		if err != nil {
			return nil, err
		}

		conn, err := l.upgrade(raw)
		if err != nil {
			l.logger.Verbose("ssh handshake from %s failed: %v", raw.RemoteAddr(), err)
			raw.Close()
			continue
		}
		return conn, nil
	}
}

// Close stops the listener.
func (l *SSHListener) Close() error { return l.ln.Close() }

// Addr returns the bound address.
func (l *SSHListener) Addr() net.Addr { return l.ln.Addr() }

// upgrade runs the SSH handshake on raw and waits for the client's
// session channel.
func (l *SSHListener) upgrade(raw net.Conn) (Conn, error) {
	sconn, chans, reqs, err := ssh.NewServerConn(raw, l.config)
	if err != nil {
		return nil, sderr.Wrap("handshake", raw.RemoteAddr().String(), err)
	}
	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type") //nolint:errcheck
			continue
		}
		ch, chReqs, err := newChan.Accept()
		if err != nil {
			sconn.Close()
			return nil, fmt.Errorf("accept session channel: %w", err)
		}
		go serviceSessionRequests(chReqs)
		return &sshConn{Channel: ch, conn: sconn}, nil
	}

	sconn.Close()
	return nil, sderr.New("client opened no session channel")
}

// serviceSessionRequests grants the channel requests an interactive
// client needs and refuses the rest.
func serviceSessionRequests(reqs <-chan *ssh.Request) {
	for req := range reqs {
		switch req.Type {
		case "pty-req", "shell", "env", "window-change":
			req.Reply(true, nil) //nolint:errcheck
		default:
			if req.WantReply {
				req.Reply(false, nil) //nolint:errcheck
			}
		}
	}
}

// sshConn is one SSH session channel presented as a Conn.  Closing it
// tears down the whole client connection.
type sshConn struct {
	ssh.Channel
	conn *ssh.ServerConn
}

func (c *sshConn) Close() error {
	c.Channel.Close() //nolint:errcheck
	return c.conn.Close()
}

func (c *sshConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// ── server configuration ─────────────────────────────────────────────

func newServerConfig(opts *SSHOptions, signer ssh.Signer) *ssh.ServerConfig {
	cfg := &ssh.ServerConfig{ServerVersion: "SSH-2.0-shelld"}

	if opts.Password != "" {
		want := []byte(opts.Password)
		cfg.PasswordCallback = func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if subtle.ConstantTimeCompare(password, want) == 1 {
				return &ssh.Permissions{}, nil
			}
			return nil, fmt.Errorf("%w for %s", sderr.ErrAuthFailed, meta.User())
		}
	} else {
		cfg.NoClientAuth = true
	}

	cfg.AddHostKey(signer)
	return cfg
}

// LoadOrGenerateHostKey returns the signer stored at path, generating
// and persisting a new 2048-bit RSA key when the file does not exist
// or cannot be parsed.
func LoadOrGenerateHostKey(path string) (ssh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := ssh.ParsePrivateKey(data); err == nil {
			return signer, nil
		}
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("write host key: %w", err)
	}
	defer f.Close()
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	if err := pem.Encode(f, block); err != nil {
		return nil, fmt.Errorf("encode host key: %w", err)
	}

	return ssh.NewSignerFromKey(key)
}
