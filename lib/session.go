package lib

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net"
	"strings"
	"time"

	"github.com/awnumar/memguard"
	"github.com/mitchellh/go-homedir"
	gssh "github.com/stephane-martin/golang-ssh"
	"github.com/stephane-martin/sshauth/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var _ auth.Session = (*Session)(nil)

var errProbe = errors.New("probing authentication methods")

// Session is a TCP transport to an SSH server on which the authentication
// exchanges run. Every exchange consumes the transport: x/crypto/ssh closes
// it when the handshake fails, so the next exchange dials again.
type Session struct {
	ctx    context.Context
	cfg    Config
	conn   net.Conn
	client *ssh.Client
	l      *zap.SugaredLogger
}

// Connect opens the transport connection. The returned session is not
// authenticated. ctx also bounds the later redials.
func Connect(ctx context.Context, cfg Config, l *zap.SugaredLogger) (*Session, error) {
	if cfg.Host == "" {
		return nil, errors.New("empty host")
	}
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	s := &Session{ctx: ctx, cfg: cfg, l: l}
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return s, nil
}

func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	addr := s.cfg.GetAddr()
	s.l.Debugw("opening transport", "addr", addr)
	conn, err := s.cfg.GetDialer().DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %s", addr, err)
	}
	return conn, nil
}

func (s *Session) transport() (net.Conn, error) {
	if s.conn != nil {
		conn := s.conn
		s.conn = nil
		return conn, nil
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.GetTimeout())
	defer cancel()
	return s.dial(ctx)
}

// handshake runs the SSH handshake with the given methods on the current
// transport. kex reports whether the key exchange completed, which tells
// authentication failures apart from transport failures.
func (s *Session) handshake(username string, methods ...ssh.AuthMethod) (client *ssh.Client, kex bool, err error) {
	conn, err := s.transport()
	if err != nil {
		return nil, false, err
	}
	cfg := s.cfg.clientConfig(username, methods...)
	hostKey := cfg.HostKeyCallback
	cfg.HostKeyCallback = func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		if err := hostKey(hostname, remote, key); err != nil {
			return err
		}
		kex = true
		return nil
	}
	_ = conn.SetDeadline(time.Now().Add(s.cfg.GetTimeout()))
	c, chans, reqs, err := ssh.NewClientConn(conn, s.cfg.GetAddr(), cfg)
	if err != nil {
		_ = conn.Close()
		return nil, kex, err
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), kex, nil
}

func (s *Session) authenticate(username string, method ssh.AuthMethod) error {
	client, _, err := s.handshake(username, method)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *Session) Authenticated() bool {
	return s.client != nil
}

// AuthMethods probes the methods the server accepts for username among
// password, publickey and keyboard-interactive. The probing callbacks
// submit nothing. A server that accepts the none method authenticates the
// session and returns an empty list.
func (s *Session) AuthMethods(username string) ([]string, error) {
	if s.client != nil {
		return nil, nil
	}
	offered := auth.NewMethodSet()
	client, kex, err := s.handshake(
		username,
		ssh.PasswordCallback(func() (string, error) {
			offered.Add(auth.MethodPassword)
			return "", errProbe
		}),
		ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
			offered.Add(auth.MethodPublicKey)
			return nil, nil
		}),
		// last: it is the only probe that sends a request
		ssh.KeyboardInteractive(func(name, instruction string, questions []string, echos []bool) ([]string, error) {
			offered.Add(auth.MethodKeyboardInteractive)
			return nil, errProbe
		}),
	)
	if err == nil {
		s.l.Debugw("server accepted the none method", "user", username)
		s.client = client
		return nil, nil
	}
	if !kex {
		return nil, err
	}
	if isKeyboardInteractiveRejected(err) {
		offered.Add(auth.MethodKeyboardInteractive)
	} else if !isAuthFailure(err) {
		return nil, err
	}
	methods := offered.Sorted()
	s.l.Debugw("accepted authentication methods", "user", username, "methods", methods)
	return methods, nil
}

func isAuthFailure(err error) bool {
	if errors.Is(err, errProbe) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, errProbe.Error()) || strings.Contains(msg, "unable to authenticate")
}

// isKeyboardInteractiveRejected tells whether the server answered the
// keyboard-interactive request with a failure instead of a challenge.
func isKeyboardInteractiveRejected(err error) bool {
	return strings.Contains(err.Error(), "unexpected message type 51 (expected 60)")
}

func (s *Session) UserauthAgent(username string) error {
	sock := s.cfg.GetAgentSocket()
	if sock == "" {
		return errors.New("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH agent: %s", err)
	}
	defer func() { _ = conn.Close() }()
	return s.authenticate(username, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
}

func (s *Session) UserauthPubkeyFile(username, privateKeyPath, passphrase string) error {
	p, err := homedir.Expand(privateKeyPath)
	if err != nil {
		return err
	}
	if passphrase == "" {
		method, err := gssh.AuthKeyFile(p)
		if err != nil {
			return err
		}
		return s.authenticate(username, method)
	}
	key, err := ioutil.ReadFile(p)
	if err != nil {
		return fmt.Errorf("failed to read key file %s: %s", p, err)
	}
	defer memguard.WipeBytes(key)
	signer, err := ParseSigner(key, passphrase)
	if err != nil {
		return fmt.Errorf("failed to parse private key %s: %s", p, err)
	}
	return s.authenticate(username, ssh.PublicKeys(signer))
}

func (s *Session) UserauthPubkeyMemory(username, privateKey, passphrase string) error {
	if passphrase == "" {
		method, err := gssh.AuthKey(strings.NewReader(privateKey))
		if err != nil {
			return err
		}
		return s.authenticate(username, method)
	}
	signer, err := ParseSigner([]byte(privateKey), passphrase)
	if err != nil {
		return fmt.Errorf("failed to parse private key: %s", err)
	}
	return s.authenticate(username, ssh.PublicKeys(signer))
}

func (s *Session) UserauthPassword(username, password string) error {
	return s.authenticate(username, gssh.AuthPassword(password))
}

// Client returns the SSH client of an authenticated session, nil otherwise.
func (s *Session) Client() *ssh.Client {
	return s.client
}

func (s *Session) Close() error {
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// ParseSigner parses a private key, decrypting it when passphrase is set.
func ParseSigner(key []byte, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(key)
}
