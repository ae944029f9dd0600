package lib

import (
	"context"
	"net"
	"os"

	gssh "github.com/stephane-martin/golang-ssh"
	"golang.org/x/crypto/ssh"
)

// Dialer opens the transport connection. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Config adds the agent socket and the transport dialer to the golang-ssh
// client configuration. Its User and Auth fields are set per exchange.
type Config struct {
	gssh.Config
	AgentSocket string // SSH agent socket, $SSH_AUTH_SOCK by default
	Dialer      Dialer // transport dialer, net.Dialer by default
}

func (cfg Config) GetAgentSocket() string {
	if cfg.AgentSocket != "" {
		return cfg.AgentSocket
	}
	return os.Getenv("SSH_AUTH_SOCK")
}

func (cfg Config) GetDialer() Dialer {
	if cfg.Dialer != nil {
		return cfg.Dialer
	}
	return &net.Dialer{Timeout: cfg.GetTimeout()}
}

// clientConfig returns the native configuration of a single handshake
// trying methods in order.
func (cfg Config) clientConfig(username string, methods ...ssh.AuthMethod) *ssh.ClientConfig {
	c := cfg.Config
	c.User = username
	c.Auth = methods
	natives := c.ToNatives()
	if len(natives) == 0 {
		return &ssh.ClientConfig{
			User:            username,
			ClientVersion:   c.Version(),
			HostKeyCallback: c.GetHostKeyCallback(),
			Timeout:         c.GetTimeout(),
		}
	}
	// ToNatives splits the methods into one configuration each
	native := natives[0]
	native.Auth = methods
	return native
}
