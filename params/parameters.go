package params

import (
	"errors"
	"fmt"
	"net"
	"os/user"
	"strconv"
	"strings"
	"time"
)

type VaultParams struct {
	Address string
	Token   string
}

type SSHParams struct {
	Port      int
	Insecure  bool
	LoginName string
	Host      string
	Commands  []string
	Timeout   time.Duration
	// SSHFP verifies host keys with DNS instead of known_hosts.
	SSHFP     bool
	DNSServer string
}

// Target returns "user@host:port".
func (p SSHParams) Target() string {
	return p.LoginName + "@" + net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

type Params struct {
	LogLevel string
}

func GetParams(c CLIContext) Params {
	return Params{
		LogLevel: strings.ToLower(strings.TrimSpace(c.LogLevel())),
	}
}

// ParseTarget splits "[user@]host[:port]". Missing parts are returned empty
// or zero.
func ParseTarget(target string) (login, host string, port int, err error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", 0, errors.New("empty host")
	}
	if i := strings.LastIndex(target, "@"); i >= 0 {
		login = target[:i]
		target = target[i+1:]
	}
	host = target
	if h, p, err := net.SplitHostPort(target); err == nil {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid port: %s", p)
		}
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		return "", "", 0, errors.New("empty host")
	}
	return login, host, port, nil
}

func GetSSHParams(c CLIContext) (p SSHParams, err error) {
	return GetSSHParamsFor(c, c.SSHHost())
}

// GetSSHParamsFor builds the parameters for target, completing it with the
// login, port and timeout flags.
func GetSSHParamsFor(c CLIContext, target string) (p SSHParams, err error) {
	p.LoginName, p.Host, p.Port, err = ParseTarget(target)
	if err != nil {
		return p, err
	}
	if p.LoginName == "" {
		p.LoginName = c.SSHLogin()
		if p.LoginName == "" {
			u, err := user.Current()
			if err != nil {
				return p, err
			}
			p.LoginName = u.Username
		}
	}
	if p.Port == 0 {
		p.Port = c.SSHPort()
	}
	if p.Port == 0 {
		p.Port = 22
	}
	p.Commands = c.SSHCommand()
	p.Insecure = c.SSHInsecure()
	p.Timeout = c.SSHTimeout()
	p.SSHFP = c.SSHFP()
	p.DNSServer = c.DNSServer()
	return p, nil
}

func GetVaultParams(c CLIContext) VaultParams {
	return VaultParams{
		Address: c.VaultAddress(),
		Token:   c.VaultToken(),
	}
}
