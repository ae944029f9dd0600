package lib

import (
	"bytes"
	"fmt"
	"net"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const DefaultKnownHosts = "~/.ssh/known_hosts"

// MakeHostKeyCallback verifies server keys against the knownHosts files
// (DefaultKnownHosts when empty). With insecure set, every key is accepted.
func MakeHostKeyCallback(insecure bool, l *zap.SugaredLogger, knownHosts ...string) (ssh.HostKeyCallback, error) {
	logKey := func(hostname string, remote net.Addr, key ssh.PublicKey) {
		l.Debugw(
			"host key",
			"hostname", hostname,
			"remote", remote.String(),
			"fingerprint", ssh.FingerprintSHA256(key),
			"key", string(bytes.TrimSpace(ssh.MarshalAuthorizedKey(key))),
		)
	}
	if insecure {
		return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			logKey(hostname, remote, key)
			return nil
		}, nil
	}
	if len(knownHosts) == 0 {
		knownHosts = []string{DefaultKnownHosts}
	}
	files := make([]string, 0, len(knownHosts))
	for _, kh := range knownHosts {
		p, err := homedir.Expand(kh)
		if err != nil {
			return nil, fmt.Errorf("failed to expand known_hosts path: %s", err)
		}
		files = append(files, p)
	}
	callback, err := knownhosts.New(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to open known_hosts file: %s", err)
	}
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		logKey(hostname, remote, key)
		return callback(hostname, remote, key)
	}, nil
}
