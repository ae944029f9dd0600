package lib

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

const resolvConf = "/etc/resolv.conf"

// SSHFP algorithm numbers (RFC 4255, RFC 6594, RFC 7479).
var sshfpAlgorithms = map[string]uint8{
	ssh.KeyAlgoRSA:      1,
	ssh.KeyAlgoDSA:      2,
	ssh.KeyAlgoECDSA256: 3,
	ssh.KeyAlgoECDSA384: 3,
	ssh.KeyAlgoECDSA521: 3,
	ssh.KeyAlgoED25519:  4,
}

// SSHFP fingerprint types.
const (
	fingerprintSHA1   uint8 = 1
	fingerprintSHA256 uint8 = 2
)

// ErrNoSSHFPRecord is returned when the host publishes no SSHFP record.
var ErrNoSSHFPRecord = errors.New("no SSHFP record")

// SSHFPResolver queries the SSHFP records of SSH hosts.
type SSHFPResolver struct {
	// Server is the DNS server address. When empty, the first nameserver of
	// /etc/resolv.conf is used.
	Server  string
	Timeout time.Duration
}

func (r SSHFPResolver) server() (string, error) {
	if r.Server != "" {
		if _, _, err := net.SplitHostPort(r.Server); err != nil {
			return net.JoinHostPort(r.Server, "53"), nil
		}
		return r.Server, nil
	}
	conf, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %s", resolvConf, err)
	}
	if len(conf.Servers) == 0 {
		return "", errors.New("no DNS server configured")
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port), nil
}

// Lookup returns the SSHFP records of host.
func (r SSHFPResolver) Lookup(host string) ([]*dns.SSHFP, error) {
	server, err := r.server()
	if err != nil {
		return nil, err
	}
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeSSHFP)
	m.RecursionDesired = true
	c := &dns.Client{Timeout: r.Timeout}
	resp, _, err := c.Exchange(m, server)
	if err != nil {
		return nil, fmt.Errorf("SSHFP query for %s failed: %s", host, err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("SSHFP query for %s failed: %s", host, dns.RcodeToString[resp.Rcode])
	}
	var records []*dns.SSHFP
	for _, rr := range resp.Answer {
		if fp, ok := rr.(*dns.SSHFP); ok {
			records = append(records, fp)
		}
	}
	return records, nil
}

// MatchSSHFP reports whether key matches one of records.
func MatchSSHFP(key ssh.PublicKey, records []*dns.SSHFP) bool {
	algo, ok := sshfpAlgorithms[key.Type()]
	if !ok {
		return false
	}
	blob := key.Marshal()
	sum1 := sha1.Sum(blob)
	sum256 := sha256.Sum256(blob)
	for _, rr := range records {
		if rr.Algorithm != algo {
			continue
		}
		var expected string
		switch rr.Type {
		case fingerprintSHA1:
			expected = hex.EncodeToString(sum1[:])
		case fingerprintSHA256:
			expected = hex.EncodeToString(sum256[:])
		default:
			continue
		}
		if strings.EqualFold(rr.FingerPrint, expected) {
			return true
		}
	}
	return false
}

// SSHFPCallback verifies server keys against the SSHFP records of the host.
func SSHFPCallback(r SSHFPResolver, l *zap.SugaredLogger) ssh.HostKeyCallback {
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		host := hostname
		if h, _, err := net.SplitHostPort(hostname); err == nil {
			host = h
		}
		records, err := r.Lookup(host)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%s: %w", host, ErrNoSSHFPRecord)
		}
		if !MatchSSHFP(key, records) {
			return fmt.Errorf("host key for %s does not match its SSHFP records", host)
		}
		l.Debugw("host key verified by SSHFP", "hostname", host, "fingerprint", ssh.FingerprintSHA256(key))
		return nil
	}
}
