package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContext struct {
	CLIContext
	host     string
	login    string
	port     int
	insecure bool
	commands []string
}

func (f fakeContext) SSHHost() string           { return f.host }
func (f fakeContext) SSHLogin() string          { return f.login }
func (f fakeContext) SSHPort() int              { return f.port }
func (f fakeContext) SSHInsecure() bool         { return f.insecure }
func (f fakeContext) SSHCommand() []string      { return f.commands }
func (f fakeContext) SSHTimeout() time.Duration { return 5 * time.Second }
func (f fakeContext) SSHFP() bool               { return false }
func (f fakeContext) DNSServer() string         { return "" }

func TestParseTarget(t *testing.T) {
	tests := []struct {
		target string
		login  string
		host   string
		port   int
	}{
		{"example.org", "", "example.org", 0},
		{"deploy@example.org", "deploy", "example.org", 0},
		{"deploy@example.org:2222", "deploy", "example.org", 2222},
		{"[::1]:2222", "", "::1", 2222},
		{"::1", "", "::1", 0},
		{"us@r@host", "us@r", "host", 0},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			login, host, port, err := ParseTarget(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.login, login)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
		})
	}

	for _, bad := range []string{"", "  ", "deploy@", "host:0", "host:99999", "host:abc"} {
		_, _, _, err := ParseTarget(bad)
		assert.Error(t, err, bad)
	}
}

func TestGetSSHParams(t *testing.T) {
	p, err := GetSSHParams(fakeContext{
		host:     "example.org",
		login:    "deploy",
		port:     2200,
		insecure: true,
		commands: []string{"uptime"},
	})
	require.NoError(t, err)
	assert.Equal(t, "deploy", p.LoginName)
	assert.Equal(t, "example.org", p.Host)
	assert.Equal(t, 2200, p.Port)
	assert.True(t, p.Insecure)
	assert.Equal(t, []string{"uptime"}, p.Commands)
	assert.Equal(t, 5*time.Second, p.Timeout)
	assert.Equal(t, "deploy@example.org:2200", p.Target())

	p, err = GetSSHParams(fakeContext{host: "root@example.org:2222", login: "deploy", port: 2200})
	require.NoError(t, err)
	assert.Equal(t, "root", p.LoginName)
	assert.Equal(t, 2222, p.Port)

	p, err = GetSSHParams(fakeContext{host: "example.org"})
	require.NoError(t, err)
	assert.Equal(t, 22, p.Port)
	assert.NotEmpty(t, p.LoginName)

	_, err = GetSSHParams(fakeContext{})
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	l, err := Logger("debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = Logger("chatty")
	assert.Error(t, err)
}
