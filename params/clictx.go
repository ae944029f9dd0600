package params

import (
	"time"

	"github.com/urfave/cli"
)

type CLIContext interface {
	VaultAddress() string
	VaultToken() string
	SSHHost() string
	SSHCommand() []string
	SSHLogin() string
	SSHPort() int
	SSHPassword() bool
	SSHAgent() bool
	SSHInsecure() bool
	SSHMethod() string
	SSHTimeout() time.Duration
	SSHFP() bool
	DNSServer() string
	PrivateKey() string
	VPrivateKey() string
	LogLevel() string
}

func NewCliContext(ctx *cli.Context) CLIContext {
	return cliContext{ctx: ctx}
}

type cliContext struct {
	ctx *cli.Context
}

func (c cliContext) VaultAddress() string {
	return c.ctx.GlobalString("vault-address")
}

func (c cliContext) VaultToken() string {
	return c.ctx.GlobalString("vault-token")
}

func (c cliContext) SSHCommand() []string {
	if len(c.ctx.Args()) == 0 {
		return nil
	}
	return c.ctx.Args()[1:]
}

func (c cliContext) SSHHost() string {
	return c.ctx.Args().First()
}

func (c cliContext) SSHLogin() string {
	return c.ctx.GlobalString("login")
}

func (c cliContext) SSHPort() int {
	return c.ctx.GlobalInt("ssh-port")
}

func (c cliContext) SSHPassword() bool {
	return c.ctx.GlobalBool("password")
}

func (c cliContext) SSHAgent() bool {
	return c.ctx.GlobalBool("agent")
}

func (c cliContext) SSHInsecure() bool {
	return c.ctx.GlobalBool("insecure")
}

func (c cliContext) SSHMethod() string {
	return c.ctx.GlobalString("method")
}

func (c cliContext) SSHTimeout() time.Duration {
	return c.ctx.GlobalDuration("timeout")
}

func (c cliContext) PrivateKey() string {
	return c.ctx.GlobalString("privkey")
}

func (c cliContext) VPrivateKey() string {
	return c.ctx.GlobalString("vprivkey")
}

func (c cliContext) LogLevel() string {
	return c.ctx.GlobalString("loglevel")
}

func (c cliContext) SSHFP() bool {
	return c.ctx.GlobalBool("sshfp")
}

func (c cliContext) DNSServer() string {
	return c.ctx.GlobalString("dns")
}
