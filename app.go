package main

import (
	"time"

	"github.com/stephane-martin/sshauth/commands"
	"github.com/urfave/cli"
)

// App returns the sshauth application object.
func App() *cli.App {
	app := cli.NewApp()
	app.Name = "sshauth"
	app.Usage = "authenticate to SSH servers with a password, a private key or an agent"
	app.Version = Version
	app.Commands = []cli.Command{
		commands.CheckCommand(),
		commands.MethodsCommand(),
	}
	app.Flags = GlobalFlags()
	return app
}

// GlobalFlags returns the global flags for sshauth.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "login,l",
			Usage:  "SSH remote user",
			EnvVar: "SSH_USER",
		},
		cli.IntFlag{
			Name:   "ssh-port,sshport,P",
			Usage:  "SSH remote port",
			EnvVar: "SSH_PORT",
			Value:  22,
		},
		cli.StringFlag{
			Name:   "method",
			Usage:  "authentication method: interactive, agent, keyfile, password, vault",
			EnvVar: "SSH_AUTH_METHOD",
		},
		cli.StringFlag{
			Name:   "privkey,private,i",
			Usage:  "filesystem path to SSH private key",
			EnvVar: "IDENTITY",
		},
		cli.StringFlag{
			Name:   "vprivkey,vprivate",
			Usage:  "Vault secret path to SSH private key",
			EnvVar: "VIDENTITY",
		},
		cli.BoolFlag{
			Name:   "agent",
			Usage:  "authenticate with the SSH agent",
			EnvVar: "SSH_AGENT",
		},
		cli.BoolFlag{
			Name:   "password",
			Usage:  "authenticate with a password",
			EnvVar: "SSH_PASSWORD_AUTH",
		},
		cli.BoolFlag{
			Name:   "insecure",
			Usage:  "do not check the SSH server host key",
			EnvVar: "SSH_INSECURE",
		},
		cli.BoolFlag{
			Name:   "sshfp",
			Usage:  "verify the SSH server host key with its SSHFP DNS records",
			EnvVar: "SSH_SSHFP",
		},
		cli.StringFlag{
			Name:   "dns",
			Usage:  "DNS server used for SSHFP queries (default: from /etc/resolv.conf)",
			EnvVar: "SSH_DNS_SERVER",
		},
		cli.DurationFlag{
			Name:   "timeout",
			Usage:  "SSH connection timeout",
			EnvVar: "SSH_TIMEOUT",
			Value:  15 * time.Second,
		},
		cli.StringFlag{
			Name:   "vault-address,vault-addr",
			Value:  "http://127.0.0.1:8200",
			EnvVar: "VAULT_ADDR",
			Usage:  "the address of the Vault server",
		},
		cli.StringFlag{
			Name:   "vault-token,token",
			Value:  "",
			EnvVar: "VAULT_TOKEN",
			Usage:  "Vault authentication token",
		},
		cli.StringFlag{
			Name:   "prompt",
			Usage:  "how to ask for passwords and passphrases: form or line",
			Value:  "form",
			EnvVar: "SSHAUTH_PROMPT",
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "logging level",
			Value: "info",
		},
	}
}
