package commands

import (
	"context"

	"github.com/hashicorp/vault/api"
	gssh "github.com/stephane-martin/golang-ssh"
	"github.com/stephane-martin/sshauth/lib"
	"github.com/stephane-martin/sshauth/params"
	"github.com/stephane-martin/sshauth/vault"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

func exitOnError(e *error) {
	if *e != nil {
		*e = cli.NewExitError((*e).Error(), 1)
	}
}

func connect(ctx context.Context, sshParams params.SSHParams, l *zap.SugaredLogger) (*lib.Session, error) {
	var hkcb ssh.HostKeyCallback
	if sshParams.SSHFP && !sshParams.Insecure {
		hkcb = lib.SSHFPCallback(lib.SSHFPResolver{Server: sshParams.DNSServer, Timeout: sshParams.Timeout}, l)
	} else {
		var err error
		hkcb, err = lib.MakeHostKeyCallback(sshParams.Insecure, l)
		if err != nil {
			return nil, err
		}
	}
	return lib.Connect(ctx, lib.Config{Config: gssh.Config{
		Host:    sshParams.Host,
		Port:    sshParams.Port,
		Timeout: sshParams.Timeout,
		HostKey: hkcb,
	}}, l)
}

// getVaultClient returns nil when no private key is to be read from Vault
// or when Vault is unreachable.
func getVaultClient(ctx context.Context, c params.CLIContext, l *zap.SugaredLogger) (*api.Client, error) {
	if c.VPrivateKey() == "" {
		return nil, nil
	}
	client, err := vault.GetVaultClient(ctx, params.GetVaultParams(c), l)
	if err == context.Canceled {
		return nil, err
	}
	if err != nil {
		l.Errorw("vault auth failed", "error", err)
		return nil, nil
	}
	return client, nil
}
