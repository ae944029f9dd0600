package crypto

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/mitchellh/go-homedir"
	"github.com/stephane-martin/sshauth/auth"
	"github.com/stephane-martin/sshauth/params"
	"github.com/stephane-martin/sshauth/vault"
	"go.uber.org/zap"
)

// MethodVault selects a private key read from Vault.
const MethodVault = "vault"

// DefaultPrivateKeys are tried in order when no credentials are configured.
var DefaultPrivateKeys = []string{"~/.ssh/id_ed25519", "~/.ssh/id_ecdsa", "~/.ssh/id_rsa"}

// SelectAuthentication chooses the authentication type from the command
// line: the --method flag when set, otherwise the first of password,
// private key from Vault, private key file, SSH agent, default key files.
func SelectAuthentication(ctx context.Context, c params.CLIContext, vaultClient *api.Client, prompt Prompter, l *zap.SugaredLogger) (auth.Type, error) {
	method := strings.ToLower(strings.TrimSpace(c.SSHMethod()))
	if method == "" {
		method = defaultMethod(c, vaultClient)
	}
	if method == "" {
		return nil, errors.New("no usable credentials")
	}
	l.Debugw("selected authentication method", "method", method)

	switch method {
	case auth.TypeInteractive:
		return auth.Interactive{}, nil
	case auth.TypeAgent:
		return auth.Agent{}, nil
	case auth.TypePassword:
		pass, err := prompt("Enter SSH password")
		if err != nil {
			return nil, err
		}
		return auth.Password{Secret: pass}, nil
	case auth.TypeKeyFile:
		path := c.PrivateKey()
		if path == "" {
			path = findDefaultKey()
		}
		if path == "" {
			return nil, errors.New("no private key file")
		}
		return keyFile(path, prompt, l)
	case MethodVault, auth.TypeKeyMemory:
		return vaultKey(ctx, c.VPrivateKey(), vaultClient, prompt, l)
	default:
		return nil, fmt.Errorf("unknown authentication method: %s", method)
	}
}

func defaultMethod(c params.CLIContext, vaultClient *api.Client) string {
	switch {
	case c.SSHPassword():
		return auth.TypePassword
	case c.VPrivateKey() != "" && vaultClient != nil:
		return MethodVault
	case c.PrivateKey() != "":
		return auth.TypeKeyFile
	case c.SSHAgent() || os.Getenv("SSH_AUTH_SOCK") != "":
		return auth.TypeAgent
	case findDefaultKey() != "":
		return auth.TypeKeyFile
	}
	return ""
}

func findDefaultKey() string {
	for _, k := range DefaultPrivateKeys {
		p, err := homedir.Expand(k)
		if err != nil {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func keyFile(path string, prompt Prompter, l *zap.SugaredLogger) (auth.Type, error) {
	needPass, err := KeyFileNeedsPassphrase(path)
	if err != nil {
		return nil, err
	}
	k := auth.KeyFile{Path: path}
	if needPass {
		l.Debugw("private key is encrypted", "path", path)
		k.Passphrase, err = prompt("Enter the passphrase for the private key")
		if err != nil {
			return nil, fmt.Errorf("failed to get passphrase: %s", err)
		}
	}
	return k, nil
}

func vaultKey(ctx context.Context, vpath string, client *api.Client, prompt Prompter, l *zap.SugaredLogger) (auth.Type, error) {
	if client == nil {
		return nil, errors.New("no Vault client")
	}
	if vpath == "" {
		return nil, errors.New("Vault private key path is not set")
	}
	privkey, err := vault.ReadPrivateKeyFromVault(ctx, vpath, client, l)
	if err != nil {
		return nil, err
	}
	defer privkey.Destroy()
	k := auth.KeyMemory{PrivateKey: string(privkey.Buffer())}
	needPass, err := NeedPassphrase(privkey.Buffer())
	if err != nil {
		return nil, fmt.Errorf("error parsing private key from Vault: %s", err)
	}
	if needPass {
		k.Passphrase, err = prompt("Enter the passphrase for the private key")
		if err != nil {
			return nil, fmt.Errorf("failed to get passphrase: %s", err)
		}
	}
	return k, nil
}
