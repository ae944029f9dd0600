package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/vault/api"
	"github.com/stephane-martin/sshauth/params"
	"go.uber.org/zap"
)

// PrivateKeyField is the secret field holding the private key.
const PrivateKeyField = "private_key"

func GetVaultClient(ctx context.Context, vaultParams params.VaultParams, l *zap.SugaredLogger) (*api.Client, error) {
	if vaultParams.Address == "" {
		return nil, errors.New("Vault address is not set")
	}
	// unset env VAULT_ADDR to prevent the vault client from seeing it
	_ = os.Unsetenv("VAULT_ADDR")

	cfg := api.DefaultConfig()
	cfg.Address = vaultParams.Address
	cfg.HttpClient = cleanhttp.DefaultPooledClient()
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("Vault client error: %s", err)
	}
	if vaultParams.Token != "" {
		client.SetToken(vaultParams.Token)
	}
	err = CheckHealth(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("Vault health check error: %s", err)
	}
	l.Debugw("vault client ready", "address", vaultParams.Address)
	return client, nil
}

func CheckHealth(ctx context.Context, client *api.Client) error {
	errs := make(chan error, 1)
	go func() {
		resp, err := client.Sys().Health()
		if err == nil && resp.Sealed {
			err = errors.New("Vault is sealed")
		}
		errs <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errs:
		return err
	}
}

// ReadPrivateKeyFromVault reads the private key stored at vpath.
func ReadPrivateKeyFromVault(ctx context.Context, vpath string, client *api.Client, l *zap.SugaredLogger) (*memguard.LockedBuffer, error) {
	key, err := readPrivateKey(ctx, vpath, client, l)
	if err != nil {
		return nil, err
	}
	privkeyb := append(bytes.Trim([]byte(key), "\n"), '\n')
	privkey, err := memguard.NewImmutableFromBytes(privkeyb)
	if err != nil {
		memguard.WipeBytes(privkeyb)
		return nil, err
	}
	return privkey, nil
}

func readPrivateKey(ctx context.Context, vpath string, client *api.Client, l *zap.SugaredLogger) (string, error) {
	vpath = strings.Trim(vpath, "/")
	if vpath == "" {
		return "", errors.New("empty Vault path")
	}
	type result struct {
		secret *api.Secret
		err    error
	}
	c := make(chan result, 1)
	go func() {
		secret, err := client.Logical().Read(vpath)
		c <- result{secret: secret, err: err}
	}()
	var res result
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-c:
	}
	if res.err != nil {
		return "", fmt.Errorf("failed to read %s from Vault: %s", vpath, res.err)
	}
	if res.secret == nil {
		return "", fmt.Errorf("secret not found in Vault: %s", vpath)
	}
	l.Debugw("read secret from vault", "path", vpath)
	return extractPrivateKey(res.secret.Data)
}

// extractPrivateKey finds the private key in the data of a KV v1 or KV v2
// secret: the private_key field, or the only string field.
func extractPrivateKey(data map[string]interface{}) (string, error) {
	if nested, ok := data["data"].(map[string]interface{}); ok {
		if _, isV2 := data["metadata"]; isV2 {
			data = nested
		}
	}
	if v, ok := data[PrivateKeyField].(string); ok && v != "" {
		return v, nil
	}
	var found []string
	for _, v := range data {
		if s, ok := v.(string); ok && s != "" {
			found = append(found, s)
		}
	}
	if len(found) == 1 {
		return found[0], nil
	}
	return "", errors.New("private key not found in Vault")
}
