// Package secrets resolves configuration secret references against
// HashiCorp Vault.
package secrets

import (
	"context"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"

	"github.com/turtacn/kam/internal/config"
	"github.com/turtacn/kam/pkg/logger"
)

// VaultResolver resolves "path#key" references from a KV v2 mount.
type VaultResolver struct {
	client *vault.Client
	mount  string
	logger logger.Logger
}

// NewVaultResolver connects to Vault using the given config.
func NewVaultResolver(cfg config.VaultConfig, log logger.Logger) (*VaultResolver, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	return &VaultResolver{
		client: client,
		mount:  cfg.MountPath,
		logger: log.WithFields(logger.Fields{"component": "vault"}),
	}, nil
}

// Resolve fetches one secret value. The reference names the secret path
// and the field within it, separated by '#'.
func (r *VaultResolver) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, ok := strings.Cut(ref, "#")
	if !ok {
		return "", fmt.Errorf("secret reference %q must look like path#key", ref)
	}

	secret, err := r.client.KVv2(r.mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("reading secret %s: %w", path, err)
	}

	value, ok := secret.Data[key].(string)
	if !ok {
		return "", fmt.Errorf("secret %s has no string field %q", path, key)
	}

	r.logger.Debug(ctx, "secret resolved", logger.Fields{"path": path, "key": key})
	return value, nil
}

var _ config.SecretResolver = (*VaultResolver)(nil)
