package secrets

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/vault/api"
)

// Credentials is an exchange API key pair the DataProvider REST client
// needs for authenticated endpoints. The decision engine itself is
// read-only (no order placement), so only the keys are modeled.
type Credentials struct {
	APIKey    string
	SecretKey string
	Exchange  string
}

// VaultConfig configures the Vault client. Enabled=false runs entirely
// against the in-memory cache, matching the teacher's disabled-Vault
// development mode.
type VaultConfig struct {
	Enabled   bool
	Address   string
	Token     string
	MountPath string
	SecretPath string
}

// VaultClient wraps the HashiCorp Vault KV client, caching reads in
// memory. Grounded on the teacher's internal/vault.Client, generalized
// from per-user multi-exchange storage to the engine's single set of
// per-exchange credentials.
type VaultClient struct {
	client *api.Client
	cfg    VaultConfig

	mu    sync.RWMutex
	cache map[string]Credentials
}

// NewVaultClient builds a VaultClient. When cfg.Enabled is false, it
// operates purely against the in-memory cache.
func NewVaultClient(cfg VaultConfig) (*VaultClient, error) {
	if !cfg.Enabled {
		return &VaultClient{cfg: cfg, cache: make(map[string]Credentials)}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &VaultClient{client: client, cfg: cfg, cache: make(map[string]Credentials)}, nil
}

// StoreCredentials writes exchange credentials to Vault (and the cache).
func (v *VaultClient) StoreCredentials(ctx context.Context, creds Credentials) error {
	if !v.cfg.Enabled {
		v.mu.Lock()
		v.cache[creds.Exchange] = creds
		v.mu.Unlock()
		return nil
	}

	path := v.secretPath(creds.Exchange)
	data := map[string]interface{}{
		"data": map[string]interface{}{
			"api_key":    creds.APIKey,
			"secret_key": creds.SecretKey,
		},
	}
	if _, err := v.client.Logical().WriteWithContext(ctx, path, data); err != nil {
		return fmt.Errorf("store credentials in vault: %w", err)
	}

	v.mu.Lock()
	v.cache[creds.Exchange] = creds
	v.mu.Unlock()
	return nil
}

// GetCredentials retrieves credentials for an exchange, preferring the
// in-memory cache over a round-trip to Vault.
func (v *VaultClient) GetCredentials(ctx context.Context, exchange string) (Credentials, error) {
	v.mu.RLock()
	if cached, ok := v.cache[exchange]; ok {
		v.mu.RUnlock()
		return cached, nil
	}
	v.mu.RUnlock()

	if !v.cfg.Enabled {
		return Credentials{}, fmt.Errorf("credentials for %s not found and vault is disabled", exchange)
	}

	secret, err := v.client.Logical().ReadWithContext(ctx, v.secretPath(exchange))
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return Credentials{}, fmt.Errorf("credentials for %s not found in vault", exchange)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return Credentials{}, fmt.Errorf("malformed vault secret for %s", exchange)
	}

	creds := Credentials{
		Exchange:  exchange,
		APIKey:    stringField(data, "api_key"),
		SecretKey: stringField(data, "secret_key"),
	}

	v.mu.Lock()
	v.cache[exchange] = creds
	v.mu.Unlock()
	return creds, nil
}

// Health reports whether Vault is reachable and unsealed. A disabled
// client is always considered healthy.
func (v *VaultClient) Health(ctx context.Context) error {
	if !v.cfg.Enabled {
		return nil
	}
	health, err := v.client.Sys().Health()
	if err != nil {
		return fmt.Errorf("vault health check: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

func (v *VaultClient) secretPath(exchange string) string {
	return fmt.Sprintf("%s/data/%s/%s", v.cfg.MountPath, v.cfg.SecretPath, exchange)
}

func stringField(data map[string]interface{}, key string) string {
	if val, ok := data[key].(string); ok {
		return val
	}
	return ""
}
