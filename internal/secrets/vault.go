package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// VaultConfig holds the Key Vault connection settings
type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// VaultClient reads secrets from an Azure Key Vault. Fetched values are
// cached in memory for a short TTL so repeated config lookups during startup
// do not hammer the vault.
type VaultClient struct {
	client    *azsecrets.Client
	vaultName string
	logger    *zap.Logger

	cacheEnabled bool
	cacheTTL     time.Duration
	cache        map[string]cacheEntry
}

type cacheEntry struct {
	value   string
	staleAt time.Time
}

// NewVaultClient connects to the named vault using DefaultAzureCredential,
// which covers env-var service principals, managed identity and the local
// Azure CLI login.
func NewVaultClient(cfg *VaultConfig, logger *zap.Logger) (*VaultClient, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	logger.Info("key vault client ready",
		zap.String("vaultUrl", vaultURL),
		zap.Bool("cacheEnabled", cfg.CacheEnabled),
	)

	return &VaultClient{
		client:       client,
		vaultName:    cfg.VaultName,
		logger:       logger,
		cacheEnabled: cfg.CacheEnabled,
		cacheTTL:     ttl,
		cache:        make(map[string]cacheEntry),
	}, nil
}

// GetSecret returns the current value of the named secret.
func (v *VaultClient) GetSecret(ctx context.Context, name string) (string, error) {
	if v.cacheEnabled {
		if entry, ok := v.cache[name]; ok && time.Now().Before(entry.staleAt) {
			return entry.value, nil
		}
		delete(v.cache, name)
	}

	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		v.logger.Error("key vault lookup failed", zap.String("secret", name), zap.Error(err))
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", name)
	}

	value := *resp.Value
	if v.cacheEnabled {
		v.cache[name] = cacheEntry{value: value, staleAt: time.Now().Add(v.cacheTTL)}
	}
	return value, nil
}

// GetSecretWithDefault returns the secret value, falling back to defaultValue
// when the lookup fails.
func (v *VaultClient) GetSecretWithDefault(ctx context.Context, name, defaultValue string) string {
	value, err := v.GetSecret(ctx, name)
	if err != nil {
		v.logger.Warn("using default for unavailable secret", zap.String("secret", name))
		return defaultValue
	}
	return value
}

// ClearCache drops all cached secret values.
func (v *VaultClient) ClearCache() {
	v.cache = make(map[string]cacheEntry)
}
