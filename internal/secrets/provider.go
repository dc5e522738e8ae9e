// Package secrets resolves sensitive configuration values either from
// environment variables (development) or from Azure Key Vault
// (staging/production).
package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource selects where secrets are read from
type SecretSource string

const (
	SourceEnvironment SecretSource = "environment"
	SourceVault       SecretSource = "vault"
	// SourceAuto picks the source from the deploy environment: vault
	// everywhere except development.
	SourceAuto SecretSource = "auto"
)

// ProviderConfig configures the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider hides the difference between env-var and vault-backed secrets
// behind one lookup API.
type Provider struct {
	source SecretSource
	vault  *VaultClient
	logger *zap.Logger
}

// NewProvider builds a provider for the configured source. With SourceAuto
// the development environment stays on env vars so local runs need no Azure
// credentials.
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := cfg.Source
	if source == SourceAuto {
		switch cfg.Environment {
		case "development", "local", "":
			source = SourceEnvironment
		default:
			source = SourceVault
		}
	}

	p := &Provider{source: source, logger: logger}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	}

	logger.Info("secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return p, nil
}

// GetSecret looks up a secret by name. For the environment source the name
// is the env var name; for the vault source it is the Key Vault secret name.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
		return "", fmt.Errorf("environment variable '%s' not set", name)
	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretWithDefault looks up a secret and falls back to defaultValue when
// it is unavailable.
func (p *Provider) GetSecretWithDefault(ctx context.Context, name, defaultValue string) string {
	value, err := p.GetSecret(ctx, name)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetSecretOrEnv returns the env var when it is explicitly set, otherwise
// the secret from the configured source. The env override also applies in
// vault mode.
func (p *Provider) GetSecretOrEnv(ctx context.Context, name, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		return value, nil
	}
	return p.GetSecret(ctx, name)
}

// GetSecretOrEnvWithDefault is GetSecretOrEnv with a default fallback.
func (p *Provider) GetSecretOrEnvWithDefault(ctx context.Context, name, envName, defaultValue string) string {
	value, err := p.GetSecretOrEnv(ctx, name, envName)
	if err != nil {
		return defaultValue
	}
	return value
}

// Source reports the resolved secret source.
func (p *Provider) Source() SecretSource {
	return p.source
}

// IsVaultEnabled reports whether secrets come from Key Vault.
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}
