package config

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			StartURL: "https://view.awsapps.com/start",
			Region:   "us-east-1",
		},
		History: HistoryConfig{Backend: "file", FilePath: "history.json"},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing_start_url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.StartURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown_history_backend", func(t *testing.T) {
		cfg := validConfig()
		cfg.History.Backend = "mongodb"
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgres_requires_dsn", func(t *testing.T) {
		cfg := validConfig()
		cfg.History.Backend = "postgres"
		assert.Error(t, cfg.Validate())

		cfg.History.DSN = "host=localhost dbname=kam"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("redis_enabled_requires_addresses", func(t *testing.T) {
		cfg := validConfig()
		cfg.Redis.Enabled = true
		assert.Error(t, cfg.Validate())

		cfg.Redis.Addresses = []string{"localhost:6379"}
		assert.NoError(t, cfg.Validate())
	})
}

type staticResolver map[string]string

func (r staticResolver) Resolve(_ context.Context, ref string) (string, error) {
	if v, ok := r[ref]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown ref %s", ref)
}

func TestResolveSecrets(t *testing.T) {
	t.Run("resolves_prefixed_values", func(t *testing.T) {
		cfg := validConfig()
		cfg.Redis.Password = "vault:kam/redis#password"

		err := cfg.ResolveSecrets(context.Background(), staticResolver{
			"kam/redis#password": "s3cret",
		})
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.Redis.Password)
	})

	t.Run("plain_values_untouched", func(t *testing.T) {
		cfg := validConfig()
		cfg.Redis.Password = "plain"

		err := cfg.ResolveSecrets(context.Background(), staticResolver{})
		require.NoError(t, err)
		assert.Equal(t, "plain", cfg.Redis.Password)
	})

	t.Run("unknown_ref_fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Redis.Password = "vault:missing"

		err := cfg.ResolveSecrets(context.Background(), staticResolver{})
		assert.Error(t, err)
	})
}
