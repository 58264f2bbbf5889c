package secrets_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/kam/internal/config"
	"github.com/turtacn/kam/internal/infrastructure/secrets"
	"github.com/turtacn/kam/pkg/logger"
)

func newResolver(t *testing.T, handler http.HandlerFunc) *secrets.VaultResolver {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	resolver, err := secrets.NewVaultResolver(config.VaultConfig{
		Address:   ts.URL,
		Token:     "test-token",
		MountPath: "secret",
	}, logger.NewNoopLogger())
	require.NoError(t, err)
	return resolver
}

func TestVaultResolverResolve(t *testing.T) {
	resolver := newResolver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/kam/redis", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"data":{"password":"s3cret"},"metadata":{"version":1}}}`)
	})

	value, err := resolver.Resolve(context.Background(), "kam/redis#password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)
}

func TestVaultResolverMissingField(t *testing.T) {
	resolver := newResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"data":{"other":"x"},"metadata":{"version":1}}}`)
	})

	_, err := resolver.Resolve(context.Background(), "kam/redis#password")
	assert.Error(t, err)
}

func TestVaultResolverMalformedRef(t *testing.T) {
	resolver := newResolver(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := resolver.Resolve(context.Background(), "no-separator")
	assert.Error(t, err)
}
