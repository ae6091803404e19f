package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/tableorder/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func TestLoad_DerivesPINLookupKey(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("JWT_SECRET", "config-test-jwt")
	t.Setenv("PIN_LOOKUP_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.PINLookupKey)
	assert.NotEqual(t, cfg.JWTSecret, cfg.PINLookupKey)

	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.PINLookupKey, again.PINLookupKey, "same secret gives the same key")
}

func TestLoad_KeepsExplicitPINLookupKey(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("JWT_SECRET", "config-test-jwt")
	t.Setenv("PIN_LOOKUP_KEY", "explicit-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "explicit-key", cfg.PINLookupKey)
}

func TestLoad_RequiresSecretsOutsideDebug(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TABLE_TOKEN_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
