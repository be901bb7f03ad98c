package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SUPER_ADMIN_ACCOUNT", "0x1111111111111111111111111111111111111111")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "scriptorium.events", cfg.EventChannel)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.PGDSN)
}

func TestLoadConfigRequiresSuperAdmin(t *testing.T) {
	t.Setenv("SUPER_ADMIN_ACCOUNT", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsInsecureProduction(t *testing.T) {
	t.Setenv("SUPER_ADMIN_ACCOUNT", "0x1111111111111111111111111111111111111111")
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOW_INSECURE_AUTH", "true")

	_, err := LoadConfig()
	assert.Error(t, err)
}
