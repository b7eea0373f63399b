package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "pajak-engine/internal/errors"
)

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("PAJAK_SERVER_ADDRESS", ":9090")
	t.Setenv("PAJAK_LOGGING_LEVEL", "debug")
	t.Setenv("PAJAK_TREATY_REGISTRY_URL", "http://treaties.internal")
	t.Setenv("PAJAK_TREATY_TIMEOUT", "750ms")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http://treaties.internal", cfg.Treaty.RegistryURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Treaty.Timeout)
	assert.Equal(t, "pajak", cfg.Metrics.Namespace)
	assert.Equal(t, "id", cfg.Receipts.DefaultLocale)
}

func TestValidate(t *testing.T) {
	require.NoError(t, GetDefaultConfig().Validate())

	bad := GetDefaultConfig()
	bad.Logging.Level = "verbose"
	assert.Error(t, bad.Validate())

	bad = GetDefaultConfig()
	bad.Receipts.DefaultLocale = "fr"
	assert.Error(t, bad.Validate())

	bad = GetDefaultConfig()
	bad.Treaty.RegistryURL = "not a url"
	assert.Error(t, bad.Validate())
}

func TestNewConfigRejectsInvalidEnv(t *testing.T) {
	t.Setenv("PAJAK_LOGGING_LEVEL", "verbose")

	_, err := NewConfig()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.Equal(t, ierr.ErrCodeValidation, ierr.Code(err))
}
