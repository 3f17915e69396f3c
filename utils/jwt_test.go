package utils

import (
	"testing"
	"time"

	"meetmydesigners/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfig(t *testing.T, cfg config.Config) {
	prev := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestTokenRoundTrip(t *testing.T) {
	withConfig(t, config.Config{Env: "production", JWTSecret: "s3cret"})

	token, err := GenerateToken("p1", "client", time.Hour)
	require.NoError(t, err)
	sub, role, err := ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", sub)
	assert.Equal(t, "client", role)
}

func TestProductionRequiresSigningKey(t *testing.T) {
	withConfig(t, config.Config{Env: "development"})
	devToken, err := GenerateToken("p1", "client", time.Hour)
	require.NoError(t, err)

	withConfig(t, config.Config{Env: "production"})
	_, err = GenerateToken("p1", "client", time.Hour)
	assert.ErrorIs(t, err, ErrNoSigningKey)

	// Tokens signed with the development key are rejected in production.
	_, _, err = ExtractClaims(devToken)
	assert.Error(t, err)
}
