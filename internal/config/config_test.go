package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SEED_ADMIN_PASSWORD", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.SeedAdminPassword)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret-from-vault")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_COMMENT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RateLimitComment)
	assert.Equal(t, "s3cret-from-vault", cfg.JWTSecret)
	assert.False(t, cfg.EphemeralJWTSecret)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("VIEW_DEDUPE_WINDOW", "forever")

	_, err := Load()
	assert.ErrorContains(t, err, "VIEW_DEDUPE_WINDOW")
}

func TestLoadRequiresJWTSecretOutsideDevelopment(t *testing.T) {
	for _, env := range []string{"production", "staging", "test"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			t.Setenv("JWT_SECRET", "")

			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, "JWT_SECRET")
		})
	}
}

func TestLoadGeneratesDevelopmentSecret(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)

	assert.True(t, first.EphemeralJWTSecret)
	assert.Len(t, first.JWTSecret, 64)
	assert.NotEqual(t, "change-me", first.JWTSecret)
	assert.NotEqual(t, first.JWTSecret, second.JWTSecret)
}
