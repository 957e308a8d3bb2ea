package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment())
	assert.Equal(t, "data/shopee-analytics.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "pt-BR", cfg.Locale.Language)
	assert.Equal(t, "BRL", cfg.Locale.Currency)
	assert.Equal(t, 2, cfg.Client.Retries)
	assert.Equal(t, 300*time.Millisecond, cfg.Client.BackoffBase)
	assert.Equal(t, 5*time.Minute, cfg.Client.CacheTTL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_PATH", "/srv/catalog.db")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("API_BACKOFF_CAP", "2s")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.True(t, cfg.Environment().IsProduction())
	assert.Equal(t, "/srv/catalog.db", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2*time.Second, cfg.Client.BackoffCap)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOCALE_CURRENCY=USD\nLOCALE_LANGUAGE=en-US\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOCALE_CURRENCY")
		os.Unsetenv("LOCALE_LANGUAGE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Locale.Currency)
	assert.Equal(t, "en-US", cfg.Locale.Language)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "PORT", "70000"},
		{"negative retries", "API_RETRIES", "-1"},
		{"unparseable duration", "API_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(missingEnvFile(t))
			require.Error(t, err)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("production"))
	assert.Equal(t, Staging, ParseEnvironment("staging"))
	assert.Equal(t, Testing, ParseEnvironment("testing"))
	assert.Equal(t, Development, ParseEnvironment("prod"))
	assert.Equal(t, Development, ParseEnvironment(""))
}
