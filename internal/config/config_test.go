package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/longform/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "PORT", "LISTEN_ADDR", "DATABASE_PATH", "SESSION_SECRET", "NONCE_SECRET",
	"NONCE_TTL", "GIN_MODE", "SITE_BASE_URL", "DEBUG_MODE", "DEBUG_LOG_PATH",
	"ESSAY_DEFAULT_ORDER", "SUPER_ROOT_USER_NAME", "SUPER_ROOT_PASSWORD", "LOG_LEVEL",
	"SITE_NAME", "SUBSCRIBE_NOTIFY_EMAIL",
}

// isolateEnv clears config variables and runs the test from an empty directory so no
// stray .env file is picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range configEnvKeys {
		// Setenv registers the restore; the variable itself must be absent for godotenv
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "longform.db", cfg.DatabasePath)
	assert.Equal(t, cfg.SessionSecret, cfg.NonceSecret)
	assert.Equal(t, 12*time.Hour, cfg.NonceTTL)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "http://localhost:8080", cfg.SiteBaseURL)
	assert.Equal(t, "Longform", cfg.SiteName)
	assert.Empty(t, cfg.SubscribeNotify)
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, service.OrderDate, cfg.EssayDefaultOrder)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolateEnv(t)

	path := filepath.Join(dir, "longform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
database_path: /var/lib/longform.db
essay_default_order: manual
debug_mode: true
nonce_ttl: 30m
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_PATH", "env.db")
	t.Setenv("DEBUG_MODE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "env.db", cfg.DatabasePath)
	assert.Equal(t, service.OrderManual, cfg.EssayDefaultOrder)
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, 30*time.Minute, cfg.NonceTTL)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := isolateEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SITE_BASE_URL=https://example.com/\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.SiteBaseURL)
}

func TestLoadNormalisesInvalidValues(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ESSAY_DEFAULT_ORDER", "sideways")
	t.Setenv("NONCE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, service.OrderDate, cfg.EssayDefaultOrder)
	assert.Equal(t, 12*time.Hour, cfg.NonceTTL)
}

func TestLoadRejectsBrokenConfigFile(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}
