package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Session.RevokeOnLogout)
	assert.Equal(t, 2*time.Minute, cfg.Session.UnlockTTL)
	assert.True(t, cfg.Bank.SeedDemo)
	assert.True(t, decimal.NewFromInt(500).Equal(cfg.Bank.MinInitialDeposit))
	assert.Equal(t, uint32(64*1024), cfg.Argon2.Memory)
	assert.Equal(t, uint8(4), cfg.Argon2.Threads)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("SESSION_REVOKE_ON_LOGOUT", "true")
	t.Setenv("BANK_MIN_INITIAL_DEPOSIT", "1000.50")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("ARCHIVE_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL())
	assert.True(t, cfg.Session.RevokeOnLogout)
	assert.True(t, decimal.RequireFromString("1000.50").Equal(cfg.Bank.MinInitialDeposit))
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.True(t, cfg.Database.Enabled)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET_KEY=from-file\nPORT=9090\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWT.SecretKey)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_BadDeposit(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("BANK_MIN_INITIAL_DEPOSIT", "lots")

	_, err := Load("")
	assert.Error(t, err)
}
