package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "firestore", cfg.Store.Driver)
	assert.Equal(t, "none", cfg.Relay.Driver)
	assert.Equal(t, 15*time.Second, cfg.Relay.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Relay.OutboxInterval)
	assert.Equal(t, 8, cfg.Relay.MaxAttempts)
	assert.Equal(t, "./spool", cfg.Relay.SpoolDir)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  port: \"9000\"\nstore:\n  driver: mongo\nmongo:\n  uri: mongodb://db:27017\njwt:\n  secret: from-file\n  expiration: 2h\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("RELAY_DRIVER", "telegram")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "telegram", cfg.Relay.Driver)
	assert.Equal(t, int64(-100123), cfg.Telegram.ChatID)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Store: StoreConfig{Driver: "memory"},
		Relay: RelayConfig{Driver: "none"},
		JWT:   JWTConfig{Secret: "s"},
	}
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Store.Driver = "sqlite"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Relay.Driver = "telegram"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Store.Driver = "firestore"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.JWT.Secret = ""
	assert.Error(t, bad.Validate())
}
