package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfortea/floorbot/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
bot:
  collection: the-warplets
  interval_seconds: 15
market:
  api_key: test-key
  chain: base
wallet:
  private_key: "0xdeadbeef"
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "the-warplets", cfg.Bot.Collection)
	assert.Equal(t, 15*time.Second, cfg.PollInterval())
	assert.Equal(t, "test-key", cfg.Market.APIKey)
	assert.Equal(t, "base", cfg.Market.Chain)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
bot:
  collection: the-warplets
market:
  api_key: k
wallet:
  private_key: pk
`))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, "base", cfg.Market.Chain)
	assert.Equal(t, "floorbot.db", cfg.Storage.DSN)
	assert.Equal(t, "127.0.0.1:3000", cfg.Dashboard.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.DashboardEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENSEA_API_KEY", "env-key")
	t.Setenv("CHAIN", "polygon")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Market.APIKey)
	assert.Equal(t, "polygon", cfg.Market.Chain)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingCollection(t *testing.T) {
	t.Setenv("COLLECTION", "")
	_, err := config.Load(writeConfig(t, `
market:
  api_key: k
wallet:
  private_key: pk
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot.collection")
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENSEA_API_KEY", "")
	_, err := config.Load(writeConfig(t, `
bot:
  collection: c
wallet:
  private_key: pk
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_MissingPrivateKey(t *testing.T) {
	t.Setenv("WALLET_PRIVATE_KEY", "")
	_, err := config.Load(writeConfig(t, `
bot:
  collection: c
market:
  api_key: k
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private_key")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_DashboardDisabled(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validYAML+`
dashboard:
  enabled: false
`))
	require.NoError(t, err)
	assert.False(t, cfg.DashboardEnabled())
}
