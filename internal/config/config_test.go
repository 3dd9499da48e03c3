package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  user: canteen
  database: canteen
rabbitmq:
  enabled: false
auth:
  jwt_secret: "0123456789abcdef0123"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ResetCodeTTL)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  user: canteen
  database: canteen
  password: from-file
rabbitmq:
  enabled: false
auth:
  jwt_secret: "0123456789abcdef0123"
http:
  port: 8080
`)
	t.Setenv("CANTEEN_DB_PASSWORD", "from-env")
	t.Setenv("CANTEEN_HTTP_PORT", "9090")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoadConfig_RejectsMissingSecret(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  user: canteen
  database: canteen
rabbitmq:
  enabled: false
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadConfig_RequiresBrokerWhenEnabled(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  user: canteen
  database: canteen
auth:
  jwt_secret: "0123456789abcdef0123"
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
