package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/uskup/pkg/cache"
	"github.com/tokmz/uskup/pkg/logger"
	"github.com/tokmz/uskup/pkg/orm"
)

const secret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: test
server:
  addr: ":9090"
auth:
  secret: short-but-test-mode
ws:
  max_connections: 5
  rate_limit: 20
  upgrader:
    allowed_origins: ["https://dashboard.example"]
database:
  type: sqlite
  dsn: "file::memory:?cache=shared"
  auto_migrate: true
`)

	app, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", app.Server.Addr)
	assert.Equal(t, 15*time.Second, app.Server.ReadTimeout)
	assert.Equal(t, 5, app.WS.MaxConnections)
	assert.Equal(t, 20, app.WS.RateLimit)
	assert.Equal(t, time.Minute, app.WS.RateWindow)
	assert.Equal(t, []string{"https://dashboard.example"}, app.WS.Upgrader.AllowedOrigins)
	assert.Equal(t, orm.SQLite, app.Database.Type)
	assert.True(t, app.Database.AutoMigrate)
	assert.Equal(t, 7*24*time.Hour, app.Auth.TokenTTL)
	assert.Equal(t, "auth-token", app.Auth.CookieName)
	assert.Equal(t, cache.DriverMemory, app.Cache.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "mode: release\n")
	t.Setenv("USKUP_AUTH_SECRET", secret)
	t.Setenv("USKUP_WS_REQUIRE_AUTH", "true")
	t.Setenv("USKUP_SERVER_ADDR", ":7000")

	app, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, secret, app.Auth.Secret)
	assert.True(t, app.WS.RequireAuth)
	assert.Equal(t, ":7000", app.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing secret", "mode: test\n"},
		{"short secret in release", "mode: release\nauth:\n  secret: abc\n"},
		{"relay without redis", "mode: test\nauth:\n  secret: x\nws:\n  relay: true\n"},
		{"bad hub limits", "mode: test\nauth:\n  secret: x\nws:\n  rate_limit: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLog_LoggerConfig(t *testing.T) {
	cfg, err := Log{Level: "debug", Format: "console", Console: true}.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, cfg.Level)
	assert.Equal(t, logger.ConsoleFormat, cfg.Format)

	_, err = Log{Level: "loud"}.LoggerConfig()
	assert.Error(t, err)
}

func TestRepoConfigFileLoads(t *testing.T) {
	t.Setenv("USKUP_AUTH_SECRET", secret)
	app, _, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "uskup@keuskupan-sby.or.id", app.Auth.Bootstrap.Email)
	assert.Equal(t, []string{"/api/health"}, app.RateLimit.ExcludePaths)
}
