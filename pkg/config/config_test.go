package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/uskup/pkg/errors"
)

const testYAML = `
server:
  addr: ":9000"
  read_timeout: 5s
ws:
  max_connections: 100
  allowed_origins:
    - http://localhost:3000
    - https://dashboard.example.org
`

func writeTestConfig(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), "config.yaml", testYAML)

	c := New(WithConfigFile(path))
	require.NoError(t, c.Load())

	assert.Equal(t, ":9000", c.GetString("server.addr"))
	assert.Equal(t, 5*time.Second, c.GetDuration("server.read_timeout"))
	assert.Equal(t, 100, c.GetInt("ws.max_connections"))
	assert.Len(t, c.GetStringSlice("ws.allowed_origins"), 2)
	assert.Equal(t, path, c.ConfigFileUsed())
}

func TestLoad_NameAndPaths(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, "app.yaml", testYAML)

	c := New(WithConfigName("app"), WithConfigType("yaml"), WithConfigPaths(dir))
	require.NoError(t, c.Load())
	assert.True(t, c.IsSet("ws.max_connections"))
}

func TestLoad_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	err := New(WithConfigFile(missing)).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))

	c := New(
		WithConfigFile(missing),
		WithAllowMissing(true),
		WithDefaults(map[string]any{"server.addr": ":8080"}),
	)
	require.NoError(t, c.Load())
	assert.Equal(t, ":8080", c.GetString("server.addr"))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), "bad.yaml", "server: [unclosed")
	err := New(WithConfigFile(path)).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigReadFailed))
}

func TestEnvOverride(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), "config.yaml", testYAML)
	t.Setenv("USKUP_SERVER_ADDR", ":7000")

	c := New(
		WithConfigFile(path),
		WithEnvPrefix("USKUP"),
		WithEnvKeyReplacer(strings.NewReplacer(".", "_")),
	)
	require.NoError(t, c.Load())
	assert.Equal(t, ":7000", c.GetString("server.addr"))
}

func TestGetGeneric(t *testing.T) {
	c := New()
	c.Set("feature.enabled", true)
	c.Set("feature.name", "presence")

	assert.True(t, Get[bool](c, "feature.enabled"))
	assert.Equal(t, "presence", Get[string](c, "feature.name"))
	assert.Equal(t, 0, Get[int](c, "feature.name"))
}

func TestUnmarshalKey(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), "config.yaml", testYAML)
	c := New(WithConfigFile(path))
	require.NoError(t, c.Load())

	var ws struct {
		MaxConnections int      `mapstructure:"max_connections"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	}
	require.NoError(t, c.UnmarshalKey("ws", &ws))
	assert.Equal(t, 100, ws.MaxConnections)
	assert.Equal(t, "http://localhost:3000", ws.AllowedOrigins[0])
}

func TestWatch_OnChange(t *testing.T) {
	path := writeTestConfig(t, t.TempDir(), "config.yaml", testYAML)

	changed := make(chan struct{}, 8)
	c := New(
		WithConfigFile(path),
		WithAutoWatch(true),
		WithOnChange(func(fsnotify.Event) { changed <- struct{}{} }),
	)
	require.NoError(t, c.Load())
	defer c.StopWatch()

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(testYAML, ":9000", ":9100", 1)), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("change callback not triggered")
	}
	assert.Eventually(t, func() bool {
		return c.GetString("server.addr") == ":9100"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestReportError(t *testing.T) {
	var got error
	c := New(WithOnError(func(err error) { got = err }))
	c.ReportError(os.ErrClosed)
	assert.Equal(t, os.ErrClosed, got)
}
