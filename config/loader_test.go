package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 1, cfg.Engine.ModeratorInterval)
	assert.Equal(t, 6000, cfg.Engine.ContextWindowTokens)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromYAMLFile(t *testing.T) {
	content := `
server:
  http_port: 9000
  shutdown_timeout: 5s
llm:
  provider: openai
  api_key: sk-test
  model: gpt-4o
engine:
  moderator_interval: 2
  temperature: 0.5
store:
  backend: sqlite
  sqlite_path: /tmp/test.db
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.Engine.ModeratorInterval)
	assert.InDelta(t, 0.5, cfg.Engine.Temperature, 1e-9)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 文件未覆盖的字段保留默认值
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, 300, cfg.Engine.MaxTokens)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	content := `
server:
  http_port: 9000
llm:
  api_key: from-file
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("MICROCROWD_SERVER_HTTP_PORT", "7777")
	t.Setenv("MICROCROWD_LLM_API_KEY", "from-env")
	t.Setenv("MICROCROWD_ENGINE_TURN_TIMEOUT", "45s")
	t.Setenv("MICROCROWD_LOG_OUTPUT_PATHS", "stdout, /var/log/microcrowd.log")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.HTTPPort)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Engine.TurnTimeout)
	assert.Equal(t, []string{"stdout", "/var/log/microcrowd.log"}, cfg.Log.OutputPaths)
}

func TestLoadCustomEnvPrefix(t *testing.T) {
	t.Setenv("MC_SERVER_HTTP_PORT", "6060")

	cfg, err := NewLoader().WithEnvPrefix("MC").Load()
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.HTTPPort)
}

func TestLoadRunsValidators(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	// 默认 provider 是 openai 但没有 API key，fail-fast
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = "sk-test"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad http port", func(c *Config) { c.Server.HTTPPort = 0 }, "HTTP port"},
		{"missing api key", func(c *Config) { c.LLM.APIKey = "" }, "api_key"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "acme" }, "unknown llm provider"},
		{"negative interval", func(c *Config) { c.Engine.ModeratorInterval = -1 }, "moderator_interval"},
		{"temperature out of range", func(c *Config) { c.Engine.Temperature = 3.0 }, "temperature"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }, "store backend"},
		{"sqlite without path", func(c *Config) {
			c.Store.Backend = "sqlite"
			c.Store.SQLitePath = ""
		}, "sqlite_path"},
		{"redis without addr", func(c *Config) {
			c.Store.Backend = "redis"
			c.Store.RedisAddr = ""
		}, "redis_addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	// mock 提供商不要求 API key
	cfg := valid()
	cfg.LLM.Provider = "mock"
	cfg.LLM.APIKey = ""
	assert.NoError(t, cfg.Validate())
}
