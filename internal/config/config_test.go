package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/anybot/internal"
)

func isolatedOptions(t *testing.T) Options {
	t.Helper()
	return Options{SkipDotEnv: true, SkipSearch: true}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(isolatedOptions(t))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.QueryURL)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.API.BotURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, BackendBot, cfg.Chat.Backend)
	assert.Equal(t, 2, cfg.Chat.TopN)
	assert.Equal(t, "Welcome! How can I help you today?", cfg.Chat.Welcome)
	assert.Equal(t, "md", cfg.Export.Format)
	assert.Equal(t, "127.0.0.1:5000", cfg.Stub.Addr)
	assert.NotContains(t, cfg.Log.File, "~", "log path should be expanded")
}

func TestDefault(t *testing.T) {
	t.Setenv("ANYBOT_CHAT_TOP_N", "9")
	cfg := Default()
	assert.Equal(t, 2, cfg.Chat.TopN, "Default should ignore the environment")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anybot.yaml")
	content := `api:
  bot_url: https://bots.example.com
  timeout: 15s
chat:
  backend: query
  top_n: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	opts := isolatedOptions(t)
	opts.Path = path
	cfg, err := Load(opts)
	require.NoError(t, err)

	assert.Equal(t, "https://bots.example.com", cfg.API.BotURL)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.QueryURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendQuery, cfg.Chat.Backend)
	assert.Equal(t, 5, cfg.Chat.TopN)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	opts := isolatedOptions(t)
	opts.Path = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(opts)
	var cfgErr *internal.ConfigError
	require.True(t, errors.As(err, &cfgErr), "want *ConfigError, got %v", err)
	assert.Equal(t, "config", cfgErr.Key)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ANYBOT_API_QUERY_URL", "https://rag.example.com")
	t.Setenv("ANYBOT_CHAT_BACKEND", "QUERY")
	t.Setenv("ANYBOT_API_TIMEOUT", "3s")

	cfg, err := Load(isolatedOptions(t))
	require.NoError(t, err)

	assert.Equal(t, "https://rag.example.com", cfg.API.QueryURL)
	assert.Equal(t, BackendQuery, cfg.Chat.Backend)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ANYBOT_CHAT_TOP_N=7\n"), 0644))

	// register cleanup, then clear so godotenv is allowed to set it
	t.Setenv("ANYBOT_CHAT_TOP_N", "")
	require.NoError(t, os.Unsetenv("ANYBOT_CHAT_TOP_N"))

	cfg, err := Load(Options{DotEnv: path, SkipSearch: true})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Chat.TopN)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(Options{DotEnv: filepath.Join(t.TempDir(), ".env"), SkipSearch: true})
	assert.NoError(t, err)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("ANYBOT_API_BOT_URL", "https://env.example.com")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("bot-url", "", "")
	flags.String("query-url", "", "")
	require.NoError(t, flags.Parse([]string{"--bot-url", "https://flag.example.com"}))

	opts := isolatedOptions(t)
	opts.Flags = flags
	cfg, err := Load(opts)
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.API.BotURL)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.QueryURL, "unset flag should not override the default")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Chat.Backend = "websocket" }, "chat.backend"},
		{"zero top_n", func(c *Config) { c.Chat.TopN = 0 }, "chat.top_n"},
		{"relative query url", func(c *Config) { c.API.QueryURL = "/query" }, "api.query_url"},
		{"ftp bot url", func(c *Config) { c.API.BotURL = "ftp://bots.example.com" }, "api.bot_url"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, "api.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *internal.ConfigError
			require.True(t, errors.As(err, &cfgErr), "want *ConfigError, got %v", err)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".anybot", "x.log"), expandHome("~/.anybot/x.log"))
	assert.Equal(t, "/var/log/anybot.log", expandHome("/var/log/anybot.log"))
	assert.Equal(t, "~other/file", expandHome("~other/file"))
}
