package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iksnae/anybot/internal"
)

// EnvPrefix is prepended to every environment override (ANYBOT_API_BOT_URL)
const EnvPrefix = "ANYBOT"

// Chat backends
const (
	BackendBot   = "bot"
	BackendQuery = "query"
)

// Config holds all client and stub server settings
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Chat   ChatConfig   `mapstructure:"chat"`
	Log    LogConfig    `mapstructure:"log"`
	Export ExportConfig `mapstructure:"export"`
	Stub   StubConfig   `mapstructure:"stub"`
}

// APIConfig points the client at the two remote services
type APIConfig struct {
	QueryURL string        `mapstructure:"query_url"`
	BotURL   string        `mapstructure:"bot_url"`
	Timeout  time.Duration `mapstructure:"timeout"` // zero means no timeout
}

// ChatConfig selects how the chat screen talks to the service
type ChatConfig struct {
	Backend string `mapstructure:"backend"` // bot or query
	TopN    int    `mapstructure:"top_n"`
	Welcome string `mapstructure:"welcome"`
}

// LogConfig contains log sink settings
type LogConfig struct {
	File string `mapstructure:"file"`
}

// ExportConfig contains transcript export settings
type ExportConfig struct {
	Format string `mapstructure:"format"`
}

// StubConfig contains settings for the local stub server
type StubConfig struct {
	Addr string `mapstructure:"addr"`
	DB   string `mapstructure:"db"`
}

// flagKeys maps CLI flag names to config keys
var flagKeys = map[string]string{
	"query-url": "api.query_url",
	"bot-url":   "api.bot_url",
	"timeout":   "api.timeout",
	"backend":   "chat.backend",
	"top-n":     "chat.top_n",
	"format":    "export.format",
	"addr":      "stub.addr",
	"db":        "stub.db",
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.query_url", "http://127.0.0.1:8000")
	v.SetDefault("api.bot_url", "http://127.0.0.1:5000")
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("chat.backend", BackendBot)
	v.SetDefault("chat.top_n", 2)
	v.SetDefault("chat.welcome", "Welcome! How can I help you today?")
	v.SetDefault("log.file", filepath.Join("~", ".anybot", "anybot.log"))
	v.SetDefault("export.format", "md")
	v.SetDefault("stub.addr", "127.0.0.1:5000")
	v.SetDefault("stub.db", ":memory:")
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("default configuration is invalid: %w", err))
	}
	cfg.Log.File = expandHome(cfg.Log.File)
	return &cfg
}

// Options controls where Load looks for configuration
type Options struct {
	// Path is an explicit config file; when empty the search paths are tried
	Path string
	// Flags are bound to their config keys; only flags set on the command
	// line take precedence over the environment
	Flags *pflag.FlagSet
	// DotEnv is the .env file to load, ".env" when empty
	DotEnv     string
	SkipDotEnv bool
	SkipSearch bool
}

// SearchPaths returns the config files tried when no path is given
func SearchPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".anybot", "config.yaml"))
	}
	return append(paths, "anybot.yaml")
}

// Load reads configuration from .env, the config file, the environment and flags
func Load(opts Options) (*Config, error) {
	return LoadWith(viper.New(), opts)
}

// LoadWith is Load on a caller-provided viper instance
func LoadWith(v *viper.Viper, opts Options) (*Config, error) {
	if !opts.SkipDotEnv {
		if err := loadDotEnv(opts.DotEnv); err != nil {
			return nil, err
		}
	}

	SetDefaults(v)

	path := opts.Path
	if path == "" && !opts.SkipSearch {
		for _, candidate := range SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &internal.ConfigError{Key: "config", Err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		internal.LogDebug("Loaded config file %s", path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, &internal.ConfigError{Key: key, Err: err}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &internal.ConfigError{Key: "config", Err: err}
	}
	cfg.Log.File = expandHome(cfg.Log.File)
	cfg.Chat.Backend = strings.ToLower(strings.TrimSpace(cfg.Chat.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &internal.ConfigError{Key: "dotenv", Err: err}
	}
	internal.LogDebug("Loaded environment from %s", path)
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	return c.Chat.Validate()
}

// Validate checks that both base URLs are absolute http(s) URLs
func (c APIConfig) Validate() error {
	if err := validateURL("api.query_url", c.QueryURL); err != nil {
		return err
	}
	if err := validateURL("api.bot_url", c.BotURL); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return &internal.ConfigError{Key: "api.timeout", Err: fmt.Errorf("must not be negative, got %s", c.Timeout)}
	}
	return nil
}

// Validate checks the chat backend and result count
func (c ChatConfig) Validate() error {
	switch c.Backend {
	case BackendBot, BackendQuery:
	default:
		return &internal.ConfigError{Key: "chat.backend", Err: fmt.Errorf("unsupported backend %q (supported: bot, query)", c.Backend)}
	}
	if c.TopN <= 0 {
		return &internal.ConfigError{Key: "chat.top_n", Err: fmt.Errorf("must be greater than zero, got %d", c.TopN)}
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &internal.ConfigError{Key: key, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &internal.ConfigError{Key: key, Err: fmt.Errorf("must be an absolute http(s) URL, got %q", raw)}
	}
	return nil
}
