// Package config handles configuration loading and the XDG configuration directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gtodo/internal/logging"
)

const (
	// AppName is the application directory name.
	AppName = "gtodo"

	// ConfigFileName is the config file name searched in the config paths.
	ConfigFileName = "config"

	// LogFileName is the log filename inside the config directory.
	LogFileName = "debug.log"

	// EnvPrefix prefixes environment overrides, e.g. GTODO_BASE_URL.
	EnvPrefix = "GTODO"

	// DefaultBaseURL is the remote task service endpoint.
	DefaultBaseURL = "https://playground.4geeks.com/todo"
)

// Config holds the resolved configuration.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `mapstructure:"dir"`

	// BaseURL is the remote task service root.
	BaseURL string `mapstructure:"base_url"`

	// Username pre-fills the create-user field. It does not authenticate.
	Username string `mapstructure:"username"`

	Log LogConfig `mapstructure:"log"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`

	// Quiet suppresses informational output.
	Quiet bool `mapstructure:"quiet"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level"`
	// File overrides the log destination. When empty the interface logs to
	// debug.log in Dir and the shell logs to stderr.
	File string `mapstructure:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dir:     DefaultConfigDir(),
		BaseURL: DefaultBaseURL,
		Log: LogConfig{
			Level: logging.LevelInfo,
		},
	}
}

// SetDefaults registers the built-in values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("dir", d.Dir)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("username", d.Username)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("quiet", d.Quiet)
}

// Init prepares v: defaults, dotenv, environment overrides and the config file.
// cfgFile selects an explicit config file; when empty the standard paths are
// searched and a missing file is not an error. envFile names a dotenv file to
// load into the process environment; a missing envFile is ignored.
func Init(v *viper.Viper, cfgFile, envFile string) error {
	SetDefaults(v)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	// GTODO_LOG_LEVEL for log.level
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("dir"))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfigDir()
	}
	if cfg.Debug {
		cfg.Log.Level = logging.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the base URL and log level.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url: %q must be an absolute http(s) URL", c.BaseURL)
	}
	if !logging.IsValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level: %q (valid: %s)", c.Log.Level, strings.Join(logging.ValidLevels(), ", "))
	}
	return nil
}

// APIBase returns BaseURL with exactly one trailing slash, the form relative
// endpoint paths are resolved against.
func (c *Config) APIBase() string {
	return strings.TrimRight(c.BaseURL, "/") + "/"
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// LogPath returns the configured log file, or debug.log in the config directory.
// Callers using the default location create it with EnsureDir first.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.Dir, LogFileName)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
