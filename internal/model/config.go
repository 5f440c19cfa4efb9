package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultHost is the IMAP endpoint used when none is configured.
const DefaultHost = "imap.gmail.com:993"

// IMAPConfig holds the mailbox connection settings.
type IMAPConfig struct {
	// Host is "hostname[:port]"; the port defaults to 993.
	Host string `mapstructure:"host" yaml:"host"`

	Username string `mapstructure:"username" yaml:"username"`

	// Password is normally left empty in the file and resolved from the
	// environment, the keyring or a prompt.
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// Sender is the From address whose messages are collected.
	Sender string `mapstructure:"sender" yaml:"sender"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	IMAP IMAPConfig `mapstructure:"imap" yaml:"imap"`

	// CacheDir is the per-message cache directory. Empty disables the cache.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/offercal/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "offercal", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		IMAP: IMAPConfig{
			Host:   DefaultHost,
			Sender: DefaultSender,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads configuration from the YAML file at path into v, layers
// OFFERCAL_* environment variables on top and unmarshals the result. Flags
// bound to v before the call take precedence over both. A missing file is
// not an error; any other read failure is.
func LoadConfig(v *viper.Viper, path string) (*AppConfig, error) {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("offercal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("imap.host", DefaultHost)
	v.SetDefault("imap.sender", DefaultSender)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The password is never written.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("imap.host", cfg.IMAP.Host)
	v.Set("imap.username", cfg.IMAP.Username)
	v.Set("imap.sender", cfg.IMAP.Sender)
	v.Set("cache_dir", cfg.CacheDir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.pretty", cfg.Log.Pretty)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
