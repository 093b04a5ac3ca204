package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API            APIConfig      `mapstructure:"api" yaml:"api"`
	Auth           AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Defaults       DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
	Log            LogConfig      `mapstructure:"log" yaml:"log"`
	KeyringBackend string         `mapstructure:"keyring_backend" yaml:"keyring_backend,omitempty"`
}

type APIConfig struct {
	Host    string        `mapstructure:"host" yaml:"host"`
	Scheme  string        `mapstructure:"scheme" yaml:"scheme"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type AuthConfig struct {
	// Session is the ponymail session cookie for private lists.
	Session       string `mapstructure:"session" yaml:"session,omitempty"`
	SessionSource string `mapstructure:"-" yaml:"-"`
}

type DefaultsConfig struct {
	List     string `mapstructure:"list" yaml:"list"`
	Domain   string `mapstructure:"domain" yaml:"domain"`
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
	Output   string `mapstructure:"output" yaml:"output"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "lists.apache.org",
			Scheme:  "https",
			Timeout: 30 * time.Second,
		},
		Defaults: DefaultsConfig{
			List:     "dev",
			Domain:   "cloudstack.apache.org",
			Strategy: "flat",
			Output:   "text",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func Save(cfg Config) (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := EnsureDir(); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}

	return path, nil
}

func Redact(cfg Config) Config {
	masked := cfg
	if masked.Auth.Session != "" {
		masked.Auth.Session = "****"
	}
	return masked
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("api.host", cfg.API.Host)
	v.SetDefault("api.scheme", cfg.API.Scheme)
	v.SetDefault("api.timeout", cfg.API.Timeout)

	v.SetDefault("auth.session", cfg.Auth.Session)

	v.SetDefault("defaults.list", cfg.Defaults.List)
	v.SetDefault("defaults.domain", cfg.Defaults.Domain)
	v.SetDefault("defaults.strategy", cfg.Defaults.Strategy)
	v.SetDefault("defaults.output", cfg.Defaults.Output)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("keyring_backend", cfg.KeyringBackend)
}

func Validate(cfg Config) error {
	if cfg.API.Host == "" {
		return fmt.Errorf("api.host is required")
	}
	switch cfg.API.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("api.scheme must be http or https, got %q", cfg.API.Scheme)
	}
	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	return nil
}
