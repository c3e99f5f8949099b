// ABOUTME: Layered configuration for the news-portal client
// ABOUTME: Resolves flags, NEWS_PORTAL_* env, .env and the YAML config file via viper

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sawant8123/news-api-portal/internal/client"
)

const appName = "news-portal"

// EnvPrefix is prepended to every environment variable
const EnvPrefix = "NEWS_PORTAL"

// DefaultAPIURL is the backend used when nothing else is configured
const DefaultAPIURL = "http://127.0.0.1:8000/api"

// Config keys
const (
	KeyAPIURL             = "api_url"
	KeyGoogleClientID     = "google_client_id"
	KeyGoogleClientSecret = "google_client_secret"
	KeyAllProxy           = "all_proxy"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
)

// Config holds the resolved settings
type Config struct {
	APIURL             string `mapstructure:"api_url" yaml:"api_url"`
	GoogleClientID     string `mapstructure:"google_client_id" yaml:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret" yaml:"google_client_secret,omitempty"`
	AllProxy           string `mapstructure:"all_proxy" yaml:"all_proxy,omitempty"`
	LogLevel           string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat          string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Dir returns $XDG_CONFIG_HOME/news-portal
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// StateDir returns $XDG_STATE_HOME/news-portal
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultFile returns the config file used when --config is not given
func DefaultFile() string {
	return filepath.Join(Dir(), "config.yaml")
}

// BindFlags binds command-line flags to config keys
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if f := fs.Lookup("api-url"); f != nil {
		if err := v.BindPFlag(KeyAPIURL, f); err != nil {
			return fmt.Errorf("binding --api-url: %w", err)
		}
	}
	return nil
}

// LoadDotEnv reads KEY=value pairs from path into the environment.
// Existing variables win and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration. Precedence: flag, env, config file, default.
// cfgFile may be empty to use DefaultFile; an explicit file must exist.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	def := Default()
	v.SetDefault(KeyAPIURL, def.APIURL)
	v.SetDefault(KeyGoogleClientID, def.GoogleClientID)
	v.SetDefault(KeyGoogleClientSecret, def.GoogleClientSecret)
	v.SetDefault(KeyAllProxy, def.AllProxy)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// The SSH tunnel honours the conventional proxy variable too
	if err := v.BindEnv(KeyAllProxy, EnvPrefix+"_ALL_PROXY", "all_proxy", "ALL_PROXY"); err != nil {
		return nil, fmt.Errorf("binding all_proxy env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")

	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", c.APIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an http or https URL", c.APIURL)
	}

	c.AllProxy = strings.TrimSpace(c.AllProxy)
	if _, _, err := client.ParseSSHProxy(c.AllProxy); err != nil {
		return err
	}
	return nil
}

// ErrConfigExists is returned by WriteFile when the file is already present
var ErrConfigExists = errors.New("config file already exists")

// WriteFile writes cfg as YAML to path. Existing files are kept unless force is set.
func WriteFile(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
