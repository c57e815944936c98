// Package config loads enginecheck settings from defaults, an optional
// config file, ENGINECHECK_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "enginecheck"
	// EnvPrefix prefixes environment overrides, e.g. ENGINECHECK_NODE.
	EnvPrefix = "ENGINECHECK"
)

// Keys shared with command-line flag names.
const (
	KeyFile        = "file"
	KeyNode        = "node"
	KeyEngine      = "engine"
	KeyRegistry    = "registry"
	KeyToken       = "token"
	KeyTimeout     = "timeout"
	KeyConcurrency = "concurrency"
	KeyRetries     = "retries"
	KeyUserAgent   = "user_agent"
	KeyVerbose     = "verbose"
	KeyJSON        = "json"
	KeyDebug       = "debug"
)

// Config holds the resolved settings of a run. An empty Engine or Registry
// defers to the selected ecosystem.
type Config struct {
	File        string
	Node        string
	Engine      string
	Registry    string
	Token       string
	Timeout     time.Duration
	Concurrency int
	Retries     int
	UserAgent   string
	Verbose     bool
	JSON        bool
	Debug       bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFile, "./package.json")
	v.SetDefault(KeyNode, "18.0.0")
	v.SetDefault(KeyEngine, "")
	v.SetDefault(KeyRegistry, "")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyConcurrency, 8)
	v.SetDefault(KeyRetries, 3)
	v.SetDefault(KeyUserAgent, AppName)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyJSON, false)
	v.SetDefault(KeyDebug, false)
}

// New returns a viper instance with defaults and environment binding. When
// cfgFile is empty, enginecheck.{yaml,json,toml} is looked up in the
// working directory and the user config directory; a missing file is not an
// error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load resolves and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		File:        v.GetString(KeyFile),
		Node:        v.GetString(KeyNode),
		Engine:      v.GetString(KeyEngine),
		Registry:    v.GetString(KeyRegistry),
		Token:       v.GetString(KeyToken),
		Timeout:     v.GetDuration(KeyTimeout),
		Concurrency: v.GetInt(KeyConcurrency),
		Retries:     v.GetInt(KeyRetries),
		UserAgent:   v.GetString(KeyUserAgent),
		Verbose:     v.GetBool(KeyVerbose),
		JSON:        v.GetBool(KeyJSON),
		Debug:       v.GetBool(KeyDebug),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	var errs []error
	if c.File == "" {
		errs = append(errs, errors.New("file must not be empty"))
	}
	if c.Registry != "" && !strings.HasPrefix(c.Registry, "http://") && !strings.HasPrefix(c.Registry, "https://") {
		errs = append(errs, fmt.Errorf("registry must be an http(s) URL, got %q", c.Registry))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	return errors.Join(errs...)
}
