// Package config loads gopack CLI configuration.
//
// Values are layered the usual viper way, highest precedence first: bound
// command-line flags, GOPACK_* environment variables, an optional config file
// (gopack.yaml, gopack.toml or gopack.json in the working directory, or the
// file named by --config) and finally the defaults below.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "GOPACK"

// Keys understood by the configuration.
const (
	KeyManifest    = "manifest"
	KeyOutput      = "output"
	KeyLogLevel    = "log-level"
	KeyStats       = "stats"
	KeyCompare     = "compare"
	KeyConcurrency = "concurrency"
	KeyExtension   = "extension"
	KeyRuntimeName = "runtime-name"
	KeyCacheSize   = "cache-size"
)

// Config is the resolved CLI configuration.
type Config struct {
	Manifest    string `mapstructure:"manifest"`
	Output      string `mapstructure:"output"`
	LogLevel    string `mapstructure:"log-level"`
	Stats       string `mapstructure:"stats"`
	Compare     string `mapstructure:"compare"`
	Concurrency int    `mapstructure:"concurrency"`
	Extension   string `mapstructure:"extension"`
	RuntimeName string `mapstructure:"runtime-name"`
	CacheSize   int    `mapstructure:"cache-size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Manifest: "BUNDLE.bazel",
		LogLevel: "info",
	}
}

// Loader wraps a viper instance configured for gopack.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader with defaults and environment lookup set up.
func NewLoader() *Loader {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyManifest, d.Manifest)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyStats, d.Stats)
	v.SetDefault(KeyCompare, d.Compare)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyExtension, d.Extension)
	v.SetDefault(KeyRuntimeName, d.RuntimeName)
	v.SetDefault(KeyCacheSize, d.CacheSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlags binds every flag in fs whose name is a configuration key.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || !isKey(f.Name) {
			return
		}
		err = l.v.BindPFlag(f.Name, f)
	})
	return err
}

// Load reads the config file, if any, and returns the merged configuration.
// An explicit path must exist; the implicit gopack.* lookup may find nothing.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("gopack")
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("invalid %s %d: must be >= 0", KeyConcurrency, cfg.Concurrency)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("invalid %s %d: must be >= 0", KeyCacheSize, cfg.CacheSize)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func isKey(name string) bool {
	switch name {
	case KeyManifest, KeyOutput, KeyLogLevel, KeyStats, KeyCompare,
		KeyConcurrency, KeyExtension, KeyRuntimeName, KeyCacheSize:
		return true
	}
	return false
}
