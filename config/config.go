// Package config loads sitesearch settings from a YAML file, the
// environment and command-line flags.
//
// Precedence, highest first: flags bound to the viper instance, SITESEARCH_*
// environment variables, the config file, then [Defaults].
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonwraymond/sitesearch/index"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. SITESEARCH_ADDR.
	EnvPrefix = "SITESEARCH"

	// FileName is the config file base name searched for when no file is given.
	FileName = "sitesearch"
)

// Keys, usable with viper.BindPFlag.
const (
	KeyContentDir   = "content_dir"
	KeyExtensions   = "extensions"
	KeyAddr         = "addr"
	KeyDefaultLimit = "default_limit"
	KeyCacheSize    = "cache_size"
	KeyWatch        = "watch"
	KeyDebounce     = "debounce"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyWeights      = "weights"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the resolved runtime configuration.
type Config struct {
	ContentDir   string        `mapstructure:"content_dir"`
	Extensions   []string      `mapstructure:"extensions"`
	Addr         string        `mapstructure:"addr"`
	DefaultLimit int           `mapstructure:"default_limit"`
	CacheSize    int           `mapstructure:"cache_size"`
	Weights      index.Weights `mapstructure:"weights"`
	Watch        bool          `mapstructure:"watch"`
	Debounce     time.Duration `mapstructure:"debounce"`
	Log          Log           `mapstructure:"log"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ContentDir:   "content",
		Extensions:   []string{".mdx"},
		Addr:         ":8080",
		DefaultLimit: index.DefaultLimit,
		CacheSize:    100,
		Weights:      index.DefaultWeights,
		Watch:        true,
		Debounce:     250 * time.Millisecond,
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// SetDefaults registers every default on v. Each key must have a default
// for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyContentDir, d.ContentDir)
	v.SetDefault(KeyExtensions, d.Extensions)
	v.SetDefault(KeyAddr, d.Addr)
	v.SetDefault(KeyDefaultLimit, d.DefaultLimit)
	v.SetDefault(KeyCacheSize, d.CacheSize)
	v.SetDefault(KeyWatch, d.Watch)
	v.SetDefault(KeyDebounce, d.Debounce)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyWeights+".title", d.Weights.Title)
	v.SetDefault(KeyWeights+".description", d.Weights.Description)
	v.SetDefault(KeyWeights+".tags", d.Weights.Tags)
	v.SetDefault(KeyWeights+".content", d.Weights.Content)
}

// Load resolves the configuration into v and validates it.
//
// When file is empty, sitesearch.yaml is looked up in the working directory
// and in ~/.config/sitesearch; not finding one is not an error. When file is
// set, it must exist. A nil v uses a fresh viper instance.
func Load(v *viper.Viper, file string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.ContentDir) == "":
		return fmt.Errorf("%w: content_dir is empty", ErrInvalid)
	case c.DefaultLimit <= 0:
		return fmt.Errorf("%w: default_limit must be positive, got %d", ErrInvalid, c.DefaultLimit)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache_size must not be negative, got %d", ErrInvalid, c.CacheSize)
	case c.Debounce < 0:
		return fmt.Errorf("%w: debounce must not be negative, got %s", ErrInvalid, c.Debounce)
	case c.Weights.Title < 0 || c.Weights.Description < 0 || c.Weights.Tags < 0 || c.Weights.Content < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalid)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalid, ext)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: log.format must be json or text, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// EngineCacheSize maps cache_size to search.Options.CacheSize, where zero
// means the default and a negative size disables the cache.
func (c Config) EngineCacheSize() int {
	if c.CacheSize == 0 {
		return -1
	}
	return c.CacheSize
}
