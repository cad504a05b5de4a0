package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/resourcegraph/pkg/web/query"
	"github.com/conduit-lang/resourcegraph/pkg/web/serializer"
)

// Config represents the resourcegraph configuration
type Config struct {
	Fixture    string           `mapstructure:"fixture"`
	Serializer SerializerConfig `mapstructure:"serializer"`
	Server     ServerConfig     `mapstructure:"server"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Log        LogConfig        `mapstructure:"log"`
}

// SerializerConfig mirrors serializer.Options
type SerializerConfig struct {
	SingularTypeNames       bool   `mapstructure:"singular_type_names"`
	IncludeVersion          bool   `mapstructure:"include_version"`
	Version                 string `mapstructure:"version"`
	EnableIncludedResources bool   `mapstructure:"enable_included_resources"`
	Pagination              string `mapstructure:"pagination"`
	IncludeTotal            bool   `mapstructure:"include_total"`
	DefaultPageSize         int    `mapstructure:"default_page_size"`
	MaxPageSize             int    `mapstructure:"max_page_size"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	APIPrefix       string        `mapstructure:"api_prefix"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CacheConfig selects the rendered document cache
type CacheConfig struct {
	// Driver is "none", "memory" or "redis"
	Driver     string        `mapstructure:"driver"`
	RedisAddr  string        `mapstructure:"redis_addr"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads the configuration from the given file, or from
// resourcegraph.yml / resourcegraph.yaml in the working directory when path
// is empty. RESOURCEGRAPH_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("resourcegraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("resourcegraph")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fixture", "")

	v.SetDefault("serializer.singular_type_names", false)
	v.SetDefault("serializer.include_version", false)
	v.SetDefault("serializer.version", "1.0")
	v.SetDefault("serializer.enable_included_resources", true)
	v.SetDefault("serializer.pagination", string(serializer.StrategyPage))
	v.SetDefault("serializer.include_total", false)
	v.SetDefault("serializer.default_page_size", 20)
	v.SetDefault("serializer.max_page_size", 100)

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.api_prefix", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", "1m")
	v.SetDefault("cache.max_entries", 1000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// SerializerOptions converts the serializer section to engine options
func (c *Config) SerializerOptions() (serializer.Options, error) {
	strategy, err := serializer.ParseStrategy(c.Serializer.Pagination)
	if err != nil {
		return serializer.Options{}, err
	}

	opts := serializer.Options{
		SingularTypeNames: c.Serializer.SingularTypeNames,
		IncludeVersion:    c.Serializer.IncludeVersion,
		Version:           c.Serializer.Version,
		Pagination:        strategy,
		IncludeTotal:      c.Serializer.IncludeTotal,
		EnableIncludes:    c.Serializer.EnableIncludedResources,
	}
	if err := opts.Validate(); err != nil {
		return serializer.Options{}, err
	}
	return opts, nil
}

// PageLimits returns the page size bounds for request parsing
func (c *Config) PageLimits() query.PageLimits {
	return query.PageLimits{
		DefaultSize: c.Serializer.DefaultPageSize,
		MaxSize:     c.Serializer.MaxPageSize,
	}
}

// Addr returns the server listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	// Validate API prefix format
	if cfg.Server.APIPrefix != "" {
		if !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must start with '/', got: %s", cfg.Server.APIPrefix)
		}
		if strings.HasSuffix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must not end with '/', got: %s", cfg.Server.APIPrefix)
		}
	}

	if _, err := serializer.ParseStrategy(cfg.Serializer.Pagination); err != nil {
		return fmt.Errorf("serializer.pagination: %w", err)
	}

	if cfg.Serializer.DefaultPageSize < 1 {
		return fmt.Errorf("serializer.default_page_size must be positive, got: %d", cfg.Serializer.DefaultPageSize)
	}
	if cfg.Serializer.MaxPageSize < cfg.Serializer.DefaultPageSize {
		return fmt.Errorf("serializer.max_page_size must be at least default_page_size, got: %d", cfg.Serializer.MaxPageSize)
	}

	switch cfg.Cache.Driver {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be none, memory or redis, got: %s", cfg.Cache.Driver)
	}

	return nil
}
