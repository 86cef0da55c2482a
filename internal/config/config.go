package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"atsmatch/internal/errors"
	"atsmatch/internal/rewrite"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ATSMATCH_STORE_DRIVER.
const EnvPrefix = "ATSMATCH"

// ConfigFileEnv names an explicit config file, bypassing the search paths.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// Config holds all application configuration
// Precedence Order:
// 1. Command flags bound by the CLI - Highest priority
// 2. Environment Variables (ATSMATCH_STORE_DRIVER, etc.)
// 3. Config File values
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Store         StoreConfig         `mapstructure:"store"`
	Rewrite       RewriteConfig       `mapstructure:"rewrite"`
	Watch         WatchConfig         `mapstructure:"watch"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// StoreConfig selects where session state lives
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"` // memory or sqlite
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busyTimeout"`
}

// RewriteConfig holds resume rewriter settings
type RewriteConfig struct {
	DownloadFileName string `mapstructure:"downloadFileName"`
	SkillsLimit      int    `mapstructure:"skillsLimit"`
}

// WatchConfig holds live re-analysis settings
type WatchConfig struct {
	DebounceDelay    time.Duration `mapstructure:"debounceDelay"`
	MaxRunsPerSecond float64       `mapstructure:"maxRunsPerSecond"`
	Burst            int           `mapstructure:"burst"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

var configLog = log.New(os.Stderr, "", log.LstdFlags)

// SetLogOutput redirects the [CONFIG] loading trace.
func SetLogOutput(w io.Writer) {
	configLog.SetOutput(w)
}

// LoadConfig loads configuration from defaults, a config file and environment variables
func LoadConfig() (*Config, error) {
	return Load(os.Getenv(ConfigFileEnv))
}

// Load is LoadConfig with an explicit config file. An empty configFile
// searches /etc/atsmatch/, $HOME/.atsmatch and the working directory.
func Load(configFile string) (*Config, error) {
	return LoadWithFlags(configFile, nil)
}

// LoadWithFlags is Load with command flags layered over the environment.
// bindings maps config keys such as "store.driver" to flags. Flags the user
// did not set fall through to env, file and defaults.
func LoadWithFlags(configFile string, bindings map[string]*pflag.Flag) (*Config, error) {
	configLog.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	setDefaults(v)
	configLog.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	configLog.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", EnvPrefix)

	for key, flag := range bindings {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("failed to bind flag --%s", flag.Name), err)
		}
		configLog.Printf("[CONFIG] Bound flag --%s to %s", flag.Name, key)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		configLog.Printf("[CONFIG] Using explicit config file: %s", configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/atsmatch/")
		v.AddConfigPath("$HOME/.atsmatch")
		v.AddConfigPath(".")
		configLog.Println("[CONFIG] Configured config file search paths: /etc/atsmatch/, $HOME/.atsmatch, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read config file", err)
		}
		configLog.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		configLog.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to unmarshal config", err)
	}
	configLog.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	configLog.Println("[CONFIG] Applied configuration fallbacks")

	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configLog.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf(format, args...), nil)
	}

	if _, err := errors.ParseLevel(c.App.LogLevel); err != nil {
		return invalid("invalid log level: %s", c.App.LogLevel)
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return invalid("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.App.MaxFileSize <= 0 {
		return invalid("max file size must be positive")
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return invalid("store path is required for the sqlite driver")
		}
	default:
		return invalid("unknown store driver: %s", c.Store.Driver)
	}

	if c.Rewrite.SkillsLimit <= 0 || c.Rewrite.SkillsLimit > rewrite.DefaultSkillsLimit {
		return invalid("rewrite skills limit must be between 1 and %d", rewrite.DefaultSkillsLimit)
	}

	if c.Watch.MaxRunsPerSecond <= 0 || c.Watch.Burst < 1 {
		return invalid("watch rate must be positive with a burst of at least 1")
	}
	if c.Watch.DebounceDelay < 0 {
		return invalid("watch debounce delay cannot be negative")
	}

	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return invalid("observability sample rate must be within [0,1]")
	}

	return nil
}
