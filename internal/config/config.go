package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the careerdex service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Remote   RemoteConfig   `yaml:"remote"`
	Sync     SyncConfig     `yaml:"sync"`
	Matching MatchingConfig `yaml:"matching"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds persistent cache tier settings.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // badger, redis, valkey, memory (default: badger)
	Path             string   `yaml:"path"`   // badger only
	Addrs            []string `yaml:"addrs"`  // redis/valkey only
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RemoteConfig holds the remote catalog provider settings.
type RemoteConfig struct {
	Driver     string        `yaml:"driver"` // postgres, rest (default: postgres)
	DSN        string        `yaml:"dsn"`
	MaxConns   int32         `yaml:"max_conns"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	TimeoutSec int           `yaml:"timeout_sec"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the remote provider.
type BreakerConfig struct {
	FailureThreshold uint32 `yaml:"failure_threshold"`
	OpenTimeoutSec   int    `yaml:"open_timeout_sec"`
	HalfOpenRequests uint32 `yaml:"half_open_requests"`
}

// SyncConfig holds refresh engine settings.
type SyncConfig struct {
	Parallelism        int  `yaml:"parallelism"`
	MonitorIntervalSec int  `yaml:"monitor_interval_sec"`
	RefreshOnStartup   bool `yaml:"refresh_on_startup"`
}

// MatchingConfig holds interest-matching weights and tier thresholds.
type MatchingConfig struct {
	DomainMultiplier float64               `yaml:"domain_multiplier"`
	BreadthBonus     float64               `yaml:"breadth_bonus"`
	LikeBoost        float64               `yaml:"like_boost"`
	Tiers            map[string]TierConfig `yaml:"tiers"` // keyed by college, specialty
}

// TierConfig holds strict lower bounds for the highlighted tiers.
type TierConfig struct {
	Gold     float64 `yaml:"gold"`
	Elevated float64 `yaml:"elevated"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "badger"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Remote.Driver == "" {
		c.Remote.Driver = "postgres"
	}
	if c.Remote.MaxConns <= 0 {
		c.Remote.MaxConns = 4
	}
	if c.Remote.TimeoutSec <= 0 {
		c.Remote.TimeoutSec = 15
	}
	if c.Remote.Breaker.FailureThreshold == 0 {
		c.Remote.Breaker.FailureThreshold = 5
	}
	if c.Remote.Breaker.OpenTimeoutSec <= 0 {
		c.Remote.Breaker.OpenTimeoutSec = 30
	}
	if c.Remote.Breaker.HalfOpenRequests == 0 {
		c.Remote.Breaker.HalfOpenRequests = 1
	}
	if c.Sync.Parallelism <= 0 {
		c.Sync.Parallelism = 4
	}
	if c.Sync.MonitorIntervalSec <= 0 {
		c.Sync.MonitorIntervalSec = 30
	}
	if c.Matching.DomainMultiplier <= 0 {
		c.Matching.DomainMultiplier = 1.5
	}
	if c.Matching.BreadthBonus <= 0 {
		c.Matching.BreadthBonus = 0.5
	}
	if c.Matching.LikeBoost <= 0 {
		c.Matching.LikeBoost = 5
	}
	if c.Matching.Tiers == nil {
		c.Matching.Tiers = map[string]TierConfig{
			"college":   {Gold: 120, Elevated: 60},
			"specialty": {Gold: 150, Elevated: 80},
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Store.Driver {
	case "badger":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the badger driver")
		}
	case "redis", "valkey":
		if len(c.Store.Addrs) == 0 {
			return fmt.Errorf("store.addrs is required for the %s driver", c.Store.Driver)
		}
	case "memory":
		// ok
	default:
		return fmt.Errorf("store.driver must be badger, redis, valkey or memory, got %q", c.Store.Driver)
	}

	switch c.Remote.Driver {
	case "postgres":
		if c.Remote.DSN == "" {
			return fmt.Errorf("remote.dsn is required for the postgres driver")
		}
	case "rest":
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("remote.base_url is required for the rest driver")
		}
	default:
		return fmt.Errorf("remote.driver must be postgres or rest, got %q", c.Remote.Driver)
	}

	for kind, t := range c.Matching.Tiers {
		switch kind {
		case "college", "specialty":
		default:
			return fmt.Errorf("matching.tiers: unknown kind %q", kind)
		}
		if t.Elevated < 0 || t.Gold <= t.Elevated {
			return fmt.Errorf(
				"matching.tiers.%s: gold (%v) must exceed elevated (%v) and elevated must be non-negative",
				kind, t.Gold, t.Elevated,
			)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
