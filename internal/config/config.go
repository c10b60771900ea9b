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

// Config holds the cinedex API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Cache   StoreConfig   `yaml:"cache"`
	Search  StoreConfig   `yaml:"search"`
	TTL     TTLConfig     `yaml:"ttl"`
	Indexes IndexesConfig `yaml:"indexes"`
	Backoff BackoffConfig `yaml:"backoff"`
	Auth    AuthConfig    `yaml:"auth"`
	Paging  PagingConfig  `yaml:"paging"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds connection settings for one Redis connection. The
// cache store and the search store are configured independently even when
// they point at the same deployment.
type StoreConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TTLConfig holds per-entity cache lifetimes in seconds. The TTL is also
// the staleness bound after an external index mutation.
type TTLConfig struct {
	WorkSec        int `yaml:"work_sec"`
	CategorySec    int `yaml:"category_sec"`
	ContributorSec int `yaml:"contributor_sec"`
	PopularitySec  int `yaml:"popularity_sec"`
}

// IndexEntry names one entity family's FT index and document key prefix.
type IndexEntry struct {
	Name      string `yaml:"name"`
	KeyPrefix string `yaml:"key_prefix"`
}

// IndexesConfig holds the index layout produced by the ingestion pipeline.
type IndexesConfig struct {
	Works        IndexEntry `yaml:"works"`
	Categories   IndexEntry `yaml:"categories"`
	Contributors IndexEntry `yaml:"contributors"`
}

// BackoffConfig holds the transient-failure retry budget for store clients.
type BackoffConfig struct {
	InitialIntervalMS int     `yaml:"initial_interval_ms"`
	Multiplier        float64 `yaml:"multiplier"`
	MaxElapsedSec     int     `yaml:"max_elapsed_sec"`
}

// AuthConfig holds the external role-gate settings. An empty URL disables
// the gate.
type AuthConfig struct {
	URL               string `yaml:"url"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

// PagingConfig holds listing defaults and bounds.
type PagingConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local,
// dev, prod), expanding ${VAR} and ${VAR:-default} references.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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

// GetEnv returns the current environment from the ENV variable, defaulting
// to "local".
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Search.ReadinessTimeout <= 0 {
		c.Search.ReadinessTimeout = 10
	}
	if c.TTL.WorkSec <= 0 {
		c.TTL.WorkSec = 300
	}
	if c.TTL.CategorySec <= 0 {
		c.TTL.CategorySec = 300
	}
	if c.TTL.ContributorSec <= 0 {
		c.TTL.ContributorSec = 300
	}
	if c.TTL.PopularitySec <= 0 {
		c.TTL.PopularitySec = 60
	}
	if c.Indexes.Works.Name == "" {
		c.Indexes.Works = IndexEntry{Name: "works:idx", KeyPrefix: "works:"}
	}
	if c.Indexes.Categories.Name == "" {
		c.Indexes.Categories = IndexEntry{Name: "categories:idx", KeyPrefix: "categories:"}
	}
	if c.Indexes.Contributors.Name == "" {
		c.Indexes.Contributors = IndexEntry{Name: "contributors:idx", KeyPrefix: "contributors:"}
	}
	if c.Backoff.InitialIntervalMS <= 0 {
		c.Backoff.InitialIntervalMS = 100
	}
	if c.Backoff.Multiplier <= 0 {
		c.Backoff.Multiplier = 2.0
	}
	if c.Backoff.MaxElapsedSec <= 0 {
		c.Backoff.MaxElapsedSec = 10
	}
	if c.Auth.RequestTimeoutSec <= 0 {
		c.Auth.RequestTimeoutSec = 3
	}
	if c.Paging.DefaultPageSize <= 0 {
		c.Paging.DefaultPageSize = 20
	}
	if c.Paging.MaxPageSize <= 0 {
		c.Paging.MaxPageSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required")
	}
	if len(c.Search.Addrs) == 0 {
		return fmt.Errorf("search.addrs is required")
	}
	if c.Paging.DefaultPageSize > c.Paging.MaxPageSize {
		return fmt.Errorf("paging.default_page_size %d exceeds max_page_size %d",
			c.Paging.DefaultPageSize, c.Paging.MaxPageSize)
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

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
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
