package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service. Values come from
// the environment, optionally seeded from a .env file.
type Config struct {
	// HTTP server
	Host    string `env:"HOST"`
	Port    int    `env:"PORT"`
	Workers int    `env:"WORKERS"`

	// OpenAI
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIEndpoint string `env:"OPENAI_ENDPOINT"`
	OpenAIModel    string `env:"OPENAI_MODEL"`

	// Headless browser
	BrowserExecPath string        `env:"BROWSER_EXEC_PATH"`
	NavTimeout      time.Duration `env:"NAV_TIMEOUT"`

	// Verdict store
	StorePath string        `env:"STORE_PATH"`
	CacheTTL  time.Duration `env:"CACHE_TTL"`

	LogLevel string `env:"LOG_LEVEL"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           8001,
		Workers:        1,
		OpenAIEndpoint: "https://api.openai.com/v1",
		OpenAIModel:    "gpt-4o",
		NavTimeout:     40 * time.Second,
		StorePath:      "verdicts.ldb",
		CacheTTL:       24 * time.Hour,
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, an optional .env file,
// and the process environment, in that order of precedence.
func Load(envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	setString(&cfg.Host, "HOST")
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIEndpoint, "OPENAI_ENDPOINT")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.BrowserExecPath, "BROWSER_EXEC_PATH")
	setString(&cfg.StorePath, "STORE_PATH")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if err := setInt(&cfg.Port, "PORT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Workers, "WORKERS"); err != nil {
		return err
	}
	if err := setDuration(&cfg.NavTimeout, "NAV_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&cfg.CacheTTL, "CACHE_TTL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.OpenAIModel == "" {
		return fmt.Errorf("OPENAI_MODEL must not be empty")
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("NAV_TIMEOUT must be positive, got %s", c.NavTimeout)
	}
	if c.StorePath == "" {
		return fmt.Errorf("STORE_PATH must not be empty")
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Prefork reports whether the server should fork worker processes.
func (c *Config) Prefork() bool {
	return c.Workers > 1
}

// WorkerStorePath derives a per-process store path for a prefork worker.
// lemon has no cross-process file lock, so workers sharing one database
// file would clobber each other's writes; every worker opens its own.
func WorkerStorePath(path string, pid int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strconv.Itoa(pid) + ext
}
