package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"StockPulse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Postgres struct {
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Database string        `yaml:"database"`
		User     string        `yaml:"user"`
		Password string        `yaml:"password"`
		SSLMode  string        `yaml:"ssl_mode"`
		MaxConns int32         `yaml:"max_conns"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		WriteAheadTTL  time.Duration `yaml:"write_ahead_ttl"`
		ReadThroughTTL time.Duration `yaml:"read_through_ttl"`
		SearchTTL      time.Duration `yaml:"search_ttl"`
	} `yaml:"cache"`
	Provider struct {
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		Timeout   time.Duration `yaml:"timeout"`
		Attempts  int           `yaml:"attempts"`
		BaseDelay time.Duration `yaml:"base_delay"`
		MaxDelay  time.Duration `yaml:"max_delay"`
	} `yaml:"provider"`
	Scheduler struct {
		PersistInterval time.Duration `yaml:"persist_interval"`
	} `yaml:"scheduler"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		c.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		c.Postgres.Port = util.ParseIntDefault(v, c.Postgres.Port)
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		c.Postgres.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		c.Postgres.Database = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = 10
	}
	if c.Postgres.Timeout == 0 {
		c.Postgres.Timeout = 5 * time.Second
	}
	if c.Cache.WriteAheadTTL == 0 {
		c.Cache.WriteAheadTTL = 24 * time.Hour
	}
	if c.Cache.ReadThroughTTL == 0 {
		c.Cache.ReadThroughTTL = time.Hour
	}
	if c.Cache.SearchTTL == 0 {
		c.Cache.SearchTTL = 5 * time.Minute
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Provider.Attempts == 0 {
		c.Provider.Attempts = 3
	}
	if c.Provider.BaseDelay == 0 {
		c.Provider.BaseDelay = time.Second
	}
	if c.Provider.MaxDelay == 0 {
		c.Provider.MaxDelay = 10 * time.Second
	}
	if c.Scheduler.PersistInterval == 0 {
		c.Scheduler.PersistInterval = 5 * time.Minute
	}
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User, c.Postgres.Password,
		c.Postgres.Host, c.Postgres.Port,
		c.Postgres.Database, c.Postgres.SSLMode)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if c.Postgres.Database == "" {
		return fmt.Errorf("postgres.database is required")
	}
	if c.Postgres.User == "" {
		return fmt.Errorf("postgres.user is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Cache.WriteAheadTTL < c.Cache.ReadThroughTTL {
		return fmt.Errorf("cache.write_ahead_ttl must not be shorter than cache.read_through_ttl")
	}
	return nil
}
