// Package config provides YAML-based configuration loading for the messaging
// service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration, loaded from config.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Listings  ListingsConfig  `yaml:"listings"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects and configures the backing store. Driver is
// "mysql" or "sqlite"; sqlite uses Path and ignores the network fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Path     string `yaml:"path"`
}

// AuthConfig holds token verification settings. The secret can be injected
// through KASICHAT_AUTH_SECRET instead of the file.
type AuthConfig struct {
	Secret   string   `yaml:"secret"`
	TokenTTL Duration `yaml:"token_ttl"`
}

// Duration accepts Go duration strings such as "24h" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// ListingsConfig points at the property listing service used to resolve
// property-scoped conversations.
type ListingsConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ReconcileConfig schedules the counter reconciliation sweep. An empty
// schedule disables it.
type ReconcileConfig struct {
	Schedule string `yaml:"schedule"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Database == "" {
		c.Database.Database = "kasichat"
	}
	if c.Database.Path == "" {
		c.Database.Path = "kasichat.db"
	}
	if secret := os.Getenv("KASICHAT_AUTH_SECRET"); secret != "" {
		c.Auth.Secret = secret
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = Duration(24 * time.Hour)
	}
	if c.Reconcile.Schedule == "" {
		c.Reconcile.Schedule = "*/15 * * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Sprintf("database.driver %q is not mysql or sqlite", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.User == "" {
		errs = append(errs, "database.user is required for mysql")
	}
	if c.Auth.Secret == "" {
		errs = append(errs, "auth.secret is required (file or KASICHAT_AUTH_SECRET)")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
