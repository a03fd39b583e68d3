package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Mode            string `yaml:"mode"`            // gin mode: debug, release, test
	ShutdownTimeout int    `yaml:"shutdownTimeout"` // seconds
}

// DatabaseConfig document store configuration
type DatabaseConfig struct {
	URL              string `yaml:"url"`              // mongodb://, postgres:// or memory://
	Name             string `yaml:"name"`             // database name
	ConnectTimeout   int    `yaml:"connectTimeout"`   // seconds
	OperationTimeout int    `yaml:"operationTimeout"` // seconds, per insert/find
}

// NATSConfig intake notification configuration. Empty URL disables publishing.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Timeout int    `yaml:"timeout"` // seconds
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`   // List of allowed origins, default *
	AllowCredentials bool     `yaml:"allowCredentials"` // Whether to allow credentials
	MaxAge           int      `yaml:"maxAge"`           // Max age for preflight requests (seconds)
}

// LogConfig logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// APIConfig request handling limits
type APIConfig struct {
	DefaultListLimit int `yaml:"defaultListLimit"`
	MaxListLimit     int `yaml:"maxListLimit"`
}

// MetricsConfig access to /metrics. Localhost is always allowed; an empty
// list leaves the endpoint open.
type MetricsConfig struct {
	AllowedIPs []string `yaml:"allowedIPs"` // IPs or CIDR ranges
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8000
	defaultShutdownTimeout  = 10
	defaultConnectTimeout   = 5
	defaultOperationTimeout = 10
	defaultNATSSubject      = "recovery.requests.created"
	defaultNATSTimeout      = 5
	defaultCORSMaxAge       = 3600
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
	defaultListLimit        = 20
	defaultMaxListLimit     = 100
)

// LoadConfig loads configuration from an optional YAML file, then applies
// environment overrides and defaults. With an empty path, config.local.yaml
// or config.yaml is used when present; a missing default file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
		}
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// environment only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	overrideFromEnv(&cfg)
	cfg.applyDefaults()
	return &cfg, nil
}

// overrideFromEnv environment variables take priority over the file
func overrideFromEnv(cfg *Config) {
	// Document store
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DATABASE_CONNECT_TIMEOUT"); v != "" {
		if t, err := strconv.Atoi(v); err == nil {
			cfg.Database.ConnectTimeout = t
		}
	}
	if v := os.Getenv("DATABASE_OPERATION_TIMEOUT"); v != "" {
		if t, err := strconv.Atoi(v); err == nil {
			cfg.Database.OperationTimeout = t
		}
	}

	// Server; PORT is what most hosting platforms inject
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}

	// NATS
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_SUBJECT"); v != "" {
		cfg.NATS.Subject = v
	}
	if v := os.Getenv("NATS_TIMEOUT"); v != "" {
		if t, err := strconv.Atoi(v); err == nil {
			cfg.NATS.Timeout = t
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Metrics
	if v := os.Getenv("METRICS_ALLOWED_IPS"); v != "" {
		cfg.Metrics.AllowedIPs = splitList(v)
	}

	// API limits
	if v := os.Getenv("API_MAX_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.MaxListLimit = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port <= 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Database.ConnectTimeout <= 0 {
		c.Database.ConnectTimeout = defaultConnectTimeout
	}
	if c.Database.OperationTimeout <= 0 {
		c.Database.OperationTimeout = defaultOperationTimeout
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = defaultNATSSubject
	}
	if c.NATS.Timeout <= 0 {
		c.NATS.Timeout = defaultNATSTimeout
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.CORS.MaxAge <= 0 {
		c.CORS.MaxAge = defaultCORSMaxAge
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
	if c.API.DefaultListLimit <= 0 {
		c.API.DefaultListLimit = defaultListLimit
	}
	if c.API.MaxListLimit <= 0 {
		c.API.MaxListLimit = defaultMaxListLimit
	}
	if c.API.DefaultListLimit > c.API.MaxListLimit {
		c.API.DefaultListLimit = c.API.MaxListLimit
	}
}

// Address host:port the HTTP server listens on
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

func (d DatabaseConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(d.ConnectTimeout) * time.Second
}

func (d DatabaseConfig) OperationTimeoutDuration() time.Duration {
	return time.Duration(d.OperationTimeout) * time.Second
}

// URLSet reports whether a connection string is configured. The value itself is never exposed.
func (d DatabaseConfig) URLSet() bool {
	return strings.TrimSpace(d.URL) != ""
}

// NameSet reports whether a database name is configured
func (d DatabaseConfig) NameSet() bool {
	return strings.TrimSpace(d.Name) != ""
}

func (n NATSConfig) TimeoutDuration() time.Duration {
	return time.Duration(n.Timeout) * time.Second
}

// AllowsAnyOrigin true when CORS is open to every origin
func (c CORSConfig) AllowsAnyOrigin() bool {
	return len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*"
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
