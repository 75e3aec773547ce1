// Package config provides configuration loading and management for Authority Guard.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// ErrMissingAccessKey is returned when the dashboard has no access key hash.
var ErrMissingAccessKey = errors.New("auth.access_key_hash is required (generate one with `authorityguard hash-key`)")

// Config represents the complete Authority Guard configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	Scan    ScanConfig    `yaml:"scan"`
	Robots  RobotsConfig  `yaml:"robots"`
}

// ServerConfig configures the dashboard HTTP server
type ServerConfig struct {
	// Addr is the listen address (default: 127.0.0.1:8080)
	Addr string `yaml:"addr"`
	// ReadTimeout bounds reading a request, including the body
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout bounds writing a response; it must outlast a scan
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AuthConfig configures the shared access gate
type AuthConfig struct {
	// AccessKeyHash is the bcrypt hash of the shared access key
	AccessKeyHash string `yaml:"access_key_hash"`
}

// SessionConfig configures dashboard sessions
type SessionConfig struct {
	// TTL is how long a session lives after its last use
	TTL time.Duration `yaml:"ttl"`
	// CookieName is the name of the session cookie
	CookieName string `yaml:"cookie_name"`
	// SecureCookie marks the cookie Secure (enable behind TLS)
	SecureCookie bool `yaml:"secure_cookie"`
}

// ScanConfig configures link discovery and page inspection
type ScanConfig struct {
	// Timeout is the fixed fetch timeout (default: 5s)
	Timeout time.Duration `yaml:"timeout"`
	// UserAgent is sent with every fetch (default: a desktop browser UA)
	UserAgent string `yaml:"user_agent"`
	// MaxCandidates caps discovered links, 50 at most
	MaxCandidates int `yaml:"max_candidates"`
	// MaxContentSize caps the fetched page body in bytes
	MaxContentSize int64 `yaml:"max_content_size"`
	// AllowPrivateHosts permits scanning localhost and private networks
	AllowPrivateHosts bool `yaml:"allow_private_hosts"`
	// Exclude lists doublestar path patterns dropped from scan results
	Exclude []string `yaml:"exclude"`
}

// RobotsConfig configures the robots.txt architect
type RobotsConfig struct {
	// ExtraBots are offered after the built-in AI crawlers
	ExtraBots []BotConfig `yaml:"extra_bots"`
}

// BotConfig names an additional crawler
type BotConfig struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Session: SessionConfig{
			TTL:        12 * time.Hour,
			CookieName: "authorityguard_session",
		},
		Scan: ScanConfig{
			Timeout:        5 * time.Second,
			MaxCandidates:  50,
			MaxContentSize: 5 << 20,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.WriteTimeout > 0 && c.Scan.Timeout > 0 && c.Server.WriteTimeout <= c.Scan.Timeout {
		return fmt.Errorf("server.write_timeout must be longer than scan.timeout")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.Scan.Timeout <= 0 {
		return fmt.Errorf("scan.timeout must be positive")
	}
	if c.Scan.MaxCandidates < 1 || c.Scan.MaxCandidates > 50 {
		return fmt.Errorf("scan.max_candidates must be between 1 and 50")
	}
	if c.Scan.MaxContentSize <= 0 {
		return fmt.Errorf("scan.max_content_size must be positive")
	}
	for i, bot := range c.Robots.ExtraBots {
		if bot.Name == "" {
			return fmt.Errorf("robots.extra_bots[%d].name is required", i)
		}
	}
	return nil
}

// Validate checks that the access gate can verify keys
func (a AuthConfig) Validate() error {
	if a.AccessKeyHash == "" {
		return ErrMissingAccessKey
	}
	if _, err := bcrypt.Cost([]byte(a.AccessKeyHash)); err != nil {
		return fmt.Errorf("auth.access_key_hash is not a bcrypt hash: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold the access key hash.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ReadTimeout != 0 {
		c.Server.ReadTimeout = other.Server.ReadTimeout
	}
	if other.Server.WriteTimeout != 0 {
		c.Server.WriteTimeout = other.Server.WriteTimeout
	}

	// Auth
	if other.Auth.AccessKeyHash != "" {
		c.Auth.AccessKeyHash = other.Auth.AccessKeyHash
	}

	// Session
	if other.Session.TTL != 0 {
		c.Session.TTL = other.Session.TTL
	}
	if other.Session.CookieName != "" {
		c.Session.CookieName = other.Session.CookieName
	}
	if other.Session.SecureCookie {
		c.Session.SecureCookie = true
	}

	// Scan
	if other.Scan.Timeout != 0 {
		c.Scan.Timeout = other.Scan.Timeout
	}
	if other.Scan.UserAgent != "" {
		c.Scan.UserAgent = other.Scan.UserAgent
	}
	if other.Scan.MaxCandidates != 0 {
		c.Scan.MaxCandidates = other.Scan.MaxCandidates
	}
	if other.Scan.MaxContentSize != 0 {
		c.Scan.MaxContentSize = other.Scan.MaxContentSize
	}
	if other.Scan.AllowPrivateHosts {
		c.Scan.AllowPrivateHosts = true
	}
	if len(other.Scan.Exclude) > 0 {
		c.Scan.Exclude = other.Scan.Exclude
	}

	// Robots
	if len(other.Robots.ExtraBots) > 0 {
		c.Robots.ExtraBots = other.Robots.ExtraBots
	}
}
