package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "authorityguard.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/authorityguard"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment variables that override file values.
const (
	EnvAddr              = "AUTHORITYGUARD_ADDR"
	EnvAccessKeyHash     = "AUTHORITYGUARD_ACCESS_KEY_HASH"
	EnvAllowPrivateHosts = "AUTHORITYGUARD_ALLOW_PRIVATE_HOSTS"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	getenv func(string) string
	cwd    func() (string, error)
	home   func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger,
		getenv: os.Getenv,
		cwd:    os.Getwd,
		home:   os.UserHomeDir,
	}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/authorityguard/config.yaml)
// 3. Project config (authorityguard.yaml in current or parent directories),
//    or explicitPath when non-empty
// 4. Environment variables
//
// It returns the most specific file that was read, or "" when none was.
func (l *Loader) Load(explicitPath string) (*Config, string, error) {
	config := DefaultConfig()
	source := ""

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
			source = userConfigPath
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	if explicitPath != "" {
		fileConfig, err := LoadFromFile(explicitPath)
		if err != nil {
			return nil, "", fmt.Errorf("load %s: %w", explicitPath, err)
		}
		l.logger.Debug("Loaded config file", slog.String("path", explicitPath))
		config.Merge(fileConfig)
		source = explicitPath
	} else if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
			source = projectConfigPath
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if err := l.applyEnv(config); err != nil {
		return nil, "", err
	}

	if err := config.Validate(); err != nil {
		return nil, "", err
	}

	return config, source, nil
}

// applyEnv overrides config values from the environment
func (l *Loader) applyEnv(config *Config) error {
	if v := l.getenv(EnvAddr); v != "" {
		config.Server.Addr = v
	}
	if v := l.getenv(EnvAccessKeyHash); v != "" {
		config.Auth.AccessKeyHash = v
	}
	if v := l.getenv(EnvAllowPrivateHosts); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAllowPrivateHosts, err)
		}
		config.Scan.AllowPrivateHosts = allow
	}
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := l.home()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for authorityguard.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := l.cwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
