package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360studio/authorityguard/artifact"
	"github.com/c360studio/authorityguard/auth"
	"github.com/c360studio/authorityguard/config"
	"github.com/c360studio/authorityguard/dashboard"
	"github.com/c360studio/authorityguard/session"
	"github.com/c360studio/authorityguard/source/discovery"
	"github.com/c360studio/authorityguard/source/inspect"
)

// App wires the dashboard to its scanner, inspector, access gate and
// session store.
type App struct {
	logger   *slog.Logger
	metrics  *discovery.Metrics
	verifier *auth.KeyVerifier
	sessions *session.Store
	server   *dashboard.Server

	mu  sync.Mutex
	cfg *config.Config
}

// NewApp creates the application for a validated config. The access key hash
// must be present.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// Collectors are registered once; reloads build new discoverers that share them.
	metrics := discovery.NewMetrics(registry)

	verifier, err := auth.NewKeyVerifier(cfg.Auth.AccessKeyHash)
	if err != nil {
		return nil, err
	}

	scanner, err := newDiscoverer(cfg.Scan, metrics, logger)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(cfg.Session.TTL)
	server, err := dashboard.New(dashboard.Options{
		Scanner:      scanner,
		Inspector:    inspect.New(scanner.Fetcher(), logger),
		Verifier:     verifier,
		Sessions:     sessions,
		Bots:         botCatalog(cfg.Robots),
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.SecureCookie,
		Registry:     registry,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create dashboard: %w", err)
	}

	return &App{
		logger:   logger,
		metrics:  metrics,
		verifier: verifier,
		sessions: sessions,
		server:   server,
		cfg:      cfg,
	}, nil
}

// Run serves the dashboard until ctx is cancelled. When configPath is set
// the file is watched and changes are applied without a restart.
func (a *App) Run(ctx context.Context, configPath string, reload config.ReloadFunc) error {
	if configPath != "" && reload != nil {
		watcher, err := config.NewWatcher(configPath, reload, a.Apply, a.logger)
		if err != nil {
			a.logger.Warn("Config hot reload disabled", "path", configPath, "error", err)
		} else {
			go watcher.Run(ctx)
			a.logger.Info("Watching config for changes", "path", configPath)
		}
	}

	a.mu.Lock()
	server := a.cfg.Server
	a.mu.Unlock()

	return a.server.ListenAndServe(ctx, server.Addr, server.ReadTimeout, server.WriteTimeout)
}

// Apply switches the running app to cfg. Scan settings, bots, the access key
// and the session TTL take effect immediately; server and cookie settings
// need a restart.
func (a *App) Apply(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	scanner, err := newDiscoverer(cfg.Scan, a.metrics, a.logger)
	if err != nil {
		a.logger.Warn("Ignoring scan settings", "error", err)
		scanner = nil
	}

	if err := a.verifier.SetHash(cfg.Auth.AccessKeyHash); err != nil {
		a.logger.Warn("Keeping previous access key", "error", err)
	}

	a.sessions.SetTTL(cfg.Session.TTL)

	if scanner != nil {
		a.server.Reconfigure(scanner, inspect.New(scanner.Fetcher(), a.logger), botCatalog(cfg.Robots))
	} else {
		a.server.Reconfigure(nil, nil, botCatalog(cfg.Robots))
	}

	if cfg.Server != a.cfg.Server || cfg.Session.CookieName != a.cfg.Session.CookieName ||
		cfg.Session.SecureCookie != a.cfg.Session.SecureCookie {
		a.logger.Warn("Server and cookie settings take effect after a restart")
	}
	a.cfg = cfg
}

func newDiscoverer(scan config.ScanConfig, metrics *discovery.Metrics, logger *slog.Logger) (*discovery.Discoverer, error) {
	d, err := discovery.New(discovery.Options{
		Timeout:           scan.Timeout,
		UserAgent:         scan.UserAgent,
		MaxCandidates:     scan.MaxCandidates,
		MaxContentSize:    scan.MaxContentSize,
		AllowPrivateHosts: scan.AllowPrivateHosts,
		Exclude:           scan.Exclude,
	}, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create discoverer: %w", err)
	}
	return d, nil
}

func botCatalog(cfg config.RobotsConfig) []artifact.Bot {
	extra := make([]artifact.Bot, 0, len(cfg.ExtraBots))
	for _, b := range cfg.ExtraBots {
		extra = append(extra, artifact.Bot{Name: b.Name, Label: b.Label})
	}
	return artifact.BotCatalog(extra)
}
