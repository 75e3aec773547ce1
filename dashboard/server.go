package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/authorityguard/artifact"
	"github.com/c360studio/authorityguard/auth"
	"github.com/c360studio/authorityguard/session"
	"github.com/c360studio/authorityguard/source/discovery"
	"github.com/c360studio/authorityguard/source/inspect"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// Scanner discovers sitemap candidates from a seed page.
type Scanner interface {
	Discover(ctx context.Context, seedURL string) (*discovery.Result, error)
}

// PageInspector reads metadata from a single page.
type PageInspector interface {
	Inspect(ctx context.Context, rawURL string) (*inspect.Page, error)
}

// Options wires a Server.
type Options struct {
	Scanner      Scanner
	Inspector    PageInspector
	Verifier     auth.Verifier
	Sessions     *session.Store
	Bots         []artifact.Bot
	CookieName   string
	SecureCookie bool

	// Registry receives the dashboard collectors and backs /metrics.
	// Nil disables the metrics endpoint.
	Registry *prometheus.Registry

	Logger *slog.Logger
	Now    func() time.Time
}

// Server is the dashboard HTTP server.
type Server struct {
	verifier     auth.Verifier
	sessions     *session.Store
	cookieName   string
	secureCookie bool
	registry     *prometheus.Registry
	metrics      *metrics
	templates    *templates
	logger       *slog.Logger
	now          func() time.Time

	// Settings that may change on config reload.
	mu        sync.RWMutex
	scanner   Scanner
	inspector PageInspector
	bots      []artifact.Bot
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Scanner == nil || opts.Inspector == nil || opts.Verifier == nil {
		return nil, errors.New("scanner, inspector and verifier are required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if opts.CookieName == "" {
		opts.CookieName = "authorityguard_session"
	}
	if opts.Bots == nil {
		opts.Bots = artifact.KnownBots
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	var m *metrics
	if opts.Registry != nil {
		m = newMetrics(opts.Registry, opts.Sessions)
	}

	return &Server{
		verifier:     opts.Verifier,
		sessions:     opts.Sessions,
		cookieName:   opts.CookieName,
		secureCookie: opts.SecureCookie,
		registry:     opts.Registry,
		metrics:      m,
		templates:    tmpl,
		logger:       opts.Logger,
		now:          opts.Now,
		scanner:      opts.Scanner,
		inspector:    opts.Inspector,
		bots:         opts.Bots,
	}, nil
}

// Reconfigure swaps the settings that can change while running.
// Nil arguments keep the current value.
func (s *Server) Reconfigure(scanner Scanner, inspector PageInspector, bots []artifact.Bot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scanner != nil {
		s.scanner = scanner
	}
	if inspector != nil {
		s.inspector = inspector
	}
	if bots != nil {
		s.bots = bots
	}
}

func (s *Server) current() (Scanner, PageInspector, []artifact.Bot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanner, s.inspector, s.bots
}

// Handler returns the dashboard routes.
//
//	GET       /healthz
//	GET       /metrics
//	GET|POST  /login
//	POST      /logout
//	GET       /robots
//	GET       /sitemap
//	POST      /sitemap/scan
//	POST      /sitemap/manual
//	GET       /schema
//	GET       /meta
//	POST      /meta/inspect
//	POST      /api/login
//	POST      /api/scan
//	POST      /api/inspect
//	POST      /api/robots
//	POST      /api/sitemap
//	POST      /api/schema
//	POST      /api/meta
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/robots", s.requirePage(s.handleRobotsPage))
	mux.HandleFunc("/sitemap", s.requirePage(s.handleSitemapPage))
	mux.HandleFunc("/sitemap/scan", s.requirePage(s.handleSitemapScan))
	mux.HandleFunc("/sitemap/manual", s.requirePage(s.handleSitemapManual))
	mux.HandleFunc("/schema", s.requirePage(s.handleSchemaPage))
	mux.HandleFunc("/meta", s.requirePage(s.handleMetaPage))
	mux.HandleFunc("/meta/inspect", s.requirePage(s.handleMetaInspect))

	mux.HandleFunc("/api/login", s.handleAPILogin)
	mux.HandleFunc("/api/scan", s.requireAPI(s.handleAPIScan))
	mux.HandleFunc("/api/inspect", s.requireAPI(s.handleAPIInspect))
	mux.HandleFunc("/api/robots", s.requireAPI(s.handleAPIRobots))
	mux.HandleFunc("/api/sitemap", s.requireAPI(s.handleAPISitemap))
	mux.HandleFunc("/api/schema", s.requireAPI(s.handleAPISchema))
	mux.HandleFunc("/api/meta", s.requireAPI(s.handleAPIMeta))

	return mux
}

// ListenAndServe serves the dashboard on addr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Sessions and access control
// ----------------------------------------------------------------------------

// currentSession returns the caller's session, if the cookie names a live one.
func (s *Server) currentSession(r *http.Request) (session.State, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return session.State{}, false
	}
	return s.sessions.Get(cookie.Value)
}

// startSession creates a logged-in session, replacing any existing one, and
// sets its cookie.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, email string) session.State {
	if old, ok := s.currentSession(r); ok {
		s.sessions.Delete(old.ID)
	}

	st := s.sessions.Create()
	st, _ = s.sessions.Update(st.ID, func(state *session.State) {
		state.Login(email)
	})

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    st.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return st
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, st session.State)

// requirePage redirects visitors without a logged-in session to /login.
func (s *Server) requirePage(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := s.currentSession(r)
		if !ok || !st.LoggedIn {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, st)
	}
}

// requireAPI answers 401 to callers without a logged-in session.
func (s *Server) requireAPI(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := s.currentSession(r)
		if !ok || !st.LoggedIn {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next(w, r, st)
	}
}

// login verifies credentials and records the outcome.
func (s *Server) login(r *http.Request, email, key string) error {
	err := s.verifier.Verify(r.Context(), email, key)
	s.metrics.login(err == nil)
	if err != nil {
		s.logger.Info("Login rejected", "remote", r.RemoteAddr, "reason", err)
		return err
	}
	s.logger.Info("Login accepted", "email", email)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
