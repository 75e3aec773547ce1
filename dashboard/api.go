package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/c360studio/authorityguard/artifact"
	"github.com/c360studio/authorityguard/auth"
	"github.com/c360studio/authorityguard/session"
	"github.com/c360studio/authorityguard/source/discovery"
	"github.com/c360studio/authorityguard/source/weburl"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email string `json:"email"`
	Key   string `json:"key"`
}

// URLRequest is the body of POST /api/scan and POST /api/inspect.
type URLRequest struct {
	URL string `json:"url"`
}

// RobotsRequest is the body of POST /api/robots. A nil Allow allows every
// known bot.
type RobotsRequest struct {
	Allow []string `json:"allow"`
}

// SitemapRequest is the body of POST /api/sitemap. Without URLs the list from
// the session's last scan or manual submission is used.
type SitemapRequest struct {
	URLs []string `json:"urls"`
}

// MetaRequest is the body of POST /api/meta. Omitted flags default to true.
type MetaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Author      string `json:"author"`
	Index       *bool  `json:"index"`
	Follow      *bool  `json:"follow"`
	Canonical   *bool  `json:"canonical"`
	URL         string `json:"url"`
}

func (m MetaRequest) input() artifact.MetaInput {
	in := artifact.DefaultMetaInput()
	in.Title = m.Title
	in.Description = m.Description
	in.Keywords = m.Keywords
	in.Author = m.Author
	in.URL = m.URL
	if m.Index != nil {
		in.Index = *m.Index
	}
	if m.Follow != nil {
		in.Follow = *m.Follow
	}
	if m.Canonical != nil {
		in.Canonical = *m.Canonical
	}
	return in
}

// SitemapResponse is returned by POST /api/sitemap.
type SitemapResponse struct {
	URLs    []string                `json:"urls"`
	Entries []artifact.SitemapEntry `json:"entries"`
	XML     string                  `json:"xml"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ----------------------------------------------------------------------------
// POST /api/login
// ----------------------------------------------------------------------------

func (s *Server) handleAPILogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.login(r, req.Email, req.Key); err != nil {
		if errors.Is(err, auth.ErrEmailRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	st := s.startSession(w, r, req.Email)
	writeJSON(w, http.StatusOK, map[string]any{
		"email":      st.Email,
		"expires_at": st.ExpiresAt,
	})
}

// ----------------------------------------------------------------------------
// POST /api/scan
// ----------------------------------------------------------------------------

// handleAPIScan discovers candidates and records them on the session the
// same way the sitemap page does.
func (s *Server) handleAPIScan(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req URLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.scan(r, st, req.URL)
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ----------------------------------------------------------------------------
// POST /api/inspect
// ----------------------------------------------------------------------------

func (s *Server) handleAPIInspect(w http.ResponseWriter, r *http.Request, _ session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req URLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, inspector, _ := s.current()
	page, err := inspector.Inspect(r.Context(), req.URL)
	if err != nil {
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ----------------------------------------------------------------------------
// POST /api/robots
// ----------------------------------------------------------------------------

func (s *Server) handleAPIRobots(w http.ResponseWriter, r *http.Request, _ session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RobotsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, _, bots := s.current()
	allow := req.Allow
	if allow == nil {
		allow = botNames(bots)
	}

	s.metrics.generated(kindRobots)
	writeJSON(w, http.StatusOK, map[string]string{"robots": artifact.Robots(bots, allow)})
}

// ----------------------------------------------------------------------------
// POST /api/sitemap
// ----------------------------------------------------------------------------

func (s *Server) handleAPISitemap(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SitemapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	urls := st.SitemapURLs
	if req.URLs != nil {
		urls = artifact.ManualURLs(req.URLs)
		s.sessions.Update(st.ID, func(state *session.State) {
			state.ApplyManual(urls)
		})
	}

	now := s.now()
	doc, err := artifact.Sitemap(urls, now)
	if err != nil {
		s.logger.Error("Sitemap generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sitemap generation failed")
		return
	}

	if urls == nil {
		urls = []string{}
	}
	s.metrics.generated(kindSitemap)
	writeJSON(w, http.StatusOK, SitemapResponse{
		URLs:    urls,
		Entries: artifact.Entries(urls, now),
		XML:     doc,
	})
}

// ----------------------------------------------------------------------------
// POST /api/schema
// ----------------------------------------------------------------------------

func (s *Server) handleAPISchema(w http.ResponseWriter, r *http.Request, _ session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req artifact.SchemaInput
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := artifact.Schema(req)
	if err != nil {
		s.logger.Error("Schema generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "schema generation failed")
		return
	}

	s.metrics.generated(kindSchema)
	writeJSON(w, http.StatusOK, map[string]string{"jsonld": out})
}

// ----------------------------------------------------------------------------
// POST /api/meta
// ----------------------------------------------------------------------------

func (s *Server) handleAPIMeta(w http.ResponseWriter, r *http.Request, _ session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MetaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.metrics.generated(kindMeta)
	writeJSON(w, http.StatusOK, map[string]string{"html": artifact.Meta(req.input())})
}

// ----------------------------------------------------------------------------
// Shared
// ----------------------------------------------------------------------------

// scan runs discovery for the session and records the outcome on it.
func (s *Server) scan(r *http.Request, st session.State, rawURL string) (*discovery.Result, error) {
	scanner, _, _ := s.current()
	seed := weburl.Normalize(rawURL)

	result, err := scanner.Discover(r.Context(), seed)
	if err != nil {
		s.sessions.Update(st.ID, func(state *session.State) {
			state.ApplyScanError(seed)
		})
		return nil, err
	}

	s.sessions.Update(st.ID, func(state *session.State) {
		state.ApplyScan(result.Seed, result.Candidates, result.Insufficient)
	})
	return result, nil
}

func botNames(bots []artifact.Bot) []string {
	names := make([]string, 0, len(bots))
	for _, b := range bots {
		names = append(names, b.Name)
	}
	return names
}

// decodeJSON reads a size-limited JSON body into v. On failure it writes a
// 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeFetchError maps a fetch failure to 502 and anything else to 500.
func writeFetchError(w http.ResponseWriter, err error) {
	var fetchErr *discovery.FetchError
	if errors.As(err, &fetchErr) {
		writeError(w, http.StatusBadGateway, fetchErr.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON marshals v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
