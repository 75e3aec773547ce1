package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/c360studio/authorityguard/artifact"
	"github.com/c360studio/authorityguard/auth"
	"github.com/c360studio/authorityguard/session"
	"github.com/c360studio/authorityguard/source/discovery"
	"github.com/c360studio/authorityguard/source/inspect"
)

// generateParam marks a submitted artifact form, so unchecked boxes can be
// told apart from a first visit that shows the defaults.
const generateParam = "generate"

type loginView struct {
	Email string
}

type botOption struct {
	Name    string
	Label   string
	Checked bool
}

type robotsView struct {
	Bots   []botOption
	Output string
}

type sitemapView struct {
	SeedURL      string
	UseManual    bool
	URLs         []string
	ManualFields []string
	Output       string
}

type schemaView struct {
	Input  artifact.SchemaInput
	Types  []string
	Output string
}

type metaView struct {
	Input      artifact.MetaInput
	InspectURL string
	Page       *inspect.Page
	Output     string
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/robots", http.StatusSeeOther)
}

// ----------------------------------------------------------------------------
// GET|POST /login, POST /logout
// ----------------------------------------------------------------------------

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if st, ok := s.currentSession(r); ok && st.LoggedIn {
			http.Redirect(w, r, "/robots", http.StatusSeeOther)
			return
		}
		s.render(w, http.StatusOK, "login", pageData{Title: "Login", Content: loginView{}})

	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		key := r.PostFormValue("key")

		if err := s.login(r, email, key); err != nil {
			msg := "Invalid access key."
			if errors.Is(err, auth.ErrEmailRequired) {
				msg = "Email is required."
			}
			s.render(w, http.StatusUnauthorized, "login", pageData{
				Title:   "Login",
				Notice:  &session.Notice{Level: session.LevelError, Message: msg},
				Content: loginView{Email: email},
			})
			return
		}

		s.startSession(w, r, email)
		http.Redirect(w, r, "/robots", http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if st, ok := s.currentSession(r); ok {
		s.sessions.Delete(st.ID)
	}
	s.clearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ----------------------------------------------------------------------------
// GET /robots
// ----------------------------------------------------------------------------

// handleRobotsPage shows the bot checkboxes, all checked on a first visit.
func (s *Server) handleRobotsPage(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, _, bots := s.current()
	q := r.URL.Query()

	allow := botNames(bots)
	if q.Has(generateParam) {
		allow = q["bot"]
	}
	checked := make(map[string]bool, len(allow))
	for _, name := range allow {
		checked[name] = true
	}

	view := robotsView{Output: artifact.Robots(bots, allow)}
	for _, b := range bots {
		view.Bots = append(view.Bots, botOption{Name: b.Name, Label: b.Label, Checked: checked[b.Name]})
	}

	s.metrics.generated(kindRobots)
	s.render(w, http.StatusOK, "robots", s.pageData(st, "Robots.txt Architect", view))
}

// ----------------------------------------------------------------------------
// GET /sitemap, POST /sitemap/scan, POST /sitemap/manual
// ----------------------------------------------------------------------------

func (s *Server) handleSitemapPage(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view := sitemapView{
		SeedURL:      st.SeedURL,
		UseManual:    st.UseManual,
		URLs:         st.SitemapURLs,
		ManualFields: make([]string, artifact.MaxManualURLs),
	}
	view.ManualFields[0] = st.SeedURL

	if len(st.SitemapURLs) > 0 {
		out, err := artifact.Sitemap(st.SitemapURLs, s.now())
		if err != nil {
			s.logger.Error("Sitemap generation failed", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		view.Output = out
		s.metrics.generated(kindSitemap)
	}

	s.render(w, http.StatusOK, "sitemap", s.pageData(st, "Sitemap Generator", view))
}

// handleSitemapScan runs a scan and redirects back to the sitemap page with
// a notice describing the outcome.
func (s *Server) handleSitemapScan(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	result, err := s.scan(r, st, r.PostFormValue("url"))
	s.sessions.Update(st.ID, func(state *session.State) {
		switch {
		case err != nil:
			state.Flash(session.LevelError, "Scan failed: "+scanFailure(err))
		case result.Insufficient:
			state.Flash(session.LevelWarning, "Auto-scan found few links. Switching to manual.")
		default:
			state.Flash(session.LevelSuccess, fmt.Sprintf("Found %d URLs.", len(result.Candidates)))
		}
	})

	http.Redirect(w, r, "/sitemap", http.StatusSeeOther)
}

func (s *Server) handleSitemapManual(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	inputs := make([]string, 0, artifact.MaxManualURLs)
	for i := 1; i <= artifact.MaxManualURLs; i++ {
		inputs = append(inputs, r.PostFormValue(fmt.Sprintf("url_%d", i)))
	}
	urls := artifact.ManualURLs(inputs)

	s.sessions.Update(st.ID, func(state *session.State) {
		state.ApplyManual(urls)
		state.UseManual = true
		if len(urls) == 0 {
			state.Flash(session.LevelWarning, "Enter at least one URL.")
			return
		}
		state.Flash(session.LevelSuccess, fmt.Sprintf("Sitemap built from %d URLs.", len(urls)))
	})

	http.Redirect(w, r, "/sitemap", http.StatusSeeOther)
}

// scanFailure describes a scan error without exposing internals.
func scanFailure(err error) string {
	var fetchErr *discovery.FetchError
	if !errors.As(err, &fetchErr) {
		return "unexpected error"
	}
	switch {
	case fetchErr.Timeout():
		return "the site did not respond in time"
	case fetchErr.StatusCode != 0 && fetchErr.StatusCode/100 != 2:
		return fmt.Sprintf("the site answered HTTP %d", fetchErr.StatusCode)
	case fetchErr.Err != nil:
		return fetchErr.Err.Error()
	default:
		return "unexpected error"
	}
}

// ----------------------------------------------------------------------------
// GET /schema
// ----------------------------------------------------------------------------

func (s *Server) handleSchemaPage(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	in := artifact.SchemaInput{
		Type:     q.Get("type"),
		Name:     q.Get("name"),
		Role:     q.Get("role"),
		Website:  q.Get("website"),
		Bio:      q.Get("bio"),
		LinkedIn: q.Get("linkedin"),
		Twitter:  q.Get("twitter"),
		Other:    q.Get("other"),
	}
	if in.Type == "" {
		in.Type = artifact.SchemaPerson
	}

	out, err := artifact.Schema(in)
	if err != nil {
		s.logger.Error("Schema generation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.metrics.generated(kindSchema)
	s.render(w, http.StatusOK, "schema", s.pageData(st, "Entity Schema Builder", schemaView{
		Input:  in,
		Types:  []string{artifact.SchemaPerson, artifact.SchemaOrganization},
		Output: out,
	}))
}

// ----------------------------------------------------------------------------
// GET /meta, POST /meta/inspect
// ----------------------------------------------------------------------------

func (s *Server) handleMetaPage(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	in := metaInputFromQuery(r.URL.Query())
	s.renderMeta(w, st, metaView{Input: in})
}

// handleMetaInspect fetches a page and prefills the meta form from it.
func (s *Server) handleMetaInspect(w http.ResponseWriter, r *http.Request, st session.State) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	target := r.PostFormValue("url")
	view := metaView{Input: artifact.DefaultMetaInput(), InspectURL: target}

	_, inspector, _ := s.current()
	page, err := inspector.Inspect(r.Context(), target)
	if err != nil {
		st.Notice = &session.Notice{Level: session.LevelError, Message: "Inspection failed: " + scanFailure(err)}
		s.renderMeta(w, st, view)
		return
	}

	view.Page = page
	view.Input.Title = page.Title
	view.Input.Description = page.Description
	view.Input.Keywords = page.Keywords
	view.Input.Author = page.Author
	view.Input.URL = page.Canonical
	if view.Input.URL == "" {
		view.Input.URL = page.URL
	}
	st.Notice = &session.Notice{Level: session.LevelSuccess, Message: "Form prefilled from " + page.URL + "."}
	s.renderMeta(w, st, view)
}

func (s *Server) renderMeta(w http.ResponseWriter, st session.State, view metaView) {
	view.Output = artifact.Meta(view.Input)
	s.metrics.generated(kindMeta)
	s.render(w, http.StatusOK, "meta", s.pageData(st, "SEO & Meta Tags", view))
}

func metaInputFromQuery(q url.Values) artifact.MetaInput {
	in := artifact.DefaultMetaInput()
	in.Title = q.Get("title")
	in.Description = q.Get("description")
	in.Keywords = q.Get("keywords")
	in.Author = q.Get("author")
	in.URL = q.Get("url")
	if q.Has(generateParam) {
		in.Index = q.Has("index")
		in.Follow = q.Has("follow")
		in.Canonical = q.Has("canonical")
	}
	return in
}

// pageData builds the layout data for a logged-in page. A notice already on
// st wins over the pending flash, which is consumed either way.
func (s *Server) pageData(st session.State, title string, content any) pageData {
	notice := s.sessions.TakeNotice(st.ID)
	if st.Notice != nil {
		notice = st.Notice
	}
	return pageData{
		Title:   title,
		Email:   st.Email,
		Notice:  notice,
		Content: content,
	}
}
