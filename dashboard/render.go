package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/c360studio/authorityguard/session"
)

// templateFS holds the page templates baked into the binary.
//
//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists every page rendered inside the shared layout.
var pageNames = []string{"login", "robots", "sitemap", "schema", "meta"}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

type templates struct {
	pages map[string]*template.Template
}

func loadTemplates() (*templates, error) {
	t := &templates{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// pageData is the view model shared by every page.
type pageData struct {
	Title   string
	Active  string
	Email   string
	Notice  *session.Notice
	Content any
}

// render executes a page into a buffer first so a template failure never
// sends a half-written page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	tmpl, ok := s.templates.pages[name]
	if !ok {
		s.logger.Error("Unknown page template", "page", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data.Active = name
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("Render page failed", "page", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
