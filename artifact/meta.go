package artifact

import (
	"html"
	"strings"
)

// Length limits of the meta form.
const (
	MaxTitleRunes       = 60
	MaxDescriptionRunes = 300
)

// ViewportTag is emitted in every meta block.
const ViewportTag = `<meta name="viewport" content="width=device-width, initial-scale=1.0">`

// MetaInput holds the SEO and meta form.
type MetaInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Author      string `json:"author"`
	Index       bool   `json:"index"`
	Follow      bool   `json:"follow"`
	Canonical   bool   `json:"canonical"`
	URL         string `json:"url"`
}

// DefaultMetaInput returns the form defaults: indexable, followable and
// with a canonical link.
func DefaultMetaInput() MetaInput {
	return MetaInput{Index: true, Follow: true, Canonical: true}
}

// RobotsDirective renders the content of the robots meta tag.
func (in MetaInput) RobotsDirective() string {
	index, follow := "noindex", "nofollow"
	if in.Index {
		index = "index"
	}
	if in.Follow {
		follow = "follow"
	}
	return index + ", " + follow
}

// Meta renders the <head> metadata block. Values are HTML-escaped; the
// canonical link is only emitted when enabled and a URL is present.
func Meta(in MetaInput) string {
	title := truncate(strings.TrimSpace(in.Title), MaxTitleRunes)
	description := truncate(strings.TrimSpace(in.Description), MaxDescriptionRunes)

	lines := []string{
		"<title>" + html.EscapeString(title) + "</title>",
		metaTag("description", description),
		metaTag("keywords", strings.TrimSpace(in.Keywords)),
		metaTag("author", strings.TrimSpace(in.Author)),
		metaTag("robots", in.RobotsDirective()),
		ViewportTag,
	}

	if href := strings.TrimSpace(in.URL); in.Canonical && href != "" {
		lines = append(lines, `<link rel="canonical" href="`+html.EscapeString(href)+`">`)
	}

	return strings.Join(lines, "\n")
}

func metaTag(name, content string) string {
	return `<meta name="` + name + `" content="` + html.EscapeString(content) + `">`
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
