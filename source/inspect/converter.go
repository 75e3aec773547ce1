package inspect

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// noiseTags are dropped before conversion when a page has no main/article.
var noiseTags = map[string]bool{
	"nav": true, "header": true, "footer": true, "aside": true,
	"script": true, "style": true, "noscript": true, "iframe": true,
	"object": true, "embed": true, "form": true, "button": true,
}

// headMeta is the subset of <head> an inspection reports.
type headMeta struct {
	Title       string
	Description string
	Keywords    string
	Author      string
	Canonical   string
}

// Converter renders the readable part of a page as markdown.
type Converter struct {
	converter *md.Converter
}

// NewConverter creates a new HTML to markdown converter.
func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

// Markdown converts the main content of an HTML document to markdown.
func (c *Converter) Markdown(doc *html.Node) (string, error) {
	markdown, err := c.converter.ConvertString(renderNode(mainContent(doc)))
	if err != nil {
		return "", err
	}
	return cleanMarkdown(markdown), nil
}

// parseHTML parses content, never failing on malformed markup.
func parseHTML(content []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(content))
}

// readHead collects title, meta and canonical values. Relative canonical
// links are resolved against pageURL.
func readHead(doc *html.Node, pageURL *url.URL) headMeta {
	var meta headMeta

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" && n.FirstChild != nil {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				content := strings.TrimSpace(attr(n, "content"))
				switch strings.ToLower(attr(n, "name")) {
				case "description":
					meta.Description = content
				case "keywords":
					meta.Keywords = content
				case "author":
					meta.Author = content
				}
			case "link":
				if strings.EqualFold(attr(n, "rel"), "canonical") {
					meta.Canonical = resolve(pageURL, attr(n, "href"))
				}
			case "body":
				// Head values never live in the body.
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return meta
}

// mainContent returns the first <main> or <article>, or the body with noise
// elements removed.
func mainContent(doc *html.Node) *html.Node {
	for _, tag := range []string{"main", "article"} {
		if n := findElement(doc, tag); n != nil {
			return n
		}
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && noiseTags[n.Data] {
			toRemove = append(toRemove, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(doc)
	for _, n := range toRemove {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	if body := findElement(doc, "body"); body != nil {
		return body
	}
	return doc
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

// cleanMarkdown collapses runs of blank lines and trims trailing spaces.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
