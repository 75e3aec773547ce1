// Package inspect reads the metadata a crawler would see on a single page.
// Results prefill the meta and schema forms of the dashboard.
package inspect

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	readability "github.com/go-shiori/go-readability"

	"github.com/c360studio/authorityguard/source/discovery"
	"github.com/c360studio/authorityguard/source/weburl"
)

// MaxPreviewRunes caps the markdown preview.
const MaxPreviewRunes = 4000

// Page is what an inspection found on a page.
type Page struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Author      string `json:"author"`
	SiteName    string `json:"site_name"`
	Canonical   string `json:"canonical"`
	Markdown    string `json:"markdown"`
	Truncated   bool   `json:"truncated"`
}

// Inspector fetches and reads single pages.
type Inspector struct {
	fetcher   *discovery.Fetcher
	converter *Converter
	logger    *slog.Logger
}

// New creates an Inspector that fetches through fetcher.
func New(fetcher *discovery.Fetcher, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		fetcher:   fetcher,
		converter: NewConverter(),
		logger:    logger,
	}
}

// Inspect fetches rawURL and extracts its metadata. Fetch failures are
// returned as *discovery.FetchError.
func (i *Inspector) Inspect(ctx context.Context, rawURL string) (*Page, error) {
	target := weburl.Normalize(rawURL)

	result, err := i.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	pageURL, err := url.Parse(result.FinalURL)
	if err != nil {
		return nil, &discovery.FetchError{URL: target, StatusCode: result.StatusCode, Err: fmt.Errorf("invalid final URL: %w", err)}
	}

	page, err := i.read(result.Body, pageURL)
	if err != nil {
		return nil, &discovery.FetchError{URL: target, StatusCode: result.StatusCode, Err: err}
	}
	page.URL = target

	i.logger.Info("Page inspected",
		"url", target,
		"title", page.Title,
		"markdown_runes", len([]rune(page.Markdown)))

	return page, nil
}

// read extracts a Page from an HTML body. Explicit head metadata wins over
// what readability infers from the content.
func (i *Inspector) read(body []byte, pageURL *url.URL) (*Page, error) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	head := readHead(doc, pageURL)
	page := &Page{
		Title:       head.Title,
		Description: head.Description,
		Keywords:    head.Keywords,
		Author:      head.Author,
		Canonical:   head.Canonical,
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		i.logger.Debug("Readability extraction failed", "url", pageURL.String(), "error", err)
	} else {
		page.Title = firstNonEmpty(page.Title, article.Title)
		page.Description = firstNonEmpty(page.Description, article.Excerpt)
		page.Author = firstNonEmpty(page.Author, article.Byline)
		page.SiteName = article.SiteName
	}

	markdown, err := i.converter.Markdown(doc)
	if err != nil {
		i.logger.Debug("Markdown conversion failed", "url", pageURL.String(), "error", err)
	}
	page.Markdown, page.Truncated = truncateRunes(markdown, MaxPreviewRunes)

	return page, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, limit int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]), true
}
