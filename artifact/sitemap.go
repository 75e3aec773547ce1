package artifact

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/authorityguard/source/weburl"
)

const (
	// SitemapNamespace is the sitemaps.org schema namespace.
	SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// ChangeFreq and Priority are applied to every entry.
	ChangeFreq = "monthly"
	Priority   = "0.8"

	// MaxManualURLs is the number of URLs the manual builder accepts.
	MaxManualURLs = 5
)

// SitemapEntry is one <url> element.
type SitemapEntry struct {
	Loc        string `xml:"loc" json:"loc"`
	LastMod    string `xml:"lastmod" json:"lastmod"`
	ChangeFreq string `xml:"changefreq" json:"changefreq"`
	Priority   string `xml:"priority" json:"priority"`
}

type urlSet struct {
	XMLName xml.Name       `xml:"urlset"`
	XMLNS   string         `xml:"xmlns,attr"`
	URLs    []SitemapEntry `xml:"url"`
}

// ManualURLs normalizes a manually entered list: blank entries are skipped,
// the rest get a scheme when missing, and only the first MaxManualURLs are
// kept.
func ManualURLs(inputs []string) []string {
	urls := make([]string, 0, MaxManualURLs)
	for _, in := range inputs {
		if strings.TrimSpace(in) == "" {
			continue
		}
		urls = append(urls, weburl.Normalize(in))
		if len(urls) == MaxManualURLs {
			break
		}
	}
	return urls
}

// Entries builds one entry per URL, dated with the day of now.
func Entries(urls []string, now time.Time) []SitemapEntry {
	lastMod := now.Format(time.DateOnly)
	entries := make([]SitemapEntry, 0, len(urls))
	for _, u := range urls {
		entries = append(entries, SitemapEntry{
			Loc:        u,
			LastMod:    lastMod,
			ChangeFreq: ChangeFreq,
			Priority:   Priority,
		})
	}
	return entries
}

// Sitemap renders the sitemap XML document for urls.
func Sitemap(urls []string, now time.Time) (string, error) {
	out, err := xml.MarshalIndent(urlSet{
		XMLNS: SitemapNamespace,
		URLs:  Entries(urls, now),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sitemap: %w", err)
	}
	return xml.Header + string(out), nil
}
