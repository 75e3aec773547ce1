package artifact

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2026, time.October, 19, 15, 4, 5, 0, time.UTC)

func TestSitemap(t *testing.T) {
	got, err := Sitemap([]string{"https://example.com", "https://example.com/about"}, fixedNow)
	if err != nil {
		t.Fatalf("Sitemap() error = %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://example.com</loc>
    <lastmod>2026-10-19</lastmod>
    <changefreq>monthly</changefreq>
    <priority>0.8</priority>
  </url>
  <url>
    <loc>https://example.com/about</loc>
    <lastmod>2026-10-19</lastmod>
    <changefreq>monthly</changefreq>
    <priority>0.8</priority>
  </url>
</urlset>`

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sitemap() mismatch (-want +got):\n%s", diff)
	}
}

func TestSitemap_EscapesLoc(t *testing.T) {
	got, err := Sitemap([]string{"https://example.com/a&b"}, fixedNow)
	if err != nil {
		t.Fatalf("Sitemap() error = %v", err)
	}
	if !strings.Contains(got, "<loc>https://example.com/a&amp;b</loc>") {
		t.Errorf("loc not escaped:\n%s", got)
	}
}

func TestManualURLs(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   []string
	}{
		{
			name:   "blanks skipped and schemes added",
			inputs: []string{"mysite.com", "", "  ", "http://mysite.com/services", "mysite.com/contact"},
			want:   []string{"https://mysite.com", "http://mysite.com/services", "https://mysite.com/contact"},
		},
		{
			name:   "at most five",
			inputs: []string{"a.com", "b.com", "c.com", "d.com", "e.com", "f.com"},
			want:   []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com", "https://e.com"},
		},
		{
			name:   "all blank",
			inputs: []string{"", " "},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ManualURLs(tt.inputs)); diff != "" {
				t.Errorf("ManualURLs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntries(t *testing.T) {
	entries := Entries([]string{"https://example.com"}, fixedNow)
	want := []SitemapEntry{{
		Loc:        "https://example.com",
		LastMod:    "2026-10-19",
		ChangeFreq: "monthly",
		Priority:   "0.8",
	}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
