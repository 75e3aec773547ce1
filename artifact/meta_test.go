package artifact

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMeta(t *testing.T) {
	in := DefaultMetaInput()
	in.Title = "Acme Consulting"
	in.Description = "Strategy for growing teams."
	in.Keywords = "strategy, consulting"
	in.Author = "Jo Doe"
	in.URL = "https://acme.example/"

	want := `<title>Acme Consulting</title>
<meta name="description" content="Strategy for growing teams.">
<meta name="keywords" content="strategy, consulting">
<meta name="author" content="Jo Doe">
<meta name="robots" content="index, follow">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="canonical" href="https://acme.example/">`

	if diff := cmp.Diff(want, Meta(in)); diff != "" {
		t.Errorf("Meta() mismatch (-want +got):\n%s", diff)
	}
}

func TestMeta_RobotsAndCanonical(t *testing.T) {
	tests := []struct {
		name          string
		in            MetaInput
		wantRobots    string
		wantCanonical bool
	}{
		{"noindex nofollow", MetaInput{Canonical: true, URL: "https://a.example"}, "noindex, nofollow", true},
		{"index nofollow", MetaInput{Index: true}, "index, nofollow", false},
		{"canonical disabled", MetaInput{Follow: true, URL: "https://a.example"}, "noindex, follow", false},
		{"canonical without URL", MetaInput{Canonical: true}, "noindex, nofollow", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Meta(tt.in)
			if !strings.Contains(got, `<meta name="robots" content="`+tt.wantRobots+`">`) {
				t.Errorf("robots directive %q missing:\n%s", tt.wantRobots, got)
			}
			if has := strings.Contains(got, `rel="canonical"`); has != tt.wantCanonical {
				t.Errorf("canonical present = %v, want %v", has, tt.wantCanonical)
			}
			if !strings.Contains(got, ViewportTag) {
				t.Error("viewport tag missing")
			}
		})
	}
}

func TestMeta_EscapesAndTruncates(t *testing.T) {
	got := Meta(MetaInput{
		Title:       strings.Repeat("t", 80),
		Description: `Say "hi" & <b>wave</b>`,
	})

	if !strings.Contains(got, "<title>"+strings.Repeat("t", MaxTitleRunes)+"</title>") {
		t.Errorf("title not truncated to %d runes:\n%s", MaxTitleRunes, got)
	}
	if !strings.Contains(got, `content="Say &#34;hi&#34; &amp; &lt;b&gt;wave&lt;/b&gt;"`) {
		t.Errorf("description not escaped:\n%s", got)
	}
}
