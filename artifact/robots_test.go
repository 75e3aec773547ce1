package artifact

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRobots(t *testing.T) {
	tests := []struct {
		name  string
		allow []string
		want  string
	}{
		{
			name:  "wildcard only",
			allow: nil,
			want:  "# Generated by LLMO Authority Guard\n\nUser-agent: *\nAllow: /\n\n",
		},
		{
			name:  "only GPTBot",
			allow: []string{"GPTBot"},
			want: "# Generated by LLMO Authority Guard\n\n" +
				"User-agent: *\nAllow: /\n\n" +
				"User-agent: GPTBot\nAllow: /\n\n",
		},
		{
			name:  "catalog order wins over request order",
			allow: []string{"Google-Extended", "CCBot", "GPTBot", "PerplexityBot"},
			want: "# Generated by LLMO Authority Guard\n\n" +
				"User-agent: *\nAllow: /\n\n" +
				"User-agent: GPTBot\nAllow: /\n\n" +
				"User-agent: CCBot\nAllow: /\n\n" +
				"User-agent: PerplexityBot\nAllow: /\n\n" +
				"User-agent: Google-Extended\nAllow: /\n\n",
		},
		{
			name:  "unknown bots ignored",
			allow: []string{"EvilBot", "CCBot"},
			want: "# Generated by LLMO Authority Guard\n\n" +
				"User-agent: *\nAllow: /\n\n" +
				"User-agent: CCBot\nAllow: /\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Robots(KnownBots, tt.allow)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Robots() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRobots_OnlyGPTBotHasTwoBlocks(t *testing.T) {
	got := Robots(KnownBots, []string{"GPTBot"})
	if n := strings.Count(got, "User-agent:"); n != 2 {
		t.Fatalf("expected 2 User-agent blocks, got %d", n)
	}
	if n := strings.Count(got, "Allow: /"); n != 2 {
		t.Fatalf("expected 2 Allow lines, got %d", n)
	}
}

func TestBotCatalog(t *testing.T) {
	catalog := BotCatalog([]Bot{
		{Name: "ClaudeBot", Label: "Anthropic"},
		{Name: "GPTBot", Label: "duplicate"},
		{Name: "  "},
	})

	var names []string
	for _, b := range catalog {
		names = append(names, b.Name)
	}
	want := []string{"GPTBot", "CCBot", "PerplexityBot", "Google-Extended", "ClaudeBot"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("BotCatalog() mismatch (-want +got):\n%s", diff)
	}

	got := Robots(catalog, []string{"ClaudeBot"})
	if !strings.HasSuffix(got, "User-agent: ClaudeBot\nAllow: /\n\n") {
		t.Errorf("extra bot block missing:\n%s", got)
	}
}
