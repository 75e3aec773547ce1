package artifact

import (
	"strings"
)

// RobotsHeader is the comment line every generated robots.txt starts with.
const RobotsHeader = "# Generated by LLMO Authority Guard"

// Bot is an AI crawler a robots.txt can explicitly allow.
type Bot struct {
	// Name is the User-agent token.
	Name string `json:"name" yaml:"name"`
	// Label describes the operator for the dashboard.
	Label string `json:"label" yaml:"label"`
}

// KnownBots lists the built-in crawlers in output order.
var KnownBots = []Bot{
	{Name: "GPTBot", Label: "OpenAI"},
	{Name: "CCBot", Label: "Common Crawl"},
	{Name: "PerplexityBot", Label: "Perplexity"},
	{Name: "Google-Extended", Label: "Google"},
}

// BotCatalog returns KnownBots followed by extra bots whose names are not
// already present.
func BotCatalog(extra []Bot) []Bot {
	catalog := make([]Bot, 0, len(KnownBots)+len(extra))
	seen := make(map[string]bool, len(KnownBots)+len(extra))
	for _, b := range append(append([]Bot{}, KnownBots...), extra...) {
		name := strings.TrimSpace(b.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		catalog = append(catalog, Bot{Name: name, Label: b.Label})
	}
	return catalog
}

// Robots renders a robots.txt body. The wildcard block always comes first,
// then one block per catalog bot named in allow, in catalog order. Names not
// in the catalog are ignored.
func Robots(catalog []Bot, allow []string) string {
	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[strings.TrimSpace(name)] = true
	}

	var sb strings.Builder
	sb.WriteString(RobotsHeader + "\n\n")
	writeAllowBlock(&sb, "*")
	for _, bot := range catalog {
		if allowed[bot.Name] {
			writeAllowBlock(&sb, bot.Name)
		}
	}
	return sb.String()
}

func writeAllowBlock(sb *strings.Builder, agent string) {
	sb.WriteString("User-agent: " + agent + "\n")
	sb.WriteString("Allow: /\n\n")
}
