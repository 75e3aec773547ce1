package artifact

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entity types supported by the schema builder.
const (
	SchemaPerson       = "Person"
	SchemaOrganization = "Organization"
)

// Placeholders rendered for empty schema fields.
const (
	PlaceholderName        = "[Name]"
	PlaceholderWebsite     = "[Website URL]"
	PlaceholderDescription = "[Bio]"
)

// SchemaInput holds the schema builder form.
type SchemaInput struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Role     string `json:"role"` // job title for a Person, industry for an Organization
	Website  string `json:"website"`
	Bio      string `json:"bio"`
	LinkedIn string `json:"linkedin"`
	Twitter  string `json:"twitter"`
	Other    string `json:"other"`
}

// schemaDocument fixes the key order of the emitted object.
type schemaDocument struct {
	Context     string   `json:"@context"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	SameAs      []string `json:"sameAs"`
	JobTitle    *string  `json:"jobTitle,omitempty"`
	Industry    *string  `json:"industry,omitempty"`
}

// Schema renders a schema.org JSON-LD block wrapped in its script tag.
// An unknown type falls back to Person.
func Schema(in SchemaInput) (string, error) {
	doc := schemaDocument{
		Context:     "https://schema.org",
		Type:        SchemaPerson,
		Name:        orPlaceholder(in.Name, PlaceholderName),
		URL:         orPlaceholder(in.Website, PlaceholderWebsite),
		Description: orPlaceholder(in.Bio, PlaceholderDescription),
		SameAs:      []string{},
	}

	for _, social := range []string{in.LinkedIn, in.Twitter, in.Other} {
		if s := strings.TrimSpace(social); s != "" {
			doc.SameAs = append(doc.SameAs, s)
		}
	}

	role := strings.TrimSpace(in.Role)
	if strings.EqualFold(strings.TrimSpace(in.Type), SchemaOrganization) {
		doc.Type = SchemaOrganization
		doc.Industry = &role
	} else {
		doc.JobTitle = &role
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	return "<script type=\"application/ld+json\">\n" + string(out) + "\n</script>", nil
}

func orPlaceholder(value, placeholder string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return placeholder
}
