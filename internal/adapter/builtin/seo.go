package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

// SEOAgent improves discoverability metadata: a canonical link and Open
// Graph tags derived from the page title.
type SEOAgent struct{}

func (a *SEOAgent) ID() string { return "seo-agent" }

func (a *SEOAgent) Capability() capability.Capability { return capability.SEO }

func (a *SEOAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	if asset.ClassOf(req.AssetKey) == asset.ClassHTML {
		if !strings.Contains(content, "rel=\"canonical\"") {
			if next, ok := insertBeforeHeadClose(content,
				"    <link rel=\"canonical\" href=\"/"+req.AssetKey+"\">\n"); ok {
				content = next
				notes = append(notes, "added canonical link")
			}
		}
		if !strings.Contains(content, "property=\"og:title\"") {
			title := pageTitle(content, req.AssetKey)
			if next, ok := insertBeforeHeadClose(content,
				"    <meta property=\"og:title\" content=\""+title+"\">\n"+
					"    <meta property=\"og:description\" content=\""+siteDescription+"\">\n"); ok {
				content = next
				notes = append(notes, "added Open Graph metadata")
			}
		}
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}

// pageTitle extracts the document title, falling back to the asset key.
func pageTitle(content, key string) string {
	start := strings.Index(content, "<title>")
	if start < 0 {
		return key
	}
	rest := content[start+len("<title>"):]
	end := strings.Index(rest, "</title>")
	if end < 0 {
		return key
	}
	title := strings.TrimSpace(rest[:end])
	if title == "" {
		return key
	}
	return title
}
