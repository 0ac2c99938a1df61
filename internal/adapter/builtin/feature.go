package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

// FeatureAgent adds progressive enhancement: a noscript fallback for pages
// and a print stylesheet for stylesheets.
type FeatureAgent struct{}

func (a *FeatureAgent) ID() string { return "feature-agent" }

func (a *FeatureAgent) Capability() capability.Capability { return capability.Feature }

func (a *FeatureAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	switch asset.ClassOf(req.AssetKey) {
	case asset.ClassHTML:
		if !strings.Contains(content, "<noscript") {
			if i := strings.Index(content, "</body>"); i >= 0 {
				fallback := "    <noscript>This experience needs JavaScript enabled.</noscript>\n"
				content = content[:i] + fallback + content[i:]
				notes = append(notes, "added noscript fallback")
			}
		}
	case asset.ClassCSS:
		if !strings.Contains(content, "@media print") {
			content += "\n\n@media print {\n    nav, footer { display: none; }\n}\n"
			notes = append(notes, "added print stylesheet block")
		}
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}
