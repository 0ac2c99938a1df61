package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

// UIAgent polishes presentation scaffolding: a shared transition custom
// property and responsive fallbacks for stylesheets, theme-color metadata
// for pages.
type UIAgent struct{}

func (a *UIAgent) ID() string { return "ui-agent" }

func (a *UIAgent) Capability() capability.Capability { return capability.UI }

func (a *UIAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	switch asset.ClassOf(req.AssetKey) {
	case asset.ClassCSS:
		if !strings.Contains(content, "transition") {
			if next, ok := insertAfterRootOpen(content,
				"--transition-smooth: all 0.3s cubic-bezier(0.4, 0, 0.2, 1);"); ok {
				content = next
				notes = append(notes, "added shared transition custom property")
			}
		}
		if !strings.Contains(content, "@media") {
			content += "\n\n/* responsive fallbacks */\n@media (max-width: 768px) {\n" +
				"    body { padding: 0 1rem; }\n}\n"
			notes = append(notes, "added responsive fallback block")
		}
	case asset.ClassHTML:
		if !strings.Contains(content, "theme-color") {
			if next, ok := insertBeforeHeadClose(content,
				"    <meta name=\"theme-color\" content=\"#00d4ff\">\n"); ok {
				content = next
				notes = append(notes, "added theme-color meta")
			}
		}
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}
