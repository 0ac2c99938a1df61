package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

const reducedMotionBlock = `

@media (prefers-reduced-motion: reduce) {
    * { transition: none; animation: none; }
}
`

// DesignAgent modernizes design-system usage: color-scheme declarations and
// a reduced-motion escape hatch.
type DesignAgent struct{}

func (a *DesignAgent) ID() string { return "design-agent" }

func (a *DesignAgent) Capability() capability.Capability { return capability.Design }

func (a *DesignAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	switch asset.ClassOf(req.AssetKey) {
	case asset.ClassCSS:
		if !strings.Contains(content, "color-scheme") {
			if next, ok := insertAfterRootOpen(content, "color-scheme: light dark;"); ok {
				content = next
			} else {
				content = ":root {\n    color-scheme: light dark;\n}\n\n" + content
			}
			notes = append(notes, "declared color-scheme support")
		}
		if !strings.Contains(content, "prefers-reduced-motion") {
			content += reducedMotionBlock
			notes = append(notes, "added reduced-motion escape hatch")
		}
	case asset.ClassHTML:
		if !strings.Contains(content, "name=\"color-scheme\"") {
			if next, ok := insertBeforeHeadClose(content,
				"    <meta name=\"color-scheme\" content=\"light dark\">\n"); ok {
				content = next
				notes = append(notes, "declared color-scheme support")
			}
		}
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}
