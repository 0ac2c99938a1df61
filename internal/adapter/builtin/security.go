package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

// SecurityAgent hardens assets against common web pitfalls: reverse
// tabnabbing on external links, sloppy-mode scripts.
type SecurityAgent struct{}

func (a *SecurityAgent) ID() string { return "security-agent" }

func (a *SecurityAgent) Capability() capability.Capability { return capability.Security }

func (a *SecurityAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	switch asset.ClassOf(req.AssetKey) {
	case asset.ClassHTML:
		if strings.Contains(content, "target=\"_blank\"") &&
			!strings.Contains(content, "noopener") {
			content = strings.ReplaceAll(content,
				"target=\"_blank\"",
				"target=\"_blank\" rel=\"noopener noreferrer\"")
			notes = append(notes, "added rel=noopener to external links")
		}
	case asset.ClassJS:
		if !strings.Contains(content, "\"use strict\"") &&
			!strings.Contains(content, "'use strict'") {
			content = "\"use strict\";\n\n" + content
			notes = append(notes, "enabled strict mode")
		}
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}
