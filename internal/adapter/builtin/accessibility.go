package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

// AccessibilityAgent raises page accessibility: a document language tag and
// explicit empty alt attributes on undescribed images.
type AccessibilityAgent struct{}

func (a *AccessibilityAgent) ID() string { return "accessibility-agent" }

func (a *AccessibilityAgent) Capability() capability.Capability { return capability.Accessibility }

func (a *AccessibilityAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	if asset.ClassOf(req.AssetKey) == asset.ClassHTML {
		if strings.Contains(content, "<html>") && !strings.Contains(content, "lang=") {
			content = strings.Replace(content, "<html>", "<html lang=\"en\">", 1)
			notes = append(notes, "declared document language")
		}
		if strings.Contains(content, "<img") && !strings.Contains(content, "alt=") {
			content = strings.ReplaceAll(content, "<img", "<img alt=\"\"")
			notes = append(notes, "marked undescribed images decorative")
		}
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}
