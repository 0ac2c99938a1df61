package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

// ContentAgent tidies copy and document metadata: a description meta for
// pages, and blank-line normalization everywhere.
type ContentAgent struct{}

func (a *ContentAgent) ID() string { return "content-agent" }

func (a *ContentAgent) Capability() capability.Capability { return capability.Content }

func (a *ContentAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	if asset.ClassOf(req.AssetKey) == asset.ClassHTML &&
		!strings.Contains(content, "name=\"description\"") {
		if next, ok := insertBeforeHeadClose(content,
			"    <meta name=\"description\" content=\""+siteDescription+"\">\n"); ok {
			content = next
			notes = append(notes, "added description meta")
		}
	}

	if collapsed := collapseBlankRuns(content); collapsed != content {
		content = collapsed
		notes = append(notes, "collapsed repeated blank lines")
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}

// collapseBlankRuns reduces runs of three or more newlines to two, leaving
// at most one blank line between blocks.
func collapseBlankRuns(content string) string {
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}
	return content
}
