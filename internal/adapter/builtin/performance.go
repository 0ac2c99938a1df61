package builtin

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

const debounceHelper = `// debounce limits scroll-driven work
function debounce(func, wait) {
    let timeout;
    return function (...args) {
        clearTimeout(timeout);
        timeout = setTimeout(() => func(...args), wait);
    };
}

`

const visibilityPause = `
// pause animation work while the tab is hidden
document.addEventListener('visibilitychange', () => {
    if (document.hidden) {
        cancelAnimationFrame(window.__rafHandle);
    }
});
`

// PerformanceAgent trims load and runtime cost: lazy image loading and font
// preconnects for pages, scroll debouncing and hidden-tab animation pauses
// for scripts.
type PerformanceAgent struct{}

func (a *PerformanceAgent) ID() string { return "performance-agent" }

func (a *PerformanceAgent) Capability() capability.Capability { return capability.Performance }

func (a *PerformanceAgent) Propose(_ context.Context, req agent.Request) (agent.Proposal, error) {
	content := string(req.Content)
	var notes []string

	switch asset.ClassOf(req.AssetKey) {
	case asset.ClassJS:
		if strings.Contains(content, "addEventListener('scroll'") &&
			!strings.Contains(content, "debounce") {
			content = debounceHelper + content
			notes = append(notes, "added debounce helper for scroll handlers")
		}
		if strings.Contains(content, "requestAnimationFrame") &&
			!strings.Contains(content, "visibilitychange") {
			content += visibilityPause
			notes = append(notes, "paused animation frames while hidden")
		}
	case asset.ClassHTML:
		if strings.Contains(content, "<img") && !strings.Contains(content, "loading=") {
			content = strings.ReplaceAll(content, "<img", "<img loading=\"lazy\"")
			notes = append(notes, "enabled lazy image loading")
		}
		if strings.Contains(content, "fonts.googleapis.com") &&
			!strings.Contains(content, "preconnect") {
			if next, ok := insertBeforeHeadClose(content,
				"    <link rel=\"preconnect\" href=\"https://fonts.googleapis.com\">\n"+
					"    <link rel=\"preconnect\" href=\"https://fonts.gstatic.com\" crossorigin>\n"); ok {
				content = next
				notes = append(notes, "added font preconnect hints")
			}
		}
	}

	return agent.Proposal{
		Content:   []byte(content),
		Rationale: rationale(notes),
	}, nil
}
