// Package capability defines the closed set of agent capabilities.
package capability

import (
	"fmt"
	"strings"

	"github.com/stewardhq/steward/internal/domain/asset"
)

// Capability tags an agent with the kind of improvement it proposes.
// The set is closed: adding a capability is a controlled enum extension.
type Capability string

const (
	UI            Capability = "ui"
	Performance   Capability = "performance"
	Content       Capability = "content"
	Feature       Capability = "feature"
	Security      Capability = "security"
	Accessibility Capability = "accessibility"
	SEO           Capability = "seo"
	Design        Capability = "design"
)

// All returns every capability in a stable order.
func All() []Capability {
	return []Capability{UI, Performance, Content, Feature, Security, Accessibility, SEO, Design}
}

// Parse converts a config or API string into a Capability.
func Parse(s string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case UI, Performance, Content, Feature, Security, Accessibility, SEO, Design:
		return c, nil
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// DefaultPriority returns the task priority a capability's generated tasks
// carry. Higher runs first.
func (c Capability) DefaultPriority() int {
	switch c {
	case Feature, Security:
		return 8
	case Performance:
		return 7
	case UI, Accessibility:
		return 6
	default:
		return 5
	}
}

// TaskDescription returns the generated-task summary line for an asset.
func (c Capability) TaskDescription(key string) string {
	switch c {
	case UI:
		return "Refine visual styling and interaction polish for " + key
	case Performance:
		return "Reduce load and runtime cost of " + key
	case Content:
		return "Improve copy clarity and document metadata in " + key
	case Feature:
		return "Add progressive enhancement to " + key
	case Security:
		return "Harden " + key + " against common web pitfalls"
	case Accessibility:
		return "Raise accessibility of " + key
	case SEO:
		return "Improve discoverability metadata of " + key
	case Design:
		return "Modernize design system usage in " + key
	default:
		return "Improve " + key
	}
}

// ForClass returns the capabilities whose agents target the given asset
// class. HTML draws the widest set; scripts and stylesheets narrower ones.
func ForClass(class asset.Class) []Capability {
	switch class {
	case asset.ClassHTML:
		return []Capability{UI, Performance, Content, Feature, Security, Accessibility, SEO, Design}
	case asset.ClassCSS:
		return []Capability{UI, Design, Feature}
	case asset.ClassJS:
		return []Capability{Performance, Security}
	default:
		return nil
	}
}
