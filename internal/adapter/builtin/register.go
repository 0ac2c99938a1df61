package builtin

import (
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/port/agent"
)

func init() {
	agent.Register(capability.UI, func() (agent.Agent, error) { return &UIAgent{}, nil })
	agent.Register(capability.Performance, func() (agent.Agent, error) { return &PerformanceAgent{}, nil })
	agent.Register(capability.Content, func() (agent.Agent, error) { return &ContentAgent{}, nil })
	agent.Register(capability.Feature, func() (agent.Agent, error) { return &FeatureAgent{}, nil })
	agent.Register(capability.Security, func() (agent.Agent, error) { return &SecurityAgent{}, nil })
	agent.Register(capability.Accessibility, func() (agent.Agent, error) { return &AccessibilityAgent{}, nil })
	agent.Register(capability.SEO, func() (agent.Agent, error) { return &SEOAgent{}, nil })
	agent.Register(capability.Design, func() (agent.Agent, error) { return &DesignAgent{}, nil })
}
