package agent

import (
	"fmt"
	"sync"

	"github.com/stewardhq/steward/internal/domain/capability"
)

// Factory is a constructor function that creates a new Agent instance.
type Factory func() (Agent, error)

var (
	mu        sync.RWMutex
	factories = make(map[capability.Capability]Factory)
)

// Register makes an agent factory available for a capability.
// It is typically called from an init() function in the adapter package.
func Register(c capability.Capability, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[c]; exists {
		panic(fmt.Sprintf("agent: duplicate registration for %q", c))
	}
	factories[c] = factory
}

// New creates a new Agent for the capability using the registered factory.
func New(c capability.Capability) (Agent, error) {
	mu.RLock()
	factory, ok := factories[c]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("agent: no agent registered for capability %q", c)
	}
	return factory()
}

// Available returns the capabilities with a registered agent factory.
func Available() []capability.Capability {
	mu.RLock()
	defer mu.RUnlock()

	caps := make([]capability.Capability, 0, len(factories))
	for c := range factories {
		caps = append(caps, c)
	}
	return caps
}
