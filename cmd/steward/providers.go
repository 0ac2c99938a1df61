package main

// Agent blank imports — each import activates a self-registering agent
// package. Add new agent providers here as they are implemented.

import (
	_ "github.com/stewardhq/steward/internal/adapter/builtin"
)
