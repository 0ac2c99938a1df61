// Package evaluator scores proposed asset changes on aesthetic and
// functional axes. Scores live in [0,1]; the composite drives the engine's
// accept-or-discard decision.
package evaluator

import (
	"context"
	"strings"

	"github.com/stewardhq/steward/internal/domain/change"
)

// Evaluator scores a proposed change. Implementations must be deterministic
// for a given (before, after) pair so retries and memoization are sound.
type Evaluator interface {
	Evaluate(ctx context.Context, before, after []byte) (change.EvaluationScore, error)
}

// Both subscores grow from this base as signals accumulate.
const baseScore = 0.5

// Heuristic scores content with keyword and structure proxies: styling and
// markup signals on the aesthetic axis, correctness and performance signals
// on the functional axis.
type Heuristic struct {
	aestheticWeight  float64
	functionalWeight float64
}

// NewHeuristic returns a Heuristic whose composite combines the subscores
// with the given weights. Equal weights yield the arithmetic mean.
func NewHeuristic(aestheticWeight, functionalWeight float64) *Heuristic {
	return &Heuristic{
		aestheticWeight:  aestheticWeight,
		functionalWeight: functionalWeight,
	}
}

// Evaluate scores the proposed content. Subscores are judged on the proposal
// itself; the before content does not affect them.
func (h *Heuristic) Evaluate(_ context.Context, _, after []byte) (change.EvaluationScore, error) {
	aesthetic := scoreAesthetic(after)
	functional := scoreFunctional(after)

	composite := (aesthetic*h.aestheticWeight + functional*h.functionalWeight) /
		(h.aestheticWeight + h.functionalWeight)

	return change.EvaluationScore{
		Aesthetic:  aesthetic,
		Functional: functional,
		Composite:  composite,
	}, nil
}

// scoreAesthetic measures structure and readability: modern styling,
// responsive rules, motion, semantic markup, and annotation.
func scoreAesthetic(content []byte) float64 {
	c := strings.ToLower(string(content))
	score := baseScore

	if strings.Contains(c, "var(--") || strings.Contains(c, "rgba(") {
		score += 0.1
	}
	if strings.Contains(c, "@media") || strings.Contains(c, "viewport") {
		score += 0.1
	}
	if strings.Contains(c, "transition") || strings.Contains(c, "animation") {
		score += 0.1
	}
	if strings.Contains(c, "<section") || strings.Contains(c, "<article") ||
		strings.Contains(c, "<nav") || strings.Contains(c, "<main") {
		score += 0.1
	}
	if strings.Contains(c, "/*") || strings.Contains(c, "<!--") {
		score += 0.1
	}

	return clamp(score)
}

// scoreFunctional measures correctness and performance: error handling,
// async patterns, accessibility attributes, scheduling hygiene, injection
// safety, balanced braces. Leftover console noise costs.
func scoreFunctional(content []byte) float64 {
	c := string(content)
	score := baseScore

	if strings.Contains(c, "try") || strings.Contains(c, "catch") || strings.Contains(c, "error") {
		score += 0.1
	}
	if strings.Contains(c, "async") || strings.Contains(c, "await") {
		score += 0.1
	}
	if strings.Contains(c, "aria-") || strings.Contains(c, "alt=") || strings.Contains(c, "role=") {
		score += 0.15
	}
	if strings.Contains(c, "requestAnimationFrame") || strings.Contains(c, "debounce") ||
		strings.Contains(c, "throttle") {
		score += 0.1
	}
	if strings.Contains(c, "escapeHtml") || strings.Contains(c, "sanitize") ||
		!strings.Contains(c, "innerHTML") {
		score += 0.1
	}
	if strings.Count(c, "{") == strings.Count(c, "}") {
		score += 0.05
	}
	if strings.Contains(c, "console.log") && !strings.Contains(c, "// debug") {
		score -= 0.05
	}

	return clamp(score)
}

func clamp(v float64) float64 {
	return min(1, max(0, v))
}
