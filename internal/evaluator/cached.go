package evaluator

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/change"
	"github.com/stewardhq/steward/internal/port/cache"
)

// Cached memoizes scores from the wrapped evaluator. Scores are
// deterministic per (before, after) pair, so entries never go stale; the
// TTL only bounds cache residency.
type Cached struct {
	inner Evaluator
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with score memoization through c.
func NewCached(inner Evaluator, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

// Evaluate returns the memoized score when present and delegates to the
// wrapped evaluator otherwise. Cache failures degrade to recomputation.
func (e *Cached) Evaluate(ctx context.Context, before, after []byte) (change.EvaluationScore, error) {
	key := scoreKey(before, after)

	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("evaluation cache read failed", "error", err)
	} else if ok {
		var score change.EvaluationScore
		if err := json.Unmarshal(data, &score); err == nil {
			return score, nil
		}
	}

	score, err := e.inner.Evaluate(ctx, before, after)
	if err != nil {
		return change.EvaluationScore{}, err
	}

	if data, err := json.Marshal(score); err == nil {
		if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
			slog.Warn("evaluation cache write failed", "error", err)
		}
	}

	return score, nil
}

// scoreKey identifies a (before, after) pair by its content digests.
func scoreKey(before, after []byte) string {
	return "eval:" + asset.Checksum(before) + ":" + asset.Checksum(after)
}
