package evaluator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/domain/change"
)

type fakeCache struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

type countingEvaluator struct {
	inner Evaluator
	calls int
	err   error
}

func (c *countingEvaluator) Evaluate(ctx context.Context, before, after []byte) (change.EvaluationScore, error) {
	c.calls++
	if c.err != nil {
		return change.EvaluationScore{}, c.err
	}
	return c.inner.Evaluate(ctx, before, after)
}

func TestCachedHitSkipsInner(t *testing.T) {
	counting := &countingEvaluator{inner: NewHeuristic(0.5, 0.5)}
	cached := NewCached(counting, newFakeCache(), time.Minute)

	before := []byte("v0")
	after := []byte(richHTML)

	first, err := cached.Evaluate(context.Background(), before, after)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, err := cached.Evaluate(context.Background(), before, after)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if counting.calls != 1 {
		t.Errorf("expected 1 inner evaluation, got %d", counting.calls)
	}
	if first != second {
		t.Errorf("expected identical scores, got %+v and %+v", first, second)
	}
}

func TestCachedDistinctPairs(t *testing.T) {
	counting := &countingEvaluator{inner: NewHeuristic(0.5, 0.5)}
	cached := NewCached(counting, newFakeCache(), time.Minute)

	if _, err := cached.Evaluate(context.Background(), []byte("v0"), []byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Evaluate(context.Background(), []byte("v0"), []byte("b")); err != nil {
		t.Fatal(err)
	}

	if counting.calls != 2 {
		t.Errorf("distinct pairs should not share entries, got %d inner calls", counting.calls)
	}
}

func TestCachedReadFailureRecomputes(t *testing.T) {
	counting := &countingEvaluator{inner: NewHeuristic(0.5, 0.5)}
	broken := newFakeCache()
	broken.getErr = errors.New("cache down")
	cached := NewCached(counting, broken, time.Minute)

	score, err := cached.Evaluate(context.Background(), []byte("v0"), []byte("v1"))
	if err != nil {
		t.Fatalf("cache failure should not fail evaluation: %v", err)
	}
	if score.Composite <= 0 {
		t.Errorf("expected a computed score, got %+v", score)
	}
	if counting.calls != 1 {
		t.Errorf("expected inner evaluation on cache failure, got %d calls", counting.calls)
	}
}

func TestCachedWriteFailureStillReturnsScore(t *testing.T) {
	counting := &countingEvaluator{inner: NewHeuristic(0.5, 0.5)}
	broken := newFakeCache()
	broken.setErr = errors.New("cache full")
	cached := NewCached(counting, broken, time.Minute)

	if _, err := cached.Evaluate(context.Background(), []byte("v0"), []byte("v1")); err != nil {
		t.Fatalf("cache write failure should not fail evaluation: %v", err)
	}
}

func TestCachedInnerErrorPropagates(t *testing.T) {
	counting := &countingEvaluator{err: errors.New("scoring broke")}
	cached := NewCached(counting, newFakeCache(), time.Minute)

	if _, err := cached.Evaluate(context.Background(), []byte("v0"), []byte("v1")); err == nil {
		t.Error("expected inner evaluator error to propagate")
	}
}
