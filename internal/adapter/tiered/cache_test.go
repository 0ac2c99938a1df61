package tiered_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/adapter/tiered"
	"github.com/stewardhq/steward/internal/domain/asset"
	"github.com/stewardhq/steward/internal/domain/change"
)

// tierStub is an inspectable in-memory tier.
type tierStub struct {
	data map[string][]byte
}

func newTierStub() *tierStub {
	return &tierStub{data: make(map[string][]byte)}
}

func (s *tierStub) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *tierStub) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *tierStub) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

// scoreEntry builds the cache key and payload the memoizing evaluator
// stores for a scored (before, after) pair.
func scoreEntry(t *testing.T, before, after string, composite float64) (string, []byte) {
	t.Helper()
	key := "eval:" + asset.Checksum([]byte(before)) + ":" + asset.Checksum([]byte(after))
	data, err := json.Marshal(change.EvaluationScore{
		Aesthetic:  composite,
		Functional: composite,
		Composite:  composite,
	})
	if err != nil {
		t.Fatalf("marshal score: %v", err)
	}
	return key, data
}

func TestL1HitSkipsL2(t *testing.T) {
	l1, l2 := newTierStub(), newTierStub()
	c := tiered.New(l1, l2, 5*time.Minute)

	key, payload := scoreEntry(t, "body{}", "body{color:var(--fg)}", 0.75)
	l1.data[key] = payload

	got, found, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected L1 hit")
	}
	var score change.EvaluationScore
	if err := json.Unmarshal(got, &score); err != nil {
		t.Fatalf("unmarshal cached score: %v", err)
	}
	if score.Composite != 0.75 {
		t.Fatalf("expected composite 0.75, got %v", score.Composite)
	}
}

func TestL2HitBackfillsL1(t *testing.T) {
	l1, l2 := newTierStub(), newTierStub()
	c := tiered.New(l1, l2, 5*time.Minute)

	// Score computed by another instance landed only in the shared tier.
	key, payload := scoreEntry(t, "<html>", "<html lang=\"en\">", 0.6)
	l2.data[key] = payload

	got, found, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected L2 hit")
	}
	if string(got) != string(payload) {
		t.Fatalf("expected %s, got %s", payload, got)
	}

	backfilled, ok := l1.data[key]
	if !ok {
		t.Fatal("expected L1 backfill after L2 hit")
	}
	if string(backfilled) != string(payload) {
		t.Fatalf("expected backfilled %s, got %s", payload, backfilled)
	}
}

func TestMissInBothTiers(t *testing.T) {
	c := tiered.New(newTierStub(), newTierStub(), 5*time.Minute)

	key, _ := scoreEntry(t, "a", "b", 0)
	_, found, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected miss for unscored pair")
	}
}

func TestSetWritesBothTiers(t *testing.T) {
	l1, l2 := newTierStub(), newTierStub()
	c := tiered.New(l1, l2, 5*time.Minute)

	key, payload := scoreEntry(t, "img", "img loading=\"lazy\"", 0.7)
	if err := c.Set(context.Background(), key, payload, time.Minute); err != nil {
		t.Fatal(err)
	}

	if _, ok := l1.data[key]; !ok {
		t.Fatal("expected score in L1")
	}
	if _, ok := l2.data[key]; !ok {
		t.Fatal("expected score in L2")
	}
}

func TestDeleteEvictsBothTiers(t *testing.T) {
	l1, l2 := newTierStub(), newTierStub()
	c := tiered.New(l1, l2, 5*time.Minute)

	key, payload := scoreEntry(t, "x", "y", 0.5)
	l1.data[key] = payload
	l2.data[key] = payload

	if err := c.Delete(context.Background(), key); err != nil {
		t.Fatal(err)
	}

	if _, ok := l1.data[key]; ok {
		t.Fatal("expected eviction from L1")
	}
	if _, ok := l2.data[key]; ok {
		t.Fatal("expected eviction from L2")
	}
}
