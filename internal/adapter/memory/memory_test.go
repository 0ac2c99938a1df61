package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/domain"
	"github.com/stewardhq/steward/internal/domain/capability"
	"github.com/stewardhq/steward/internal/domain/change"
)

func TestAssetStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewAssetStore()

	if err := store.Set(ctx, "index.html", []byte("<html></html>")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "index.html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "<html></html>" {
		t.Errorf("content = %q, want %q", got, "<html></html>")
	}
}

func TestAssetStoreGetUnknown(t *testing.T) {
	store := NewAssetStore()

	_, err := store.Get(context.Background(), "missing.css")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
}

func TestAssetStoreCopiesContent(t *testing.T) {
	ctx := context.Background()
	store := NewAssetStore()

	in := []byte("body {}")
	if err := store.Set(ctx, "style.css", in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in[0] = 'X'

	out, err := store.Get(ctx, "style.css")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(out) != "body {}" {
		t.Errorf("stored content aliased caller buffer: %q", out)
	}

	out[0] = 'Y'
	again, _ := store.Get(ctx, "style.css")
	if string(again) != "body {}" {
		t.Errorf("returned content aliased store state: %q", again)
	}
}

func TestAssetStoreKeysSorted(t *testing.T) {
	ctx := context.Background()
	store := NewAssetStore()

	for _, key := range []string{"main.js", "index.html", "style.css"} {
		if err := store.Set(ctx, key, []byte(key)); err != nil {
			t.Fatalf("Set %s: %v", key, err)
		}
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"index.html", "main.js", "style.css"}
	if len(keys) != len(want) {
		t.Fatalf("Keys returned %d entries, want %d", len(keys), len(want))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], k)
		}
	}
}

func TestVersionLogAppendSequences(t *testing.T) {
	ctx := context.Background()
	log := NewVersionLog()

	for i := range 3 {
		snap, err := log.Append(ctx, "index.html", []byte{byte('a' + i)})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		if snap.Seq != int64(i) {
			t.Errorf("snap.Seq = %d, want %d", snap.Seq, i)
		}
	}

	// Independent counter per key.
	snap, err := log.Append(ctx, "style.css", []byte("body {}"))
	if err != nil {
		t.Fatalf("Append style.css: %v", err)
	}
	if snap.Seq != 0 {
		t.Errorf("style.css first seq = %d, want 0", snap.Seq)
	}
}

func TestVersionLogHistoryOldestFirst(t *testing.T) {
	ctx := context.Background()
	log := NewVersionLog()

	log.Append(ctx, "index.html", []byte("v0"))
	log.Append(ctx, "index.html", []byte("v1"))

	hist, err := log.History(ctx, "index.html")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("History returned %d snapshots, want 2", len(hist))
	}
	if hist[0].Seq != 0 || string(hist[0].Content) != "v0" {
		t.Errorf("hist[0] = seq %d content %q, want seq 0 content v0", hist[0].Seq, hist[0].Content)
	}
	if hist[1].Seq != 1 || string(hist[1].Content) != "v1" {
		t.Errorf("hist[1] = seq %d content %q, want seq 1 content v1", hist[1].Seq, hist[1].Content)
	}
	if hist[0].Checksum == "" || hist[0].Checksum == hist[1].Checksum {
		t.Errorf("checksums not distinct: %q vs %q", hist[0].Checksum, hist[1].Checksum)
	}
}

func TestVersionLogHistoryUnknown(t *testing.T) {
	log := NewVersionLog()

	_, err := log.History(context.Background(), "missing.js")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("History unknown = %v, want ErrNotFound", err)
	}
}

func TestVersionLogLatest(t *testing.T) {
	ctx := context.Background()
	log := NewVersionLog()

	log.Append(ctx, "index.html", []byte("v0"))
	log.Append(ctx, "index.html", []byte("v1"))

	latest, err := log.Latest(ctx, "index.html")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Seq != 1 || string(latest.Content) != "v1" {
		t.Errorf("Latest = seq %d content %q, want seq 1 content v1", latest.Seq, latest.Content)
	}

	if _, err := log.Latest(ctx, "missing.css"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Latest unknown = %v, want ErrNotFound", err)
	}
}

func TestVersionLogRestoreAppends(t *testing.T) {
	ctx := context.Background()
	log := NewVersionLog()

	orig, _ := log.Append(ctx, "index.html", []byte("v0"))
	log.Append(ctx, "index.html", []byte("v1"))

	restored, err := log.Restore(ctx, "index.html", 0)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Seq != 2 {
		t.Errorf("restored.Seq = %d, want 2", restored.Seq)
	}
	if !bytes.Equal(restored.Content, []byte("v0")) {
		t.Errorf("restored content = %q, want v0", restored.Content)
	}
	if restored.Checksum != orig.Checksum {
		t.Errorf("restored checksum %q differs from original %q", restored.Checksum, orig.Checksum)
	}

	hist, _ := log.History(ctx, "index.html")
	if len(hist) != 3 {
		t.Fatalf("history length after restore = %d, want 3", len(hist))
	}
	if string(hist[1].Content) != "v1" {
		t.Errorf("intermediate snapshot rewritten: %q", hist[1].Content)
	}
}

func TestVersionLogRestoreUnknownSeq(t *testing.T) {
	ctx := context.Background()
	log := NewVersionLog()

	log.Append(ctx, "index.html", []byte("v0"))

	for _, seq := range []int64{-1, 1, 99} {
		if _, err := log.Restore(ctx, "index.html", seq); !errors.Is(err, domain.ErrUnknownSnapshot) {
			t.Errorf("Restore seq %d = %v, want ErrUnknownSnapshot", seq, err)
		}
	}
	if _, err := log.Restore(ctx, "missing.js", 0); !errors.Is(err, domain.ErrUnknownSnapshot) {
		t.Errorf("Restore unknown key = %v, want ErrUnknownSnapshot", err)
	}
}

func newRecord(id string) *change.ChangeRecord {
	now := time.Now().UTC()
	return &change.ChangeRecord{
		ID:         id,
		AgentID:    "ui-agent",
		Capability: capability.UI,
		AssetKey:   "index.html",
		BeforeSeq:  0,
		After:      []byte("<html>v1</html>"),
		Rationale:  "added theme color",
		Status:     change.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestChangeLogCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewChangeLog()

	rec := newRecord("chg-1")
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutating the caller's record must not leak into the store.
	rec.Status = change.StatusCommitted
	rec.After[0] = 'X'

	got, err := store.Get(ctx, "chg-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != change.StatusPending {
		t.Errorf("stored status = %q, want pending", got.Status)
	}
	if string(got.After) != "<html>v1</html>" {
		t.Errorf("stored After aliased caller buffer: %q", got.After)
	}
}

func TestChangeLogCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewChangeLog()

	if err := store.Create(ctx, newRecord("chg-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, newRecord("chg-1")); err == nil {
		t.Error("Create duplicate should fail")
	}
}

func TestChangeLogUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewChangeLog()

	rec := newRecord("chg-1")
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec.Status = change.StatusCommitted
	rec.CommittedSeq = 1
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.Get(ctx, "chg-1")
	if got.Status != change.StatusCommitted || got.CommittedSeq != 1 {
		t.Errorf("updated record = status %q seq %d, want committed/1", got.Status, got.CommittedSeq)
	}
}

func TestChangeLogUpdateUnknown(t *testing.T) {
	store := NewChangeLog()

	err := store.Update(context.Background(), newRecord("ghost"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update unknown = %v, want ErrNotFound", err)
	}
}

func TestChangeLogGetUnknown(t *testing.T) {
	store := NewChangeLog()

	_, err := store.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
}

func TestChangeLogListRecent(t *testing.T) {
	ctx := context.Background()
	store := NewChangeLog()

	for _, id := range []string{"chg-1", "chg-2", "chg-3"} {
		if err := store.Create(ctx, newRecord(id)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	recent, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("ListRecent returned %d records, want 2", len(recent))
	}
	if recent[0].ID != "chg-3" || recent[1].ID != "chg-2" {
		t.Errorf("order = [%s %s], want [chg-3 chg-2]", recent[0].ID, recent[1].ID)
	}

	all, _ := store.ListRecent(ctx, 10)
	if len(all) != 3 {
		t.Errorf("ListRecent(10) returned %d records, want 3", len(all))
	}

	none, _ := store.ListRecent(ctx, 0)
	if len(none) != 0 {
		t.Errorf("ListRecent(0) returned %d records, want 0", len(none))
	}
}
