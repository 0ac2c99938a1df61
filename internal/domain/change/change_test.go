package change_test

import (
	"testing"

	"github.com/stewardhq/steward/internal/domain/change"
)

func TestStatusIsTerminal(t *testing.T) {
	terminal := []change.Status{change.StatusCommitted, change.StatusRolledBack, change.StatusFailed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	if change.StatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
}

func TestCommitAndRestoreMarkers(t *testing.T) {
	rec := &change.ChangeRecord{Status: change.StatusPending, BeforeSeq: 0}
	if rec.WasCommitted() || rec.WasRestored() {
		t.Fatal("fresh record must be neither committed nor restored")
	}

	rec.CommittedSeq = 1
	rec.Status = change.StatusCommitted
	if !rec.WasCommitted() {
		t.Fatal("expected committed marker after commit seq set")
	}

	rec.RestoredSeq = 2
	rec.Status = change.StatusRolledBack
	if !rec.WasRestored() {
		t.Fatal("expected restored marker after restore seq set")
	}
}
