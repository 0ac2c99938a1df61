package service

import (
	"context"
	"testing"
	"time"
)

func TestLeaseTryAcquireIsExclusive(t *testing.T) {
	l := newLeaseTable()

	if !l.TryAcquire("a.html") {
		t.Fatal("first acquire should succeed")
	}
	if l.TryAcquire("a.html") {
		t.Fatal("second acquire on a held lease should fail")
	}
	if !l.TryAcquire("b.html") {
		t.Fatal("leases are per asset, b.html should be free")
	}
	if l.Held() != 2 {
		t.Fatalf("expected 2 held leases, got %d", l.Held())
	}

	l.Release("a.html")
	if !l.TryAcquire("a.html") {
		t.Fatal("released lease should be acquirable")
	}
}

func TestLeaseAcquireBlocksUntilReleased(t *testing.T) {
	l := newLeaseTable()
	if !l.TryAcquire("a.html") {
		t.Fatal("setup acquire failed")
	}

	acquired := make(chan struct{})
	go func() {
		if err := l.Acquire(context.Background(), "a.html"); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire should block while the lease is held")
	case <-time.After(10 * time.Millisecond):
	}

	l.Release("a.html")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Acquire should proceed after release")
	}
}

func TestLeaseAcquireHonorsContext(t *testing.T) {
	l := newLeaseTable()
	if !l.TryAcquire("a.html") {
		t.Fatal("setup acquire failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx, "a.html"); err == nil {
		t.Fatal("expected a context error while the lease is held")
	}
}

func TestLeaseReleaseUnheldIsNoop(t *testing.T) {
	l := newLeaseTable()
	l.Release("never-held.html")
	if l.Held() != 0 {
		t.Fatalf("expected no held leases, got %d", l.Held())
	}
}
