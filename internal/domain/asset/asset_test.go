package asset_test

import (
	"testing"
	"time"

	"github.com/stewardhq/steward/internal/domain/asset"
)

func TestValidateKey(t *testing.T) {
	valid := []string{"index.html", "assets/css/style.css", "js/app.js"}
	for _, key := range valid {
		if err := asset.ValidateKey(key); err != nil {
			t.Fatalf("expected %q to be valid, got %v", key, err)
		}
	}

	invalid := []string{"", "/etc/passwd", "../outside.html", "a/../../b"}
	for _, key := range invalid {
		if err := asset.ValidateKey(key); err == nil {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestClassOf(t *testing.T) {
	cases := []struct {
		key  string
		want asset.Class
	}{
		{"index.html", asset.ClassHTML},
		{"pages/about.HTM", asset.ClassHTML},
		{"style.css", asset.ClassCSS},
		{"app.js", asset.ClassJS},
		{"worker.mjs", asset.ClassJS},
		{"readme.txt", asset.ClassOther},
		{"Makefile", asset.ClassOther},
	}
	for _, tc := range cases {
		if got := asset.ClassOf(tc.key); got != tc.want {
			t.Fatalf("ClassOf(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestNewSnapshotChecksum(t *testing.T) {
	content := []byte("v0")
	snap := asset.NewSnapshot("index.html", 0, content, time.Now())

	if snap.Checksum == "" {
		t.Fatal("expected checksum to be set")
	}
	if snap.Checksum != asset.Checksum([]byte("v0")) {
		t.Fatalf("checksum mismatch: %s", snap.Checksum)
	}
	if asset.Checksum([]byte("v1")) == snap.Checksum {
		t.Fatal("expected different content to produce a different checksum")
	}

	// The snapshot owns its content copy.
	content[0] = 'x'
	if string(snap.Content) != "v0" {
		t.Fatalf("expected snapshot content to be isolated from caller mutation, got %q", snap.Content)
	}
}
