// Package asset defines the managed Asset entity and its immutable Snapshot.
package asset

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Class groups assets by content kind for capability targeting.
type Class string

const (
	ClassHTML  Class = "html"
	ClassCSS   Class = "css"
	ClassJS    Class = "js"
	ClassOther Class = "other"
)

// Asset holds the current content for one managed key. Content is opaque
// bytes; mutation happens only through the orchestrator's seed, commit, and
// rollback paths.
type Asset struct {
	Key       string    `json:"key"`
	Content   []byte    `json:"content"`
	Seq       int64     `json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is one immutable entry in an asset's version history. Sequence
// numbers per asset are strictly increasing and gapless, starting at 0.
type Snapshot struct {
	Key       string    `json:"key"`
	Seq       int64     `json:"seq"`
	Content   []byte    `json:"content"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSnapshot builds a snapshot with its content checksum filled in.
func NewSnapshot(key string, seq int64, content []byte, at time.Time) Snapshot {
	return Snapshot{
		Key:       key,
		Seq:       seq,
		Content:   append([]byte(nil), content...),
		Checksum:  Checksum(content),
		CreatedAt: at,
	}
}

// Checksum returns the BLAKE2b-256 hex digest of content.
func Checksum(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ValidateKey checks that key is a usable asset identifier: non-empty,
// relative, and free of parent traversal.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("asset key is required")
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("asset key must be relative, got %q", key)
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("asset key must not traverse outside the asset root, got %q", key)
	}
	return nil
}

// ClassOf derives the asset class from the key's extension.
func ClassOf(key string) Class {
	switch strings.ToLower(path.Ext(key)) {
	case ".html", ".htm":
		return ClassHTML
	case ".css":
		return ClassCSS
	case ".js", ".mjs":
		return ClassJS
	default:
		return ClassOther
	}
}
