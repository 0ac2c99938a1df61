// Package builtin provides the deterministic agents shipped with steward.
// Each agent applies idempotent string transforms for its capability: a
// second pass over its own output proposes no further change, and identical
// inputs always yield identical proposals.
package builtin

import "strings"

// siteDescription is the deterministic copy used for description metadata.
const siteDescription = "A continuously improved interactive experience."

// rationale joins the notes describing applied tweaks.
func rationale(notes []string) string {
	if len(notes) == 0 {
		return "no change needed"
	}
	return strings.Join(notes, "; ")
}

// insertBeforeHeadClose returns content with fragment inserted ahead of the
// closing head tag, reporting whether the tag was found.
func insertBeforeHeadClose(content, fragment string) (string, bool) {
	i := strings.Index(content, "</head>")
	if i < 0 {
		return content, false
	}
	return content[:i] + fragment + content[i:], true
}

// insertAfterRootOpen adds a declaration line right after the :root opener,
// reporting whether the opener was found.
func insertAfterRootOpen(content, decl string) (string, bool) {
	const marker = ":root {"
	i := strings.Index(content, marker)
	if i < 0 {
		return content, false
	}
	at := i + len(marker)
	return content[:at] + "\n    " + decl + content[at:], true
}
