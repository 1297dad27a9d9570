package sandbox

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// The description guard runs before any operation. It is a heuristic on
// the raw task text, redundant with Resolve on purpose: this catches
// intent up front, Resolve remains the authoritative gate for every
// path an operation actually touches.

var (
	// Remote URLs are legitimate in fetch/clone descriptions; their
	// extracted output paths still go through Resolve.
	urlPattern = regexp.MustCompile(`(?i)[a-z][a-z0-9+.-]*://\S+`)

	// Absolute path-like tokens: /etc/passwd, /data/contacts.json, ...
	// The first segment must start with a letter so date-like text
	// (10/20/2024) is not mistaken for a path.
	absPathPattern = regexp.MustCompile(`/[A-Za-z][A-Za-z0-9._~-]*(?:/[A-Za-z0-9._~-]+)*`)
)

// CheckDescription rejects task text containing an absolute path token
// whose first segment is not the sandbox root's. Matching is by
// pattern, not resolution: the text is parsed before any operation
// runs and may smuggle an out-of-root path as an argument.
func (r *Root) CheckDescription(text string) error {
	rootSeg := firstSegment(r.dir)
	scrubbed := urlPattern.ReplaceAllString(text, "")

	for _, tok := range absPathPattern.FindAllString(scrubbed, -1) {
		if firstSegment(tok) != rootSeg {
			return fmt.Errorf("%w: description references %s", ErrEscape, tok)
		}
	}
	return nil
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(filepath.ToSlash(p), "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}
