package nbsite

import (
	"golang.org/x/text/cases"
)

// collisionTracker remembers which source produced each output in a run.
// Output names are compared case-folded: on case-insensitive filesystems
// Intro.html and intro.html are the same file.
type collisionTracker struct {
	fold cases.Caser
	seen map[string]string // folded output -> source
}

func newCollisionTracker() *collisionTracker {
	return &collisionTracker{
		fold: cases.Fold(),
		seen: make(map[string]string),
	}
}

// record notes that source produced output. When an earlier source in the
// run produced the same output, the collision is returned.
func (t *collisionTracker) record(output, source string) (Collision, bool) {
	key := t.fold.String(output)
	prev, ok := t.seen[key]
	t.seen[key] = source
	if !ok {
		return Collision{}, false
	}
	return Collision{Output: output, Source: source, Previous: prev}, true
}
