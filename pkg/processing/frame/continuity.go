package frame

import (
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
)

type continuityEntry struct {
	snapshot model.PositionSnapshot
	observed int // quantized timestamp of the observation
}

// ContinuityTracker remembers each driver's most recent renderable
// snapshot so a car does not vanish between samples or chunk boundaries.
// Mutated only by the synthesizer.
type ContinuityTracker struct {
	lastKnown map[string]continuityEntry
}

func NewContinuityTracker() *ContinuityTracker {
	return &ContinuityTracker{lastKnown: make(map[string]continuityEntry)}
}

// Observe records a renderable snapshot. Older observations never
// overwrite newer ones.
func (t *ContinuityTracker) Observe(driver string, snap model.PositionSnapshot, ts int) {
	if cur, ok := t.lastKnown[driver]; ok && cur.observed > ts {
		return
	}
	t.lastKnown[driver] = continuityEntry{snapshot: snap, observed: ts}
}

//nolint:whitespace // editor/linter issue
func (t *ContinuityTracker) LastKnown(driver string) (
	model.PositionSnapshot, int, bool,
) {
	entry, ok := t.lastKnown[driver]
	return entry.snapshot, entry.observed, ok
}

func (t *ContinuityTracker) Drivers() []string {
	ret := make([]string, 0, len(t.lastKnown))
	for code := range t.lastKnown {
		ret = append(ret, code)
	}
	return ret
}
