package replay

import (
	"sync"

	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
)

// Sequence is the append-only frame timeline shared between the
// ingestion chain and the playback side. Frames are fully built before
// they are appended and immutable afterwards, so readers only ever see
// the current length plus finished frames. Indices beyond the current
// length mean "not yet available", never an error.
type Sequence struct {
	mu     sync.RWMutex
	frames []*model.Frame
}

func NewSequence() *Sequence {
	return &Sequence{frames: make([]*model.Frame, 0)}
}

// Append grows the sequence. Callers guarantee ascending, non
// overlapping timestamps (enforced by the synthesizer).
func (s *Sequence) Append(frames ...*model.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frames...)
}

func (s *Sequence) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}

// At returns the frame at idx or nil when idx is out of range.
func (s *Sequence) At(idx int) *model.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx < 0 || idx >= len(s.frames) {
		return nil
	}
	return s.frames[idx]
}

func (s *Sequence) Last() *model.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}
