package frame

import (
	"errors"
	"math"
	"sort"

	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
)

// DefaultLookahead bounds the gap filling search (seconds of race time).
// There is no authoritative value for this; a few seconds covers a
// skipped sample or the opening samples of the next lap.
const DefaultLookahead = 5

// ErrChunkRegression signals a chunk whose timestamps fall behind the
// already synthesized timeline. This is a data source defect and is not
// silently corrected.
var ErrChunkRegression = errors.New("chunk timestamps regress behind synthesized timeline")

// FrameAppender receives finished frame batches in ascending timestamp order.
type FrameAppender interface {
	Append(frames ...*model.Frame)
}

// DriverSink gets told about every driver code seen in a chunk.
type DriverSink interface {
	Register(code string)
}

// Synthesizer groups telemetry samples into per-second multi driver
// frames and stitches successive chunks into one monotonic timeline.
type Synthesizer struct {
	appender   FrameAppender
	drivers    DriverSink
	continuity *ContinuityTracker
	lookahead  int
	// first free timestamp slot after all previously synthesized chunks;
	// raw cumulative times of the next chunk are shifted by this value
	offset int
}

type Option func(s *Synthesizer)

func WithAppender(a FrameAppender) Option {
	return func(s *Synthesizer) { s.appender = a }
}

func WithDriverSink(d DriverSink) Option {
	return func(s *Synthesizer) { s.drivers = d }
}

// WithLookahead sets the gap filling window in seconds.
func WithLookahead(secs int) Option {
	return func(s *Synthesizer) { s.lookahead = secs }
}

func NewSynthesizer(opts ...Option) *Synthesizer {
	ret := &Synthesizer{
		continuity: NewContinuityTracker(),
		lookahead:  DefaultLookahead,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Offset returns the time offset applied to the next chunk.
func (s *Synthesizer) Offset() int { return s.offset }

// ProcessChunk turns one chunk of normalized samples into frames and
// appends them to the frame sequence. Samples are bucketed by their
// offset-adjusted cumulative time rounded to the nearest whole second;
// within a bucket the last sample per driver wins. Returns the appended
// batch.
func (s *Synthesizer) ProcessChunk(samples []model.TelemetrySample) ([]*model.Frame, error) {
	buckets := make(map[int]*model.Frame)
	observations := make(map[string]continuityEntry)

	for i := range samples {
		sample := &samples[i]
		ts := int(math.Round(sample.CumulativeTime)) + s.offset

		f, ok := buckets[ts]
		if !ok {
			f = &model.Frame{
				Timestamp: ts,
				Positions: make(map[string]model.PositionSnapshot),
			}
			buckets[ts] = f
		}
		f.Lap = sample.Lap
		f.TimeInLap = sample.TimeInLap

		if s.drivers != nil {
			s.drivers.Register(sample.Driver)
		}
		if !sample.Renderable {
			continue
		}
		snap := model.PositionSnapshot{
			X:        sample.X,
			Y:        sample.Y,
			Position: sample.Position,
			Compound: sample.Compound,
			Speed:    sample.Speed,
			Lap:      sample.Lap,
		}
		f.Positions[sample.Driver] = snap
		if cur, seen := observations[sample.Driver]; !seen || ts >= cur.observed {
			observations[sample.Driver] = continuityEntry{snapshot: snap, observed: ts}
		}
	}

	if len(buckets) == 0 {
		// offset stays untouched for an empty chunk
		return nil, nil
	}

	batch := make([]*model.Frame, 0, len(buckets))
	for _, f := range buckets {
		batch = append(batch, f)
	}
	sort.Slice(batch, func(i, j int) bool {
		return batch[i].Timestamp < batch[j].Timestamp
	})

	if batch[0].Timestamp < s.offset {
		return nil, ErrChunkRegression
	}

	s.fillGaps(batch)

	for driver, entry := range observations {
		s.continuity.Observe(driver, entry.snapshot, entry.observed)
	}

	s.offset = batch[len(batch)-1].Timestamp + 1
	if s.appender != nil {
		s.appender.Append(batch...)
	}
	return batch, nil
}

// fillGaps copies a nearby known position into frames where a driver is
// missing, preferring the driver's next upcoming observation and falling
// back to the last known one. Showing a slightly stale or soon position
// beats a car blinking out for a second.
func (s *Synthesizer) fillGaps(batch []*model.Frame) {
	known := make(map[string]struct{})
	for _, f := range batch {
		for driver := range f.Positions {
			known[driver] = struct{}{}
		}
	}
	for _, driver := range s.continuity.Drivers() {
		known[driver] = struct{}{}
	}

	// remember which entries came from real samples; only those may
	// advance the carry window, chained carries would keep a retired
	// car around forever
	original := make([]map[string]struct{}, len(batch))
	for i, f := range batch {
		set := make(map[string]struct{}, len(f.Positions))
		for driver := range f.Positions {
			set[driver] = struct{}{}
		}
		original[i] = set
	}

	// last real observation per driver, seeded from prior chunks
	behind := make(map[string]continuityEntry)
	for driver := range known {
		if snap, seen, ok := s.continuity.LastKnown(driver); ok {
			behind[driver] = continuityEntry{snapshot: snap, observed: seen}
		}
	}

	for i, f := range batch {
		for driver := range known {
			if _, ok := f.Positions[driver]; ok {
				continue
			}
			if snap, ok := s.lookAhead(batch, i, driver); ok {
				f.Positions[driver] = snap
				continue
			}
			if entry, ok := behind[driver]; ok &&
				f.Timestamp-entry.observed <= s.lookahead {
				f.Positions[driver] = entry.snapshot
			}
		}
		for driver := range original[i] {
			behind[driver] = continuityEntry{
				snapshot: f.Positions[driver],
				observed: f.Timestamp,
			}
		}
	}
}

//nolint:whitespace // editor/linter issue
func (s *Synthesizer) lookAhead(batch []*model.Frame, idx int, driver string) (
	model.PositionSnapshot, bool,
) {
	base := batch[idx].Timestamp
	for j := idx + 1; j < len(batch) && batch[j].Timestamp-base <= s.lookahead; j++ {
		if snap, ok := batch[j].Positions[driver]; ok {
			return snap, true
		}
	}
	return model.PositionSnapshot{}, false
}
