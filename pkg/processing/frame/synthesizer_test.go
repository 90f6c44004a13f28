package frame

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
)

type captureAppender struct {
	frames []*model.Frame
}

func (c *captureAppender) Append(frames ...*model.Frame) {
	c.frames = append(c.frames, frames...)
}

type captureSink struct {
	codes map[string]struct{}
}

func (c *captureSink) Register(code string) {
	if c.codes == nil {
		c.codes = make(map[string]struct{})
	}
	c.codes[code] = struct{}{}
}

func tsample(driver string, cum, x, y float64) model.TelemetrySample {
	return model.TelemetrySample{
		Driver:         driver,
		X:              x,
		Y:              y,
		Renderable:     true,
		Lap:            1,
		TimeInLap:      cum,
		CumulativeTime: cum,
		Speed:          250,
		Compound:       "SOFT",
		Position:       1,
	}
}

func TestSynthesizerQuantization(t *testing.T) {
	s := NewSynthesizer()
	batch, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("VER", 0.3, 1, 1),
		tsample("HAM", 0.4, 2, 2),
		tsample("VER", 0.6, 3, 3),
	})
	assert.NoError(t, err)
	if len(batch) != 2 {
		t.Fatalf("got %d frames, want 2", len(batch))
	}
	assert.Equal(t, 0, batch[0].Timestamp)
	assert.Equal(t, 1, batch[1].Timestamp)
	// 0.3 rounds down, 0.6 rounds up
	assert.Equal(t, 1.0, batch[0].Positions["VER"].X)
	assert.Equal(t, 3.0, batch[1].Positions["VER"].X)
}

func TestSynthesizerLastWriteWins(t *testing.T) {
	s := NewSynthesizer()
	batch, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("VER", 0.2, 1, 1),
		tsample("VER", 0.4, 9, 9),
	})
	assert.NoError(t, err)
	if len(batch) != 1 {
		t.Fatalf("got %d frames, want 1", len(batch))
	}
	assert.Equal(t, 9.0, batch[0].Positions["VER"].X)
}

func TestSynthesizerOffsetChaining(t *testing.T) {
	s := NewSynthesizer()

	chunk0 := make([]model.TelemetrySample, 0, 60)
	for i := 0; i < 60; i++ {
		chunk0 = append(chunk0, tsample("VER", float64(i), float64(i), 0))
	}
	batch, err := s.ProcessChunk(chunk0)
	assert.NoError(t, err)
	assert.Len(t, batch, 60)
	assert.Equal(t, 59, batch[59].Timestamp)
	assert.Equal(t, 60, s.Offset())

	// the next chunk restarts its clock at zero
	batch, err = s.ProcessChunk([]model.TelemetrySample{
		tsample("VER", 0.0, 100, 100),
	})
	assert.NoError(t, err)
	assert.Len(t, batch, 1)
	assert.Equal(t, 60, batch[0].Timestamp)
	assert.Equal(t, 61, s.Offset())
}

func TestSynthesizerEmptyChunk(t *testing.T) {
	s := NewSynthesizer()
	_, err := s.ProcessChunk([]model.TelemetrySample{tsample("VER", 0, 1, 1)})
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Offset())

	batch, err := s.ProcessChunk(nil)
	assert.NoError(t, err)
	assert.Nil(t, batch)
	assert.Equal(t, 1, s.Offset())
}

func TestSynthesizerChunkRegression(t *testing.T) {
	s := NewSynthesizer()
	_, err := s.ProcessChunk([]model.TelemetrySample{tsample("VER", 3, 1, 1)})
	assert.NoError(t, err)
	assert.Equal(t, 4, s.Offset())

	_, err = s.ProcessChunk([]model.TelemetrySample{tsample("VER", -2, 1, 1)})
	assert.True(t, errors.Is(err, ErrChunkRegression))
	// a rejected chunk must not move the timeline
	assert.Equal(t, 4, s.Offset())
}

func TestSynthesizerGapFillWithinChunk(t *testing.T) {
	s := NewSynthesizer()
	batch, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("HAM", 0, 10, 10),
		tsample("HAM", 1, 11, 11),
		tsample("HAM", 2, 12, 12),
		tsample("HAM", 3, 13, 13),
		tsample("VER", 0, 1, 1),
		tsample("VER", 3, 4, 4),
	})
	assert.NoError(t, err)
	if len(batch) != 4 {
		t.Fatalf("got %d frames, want 4", len(batch))
	}
	// the upcoming observation fills the gap frames
	want := model.PositionSnapshot{
		X: 4, Y: 4, Position: 1, Compound: "SOFT", Speed: 250, Lap: 1,
	}
	for _, idx := range []int{1, 2} {
		if diff := cmp.Diff(want, batch[idx].Positions["VER"]); diff != "" {
			t.Errorf("frame %d VER mismatch (-want +got):\n%s", idx, diff)
		}
	}
}

func TestSynthesizerCarryForwardAcrossChunks(t *testing.T) {
	s := NewSynthesizer()
	_, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("HAM", 0, 10, 10),
		tsample("VER", 0, 1, 1),
	})
	assert.NoError(t, err)

	// VER missing from the next chunk, his last position carries over
	batch, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("HAM", 0, 11, 11),
	})
	assert.NoError(t, err)
	if len(batch) != 1 {
		t.Fatalf("got %d frames, want 1", len(batch))
	}
	ver, ok := batch[0].Positions["VER"]
	assert.True(t, ok, "VER should be carried into the bordering frame")
	assert.Equal(t, 1.0, ver.X)
}

func TestSynthesizerCarryForwardExpires(t *testing.T) {
	s := NewSynthesizer()
	_, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("HAM", 0, 10, 10),
		tsample("VER", 0, 1, 1),
	})
	assert.NoError(t, err)

	// frame lands 9 seconds after VER's last observation, beyond the window
	batch, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("HAM", 8, 18, 18),
	})
	assert.NoError(t, err)
	if len(batch) != 1 {
		t.Fatalf("got %d frames, want 1", len(batch))
	}
	_, ok := batch[0].Positions["VER"]
	assert.False(t, ok, "stale position must not be carried forever")
}

func TestSynthesizerCarriedEntriesDoNotChain(t *testing.T) {
	s := NewSynthesizer(WithLookahead(2))
	_, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("HAM", 0, 10, 10),
		tsample("VER", 0, 1, 1),
	})
	assert.NoError(t, err)

	// VER carried into ts 2 (within window) but his real observation
	// stays at ts 0, so ts 4 is out of reach
	batch, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("HAM", 1, 12, 12),
		tsample("HAM", 3, 14, 14),
	})
	assert.NoError(t, err)
	if len(batch) != 2 {
		t.Fatalf("got %d frames, want 2", len(batch))
	}
	_, ok := batch[0].Positions["VER"]
	assert.True(t, ok)
	_, ok = batch[1].Positions["VER"]
	assert.False(t, ok)
}

func TestSynthesizerNonRenderableSamples(t *testing.T) {
	s := NewSynthesizer()
	batch, err := s.ProcessChunk([]model.TelemetrySample{
		{Driver: "VER", Lap: 2, TimeInLap: 0.5, CumulativeTime: 0},
	})
	assert.NoError(t, err)
	if len(batch) != 1 {
		t.Fatalf("got %d frames, want 1", len(batch))
	}
	// lap context survives, no rendered position
	assert.Equal(t, 2, batch[0].Lap)
	assert.Empty(t, batch[0].Positions)
}

func TestSynthesizerWiring(t *testing.T) {
	appender := &captureAppender{}
	sink := &captureSink{}
	s := NewSynthesizer(WithAppender(appender), WithDriverSink(sink))

	_, err := s.ProcessChunk([]model.TelemetrySample{
		tsample("VER", 0, 1, 1),
		tsample("HAM", 1, 2, 2),
	})
	assert.NoError(t, err)
	assert.Len(t, appender.frames, 2)
	assert.Contains(t, sink.codes, "VER")
	assert.Contains(t, sink.codes, "HAM")
}

func TestContinuityTracker(t *testing.T) {
	tracker := NewContinuityTracker()
	tracker.Observe("VER", model.PositionSnapshot{X: 1}, 10)
	tracker.Observe("VER", model.PositionSnapshot{X: 2}, 5)

	snap, ts, ok := tracker.LastKnown("VER")
	assert.True(t, ok)
	assert.Equal(t, 10, ts)
	assert.Equal(t, 1.0, snap.X)

	_, _, ok = tracker.LastKnown("HAM")
	assert.False(t, ok)
}
