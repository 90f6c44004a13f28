package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
	"github.com/ekjyotshinh/f1-replay-engine-go/testsupport/basedata"
)

type scriptedSource struct {
	responses map[int]*model.ChunkResponse
	errs      map[int]error
	fetched   []int
}

//nolint:whitespace // editor/linter issue
func (s *scriptedSource) Fetch(_ context.Context, _ int, _ string, chunk int) (
	*model.ChunkResponse, error,
) {
	s.fetched = append(s.fetched, chunk)
	if err, ok := s.errs[chunk]; ok {
		return nil, err
	}
	if resp, ok := s.responses[chunk]; ok {
		return resp, nil
	}
	return basedata.Chunk(nil), nil
}

type countingSink struct {
	chunks  [][]model.TelemetrySample
	failAt  int
	sinkErr error
}

func newCountingSink() *countingSink {
	return &countingSink{failAt: -1}
}

func (c *countingSink) ProcessChunk(samples []model.TelemetrySample) ([]*model.Frame, error) {
	if c.failAt >= 0 && len(c.chunks) == c.failAt {
		return nil, c.sinkErr
	}
	c.chunks = append(c.chunks, samples)
	return nil, nil
}

func TestControllerSequentialRun(t *testing.T) {
	source := &scriptedSource{
		responses: map[int]*model.ChunkResponse{
			0: basedata.Chunk(basedata.SampleTrack(),
				basedata.RawSample("VER", 0, 1, 1)),
		},
	}
	sink := newCountingSink()
	ready := 0
	c := NewController(source, sink, 2024, "Monza",
		WithChunkCount(3),
		WithOnReady(func(track *model.TrackInfo) {
			ready++
			assert.Equal(t, "testtrack", track.Name)
		}))

	err := c.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, source.fetched)
	assert.Len(t, sink.chunks, 3)
	assert.Equal(t, 1, ready, "onReady fires exactly once")

	loaded, total := c.Progress()
	assert.Equal(t, 3, loaded)
	assert.Equal(t, 3, total)
	assert.Equal(t, "testtrack", c.Track().Name)
}

func TestControllerStopsOnFetchError(t *testing.T) {
	source := &scriptedSource{
		responses: map[int]*model.ChunkResponse{
			0: basedata.Chunk(basedata.SampleTrack(),
				basedata.RawSample("VER", 0, 1, 1)),
		},
		errs: map[int]error{2: errors.New("boom")},
	}
	sink := newCountingSink()
	c := NewController(source, sink, 2024, "Monza", WithChunkCount(5))

	err := c.Run(context.Background())
	assert.Error(t, err)
	// no request beyond the failed chunk
	assert.Equal(t, []int{0, 1, 2}, source.fetched)

	// everything before the failure stays usable
	assert.Len(t, sink.chunks, 2)
	loaded, _ := c.Progress()
	assert.Equal(t, 2, loaded)
	assert.NotNil(t, c.Track())
}

func TestControllerBodyErrorField(t *testing.T) {
	source := &scriptedSource{
		responses: map[int]*model.ChunkResponse{
			0: basedata.Chunk(basedata.SampleTrack()),
			1: {Error: "race not found"},
		},
	}
	sink := newCountingSink()
	c := NewController(source, sink, 2024, "Monza", WithChunkCount(3))

	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "race not found")
	assert.Equal(t, []int{0, 1}, source.fetched)
	assert.Len(t, sink.chunks, 1)
}

func TestControllerMalformedTrack(t *testing.T) {
	tests := []struct {
		name string
		resp *model.ChunkResponse
	}{
		{name: "no track metadata", resp: basedata.Chunk(nil)},
		{name: "empty outline", resp: basedata.Chunk(&model.TrackInfo{Name: "x"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &scriptedSource{
				responses: map[int]*model.ChunkResponse{0: tt.resp},
			}
			sink := newCountingSink()
			c := NewController(source, sink, 2024, "Monza", WithChunkCount(2))

			err := c.Run(context.Background())
			assert.True(t, errors.Is(err, ErrMalformedTrack))
			assert.Equal(t, []int{0}, source.fetched)
			assert.Empty(t, sink.chunks)
			assert.Nil(t, c.Track())
		})
	}
}

func TestControllerSinkError(t *testing.T) {
	source := &scriptedSource{
		responses: map[int]*model.ChunkResponse{
			0: basedata.Chunk(basedata.SampleTrack()),
		},
	}
	sink := newCountingSink()
	sink.failAt = 1
	sink.sinkErr = fmt.Errorf("bad chunk")
	c := NewController(source, sink, 2024, "Monza", WithChunkCount(3))

	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "synthesizing chunk 1")
	loaded, _ := c.Progress()
	assert.Equal(t, 1, loaded)
}

func TestControllerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &scriptedSource{}
	c := NewController(source, newCountingSink(), 2024, "Monza")

	err := c.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, source.fetched)
}
