package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ekjyotshinh/f1-replay-engine-go/log"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/processing/sample"
)

// DefaultChunkCount matches the data service's fixed chunking of one race.
const DefaultChunkCount = 10

// ErrMalformedTrack refuses a replay whose first chunk carries no
// usable track outline. No partial track rendering is attempted.
var ErrMalformedTrack = errors.New("track metadata missing or empty outline")

// ChunkSource fetches one chunk of a race, keyed by (year, race, index).
type ChunkSource interface {
	Fetch(ctx context.Context, year int, race string, chunk int) (*model.ChunkResponse, error)
}

// ChunkSink consumes one chunk's normalized samples (the synthesizer).
type ChunkSink interface {
	ProcessChunk(samples []model.TelemetrySample) ([]*model.Frame, error)
}

// Controller fetches a race's chunks strictly in order and feeds each
// one to the sink. Chunks are never fetched concurrently: the time
// offset threading depends on strict sequential completion. After the
// first chunk lands, the consumer may already observe a valid partial
// frame sequence; a later failure stops further requests but leaves
// everything built so far usable.
type Controller struct {
	source  ChunkSource
	sink    ChunkSink
	year    int
	race    string
	total   int
	onReady func(track *model.TrackInfo)

	mu     sync.RWMutex
	loaded int
	track  *model.TrackInfo
}

type Option func(c *Controller)

func WithChunkCount(total int) Option {
	return func(c *Controller) { c.total = total }
}

// WithOnReady registers a callback fired once after chunk 0 has been
// synthesized, i.e. when a partial replay becomes displayable.
func WithOnReady(cb func(track *model.TrackInfo)) Option {
	return func(c *Controller) { c.onReady = cb }
}

func NewController(source ChunkSource, sink ChunkSink, year int, race string, opts ...Option) *Controller {
	ret := &Controller{
		source: source,
		sink:   sink,
		year:   year,
		race:   race,
		total:  DefaultChunkCount,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run drives the full ingestion chain. It returns on the first failed
// chunk (or cancellation) without issuing further requests.
func (c *Controller) Run(ctx context.Context) error {
	for idx := 0; idx < c.total; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := c.source.Fetch(ctx, c.year, c.race, idx)
		if err != nil {
			return fmt.Errorf("fetching chunk %d: %w", idx, err)
		}
		// an error field in the body counts as a failed fetch
		if resp.Error != "" {
			return fmt.Errorf("chunk %d: %s", idx, resp.Error)
		}
		if idx == 0 {
			if resp.Track == nil || len(resp.Track.Outline) == 0 {
				return ErrMalformedTrack
			}
			c.mu.Lock()
			c.track = resp.Track
			c.mu.Unlock()
		}

		samples := sample.NormalizeAll(resp.Telemetry)
		frames, err := c.sink.ProcessChunk(samples)
		if err != nil {
			return fmt.Errorf("synthesizing chunk %d: %w", idx, err)
		}
		log.Debug("chunk synthesized",
			log.Int("chunk", idx),
			log.Int("samples", len(samples)),
			log.Int("frames", len(frames)))

		c.mu.Lock()
		c.loaded = idx + 1
		c.mu.Unlock()

		if idx == 0 && c.onReady != nil {
			c.onReady(resp.Track)
		}
	}
	return nil
}

// Progress reports loaded vs total chunk counts.
func (c *Controller) Progress() (loaded, total int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.total
}

// Track returns the metadata read from chunk 0, nil until then.
func (c *Controller) Track() *model.TrackInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.track
}
