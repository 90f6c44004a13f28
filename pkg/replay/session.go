package replay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekjyotshinh/f1-replay-engine-go/log"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/ingest"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/processing/frame"
)

// Session owns one race's replay state: the frame sequence, driver
// registry, playback clock and the ingestion chain filling the
// sequence while playback may already be running. Sessions share
// nothing; switching races means discarding the session and starting a
// new one.
type Session struct {
	id      uuid.UUID
	year    int
	race    string
	frames  *Sequence
	drivers *Registry
	clock   *Clock
	interp  *Interpolator
	synth   *frame.Synthesizer
	ctrl    *ingest.Controller

	cancel context.CancelFunc
	ready  chan struct{}

	mu      sync.RWMutex
	track   *model.TrackInfo
	loadErr error
	loading bool
}

type SessionOption func(s *sessionConfig)

type sessionConfig struct {
	chunkCount int
	lookahead  int
}

func WithChunkCount(n int) SessionOption {
	return func(s *sessionConfig) { s.chunkCount = n }
}

// WithLookahead tunes the synthesizer's gap filling window (seconds).
func WithLookahead(secs int) SessionOption {
	return func(s *sessionConfig) { s.lookahead = secs }
}

func NewSession(year int, race string, source ingest.ChunkSource, opts ...SessionOption) *Session {
	cfg := &sessionConfig{
		chunkCount: ingest.DefaultChunkCount,
		lookahead:  frame.DefaultLookahead,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ret := &Session{
		id:      uuid.New(),
		year:    year,
		race:    race,
		frames:  NewSequence(),
		drivers: NewRegistry(),
		ready:   make(chan struct{}),
	}
	ret.clock = NewClock(ret.frames)
	ret.interp = NewInterpolator(ret.frames, ret.drivers)
	ret.synth = frame.NewSynthesizer(
		frame.WithAppender(ret.frames),
		frame.WithDriverSink(ret.drivers),
		frame.WithLookahead(cfg.lookahead),
	)
	ret.ctrl = ingest.NewController(source, ret.synth, year, race,
		ingest.WithChunkCount(cfg.chunkCount),
		ingest.WithOnReady(ret.onReady),
	)
	return ret
}

func (s *Session) ID() uuid.UUID { return s.id }

// Start launches the ingestion chain. Playback may begin as soon as
// Ready is closed, long before all chunks have arrived.
func (s *Session) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.loading = true
	s.mu.Unlock()

	go func() {
		err := s.ctrl.Run(runCtx)
		s.mu.Lock()
		s.loadErr = err
		s.loading = false
		s.mu.Unlock()
		if err != nil {
			// frames built so far stay usable (best effort partial replay)
			log.Warn("ingestion stopped",
				log.String("session", s.id.String()),
				log.Int("year", s.year),
				log.String("race", s.race),
				log.ErrorField(err))
			// a failure before chunk 0 must not leave waiters hanging
			s.closeReadyOnce()
		}
	}()
}

func (s *Session) onReady(track *model.TrackInfo) {
	s.mu.Lock()
	s.track = track
	s.mu.Unlock()
	s.closeReadyOnce()
	log.Info("replay displayable",
		log.String("session", s.id.String()),
		log.String("track", track.Name),
		log.Int("frames", s.frames.Len()))
}

func (s *Session) closeReadyOnce() {
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
}

// Ready is closed once chunk 0 has been synthesized (or ingestion
// failed before that; check Err).
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Close abandons the session: no further chunk requests are issued and
// no further ticks should be scheduled. In-flight requests are not
// force-interrupted beyond context cancellation.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.clock.SetPlaying(false)
}

func (s *Session) Track() *model.TrackInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.track
}

// Err reports why ingestion stopped early, nil while running or after
// a complete load.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Progress() (loaded, total int) { return s.ctrl.Progress() }
func (s *Session) FrameCount() int               { return s.frames.Len() }
func (s *Session) Frames() *Sequence             { return s.frames }
func (s *Session) Drivers() *Registry            { return s.drivers }

// playback operations

func (s *Session) SetPlaying(playing bool)  { s.clock.SetPlaying(playing) }
func (s *Session) SetSpeed(speed float64)   { s.clock.SetSpeed(speed) }
func (s *Session) Seek(cursor float64)      { s.clock.Seek(cursor) }
func (s *Session) Cursor() float64          { return s.clock.Cursor() }
func (s *Session) Playing() bool            { return s.clock.Playing() }
func (s *Session) ToggleDriver(code string) { s.drivers.Toggle(code) }
func (s *Session) SelectAll()               { s.drivers.SelectAll() }
func (s *Session) DeselectAll()             { s.drivers.DeselectAll() }

// Tick advances the clock and renders the current state. Meant to be
// driven by a TickSource.
func (s *Session) Tick(elapsed time.Duration) TickOutput {
	s.clock.Tick(elapsed)
	return s.interp.Output(s.clock.Cursor())
}

// Output renders the state at the current cursor without advancing.
func (s *Session) Output() TickOutput {
	return s.interp.Output(s.clock.Cursor())
}
