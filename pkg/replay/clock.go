package replay

import (
	"context"
	"sync"
	"time"
)

// AllowedSpeeds are the multipliers offered by the UI. SetSpeed accepts
// any positive value.
var AllowedSpeeds = []float64{0.5, 1, 2, 5, 10}

// FrameCount is the clock's only view of the frame sequence.
type FrameCount interface {
	Len() int
}

// Clock advances a fractional frame cursor in real time, scaled by a
// speed multiplier. One cursor unit corresponds to one second of race
// time, matching the 1 Hz sampling of the source data. The clock is
// independent of ingestion; it clamps at whatever data exists right now.
type Clock struct {
	mu      sync.Mutex
	frames  FrameCount
	cursor  float64
	speed   float64
	playing bool
}

func NewClock(frames FrameCount) *Clock {
	return &Clock{frames: frames, speed: 1}
}

// Tick advances the cursor by elapsed*speed while playing. Reaching the
// final frame is terminal: the cursor clamps there and playing stops.
func (c *Clock) Tick(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	last := float64(c.frames.Len() - 1)
	if last < 0 {
		return
	}
	c.cursor += elapsed.Seconds() * c.speed
	if c.cursor >= last {
		c.cursor = last
		c.playing = false
	}
}

func (c *Clock) SetPlaying(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = playing
}

// SetSpeed sets the multiplier; non-positive values are ignored.
func (c *Clock) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
}

// Seek moves the cursor directly and always stops playback. Seeking
// into not-yet-loaded territory is legal; readers handle an
// out-of-range cursor defensively.
func (c *Clock) Seek(cursor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cursor < 0 {
		cursor = 0
	}
	c.cursor = cursor
	c.playing = false
}

func (c *Clock) Cursor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// TickSource schedules clock ticks. The production source samples the
// wall clock; tests inject synthetic elapsed values by calling Tick
// directly.
type TickSource interface {
	Run(ctx context.Context, tick func(elapsed time.Duration))
}

type intervalTicker struct {
	interval time.Duration
}

// NewIntervalTicker returns a TickSource firing at the given interval
// with wall-clock elapsed times. Cancelling the context stops the
// scheduling; there is no partial tick state to unwind.
func NewIntervalTicker(interval time.Duration) TickSource {
	return &intervalTicker{interval: interval}
}

func (t *intervalTicker) Run(ctx context.Context, tick func(elapsed time.Duration)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tick(now.Sub(last))
			last = now
		}
	}
}
