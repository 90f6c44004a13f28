package replay

import (
	"math"
)

// RenderedPosition is one driver's display-ready state at a fractional
// cursor. X/Y are interpolated; the remaining attributes are step
// functions taken from the lower frame unmodified.
type RenderedPosition struct {
	Driver   string  `json:"driver"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Position int     `json:"position"`
	Compound string  `json:"compound"`
	Speed    float64 `json:"speed"`
	Lap      int     `json:"lap"`
}

// TickOutput is what the presentation layer reads each animation tick.
// All always covers the full registry view (standings panel), Selected
// only the visible drivers (spatial rendering). A driver's rank in All
// never depends on whether it is in Selected.
type TickOutput struct {
	All        map[string]RenderedPosition `json:"all"`
	Selected   map[string]RenderedPosition `json:"selected"`
	CurrentLap int                         `json:"currentLap"`
}

// Interpolator computes rendered positions for a fractional cursor by
// linear interpolation between the two adjacent frames.
type Interpolator struct {
	frames  *Sequence
	drivers *Registry
}

func NewInterpolator(frames *Sequence, drivers *Registry) *Interpolator {
	return &Interpolator{frames: frames, drivers: drivers}
}

// Output renders the state at cursor. An out-of-range cursor falls back
// to the nearest valid frame instead of failing.
func (ip *Interpolator) Output(cursor float64) TickOutput {
	ret := TickOutput{
		All:      make(map[string]RenderedPosition),
		Selected: make(map[string]RenderedPosition),
	}
	n := ip.frames.Len()
	if n == 0 {
		return ret
	}

	i := int(math.Floor(cursor))
	frac := cursor - float64(i)
	if i < 0 {
		i, frac = 0, 0
	}
	if i >= n {
		// cursor points beyond loaded data
		i, frac = n-1, 0
	}
	j := i + 1
	if j >= n {
		j = n - 1
	}

	lower := ip.frames.At(i)
	upper := ip.frames.At(j)
	ret.CurrentLap = lower.Lap

	for driver, snap := range lower.Positions {
		rendered := RenderedPosition{
			Driver:   driver,
			X:        snap.X,
			Y:        snap.Y,
			Position: snap.Position,
			Compound: snap.Compound,
			Speed:    snap.Speed,
			Lap:      snap.Lap,
		}
		if next, ok := upper.Positions[driver]; ok && j != i {
			rendered.X = snap.X + (next.X-snap.X)*frac
			rendered.Y = snap.Y + (next.Y-snap.Y)*frac
		}
		ret.All[driver] = rendered
		if ip.drivers.IsVisible(driver) {
			ret.Selected[driver] = rendered
		}
	}
	return ret
}
