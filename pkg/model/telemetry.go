package model

// RawSample is one telemetry record as delivered by the data service.
// Optional attributes are pointers so "absent" and "zero" stay distinguishable.
type RawSample struct {
	Driver         string   `json:"driver"`
	X              *float64 `json:"x"`
	Y              *float64 `json:"y"`
	Lap            int      `json:"lap"`
	TimeInLap      float64  `json:"time_in_lap"`
	CumulativeTime float64  `json:"cumulative_time"`
	Speed          *float64 `json:"speed,omitempty"`
	Compound       *string  `json:"compound,omitempty"`
	Position       *int     `json:"position,omitempty"`
}

// TelemetrySample is a validated sample. Immutable once created.
// Renderable is false when the raw record carried no coordinates; such
// samples stay in the stream for lap/position bookkeeping but are
// excluded from anything that renders a point.
type TelemetrySample struct {
	Driver         string
	X              float64
	Y              float64
	Renderable     bool
	Lap            int
	TimeInLap      float64
	CumulativeTime float64
	Speed          float64
	Compound       string
	Position       int
}

// PositionSnapshot is one driver's state within a frame.
type PositionSnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Position int     `json:"position"`
	Compound string  `json:"compound"`
	Speed    float64 `json:"speed"`
	Lap      int     `json:"lap"`
}

// Frame aggregates all drivers observed at (or carried forward to) one
// quantized second of race time. Owned by the synthesizer until appended
// to the frame sequence; read-only afterwards.
type Frame struct {
	Timestamp int                         `json:"timestamp"`
	Lap       int                         `json:"lap"`
	TimeInLap float64                     `json:"timeInLap"`
	Positions map[string]PositionSnapshot `json:"positions"`
}
