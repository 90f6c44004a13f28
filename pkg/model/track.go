package model

type TrackPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TrackInfo is the track metadata delivered with chunk 0.
type TrackInfo struct {
	Name      string       `json:"name"`
	TotalLaps int          `json:"total_laps"`
	Outline   []TrackPoint `json:"outline"`
}
