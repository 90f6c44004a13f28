package model

// ChunkResponse is the body of one chunk request against the data service.
// Track is only populated meaningfully on chunk 0. A non-empty Error field
// signals a failure even on a 200 response.
type ChunkResponse struct {
	Track     *TrackInfo  `json:"track,omitempty"`
	Telemetry []RawSample `json:"telemetry"`
	Error     string      `json:"error,omitempty"`
}
