// Package basedata provides sample payloads for tests.
package basedata

import (
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
)

func SampleTrack() *model.TrackInfo {
	return &model.TrackInfo{
		Name:      "testtrack",
		TotalLaps: 57,
		Outline: []model.TrackPoint{
			{X: 0, Y: 0},
			{X: 100, Y: 0},
			{X: 100, Y: 50},
			{X: 0, Y: 50},
		},
	}
}

func ptr[T any](v T) *T { return &v }

// RawSample builds a renderable wire sample for a driver at a point in time.
func RawSample(driver string, cum, x, y float64) model.RawSample {
	return RawSampleLap(driver, cum, x, y, 1)
}

func RawSampleLap(driver string, cum, x, y float64, lap int) model.RawSample {
	return model.RawSample{
		Driver:         driver,
		X:              ptr(x),
		Y:              ptr(y),
		Lap:            lap,
		TimeInLap:      cum,
		CumulativeTime: cum,
		Speed:          ptr(280.0),
		Compound:       ptr("SOFT"),
		Position:       ptr(1),
	}
}

// RawSampleNoCoords builds a sample missing position data. Such samples
// still carry lap context but must not produce a rendered position.
func RawSampleNoCoords(driver string, cum float64) model.RawSample {
	return model.RawSample{
		Driver:         driver,
		Lap:            1,
		TimeInLap:      cum,
		CumulativeTime: cum,
	}
}

// Chunk wraps samples into the wire format of the data service.
func Chunk(track *model.TrackInfo, samples ...model.RawSample) *model.ChunkResponse {
	return &model.ChunkResponse{
		Track:     track,
		Telemetry: samples,
	}
}
