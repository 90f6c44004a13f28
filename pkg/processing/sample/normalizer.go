package sample

import (
	"github.com/ekjyotshinh/f1-replay-engine-go/pkg/model"
)

// Normalize validates and shapes a single raw record.
// A record without a driver code cannot be attributed and is dropped
// (ok == false). A record missing x or y is kept but marked not
// renderable. Missing optional attributes map to their zero values.
func Normalize(raw *model.RawSample) (model.TelemetrySample, bool) {
	if raw.Driver == "" {
		return model.TelemetrySample{}, false
	}
	ret := model.TelemetrySample{
		Driver:         raw.Driver,
		Lap:            raw.Lap,
		TimeInLap:      raw.TimeInLap,
		CumulativeTime: raw.CumulativeTime,
	}
	if raw.X != nil && raw.Y != nil {
		ret.X = *raw.X
		ret.Y = *raw.Y
		ret.Renderable = true
	}
	if raw.Speed != nil {
		ret.Speed = *raw.Speed
	}
	if raw.Compound != nil {
		ret.Compound = *raw.Compound
	}
	if raw.Position != nil {
		ret.Position = *raw.Position
	}
	return ret, true
}

// NormalizeAll shapes a whole chunk, preserving order and dropping
// records without a driver code.
func NormalizeAll(raws []model.RawSample) []model.TelemetrySample {
	ret := make([]model.TelemetrySample, 0, len(raws))
	for i := range raws {
		if s, ok := Normalize(&raws[i]); ok {
			ret = append(ret, s)
		}
	}
	return ret
}
