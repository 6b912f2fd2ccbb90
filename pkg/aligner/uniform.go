package aligner

import (
	"context"
	"math"
)

// Uniform is the placeholder backend: it spreads units evenly across the
// total duration. It carries no acoustic knowledge, but it fixes the timing
// contract a real model has to honour when it replaces this one.
type Uniform struct{}

func NewUniform() *Uniform {
	return &Uniform{}
}

func (u *Uniform) Name() string {
	return "uniform"
}

// Align lays units out contiguously over the total duration. Boundaries are
// shared between neighbours and rounded exactly once, so end[i] == start[i+1]
// holds after rounding and re-serialization is stable.
func (u *Uniform) Align(ctx context.Context, req Request) ([]TimedUnit, error) {
	units := SplitUnits(req.Lyrics, req.Granularity)
	units = req.CapUnits(units)
	if len(units) == 0 {
		return nil, ErrInvalidInput
	}

	total := req.Duration
	measured := req.DurationMeasured
	if total <= 0 {
		total = DefaultDuration
		measured = false
	}
	confidence := ConfidenceAssumed
	if measured {
		confidence = ConfidenceMeasured
	}

	n := len(units)
	out := make([]TimedUnit, n)
	prev := 0.0
	for i, text := range units {
		next := RoundMillis(float64(i+1) * total / float64(n))
		out[i] = TimedUnit{
			Text:       text,
			Start:      prev,
			End:        next,
			Confidence: confidence,
		}
		prev = next
	}
	return out, nil
}

// RoundMillis rounds a timestamp to millisecond precision.
func RoundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}
