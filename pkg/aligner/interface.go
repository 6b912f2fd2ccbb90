package aligner

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Granularity selects whether timing units are whole lines or single words.
type Granularity string

const (
	GranularityLine Granularity = "line"
	GranularityWord Granularity = "word"
)

// DefaultDuration is the total duration assumed when the audio duration
// could not be measured. It directly determines output timing, so it lives
// here as a named constant instead of a literal in the allocator.
const DefaultDuration = 120.0 // seconds

// Confidence is constant per run: timing derived from a measured duration
// is worth more than timing spread over an assumed one, and consumers need
// to tell the two apart.
const (
	ConfidenceMeasured = 0.95
	ConfidenceAssumed  = 0.80
)

var (
	// ErrInvalidInput means the lyrics contained no alignable units.
	ErrInvalidInput = errors.New("lyrics contain no alignable units")
	// ErrNoUnits means a backend ran but produced an empty alignment.
	ErrNoUnits = errors.New("aligner produced no units")
)

// TimedUnit is one aligned token, a line or a word.
type TimedUnit struct {
	Text       string
	Start      float64 // seconds
	End        float64 // seconds
	Confidence float64 // [0,1]
}

// Request carries everything a backend needs for one alignment. Requests
// are built fresh per job and never mutated after creation.
type Request struct {
	Lyrics      string
	Granularity Granularity

	// AudioPath is the resolved local audio asset, empty when none was given.
	AudioPath string

	// Duration is the total audio duration in seconds, 0 when absent.
	// DurationMeasured reports whether it came from the audio itself (or an
	// explicit caller override) rather than the assumed default.
	Duration         float64
	DurationMeasured bool

	// MaxLines and MaxWords cap the unit count for their granularity.
	// 0 disables the cap.
	MaxLines int
	MaxWords int
}

// Aligner is the alignment backend contract. The uniform placeholder and
// any real acoustic model implement the same interface, so backends can be
// swapped without touching consumers.
type Aligner interface {
	// Align produces one TimedUnit per lyric unit, ordered by start time,
	// non-overlapping.
	Align(ctx context.Context, req Request) ([]TimedUnit, error)

	// Name identifies the backend in logs and metadata records.
	Name() string
}

// ParseGranularity validates a user-supplied granularity name. Empty input
// defaults to line granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularityLine, "":
		return GranularityLine, nil
	case GranularityWord:
		return GranularityWord, nil
	default:
		return "", fmt.Errorf("%w: unknown granularity %q", ErrInvalidInput, s)
	}
}

// SplitUnits splits lyrics into line or word units, dropping blank entries.
func SplitUnits(lyrics string, g Granularity) []string {
	var raw []string
	if g == GranularityWord {
		raw = strings.Fields(lyrics)
	} else {
		raw = strings.Split(lyrics, "\n")
	}

	units := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.TrimSpace(u)
		if u != "" {
			units = append(units, u)
		}
	}
	return units
}

// CapUnits truncates units to the cap configured for the request's
// granularity. Truncation happens before any timing is computed, so the
// per-unit duration reflects the capped count, not the original one.
func (r Request) CapUnits(units []string) []string {
	limit := r.MaxLines
	if r.Granularity == GranularityWord {
		limit = r.MaxWords
	}
	if limit > 0 && len(units) > limit {
		return units[:limit]
	}
	return units
}
