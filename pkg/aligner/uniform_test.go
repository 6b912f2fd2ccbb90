package aligner

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestUniformAlign(t *testing.T) {
	uniform := NewUniform()

	t.Run("WordRoundTrip", func(t *testing.T) {
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:           "alpha beta gamma",
			Granularity:      GranularityWord,
			Duration:         3.0,
			DurationMeasured: true,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		if len(units) != 3 {
			t.Fatalf("Expected 3 units, got %d", len(units))
		}

		want := []TimedUnit{
			{Text: "alpha", Start: 0.0, End: 1.0, Confidence: ConfidenceMeasured},
			{Text: "beta", Start: 1.0, End: 2.0, Confidence: ConfidenceMeasured},
			{Text: "gamma", Start: 2.0, End: 3.0, Confidence: ConfidenceMeasured},
		}
		for i, u := range units {
			if u != want[i] {
				t.Errorf("Unit %d: got %+v, want %+v", i, u, want[i])
			}
		}
	})

	t.Run("LastEndEqualsDuration", func(t *testing.T) {
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:           "one\ntwo\nthree\nfour\nfive\nsix\nseven",
			Granularity:      GranularityLine,
			Duration:         200.5,
			DurationMeasured: true,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		last := units[len(units)-1].End
		if math.Abs(last-200.5) > 0.001 {
			t.Errorf("Expected last end 200.5, got %v", last)
		}
	})

	t.Run("ContiguousNonOverlapping", func(t *testing.T) {
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:           strings.Repeat("la ", 17),
			Granularity:      GranularityWord,
			Duration:         10.0,
			DurationMeasured: true,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		for i := 1; i < len(units); i++ {
			if units[i].Start != units[i-1].End {
				t.Errorf("Unit %d: start %v != previous end %v", i, units[i].Start, units[i-1].End)
			}
			if units[i].Start < units[i-1].Start {
				t.Errorf("Unit %d: start %v decreased", i, units[i].Start)
			}
		}
	})

	t.Run("AssumedDurationConfidence", func(t *testing.T) {
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:      "line one\nline two",
			Granularity: GranularityLine,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		if units[0].Confidence != ConfidenceAssumed {
			t.Errorf("Expected assumed confidence %v, got %v", ConfidenceAssumed, units[0].Confidence)
		}
		if units[len(units)-1].End != DefaultDuration {
			t.Errorf("Expected default duration %v, got %v", DefaultDuration, units[len(units)-1].End)
		}
	})

	t.Run("MeasuredDurationConfidence", func(t *testing.T) {
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:           "line one\nline two",
			Granularity:      GranularityLine,
			Duration:         60,
			DurationMeasured: true,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		if units[0].Confidence != ConfidenceMeasured {
			t.Errorf("Expected measured confidence %v, got %v", ConfidenceMeasured, units[0].Confidence)
		}
	})

	t.Run("TruncationBeforeTiming", func(t *testing.T) {
		// 80 words capped to 50: the per-unit duration is computed over the
		// 50 kept words, not the original 80.
		words := make([]string, 80)
		for i := range words {
			words[i] = "word"
		}
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:           strings.Join(words, " "),
			Granularity:      GranularityWord,
			Duration:         100.0,
			DurationMeasured: true,
			MaxWords:         50,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		if len(units) != 50 {
			t.Fatalf("Expected 50 units after truncation, got %d", len(units))
		}
		if units[0].End != 2.0 {
			t.Errorf("Expected per-unit duration 2.0 (100/50), got %v", units[0].End)
		}

		// Under the cap nothing changes.
		units, err = uniform.Align(context.Background(), Request{
			Lyrics:           strings.Join(words[:30], " "),
			Granularity:      GranularityWord,
			Duration:         90.0,
			DurationMeasured: true,
			MaxWords:         50,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		if len(units) != 30 {
			t.Fatalf("Expected 30 units, got %d", len(units))
		}
		if units[0].End != 3.0 {
			t.Errorf("Expected per-unit duration 3.0 (90/30), got %v", units[0].End)
		}
	})

	t.Run("LineCap", func(t *testing.T) {
		lyrics := strings.TrimSpace(strings.Repeat("a line of text\n", 25))
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:           lyrics,
			Granularity:      GranularityLine,
			Duration:         100.0,
			DurationMeasured: true,
			MaxLines:         20,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		if len(units) != 20 {
			t.Errorf("Expected 20 units after line cap, got %d", len(units))
		}
	})

	t.Run("EmptyLyrics", func(t *testing.T) {
		for _, lyrics := range []string{"", "   ", "\n\n\t\n"} {
			_, err := uniform.Align(context.Background(), Request{
				Lyrics:      lyrics,
				Granularity: GranularityLine,
			})
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Lyrics %q: expected ErrInvalidInput, got %v", lyrics, err)
			}
		}
	})

	t.Run("BlankLinesDropped", func(t *testing.T) {
		units, err := uniform.Align(context.Background(), Request{
			Lyrics:           "first\n\n  \nsecond\n",
			Granularity:      GranularityLine,
			Duration:         10,
			DurationMeasured: true,
		})
		if err != nil {
			t.Fatalf("Align failed: %v", err)
		}
		if len(units) != 2 {
			t.Fatalf("Expected 2 units, got %d", len(units))
		}
		if units[0].Text != "first" || units[1].Text != "second" {
			t.Errorf("Unexpected unit texts: %q, %q", units[0].Text, units[1].Text)
		}
	})
}

func TestParseGranularity(t *testing.T) {
	cases := []struct {
		in      string
		want    Granularity
		wantErr bool
	}{
		{"line", GranularityLine, false},
		{"word", GranularityWord, false},
		{"", GranularityLine, false},
		{"Word", GranularityWord, false},
		{"syllable", "", true},
	}
	for _, c := range cases {
		got, err := ParseGranularity(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseGranularity(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGranularity(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseGranularity(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
