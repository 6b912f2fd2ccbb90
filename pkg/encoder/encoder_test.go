package encoder

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"lyralign/pkg/aligner"
)

func threeWords() []aligner.TimedUnit {
	return []aligner.TimedUnit{
		{Text: "alpha", Start: 0.0, End: 1.0, Confidence: 0.95},
		{Text: "beta", Start: 1.0, End: 2.0, Confidence: 0.95},
		{Text: "gamma", Start: 2.0, End: 3.0, Confidence: 0.95},
	}
}

func TestEncodeLRC(t *testing.T) {
	doc := Document{Granularity: aligner.GranularityWord, Units: threeWords()}

	out, err := Encode(doc, FormatLRC)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "[00:00.00]alpha\n[00:01.00]beta\n[00:02.00]gamma\n"
	if out != want {
		t.Errorf("LRC output mismatch:\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestEncodeLRCHeader(t *testing.T) {
	doc := Document{
		Granularity: aligner.GranularityLine,
		Units:       []aligner.TimedUnit{{Text: "hello", Start: 0, End: 2, Confidence: 0.8}},
		Header: Header{
			Artist: "Some Artist",
			Title:  "Some Song",
			Album:  "Some Album",
			By:     "lyralign",
		},
	}

	out, err := Encode(doc, FormatLRC)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "[ar:Some Artist]\n[ti:Some Song]\n[al:Some Album]\n[by:lyralign]\n[offset:0]\n\n[00:00.00]hello\n"
	if out != want {
		t.Errorf("LRC header mismatch:\ngot:\n%s\nwant:\n%s", out, want)
	}

	// By alone does not trigger a header.
	doc.Header = Header{By: "lyralign"}
	out, err = Encode(doc, FormatLRC)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.Contains(out, "[by:") || strings.Contains(out, "[offset:") {
		t.Errorf("Expected no header block, got:\n%s", out)
	}
}

func TestLRCMinutesUncapped(t *testing.T) {
	doc := Document{
		Granularity: aligner.GranularityLine,
		Units:       []aligner.TimedUnit{{Text: "late", Start: 3723.5, End: 3725.0, Confidence: 0.8}},
	}

	out, err := Encode(doc, FormatLRC)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(out, "[62:03.50]") {
		t.Errorf("Expected minutes past 59 to render as [62:03.50], got %q", out)
	}
}

func TestEncodeSRT(t *testing.T) {
	doc := Document{Granularity: aligner.GranularityWord, Units: threeWords()}

	out, err := Encode(doc, FormatSRT)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:01,000\nalpha\n\n" +
		"2\n00:00:01,000 --> 00:00:02,000\nbeta\n\n" +
		"3\n00:00:02,000 --> 00:00:03,000\ngamma\n\n"
	if out != want {
		t.Errorf("SRT output mismatch:\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestSRTHoursPresent(t *testing.T) {
	doc := Document{
		Granularity: aligner.GranularityLine,
		Units:       []aligner.TimedUnit{{Text: "long", Start: 3661.25, End: 3662.0, Confidence: 0.8}},
	}

	out, err := Encode(doc, FormatSRT)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(out, "01:01:01,250 --> 01:01:02,000") {
		t.Errorf("Expected hour field in SRT timestamps, got:\n%s", out)
	}
}

func TestEncodeJSON(t *testing.T) {
	doc := Document{
		JobID:       "job-42",
		Granularity: aligner.GranularityWord,
		Units:       threeWords(),
	}

	out, err := Encode(doc, FormatJSON)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var parsed struct {
		JobID     string  `json:"job_id"`
		UnitCount int     `json:"unit_count"`
		Duration  float64 `json:"duration"`
		Words     []struct {
			Word       string  `json:"word"`
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
			Confidence float64 `json:"confidence"`
		} `json:"words"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if parsed.JobID != "job-42" {
		t.Errorf("Expected job_id 'job-42', got %q", parsed.JobID)
	}
	if parsed.UnitCount != 3 || len(parsed.Words) != 3 {
		t.Fatalf("Expected 3 words, got unit_count=%d len=%d", parsed.UnitCount, len(parsed.Words))
	}
	if parsed.Duration != 3.0 {
		t.Errorf("Expected duration 3.0, got %v", parsed.Duration)
	}
	if parsed.Words[1].Word != "beta" || parsed.Words[1].Start != 1.0 || parsed.Words[1].End != 2.0 {
		t.Errorf("Unexpected second word entry: %+v", parsed.Words[1])
	}

	// Word granularity uses the "word" key, not "text".
	if strings.Contains(out, `"text"`) {
		t.Errorf("Word-granularity JSON must not contain a text key:\n%s", out)
	}

	// Line granularity flips the key.
	doc.Granularity = aligner.GranularityLine
	out, err = Encode(doc, FormatJSON)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(out, `"text": "alpha"`) {
		t.Errorf("Line-granularity JSON must use the text key:\n%s", out)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	doc := Document{
		JobID:       "job-1",
		Granularity: aligner.GranularityWord,
		Units:       threeWords(),
		Header:      Header{Artist: "A", Title: "T"},
	}

	for _, format := range []Format{FormatLRC, FormatJSON, FormatSRT} {
		first, err := Encode(doc, format)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", format, err)
		}
		second, err := Encode(doc, format)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", format, err)
		}
		if first != second {
			t.Errorf("Encode(%s) is not deterministic", format)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	doc := Document{Units: threeWords()}

	_, err := Encode(doc, Format("xml"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat from ParseFormat, got %v", err)
	}

	if f, err := ParseFormat("SRT"); err != nil || f != FormatSRT {
		t.Errorf("Expected ParseFormat to accept mixed case, got %v %v", f, err)
	}
}
