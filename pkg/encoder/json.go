package encoder

import (
	"encoding/json"
	"fmt"

	"lyralign/pkg/aligner"
)

// jsonUnit is one timed entry. The text key follows granularity: word mode
// emits "word", line mode emits "text".
type jsonUnit struct {
	Word       string  `json:"word,omitempty"`
	Text       string  `json:"text,omitempty"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// jsonDocument wraps the units under a "words" key together with the job
// fields downstream consumers read. Struct field order fixes the key order,
// and nothing wall-clock dependent is included, so output is reproducible.
type jsonDocument struct {
	JobID       string     `json:"job_id,omitempty"`
	Granularity string     `json:"granularity"`
	UnitCount   int        `json:"unit_count"`
	Duration    float64    `json:"duration"`
	Words       []jsonUnit `json:"words"`
}

func encodeJSON(doc Document) (string, error) {
	units := make([]jsonUnit, len(doc.Units))
	for i, u := range doc.Units {
		ju := jsonUnit{Start: u.Start, End: u.End, Confidence: u.Confidence}
		if doc.Granularity == aligner.GranularityWord {
			ju.Word = u.Text
		} else {
			ju.Text = u.Text
		}
		units[i] = ju
	}

	out := jsonDocument{
		JobID:       doc.JobID,
		Granularity: string(doc.Granularity),
		UnitCount:   len(units),
		Duration:    doc.Duration(),
		Words:       units,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json document: %w", err)
	}
	return string(data) + "\n", nil
}
