package pipeline

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"lyralign/pkg/aligner"
	"lyralign/pkg/audio"
	"lyralign/pkg/encoder"
	"lyralign/pkg/fileutil"
)

const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Error kinds are the stable names downstream automation keys on; they
// never change even when the underlying error messages do.
const (
	KindInvalidInput      = "invalid_input"
	KindSourceUnavailable = "source_unavailable"
	KindUnsupportedFormat = "unsupported_format"
	KindAlignmentFailure  = "alignment_failure"
	KindInternal          = "internal"
)

// Result is the success metadata record written next to the output file.
type Result struct {
	JobID             string  `json:"job_id"`
	Status            string  `json:"status"`
	Format            string  `json:"format"`
	Granularity       string  `json:"granularity"`
	UnitCount         int     `json:"unit_count"`
	Duration          float64 `json:"duration"`
	AverageConfidence float64 `json:"average_confidence"`
	Aligner           string  `json:"aligner"`
	AudioFilename     string  `json:"audio_filename,omitempty"`
	OutputPath        string  `json:"output_path"`
	ProcessedAt       string  `json:"processed_at"`
	CacheHit          bool    `json:"cache_hit,omitempty"`
}

// ErrorRecord is the metadata record written for a failed job. No data file
// accompanies it.
type ErrorRecord struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Error       string `json:"error"`
	ErrorKind   string `json:"error_kind"`
	ProcessedAt string `json:"processed_at"`
}

// ErrorKind maps a pipeline error onto its stable kind name.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, aligner.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, audio.ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, encoder.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, aligner.ErrNoUnits):
		return KindAlignmentFailure
	default:
		return KindInternal
	}
}

// WriteErrorRecord writes the error metadata file for a failed job and
// returns the record. A failure to write is logged but not fatal: the
// caller still reports the original error.
func (p *Provider) WriteErrorRecord(jobID string, jobErr error) *ErrorRecord {
	record := &ErrorRecord{
		JobID:       jobID,
		Status:      StatusError,
		Error:       jobErr.Error(),
		ErrorKind:   ErrorKind(jobErr),
		ProcessedAt: now(),
	}

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to create output directory")
		return record
	}
	if err := fileutil.WriteJSON(p.metadataPath(jobID), record, 0644); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to write error metadata record")
	}
	return record
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
