package whisper

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"lyralign/pkg/aligner"
)

// Client aligns lyrics against audio using OpenAI's transcription API with
// word-level timestamps. It honours the same contract as the uniform
// placeholder, so the pipeline swaps between them freely.
type Client struct {
	model  string
	client *openai.Client
}

func NewClient(apiKey, modelName, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = openai.Whisper1
	}
	return &Client{
		model:  modelName,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (c *Client) Name() string {
	return "whisper"
}

// Align transcribes the audio and maps the recognised word timestamps onto
// the lyric units. Timing comes from the audio, so confidence is the
// measured policy value.
func (c *Client) Align(ctx context.Context, req aligner.Request) ([]aligner.TimedUnit, error) {
	units := aligner.SplitUnits(req.Lyrics, req.Granularity)
	units = req.CapUnits(units)
	if len(units) == 0 {
		return nil, aligner.ErrInvalidInput
	}
	if req.AudioPath == "" {
		return nil, fmt.Errorf("whisper backend requires a local audio asset")
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: req.AudioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("audio", req.AudioPath).Msg("could not get transcription from openai")
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if len(resp.Words) == 0 {
		return nil, aligner.ErrNoUnits
	}

	if req.Granularity == aligner.GranularityWord {
		return alignWords(units, resp), nil
	}
	return alignLines(units, resp)
}

// alignWords pairs lyric words with recognised words by position. Extra
// lyric words beyond the transcript are dropped rather than given
// fabricated timestamps.
func alignWords(units []string, resp openai.AudioResponse) []aligner.TimedUnit {
	n := len(units)
	if len(resp.Words) < n {
		n = len(resp.Words)
	}

	out := make([]aligner.TimedUnit, n)
	for i := 0; i < n; i++ {
		out[i] = aligner.TimedUnit{
			Text:       units[i],
			Start:      aligner.RoundMillis(resp.Words[i].Start),
			End:        aligner.RoundMillis(resp.Words[i].End),
			Confidence: aligner.ConfidenceMeasured,
		}
	}
	return out
}

// alignLines spans each lyric line over the recognised words it covers,
// walking the transcript by per-line word count.
func alignLines(units []string, resp openai.AudioResponse) ([]aligner.TimedUnit, error) {
	words := resp.Words
	out := make([]aligner.TimedUnit, 0, len(units))

	wi := 0
	for _, line := range units {
		if wi >= len(words) {
			break
		}
		last := wi + len(strings.Fields(line)) - 1
		if last >= len(words) {
			last = len(words) - 1
		}
		out = append(out, aligner.TimedUnit{
			Text:       line,
			Start:      aligner.RoundMillis(words[wi].Start),
			End:        aligner.RoundMillis(words[last].End),
			Confidence: aligner.ConfidenceMeasured,
		})
		wi = last + 1
	}

	if len(out) == 0 {
		return nil, aligner.ErrNoUnits
	}
	return out, nil
}
