package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"lyralign/pkg/alignCache"
	"lyralign/pkg/aligner"
	"lyralign/pkg/audio"
	"lyralign/pkg/encoder"
	"lyralign/pkg/fileutil"
)

// Request is one alignment job as received from the CLI.
type Request struct {
	JobID       string
	AudioSource string // local path or URL, optional
	Lyrics      string // raw lyrics text; optional when Title/Artist are set
	Title       string
	Artist      string
	Format      string
	Granularity string
	Duration    float64 // caller-supplied duration override in seconds
}

// LyricsSource fetches lyrics when a request carries none.
type LyricsSource interface {
	GetPlainLyrics(ctx context.Context, title, artist string, duration float64) (string, error)
}

// Provider runs the Request → Resolve → Align → Encode → Persist pipeline.
// Each job is processed independently; there is no cross-request state
// beyond the optional result cache.
type Provider struct {
	outputDir string
	aligner   *aligner.Manager
	cache     *aligncache.Cache
	resolver  *audio.Resolver
	lyricsSrc LyricsSource
	header    encoder.Header
	maxLines  int
	maxWords  int
}

// ProviderOptions bundles the collaborators a Provider needs.
type ProviderOptions struct {
	OutputDir string
	Aligner   *aligner.Manager
	Cache     *aligncache.Cache
	Resolver  *audio.Resolver

	// LyricsSource may be nil, in which case requests without lyrics fail.
	LyricsSource LyricsSource

	// Header holds the configured LRC metadata defaults; audio tags fill
	// missing fields per job.
	Header encoder.Header

	MaxLines int
	MaxWords int
}

func NewProvider(opts ProviderOptions) *Provider {
	return &Provider{
		outputDir: opts.OutputDir,
		aligner:   opts.Aligner,
		cache:     opts.Cache,
		resolver:  opts.Resolver,
		lyricsSrc: opts.LyricsSource,
		header:    opts.Header,
		maxLines:  opts.MaxLines,
		maxWords:  opts.MaxWords,
	}
}

// cachedResult is what the result cache stores per key: the encoded payload
// plus the summary fields the metadata record needs on a hit.
type cachedResult struct {
	Encoded           string  `json:"encoded"`
	UnitCount         int     `json:"unit_count"`
	Duration          float64 `json:"duration"`
	AverageConfidence float64 `json:"average_confidence"`
	Aligner           string  `json:"aligner"`
}

// Process runs one job to completion: either the output file and a success
// metadata record exist afterwards, or an error is returned and nothing was
// written. Partial output is never left behind.
func (p *Provider) Process(ctx context.Context, req Request) (*Result, error) {
	format, err := encoder.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	granularity, err := aligner.ParseGranularity(req.Granularity)
	if err != nil {
		return nil, err
	}

	lyricsText, err := p.resolveLyrics(ctx, req)
	if err != nil {
		return nil, err
	}

	duration := req.Duration
	measured := duration > 0
	header := p.header

	var audioPath, audioFilename string
	if req.AudioSource != "" {
		asset, err := p.resolver.Resolve(ctx, req.AudioSource)
		if err != nil {
			return nil, err
		}
		if asset.Temp {
			defer os.Remove(asset.Path)
		}
		audioPath = asset.Path
		audioFilename = asset.Filename

		if !measured {
			if d, ok := audio.ProbeDuration(asset.Path); ok {
				duration = d
				measured = true
				log.Info().Float64("duration", d).Str("audio", asset.Filename).Msg("Measured audio duration")
			}
		}

		tags := audio.ProbeTags(asset.Path)
		if header.Title == "" {
			header.Title = tags.Title
		}
		if header.Artist == "" {
			header.Artist = tags.Artist
		}
		if header.Album == "" {
			header.Album = tags.Album
		}
	}
	if header.Title == "" {
		header.Title = req.Title
	}
	if header.Artist == "" {
		header.Artist = req.Artist
	}

	cacheKey := aligncache.Key(
		req.JobID,
		string(granularity),
		strconv.FormatFloat(duration, 'f', 3, 64),
		strconv.FormatBool(measured),
		string(format),
		strconv.Itoa(p.maxLines),
		strconv.Itoa(p.maxWords),
		header.Artist, header.Title, header.Album, header.By,
		lyricsText,
	)

	if raw, ok := p.cache.Get(ctx, cacheKey); ok {
		var cached cachedResult
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr != nil {
			log.Warn().Err(jsonErr).Msg("Discarding undecodable cache entry")
		} else {
			log.Info().Str("job_id", req.JobID).Msg("Result cache HIT")
			return p.persist(req.JobID, format, granularity, audioFilename, cached, true)
		}
	}
	log.Info().Str("job_id", req.JobID).Msg("Result cache MISS")

	units, backendName, err := p.aligner.AlignWithBackend(ctx, aligner.Request{
		Lyrics:           lyricsText,
		Granularity:      granularity,
		AudioPath:        audioPath,
		Duration:         duration,
		DurationMeasured: measured,
		MaxLines:         p.maxLines,
		MaxWords:         p.maxWords,
	})
	if err != nil {
		return nil, err
	}

	doc := encoder.Document{
		JobID:       req.JobID,
		Granularity: granularity,
		Units:       units,
		Header:      header,
	}
	encoded, err := encoder.Encode(doc, format)
	if err != nil {
		return nil, err
	}

	cached := cachedResult{
		Encoded:           encoded,
		UnitCount:         len(units),
		Duration:          doc.Duration(),
		AverageConfidence: averageConfidence(units),
		Aligner:           backendName,
	}
	if data, err := json.Marshal(cached); err == nil {
		p.cache.Put(ctx, cacheKey, string(data))
	}

	return p.persist(req.JobID, format, granularity, audioFilename, cached, false)
}

// resolveLyrics returns the lyrics text for the request, consulting the
// lyrics source when the request carries none.
func (p *Provider) resolveLyrics(ctx context.Context, req Request) (string, error) {
	lyricsText := strings.TrimSpace(req.Lyrics)
	if lyricsText != "" {
		return lyricsText, nil
	}

	if p.lyricsSrc != nil && req.Title != "" {
		fetched, err := p.lyricsSrc.GetPlainLyrics(ctx, req.Title, req.Artist, req.Duration)
		if err != nil {
			log.Warn().Err(err).Str("title", req.Title).Str("artist", req.Artist).Msg("Failed to fetch lyrics")
		} else if fetched = strings.TrimSpace(fetched); fetched != "" {
			log.Info().Str("title", req.Title).Msg("Fetched lyrics from lyrics source")
			return fetched, nil
		}
	}

	return "", fmt.Errorf("%w: no lyrics supplied", aligner.ErrInvalidInput)
}

// persist writes the output file and its sibling metadata record.
func (p *Provider) persist(jobID string, format encoder.Format, granularity aligner.Granularity, audioFilename string, cached cachedResult, cacheHit bool) (*Result, error) {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", p.outputDir, err)
	}

	outputPath := filepath.Join(p.outputDir, baseFilename(jobID)+format.Extension())
	if err := fileutil.WriteFileOverwrite(outputPath, []byte(cached.Encoded), 0644); err != nil {
		return nil, err
	}

	result := &Result{
		JobID:             jobID,
		Status:            StatusCompleted,
		Format:            string(format),
		Granularity:       string(granularity),
		UnitCount:         cached.UnitCount,
		Duration:          cached.Duration,
		AverageConfidence: cached.AverageConfidence,
		Aligner:           cached.Aligner,
		AudioFilename:     audioFilename,
		OutputPath:        outputPath,
		ProcessedAt:       now(),
		CacheHit:          cacheHit,
	}

	if err := fileutil.WriteJSON(p.metadataPath(jobID), result, 0644); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) metadataPath(jobID string) string {
	return filepath.Join(p.outputDir, baseFilename(jobID)+"_metadata.json")
}

// baseFilename derives the output file stem from the job id. The prefix and
// suffix convention is relied on by downstream automation.
func baseFilename(jobID string) string {
	if jobID == "" {
		jobID = "demo"
	}
	return "aligned_" + sanitizeFilename(jobID)
}

var unsafeFilenameRe = regexp.MustCompile(`[\\/:*?"<>|\s]`)

func sanitizeFilename(name string) string {
	return unsafeFilenameRe.ReplaceAllString(name, "-")
}

func averageConfidence(units []aligner.TimedUnit) float64 {
	if len(units) == 0 {
		return 0
	}
	var sum float64
	for _, u := range units {
		sum += u.Confidence
	}
	return sum / float64(len(units))
}
