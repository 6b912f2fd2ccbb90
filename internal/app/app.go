package app

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lyralign/internal/config"
	"lyralign/internal/pipeline"
	"lyralign/pkg/alignCache"
	"lyralign/pkg/aligner"
	"lyralign/pkg/aligner/whisper"
	"lyralign/pkg/audio"
	"lyralign/pkg/encoder"
	"lyralign/pkg/lrclib"
	"lyralign/pkg/redis"
)

// jobTimeout bounds one whole job, including download and transcription.
const jobTimeout = 5 * time.Minute

type App struct {
	cfg         *config.Config
	provider    *pipeline.Provider
	redisClient *redis.Client
}

func New(cfg *config.Config) *App {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	manager := aligner.NewManager(buildBackends(cfg))
	log.Info().Strs("backends", manager.GetBackendNames()).Msg("Aligner chain ready")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-memory result cache")
		} else {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Result cache backed by redis")
			redisClient = client
		}
	}

	provider := pipeline.NewProvider(pipeline.ProviderOptions{
		OutputDir:    cfg.App.OutputDir,
		Aligner:      manager,
		Cache:        aligncache.New(redisClient, config.DefaultCacheTTL),
		Resolver:     audio.NewResolver(""),
		LyricsSource: lrclib.NewClient(),
		Header: encoder.Header{
			Artist: cfg.App.Artist,
			Title:  cfg.App.Title,
			Album:  cfg.App.Album,
			By:     cfg.App.By,
		},
		MaxLines: cfg.App.MaxLines,
		MaxWords: cfg.App.MaxWords,
	})

	return &App{
		cfg:         cfg,
		provider:    provider,
		redisClient: redisClient,
	}
}

// buildBackends assembles the fallback chain. The uniform placeholder
// always sits last, so a job cannot fail just because the real model is
// unreachable or unconfigured.
func buildBackends(cfg *config.Config) []aligner.Aligner {
	var backends []aligner.Aligner

	if cfg.Aligner.Backend == "whisper" && cfg.Aligner.APIKey != "" {
		backends = append(backends, whisper.NewClient(cfg.Aligner.APIKey, cfg.Aligner.Model, cfg.Aligner.BaseURL))
	}

	return append(backends, aligner.NewUniform())
}

// Run processes one job. A non-nil return means an error metadata record
// was written and the process should exit non-zero.
func (a *App) Run(req pipeline.Request) error {
	if req.JobID == "" {
		req.JobID = uuid.NewString()
		log.Info().Str("job_id", req.JobID).Msg("No job id supplied, generated one")
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := a.provider.Process(ctx, req)
	if err != nil {
		record := a.provider.WriteErrorRecord(req.JobID, err)
		log.Error().
			Err(err).
			Str("job_id", req.JobID).
			Str("error_kind", record.ErrorKind).
			Msg("Alignment job failed")
		return err
	}

	log.Info().
		Str("job_id", result.JobID).
		Str("format", result.Format).
		Str("granularity", result.Granularity).
		Str("aligner", result.Aligner).
		Int("unit_count", result.UnitCount).
		Float64("duration", result.Duration).
		Float64("average_confidence", result.AverageConfidence).
		Bool("cache_hit", result.CacheHit).
		Str("output", result.OutputPath).
		Msg("Alignment job completed")
	return nil
}

// Close releases the redis connection, if any.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}
