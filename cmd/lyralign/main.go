package main

import (
	"os"

	"github.com/alecthomas/kong"

	"lyralign/internal/app"
	"lyralign/internal/config"
	"lyralign/internal/pipeline"
)

var cli struct {
	Audio        string  `help:"Audio file path or URL to align against." placeholder:"PATH|URL"`
	Lyrics       string  `help:"Lyrics text."`
	LyricsFile   string  `help:"Read lyrics from a file instead of --lyrics." placeholder:"PATH"`
	Title        string  `help:"Song title; with --artist it is used to fetch lyrics when none are supplied."`
	Artist       string  `help:"Song artist."`
	OutputFormat string  `help:"Output encoding: lrc, json or srt."`
	Granularity  string  `help:"Timing granularity: line or word."`
	Duration     float64 `help:"Total audio duration in seconds; overrides probing."`
	JobID        string  `help:"Job identifier used in output filenames; generated when omitted."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("lyralign"),
		kong.Description("Aligns song lyrics to audio and writes timestamped LRC/JSON/SRT files."),
	)

	cfg := config.Load()

	lyricsText := cli.Lyrics
	if lyricsText == "" && cli.LyricsFile != "" {
		data, err := os.ReadFile(cli.LyricsFile)
		kctx.FatalIfErrorf(err)
		lyricsText = string(data)
	}

	// Unknown formats and granularities flow through the pipeline so the
	// failure is reported via an error metadata record, not a usage error.
	format := cli.OutputFormat
	if format == "" {
		format = cfg.App.Format
	}
	granularity := cli.Granularity
	if granularity == "" {
		granularity = cfg.App.Granularity
	}

	application := app.New(cfg)
	err := application.Run(pipeline.Request{
		JobID:       cli.JobID,
		AudioSource: cli.Audio,
		Lyrics:      lyricsText,
		Title:       cli.Title,
		Artist:      cli.Artist,
		Format:      format,
		Granularity: granularity,
		Duration:    cli.Duration,
	})
	application.Close()
	if err != nil {
		os.Exit(1)
	}
}
