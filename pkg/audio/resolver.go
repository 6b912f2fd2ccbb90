package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrSourceUnavailable means the audio asset could not be fetched or read.
var ErrSourceUnavailable = errors.New("audio source unavailable")

var logger = log.With().Str("component", "audio").Logger()

// Asset is a locally readable audio file.
type Asset struct {
	Path     string
	Filename string
	Size     int64

	// Temp reports whether Path is a downloaded copy the caller may remove.
	Temp bool
}

// Resolver turns a local path or an http(s) URL into a local audio asset.
type Resolver struct {
	httpClient *http.Client
	maxRetries int
	tmpDir     string
}

// NewResolver creates a resolver that stores downloads under tmpDir
// (the system temp dir when empty).
func NewResolver(tmpDir string) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		tmpDir:     tmpDir,
	}
}

// Resolve yields a local asset for the source, downloading when the source
// is a URL.
func (r *Resolver) Resolve(ctx context.Context, source string) (*Asset, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", ErrSourceUnavailable)
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return r.download(ctx, source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, source)
	}
	return &Asset{
		Path:     source,
		Filename: filepath.Base(source),
		Size:     info.Size(),
	}, nil
}

func (r *Resolver) download(ctx context.Context, rawURL string) (*Asset, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Info().Int("attempt", attempt).Int("max_retries", r.maxRetries).Msg("Retrying audio download")
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
		}

		req, reqErr := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
		if reqErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, reqErr)
		}

		resp, err = r.httpClient.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}
		if err == nil {
			resp.Body.Close()
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
		if attempt == r.maxRetries {
			return nil, fmt.Errorf("%w: download failed after %d attempts: %v", ErrSourceUnavailable, attempt+1, err)
		}
	}
	defer resp.Body.Close()

	name := filepath.Base(resp.Request.URL.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}

	dir := r.tmpDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "lyralign-*-"+name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	size, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	logger.Info().
		Str("url", rawURL).
		Str("path", f.Name()).
		Int64("bytes", size).
		Msg("Downloaded audio asset")

	return &Asset{Path: f.Name(), Filename: name, Size: size, Temp: true}, nil
}
