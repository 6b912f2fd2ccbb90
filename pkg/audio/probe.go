package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
)

// TagInfo is embedded track metadata, any field may be empty.
type TagInfo struct {
	Title  string
	Artist string
	Album  string
}

// ProbeDuration measures the duration of a WAV asset in seconds. Other
// containers report ok=false and the caller falls back to the assumed
// default duration.
func ProbeDuration(path string) (float64, bool) {
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		return 0, false
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to open audio for duration probe")
		return 0, false
	}
	defer f.Close()

	d, err := wav.NewDecoder(f).Duration()
	if err != nil || d <= 0 {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to read WAV duration")
		return 0, false
	}
	return d.Seconds(), true
}

// ProbeTags reads embedded artist/title/album metadata, best effort: a file
// without tags simply yields the zero value.
func ProbeTags(path string) TagInfo {
	f, err := os.Open(path)
	if err != nil {
		return TagInfo{}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return TagInfo{}
	}
	return TagInfo{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}
}
