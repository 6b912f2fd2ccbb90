// Package encoder renders timed lyric units into the supported textual
// output encodings. Encoding is pure: identical input yields identical
// bytes, which is what makes result caching and diff-based testing sound.
package encoder

import (
	"errors"
	"fmt"
	"strings"

	"lyralign/pkg/aligner"
)

// Format identifies an output encoding.
type Format string

const (
	FormatLRC  Format = "lrc"
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
)

// ErrUnsupportedFormat is returned for any format outside {lrc,json,srt}.
// The encoder never silently defaults.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatLRC, FormatJSON, FormatSRT:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Extension returns the output file extension for the format.
func (f Format) Extension() string {
	return "." + string(f)
}

// Header carries the optional LRC metadata tags. A header is emitted only
// when at least one of Artist, Title or Album is set.
type Header struct {
	Artist string
	Title  string
	Album  string
	By     string
}

func (h Header) empty() bool {
	return h.Artist == "" && h.Title == "" && h.Album == ""
}

// Document is one encodable alignment result.
type Document struct {
	JobID       string
	Granularity aligner.Granularity
	Units       []aligner.TimedUnit
	Header      Header
}

// Duration is the end of the last unit, 0 for an empty document.
func (d Document) Duration() float64 {
	if n := len(d.Units); n > 0 {
		return d.Units[n-1].End
	}
	return 0
}

// Encode renders the document in the requested format.
func Encode(doc Document, format Format) (string, error) {
	switch format {
	case FormatLRC:
		return encodeLRC(doc), nil
	case FormatJSON:
		return encodeJSON(doc)
	case FormatSRT:
		return encodeSRT(doc), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}
