package encoder

import (
	"fmt"
	"math"
	"strings"
)

// encodeSRT renders 1-indexed SubRip blocks: index line, time range, text,
// blank separator.
func encodeSRT(doc Document) string {
	var b strings.Builder
	for i, u := range doc.Units {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimestamp(u.Start), srtTimestamp(u.End))
		b.WriteString(u.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// srtTimestamp renders HH:MM:SS,mmm. SubRip requires the zero-padded hour
// field even for clips far shorter than an hour.
func srtTimestamp(sec float64) string {
	ms := int(math.Round(sec * 1000))
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}
