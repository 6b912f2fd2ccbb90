package encoder

import (
	"fmt"
	"math"
	"strings"
)

// Canonical LRC timestamps use two fractional digits, [MM:SS.ss]. Files in
// the wild mix two and three digits and downstream parsers accept both, so
// the encoder sticks to one form and never mixes.
func encodeLRC(doc Document) string {
	var b strings.Builder

	if !doc.Header.empty() {
		if doc.Header.Artist != "" {
			fmt.Fprintf(&b, "[ar:%s]\n", doc.Header.Artist)
		}
		if doc.Header.Title != "" {
			fmt.Fprintf(&b, "[ti:%s]\n", doc.Header.Title)
		}
		if doc.Header.Album != "" {
			fmt.Fprintf(&b, "[al:%s]\n", doc.Header.Album)
		}
		if doc.Header.By != "" {
			fmt.Fprintf(&b, "[by:%s]\n", doc.Header.By)
		}
		b.WriteString("[offset:0]\n\n")
	}

	for _, u := range doc.Units {
		b.WriteString(lrcTimestamp(u.Start))
		b.WriteString(u.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// lrcTimestamp renders [MM:SS.ss]. Minutes are uncapped and may exceed 59.
func lrcTimestamp(sec float64) string {
	centis := int(math.Round(sec * 100))
	min := centis / 6000
	rem := centis % 6000
	return fmt.Sprintf("[%02d:%02d.%02d]", min, rem/100, rem%100)
}
