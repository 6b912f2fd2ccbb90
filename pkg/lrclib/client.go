package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Client fetches lyrics text from the LRCLib API. The pipeline does its own
// timing, so only the plain (unsynchronised) lyrics are of interest here.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	requestTimeout time.Duration
	maxRetries     int
}

// LRCLibResponse is one LRCLib search result.
type LRCLibResponse struct {
	ID           int    `json:"id"`
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	AlbumName    string `json:"albumName"`
	Duration     int    `json:"duration"`
	Instrumental bool   `json:"instrumental"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL:        "https://lrclib.net/api",
		requestTimeout: 5 * time.Second,
		maxRetries:     3,
	}
}

// GetPlainLyrics searches LRCLib and returns the lyrics text of the best
// match. When only synced lyrics exist their timestamps are stripped, since
// foreign timing must not leak into the alignment.
func (c *Client) GetPlainLyrics(ctx context.Context, title, artist string, duration float64) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)
	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("INFO: [LRCLib] Retrying request (attempt %d/%d)", attempt, c.maxRetries)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
		}

		req, reqErr := http.NewRequestWithContext(timeoutCtx, "GET", searchURL, nil)
		if reqErr != nil {
			return "", fmt.Errorf("failed to create request: %w", reqErr)
		}
		req.Header.Set("User-Agent", "lyralign/1.0")

		resp, err = c.httpClient.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}

		if err != nil {
			log.Printf("WARN: [LRCLib] Request failed: %v (attempt %d/%d)", err, attempt+1, c.maxRetries)
		} else {
			log.Printf("WARN: [LRCLib] Request returned status %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.maxRetries)
			resp.Body.Close()
		}

		if attempt == c.maxRetries {
			if err != nil {
				return "", fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
			}
			return "", fmt.Errorf("request failed after %d attempts with status %d", attempt+1, resp.StatusCode)
		}
	}
	defer resp.Body.Close()

	var results []LRCLibResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	log.Printf("INFO: [LRCLib] Found %d results for '%s - %s'", len(results), title, artist)
	if len(results) == 0 {
		return "", fmt.Errorf("no lyrics found for '%s - %s'", title, artist)
	}

	best := findBestMatch(results, title, artist, int(duration))
	if best.Instrumental {
		return "", fmt.Errorf("'%s - %s' is instrumental", title, artist)
	}

	if best.PlainLyrics != "" {
		log.Printf("INFO: [LRCLib] Selected plain lyrics for '%s - %s' (duration: %ds)",
			best.TrackName, best.ArtistName, best.Duration)
		return best.PlainLyrics, nil
	}
	if best.SyncedLyrics != "" {
		log.Printf("INFO: [LRCLib] Stripping timestamps from synced lyrics for '%s - %s'",
			best.TrackName, best.ArtistName)
		return StripTimestamps(best.SyncedLyrics), nil
	}

	return "", fmt.Errorf("selected result has no lyrics for '%s - %s'", title, artist)
}

// findBestMatch prefers exact title+artist matches, then title matches, and
// within the pool the result closest to the target duration.
func findBestMatch(results []LRCLibResponse, targetTitle, targetArtist string, targetDuration int) *LRCLibResponse {
	var exactMatches []*LRCLibResponse
	var titleMatches []*LRCLibResponse

	for i := range results {
		r := &results[i]
		if containsIgnoreCase(r.TrackName, targetTitle) && containsIgnoreCase(r.ArtistName, targetArtist) {
			exactMatches = append(exactMatches, r)
		} else if containsIgnoreCase(r.TrackName, targetTitle) {
			titleMatches = append(titleMatches, r)
		}
	}

	matchPool := exactMatches
	if len(matchPool) == 0 {
		matchPool = titleMatches
	}
	if len(matchPool) == 0 {
		matchPool = make([]*LRCLibResponse, len(results))
		for i := range results {
			matchPool[i] = &results[i]
		}
	}

	if targetDuration > 0 {
		best := matchPool[0]
		minDiff := abs(best.Duration - targetDuration)
		for _, m := range matchPool {
			if diff := abs(m.Duration - targetDuration); diff < minDiff {
				minDiff = diff
				best = m
			}
		}
		return best
	}

	return matchPool[0]
}

var timestampRe = regexp.MustCompile(`\[\d{2}:\d{2}(?:\.\d{1,3})?\]`)

// StripTimestamps removes [mm:ss.xx] tags from synced lyrics, leaving the
// bare text lines.
func StripTimestamps(synced string) string {
	var lines []string
	for _, line := range strings.Split(synced, "\n") {
		line = strings.TrimSpace(timestampRe.ReplaceAllString(line, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
