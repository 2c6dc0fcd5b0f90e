// Package metadata fetches track metadata for video links so they can be
// matched against Spotify's catalog.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// youtubeOEmbedURL is the YouTube oEmbed API endpoint.
	youtubeOEmbedURL = "https://www.youtube.com/oembed"
	// requestTimeout bounds a single metadata fetch.
	requestTimeout = 10 * time.Second
	// splitParts is the expected number of parts when splitting "Artist - Title".
	splitParts = 2
)

// ErrUnavailable is returned when a video is private, deleted, region-blocked
// or the metadata fetch fails. Callers treat this as a routine not-found
// condition rather than a hard error.
var ErrUnavailable = errors.New("video metadata unavailable")

// TrackInfo holds the title/artist text extracted for a video.
type TrackInfo struct {
	Title  string
	Artist string
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// YouTubeResolver resolves YouTube video IDs to track information via the
// oEmbed API. oEmbed needs no API key and answers for any public video.
type YouTubeResolver struct {
	client    *http.Client
	oembedURL string
}

// NewYouTubeResolver creates a resolver with a bounded request timeout.
func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{
		client:    &http.Client{Timeout: requestTimeout},
		oembedURL: youtubeOEmbedURL,
	}
}

// Resolve fetches title and uploader for the given video ID and derives
// best-effort track info from them.
func (r *YouTubeResolver) Resolve(ctx context.Context, videoID string) (TrackInfo, error) {
	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	reqURL := fmt.Sprintf("%s?url=%s&format=json", r.oembedURL, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return TrackInfo{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return TrackInfo{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// oEmbed answers 400/401/404 for deleted, private and region-blocked
	// videos; all of them are the same routine case for us.
	if resp.StatusCode != http.StatusOK {
		return TrackInfo{}, fmt.Errorf("%w: oEmbed status %d", ErrUnavailable, resp.StatusCode)
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TrackInfo{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	if body.Title == "" {
		return TrackInfo{}, fmt.Errorf("%w: empty title", ErrUnavailable)
	}

	title, artist := deriveTrackInfo(body.Title, body.AuthorName)
	return TrackInfo{Title: title, Artist: artist}, nil
}

// deriveTrackInfo turns a raw video title and channel name into track info.
func deriveTrackInfo(rawTitle, authorName string) (title, artist string) {
	cleaned := CleanTitle(rawTitle)

	// "Artist - Title" is the dominant upload convention.
	if strings.Contains(cleaned, " - ") {
		parts := strings.SplitN(cleaned, " - ", splitParts)
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}

	// "Title | Artist" shows up on label channels.
	if strings.Contains(cleaned, " | ") {
		parts := strings.SplitN(cleaned, " | ", splitParts)
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}

	return cleaned, ExtractArtist(authorName)
}

var (
	bracketNoiseRegex = regexp.MustCompile(
		`(?i)\s*[\(\[]\s*(?:official\s+)?(?:music\s+)?(?:video|audio|lyric(?:s)?(?:\s+video)?|visualizer|hd|hq|4k|remaster(?:ed)?(?:\s+\d{4})?)\s*[\)\]]`)
	trailingNoiseRegex = regexp.MustCompile(
		`(?i)\s+(?:official\s+)?(?:music\s+)?(?:video|audio|lyrics?)\s*$`)
	camelCaseRegex = regexp.MustCompile(`([a-z])([A-Z])`)
)

// CleanTitle strips common upload noise ("(Official Video)", "[Lyrics]",
// quality tags) from a video title. Best-effort heuristic: a miss degrades
// match quality, nothing more.
func CleanTitle(title string) string {
	cleaned := bracketNoiseRegex.ReplaceAllString(title, "")
	cleaned = trailingNoiseRegex.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// ExtractArtist derives an artist name from a channel name, recognizing
// VEVO and auto-generated " - Topic" artist channels.
func ExtractArtist(authorName string) string {
	if strings.HasSuffix(authorName, "VEVO") {
		// "RickAstleyVEVO" -> "Rick Astley"
		name := strings.TrimSuffix(authorName, "VEVO")
		return strings.TrimSpace(camelCaseRegex.ReplaceAllString(name, "$1 $2"))
	}

	if strings.HasSuffix(authorName, " - Topic") {
		return strings.TrimSuffix(authorName, " - Topic")
	}

	return authorName
}
