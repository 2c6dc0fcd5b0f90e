// Package spotify provides Spotify Web API integration for track search and
// playlist management.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"groovebot/internal/core"
	"groovebot/pkg/fuzzy"
)

const (
	// MaxTrackSearchResults limits how many search hits are scored per query
	MaxTrackSearchResults = 10
	// playlistPageSize is the Spotify API page size for playlist reads
	playlistPageSize = 100
	// defaultAPIBaseURL is the Spotify Web API root for direct requests
	defaultAPIBaseURL = "https://api.spotify.com/v1"
	// MinMatchScore is the lowest similarity accepted as a search match
	MinMatchScore = 0.3
)

type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger
	client *spotify.Client

	oauthConf  *oauth2.Config
	httpClient *http.Client
	apiBaseURL string

	// Write requests manage the access token directly so a 401 can force
	// exactly one refresh-and-retry.
	tokenMutex  sync.Mutex
	accessToken *oauth2.Token
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
		oauthConf: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		httpClient: &http.Client{},
		apiBaseURL: defaultAPIBaseURL,
	}
}

// Authenticate builds the API client from the configured refresh token and
// verifies the credentials with a probe request.
func (c *Client) Authenticate(ctx context.Context) error {
	seed := &oauth2.Token{RefreshToken: c.config.RefreshToken}
	source := c.oauthConf.TokenSource(ctx, seed)

	c.client = spotify.New(oauth2.NewClient(ctx, source))

	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}

	c.logger.Info("Authenticated with Spotify",
		zap.String("user", user.DisplayName),
		zap.String("playlistID", c.config.PlaylistID))

	return nil
}

// SearchTrack searches Spotify for the given artist and song, scores the
// results against the query and returns the best match. Returns
// core.ErrNotFound when nothing scores above the acceptance floor.
func (c *Client) SearchTrack(ctx context.Context, artist, song string) (*core.Track, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	query := strings.TrimSpace(artist + " " + song)
	if query == "" {
		return nil, core.ErrNotFound
	}

	results, err := c.client.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Limit(MaxTrackSearchResults))
	if err != nil {
		return nil, fmt.Errorf("%w: search failed: %v", core.ErrUpstream, err)
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, core.ErrNotFound
	}

	best, score := c.bestMatch(results.Tracks.Tracks, artist, song)
	if best == nil || score < MinMatchScore {
		c.logger.Debug("No acceptable search match",
			zap.String("query", query),
			zap.Float64("bestScore", score))
		return nil, core.ErrNotFound
	}

	c.logger.Debug("Search match selected",
		zap.String("query", query),
		zap.String("trackID", best.ID),
		zap.Float64("score", score))

	return best, nil
}

// bestMatch scores candidates once against the query and keeps the top one.
func (c *Client) bestMatch(candidates []spotify.FullTrack, artist, song string) (*core.Track, float64) {
	queryTitle := fuzzy.NormalizeTitle(song)
	queryArtist := fuzzy.NormalizeArtist(artist)

	var best *core.Track
	bestScore := -1.0

	for i := range candidates {
		track := convertSpotifyTrack(&candidates[i])

		titleScore := fuzzy.Similarity(fuzzy.NormalizeTitle(track.Title), queryTitle)
		artistScore := fuzzy.Similarity(fuzzy.NormalizeArtist(track.Artist), queryArtist)

		score := 0.6*titleScore + 0.4*artistScore
		if score > bestScore {
			bestScore = score
			best = &track
		}
	}

	return best, bestScore
}

// GetTrack looks up a track by its Spotify ID. Returns core.ErrNotFound for
// IDs Spotify does not know.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	track, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		var apiErr spotify.Error
		if errors.As(err, &apiErr) &&
			(apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusBadRequest) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get track: %v", core.ErrUpstream, err)
	}

	coreTrack := convertSpotifyTrack(track)
	return &coreTrack, nil
}

// GetPlaylistTrackIDs reads the full configured playlist, page by page, and
// returns all track IDs in playlist order.
func (c *Client) GetPlaylistTrackIDs(ctx context.Context) ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	playlistID := spotify.ID(c.config.PlaylistID)
	var allTrackIDs []string
	offset := 0

	for {
		items, err := c.client.GetPlaylistItems(ctx, playlistID,
			spotify.Limit(playlistPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to get playlist items: %v", core.ErrUpstream, err)
		}

		for i := range items.Items {
			// Episodes and removed items have no track payload.
			if items.Items[i].Track.Track != nil {
				allTrackIDs = append(allTrackIDs, string(items.Items[i].Track.Track.ID))
			}
		}

		if len(items.Items) < playlistPageSize {
			break
		}
		offset += playlistPageSize
	}

	c.logger.Debug("Retrieved playlist tracks",
		zap.String("playlistID", c.config.PlaylistID),
		zap.Int("count", len(allTrackIDs)))

	return allTrackIDs, nil
}

// AddToPlaylist appends a track to the configured playlist using the
// playlist items endpoint. A 401 response triggers exactly one token refresh
// and retry before giving up.
func (c *Client) AddToPlaylist(ctx context.Context, trackID string) error {
	status, err := c.postPlaylistItem(ctx, trackID, false)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		c.logger.Info("Playlist write unauthorized, refreshing token",
			zap.String("trackID", trackID))
		status, err = c.postPlaylistItem(ctx, trackID, true)
		if err != nil {
			return err
		}
	}

	switch {
	case status == http.StatusCreated || status == http.StatusOK:
		c.logger.Info("Track added to playlist",
			zap.String("trackID", trackID),
			zap.String("playlistID", c.config.PlaylistID))
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: playlist %s", core.ErrNotFound, c.config.PlaylistID)
	default:
		return fmt.Errorf("%w: playlist write returned status %d", core.ErrUpstream, status)
	}
}

// postPlaylistItem performs one playlist append request and returns the HTTP
// status. Transport failures are mapped to core.ErrUpstream.
func (c *Client) postPlaylistItem(ctx context.Context, trackID string, forceRefresh bool) (int, error) {
	token, err := c.writeToken(ctx, forceRefresh)
	if err != nil {
		return 0, fmt.Errorf("%w: token refresh failed: %v", core.ErrUpstream, err)
	}

	payload, err := json.Marshal(map[string][]string{
		"uris": {"spotify:track:" + trackID},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode request body: %w", err)
	}

	url := fmt.Sprintf("%s/playlists/%s/items", c.apiBaseURL, c.config.PlaylistID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: playlist write failed: %v", core.ErrUpstream, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// writeToken returns a valid access token for direct write requests,
// exchanging the refresh token when the cached one is missing, expired or a
// refresh is forced.
func (c *Client) writeToken(ctx context.Context, forceRefresh bool) (string, error) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	if !forceRefresh && c.accessToken != nil && c.accessToken.Valid() {
		return c.accessToken.AccessToken, nil
	}

	seed := &oauth2.Token{RefreshToken: c.config.RefreshToken}
	token, err := c.oauthConf.TokenSource(ctx, seed).Token()
	if err != nil {
		return "", err
	}

	c.accessToken = token
	return token.AccessToken, nil
}

func convertSpotifyTrack(track *spotify.FullTrack) core.Track {
	var artists []string
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	var year int
	if len(track.Album.ReleaseDate) >= 4 {
		if _, err := fmt.Sscanf(track.Album.ReleaseDate[:4], "%d", &year); err != nil {
			year = 0
		}
	}

	return core.Track{
		ID:       string(track.ID),
		Title:    track.Name,
		Artist:   strings.Join(artists, ", "),
		Album:    track.Album.Name,
		Year:     year,
		Duration: time.Duration(track.Duration) * time.Millisecond,
		URL:      track.ExternalURLs["spotify"],
	}
}
