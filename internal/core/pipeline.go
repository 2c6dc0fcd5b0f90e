package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"groovebot/pkg/linkextract"
	"groovebot/pkg/metadata"
)

// ErrMalformedCommand indicates a manual command that passed extraction but
// is missing its artist or song part.
var ErrMalformedCommand = errors.New("malformed command")

// Pipeline resolves a single track candidate into an outcome: look the track
// up, check playlist membership, append when new.
type Pipeline struct {
	music          MusicService
	video          VideoResolver
	cache          MembershipCache
	logger         *zap.Logger
	requestTimeout time.Duration
	refreshTTL     time.Duration
}

func NewPipeline(
	music MusicService,
	video VideoResolver,
	cache MembershipCache,
	requestTimeout time.Duration,
	refreshTTL time.Duration,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		music:          music,
		video:          video,
		cache:          cache,
		logger:         logger,
		requestTimeout: requestTimeout,
		refreshTTL:     refreshTTL,
	}
}

// Process resolves one candidate to completion. It never returns transport
// errors directly; every failure is classified into an outcome.
func (p *Pipeline) Process(ctx context.Context, candidate linkextract.Candidate) CandidateResult {
	switch candidate.Kind {
	case linkextract.KindSpotifyLink:
		return p.processSpotifyLink(ctx, candidate.TrackID)
	case linkextract.KindYouTubeLink:
		return p.processYouTubeLink(ctx, candidate.VideoID)
	case linkextract.KindManual:
		return p.processManual(ctx, candidate.Artist, candidate.Song)
	default:
		return CandidateResult{
			Outcome: OutcomeError,
			Err:     fmt.Errorf("unknown candidate kind %d", candidate.Kind),
		}
	}
}

// processSpotifyLink verifies the track exists, then appends it. The search
// step is bypassed since the ID is already known.
func (p *Pipeline) processSpotifyLink(ctx context.Context, trackID string) CandidateResult {
	track, err := p.getTrack(ctx, trackID)
	if err != nil {
		return p.classify(err, nil)
	}
	return p.appendTrack(ctx, track)
}

// processYouTubeLink resolves the video title, derives search terms, and runs
// the search path.
func (p *Pipeline) processYouTubeLink(ctx context.Context, videoID string) CandidateResult {
	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	info, err := p.video.Resolve(callCtx, videoID)
	if err != nil {
		if errors.Is(err, metadata.ErrUnavailable) {
			p.logger.Debug("Video metadata unavailable",
				zap.String("videoID", videoID))
			return CandidateResult{Outcome: OutcomeNotFound, Err: err}
		}
		return CandidateResult{Outcome: OutcomeError, Err: err}
	}

	return p.searchAndAppend(ctx, info.Artist, info.Title)
}

// processManual runs the search path from explicit artist and song terms.
func (p *Pipeline) processManual(ctx context.Context, artist, song string) CandidateResult {
	if artist == "" || song == "" {
		return CandidateResult{Outcome: OutcomeNotFound, Err: ErrMalformedCommand}
	}
	return p.searchAndAppend(ctx, artist, song)
}

func (p *Pipeline) searchAndAppend(ctx context.Context, artist, song string) CandidateResult {
	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	track, err := p.music.SearchTrack(callCtx, artist, song)
	if err != nil {
		return p.classify(err, nil)
	}

	return p.appendTrack(ctx, track)
}

// appendTrack checks playlist membership and writes the track when new.
func (p *Pipeline) appendTrack(ctx context.Context, track *Track) CandidateResult {
	p.refreshIfStale(ctx)

	if p.cache.Has(track.ID) {
		p.logger.Debug("Track already on playlist",
			zap.String("trackID", track.ID),
			zap.String("title", track.Title))
		return CandidateResult{Outcome: OutcomeDuplicate, Track: track}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	if err := p.music.AddToPlaylist(callCtx, track.ID); err != nil {
		return p.classify(err, track)
	}

	// Record the write so rapid repeats are caught before the next refresh.
	p.cache.Add(track.ID)

	p.logger.Info("Track appended to playlist",
		zap.String("trackID", track.ID),
		zap.String("artist", track.Artist),
		zap.String("title", track.Title))

	return CandidateResult{Outcome: OutcomeAdded, Track: track}
}

// refreshIfStale reloads the membership cache from the playlist when the last
// authoritative load is too old. Refresh failures are tolerated; the stale
// cache keeps serving and the playlist write stays authoritative.
func (p *Pipeline) refreshIfStale(ctx context.Context) {
	if !p.cache.Stale(p.refreshTTL) {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	trackIDs, err := p.music.GetPlaylistTrackIDs(callCtx)
	if err != nil {
		p.logger.Warn("Playlist refresh failed, keeping stale cache",
			zap.Error(err))
		return
	}

	p.cache.Load(trackIDs)
	p.logger.Debug("Playlist membership cache refreshed",
		zap.Int("tracks", len(trackIDs)))
}

// PlaylistSize returns the cached playlist track count.
func (p *Pipeline) PlaylistSize() int {
	return p.cache.Size()
}

// WarmUp loads the membership cache once, typically at startup.
func (p *Pipeline) WarmUp(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	trackIDs, err := p.music.GetPlaylistTrackIDs(callCtx)
	if err != nil {
		return fmt.Errorf("initial playlist load failed: %w", err)
	}

	p.cache.Load(trackIDs)
	p.logger.Info("Playlist membership cache loaded",
		zap.Int("tracks", len(trackIDs)))
	return nil
}

func (p *Pipeline) getTrack(ctx context.Context, trackID string) (*Track, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()
	return p.music.GetTrack(callCtx, trackID)
}

// classify maps component errors onto outcomes.
func (p *Pipeline) classify(err error, track *Track) CandidateResult {
	if errors.Is(err, ErrNotFound) {
		return CandidateResult{Outcome: OutcomeNotFound, Track: track, Err: err}
	}
	return CandidateResult{Outcome: OutcomeError, Track: track, Err: err}
}
