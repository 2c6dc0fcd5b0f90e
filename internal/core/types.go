package core

import (
	"context"
	"errors"
	"time"

	"groovebot/pkg/metadata"
)

// Sentinel errors distinguishing processing outcomes from plain failures.
var (
	// ErrNotFound indicates the referenced track does not exist or no
	// acceptable match was found on Spotify.
	ErrNotFound = errors.New("track not found")
	// ErrUpstream indicates an upstream service failed or timed out.
	ErrUpstream = errors.New("upstream service error")
)

// Outcome is the terminal result of processing one track candidate.
type Outcome int

const (
	// OutcomeAdded means the track was appended to the playlist
	OutcomeAdded Outcome = iota
	// OutcomeDuplicate means the track was already on the playlist
	OutcomeDuplicate
	// OutcomeNotFound means no Spotify track could be resolved
	OutcomeNotFound
	// OutcomeError means an upstream call failed
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Year     int
	Duration time.Duration
	URL      string
}

// CandidateResult pairs a processed candidate with its outcome and, when
// successful, the resolved track.
type CandidateResult struct {
	Outcome Outcome
	Track   *Track
	Err     error
}

// MusicService is the playlist backend: search, lookup, membership and append.
type MusicService interface {
	SearchTrack(ctx context.Context, artist, song string) (*Track, error)
	GetTrack(ctx context.Context, trackID string) (*Track, error)
	GetPlaylistTrackIDs(ctx context.Context) ([]string, error)
	AddToPlaylist(ctx context.Context, trackID string) error
}

// VideoResolver resolves a video ID to its title metadata.
type VideoResolver interface {
	Resolve(ctx context.Context, videoID string) (metadata.TrackInfo, error)
}

// MembershipCache is the best-effort playlist membership set used for
// duplicate detection.
type MembershipCache interface {
	Has(trackID string) bool
	Add(trackID string)
	Load(trackIDs []string)
	Stale(ttl time.Duration) bool
	Size() int
}
