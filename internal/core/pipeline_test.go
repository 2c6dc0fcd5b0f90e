package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"groovebot/internal/store"
	"groovebot/pkg/linkextract"
	"groovebot/pkg/metadata"
)

type fakeMusic struct {
	tracks        map[string]*Track // by track ID
	searchResults map[string]*Track // by "artist|song"
	searchErr     error
	addErr        error
	listErr       error
	playlist      []string
	addCalls      []string
	listCalls     int
}

func (m *fakeMusic) SearchTrack(_ context.Context, artist, song string) (*Track, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if track, ok := m.searchResults[artist+"|"+song]; ok {
		return track, nil
	}
	return nil, ErrNotFound
}

func (m *fakeMusic) GetTrack(_ context.Context, trackID string) (*Track, error) {
	if track, ok := m.tracks[trackID]; ok {
		return track, nil
	}
	return nil, ErrNotFound
}

func (m *fakeMusic) GetPlaylistTrackIDs(_ context.Context) ([]string, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.playlist, nil
}

func (m *fakeMusic) AddToPlaylist(_ context.Context, trackID string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.addCalls = append(m.addCalls, trackID)
	return nil
}

type fakeVideo struct {
	videos map[string]metadata.TrackInfo
}

func (v *fakeVideo) Resolve(_ context.Context, videoID string) (metadata.TrackInfo, error) {
	if info, ok := v.videos[videoID]; ok {
		return info, nil
	}
	return metadata.TrackInfo{}, fmt.Errorf("oembed status 404: %w", metadata.ErrUnavailable)
}

func newTestPipeline(music *fakeMusic, video *fakeVideo) *Pipeline {
	cache := store.NewDedupStore(1000, 0.001)
	return NewPipeline(music, video, cache, time.Second, 5*time.Minute, zap.NewNop())
}

func spotifyCandidate(trackID string) linkextract.Candidate {
	return linkextract.Candidate{Kind: linkextract.KindSpotifyLink, TrackID: trackID}
}

func TestPipeline_SpotifyLinkAdded(t *testing.T) {
	music := &fakeMusic{
		tracks: map[string]*Track{
			"t1": {ID: "t1", Title: "One More Time", Artist: "Daft Punk"},
		},
	}
	p := newTestPipeline(music, &fakeVideo{})

	res := p.Process(context.Background(), spotifyCandidate("t1"))

	if res.Outcome != OutcomeAdded {
		t.Fatalf("expected added, got %s (%v)", res.Outcome, res.Err)
	}
	if len(music.addCalls) != 1 || music.addCalls[0] != "t1" {
		t.Errorf("expected one write for t1, got %v", music.addCalls)
	}
	if res.Track == nil || res.Track.Title != "One More Time" {
		t.Errorf("expected resolved track in result, got %+v", res.Track)
	}
}

func TestPipeline_DuplicateYieldsZeroWrites(t *testing.T) {
	music := &fakeMusic{
		tracks: map[string]*Track{
			"t1": {ID: "t1", Title: "Africa", Artist: "Toto"},
		},
		playlist: []string{"t1"},
	}
	p := newTestPipeline(music, &fakeVideo{})

	res := p.Process(context.Background(), spotifyCandidate("t1"))

	if res.Outcome != OutcomeDuplicate {
		t.Fatalf("expected duplicate, got %s (%v)", res.Outcome, res.Err)
	}
	if len(music.addCalls) != 0 {
		t.Errorf("duplicate must not write, got %v", music.addCalls)
	}
}

func TestPipeline_SpotifyLinkUnknownTrack(t *testing.T) {
	p := newTestPipeline(&fakeMusic{}, &fakeVideo{})

	res := p.Process(context.Background(), spotifyCandidate("nope"))

	if res.Outcome != OutcomeNotFound {
		t.Errorf("expected not_found for unknown track ID, got %s", res.Outcome)
	}
}

func TestPipeline_ManualNoSearchResults(t *testing.T) {
	music := &fakeMusic{}
	p := newTestPipeline(music, &fakeVideo{})

	res := p.Process(context.Background(), linkextract.Candidate{
		Kind: linkextract.KindManual, Artist: "Nobody", Song: "Nothing",
	})

	if res.Outcome != OutcomeNotFound {
		t.Fatalf("expected not_found, got %s", res.Outcome)
	}
	if len(music.addCalls) != 0 {
		t.Errorf("not_found must not write, got %v", music.addCalls)
	}
}

func TestPipeline_ManualAdded(t *testing.T) {
	music := &fakeMusic{
		searchResults: map[string]*Track{
			"Queen|Bohemian Rhapsody": {ID: "t9", Title: "Bohemian Rhapsody", Artist: "Queen"},
		},
	}
	p := newTestPipeline(music, &fakeVideo{})

	res := p.Process(context.Background(), linkextract.Candidate{
		Kind: linkextract.KindManual, Artist: "Queen", Song: "Bohemian Rhapsody",
	})

	if res.Outcome != OutcomeAdded {
		t.Fatalf("expected added, got %s (%v)", res.Outcome, res.Err)
	}
}

func TestPipeline_YouTubeLinkResolvedAndAdded(t *testing.T) {
	music := &fakeMusic{
		searchResults: map[string]*Track{
			"Daft Punk|One More Time": {ID: "t1", Title: "One More Time", Artist: "Daft Punk"},
		},
	}
	video := &fakeVideo{
		videos: map[string]metadata.TrackInfo{
			"dQw4w9WgXcQ": {Artist: "Daft Punk", Title: "One More Time"},
		},
	}
	p := newTestPipeline(music, video)

	res := p.Process(context.Background(), linkextract.Candidate{
		Kind: linkextract.KindYouTubeLink, VideoID: "dQw4w9WgXcQ",
	})

	if res.Outcome != OutcomeAdded {
		t.Fatalf("expected added, got %s (%v)", res.Outcome, res.Err)
	}
	if len(music.addCalls) != 1 {
		t.Errorf("expected one write, got %v", music.addCalls)
	}
}

func TestPipeline_YouTubeVideoUnavailable(t *testing.T) {
	p := newTestPipeline(&fakeMusic{}, &fakeVideo{})

	res := p.Process(context.Background(), linkextract.Candidate{
		Kind: linkextract.KindYouTubeLink, VideoID: "gone0000000",
	})

	if res.Outcome != OutcomeNotFound {
		t.Errorf("expected not_found for unavailable video, got %s", res.Outcome)
	}
}

func TestPipeline_UpstreamFailureIsError(t *testing.T) {
	music := &fakeMusic{
		searchErr: fmt.Errorf("%w: search timed out", ErrUpstream),
	}
	p := newTestPipeline(music, &fakeVideo{})

	res := p.Process(context.Background(), linkextract.Candidate{
		Kind: linkextract.KindManual, Artist: "Queen", Song: "Bohemian Rhapsody",
	})

	if res.Outcome != OutcomeError {
		t.Fatalf("expected error outcome, got %s", res.Outcome)
	}
	if !errors.Is(res.Err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", res.Err)
	}
}

func TestPipeline_WriteFailureIsError(t *testing.T) {
	music := &fakeMusic{
		tracks: map[string]*Track{
			"t1": {ID: "t1", Title: "Karma Police", Artist: "Radiohead"},
		},
		addErr: fmt.Errorf("%w: playlist write returned status 500", ErrUpstream),
	}
	p := newTestPipeline(music, &fakeVideo{})

	res := p.Process(context.Background(), spotifyCandidate("t1"))

	if res.Outcome != OutcomeError {
		t.Errorf("expected error outcome on write failure, got %s", res.Outcome)
	}
}

func TestPipeline_RefreshFailureTolerated(t *testing.T) {
	music := &fakeMusic{
		tracks: map[string]*Track{
			"t1": {ID: "t1", Title: "Glory Box", Artist: "Portishead"},
		},
		listErr: fmt.Errorf("%w: playlist read failed", ErrUpstream),
	}
	p := newTestPipeline(music, &fakeVideo{})

	// Never-loaded cache is stale, refresh fails, the write still proceeds.
	res := p.Process(context.Background(), spotifyCandidate("t1"))

	if res.Outcome != OutcomeAdded {
		t.Fatalf("expected added despite refresh failure, got %s (%v)", res.Outcome, res.Err)
	}
}

func TestPipeline_Idempotence(t *testing.T) {
	music := &fakeMusic{
		tracks: map[string]*Track{
			"t1": {ID: "t1", Title: "Take On Me", Artist: "a-ha"},
		},
	}
	p := newTestPipeline(music, &fakeVideo{})

	first := p.Process(context.Background(), spotifyCandidate("t1"))
	second := p.Process(context.Background(), spotifyCandidate("t1"))

	if first.Outcome != OutcomeAdded {
		t.Fatalf("expected first pass added, got %s", first.Outcome)
	}
	if second.Outcome != OutcomeDuplicate {
		t.Fatalf("expected second pass duplicate, got %s", second.Outcome)
	}
	if len(music.addCalls) != 1 {
		t.Errorf("expected exactly one write across both passes, got %v", music.addCalls)
	}
}

func TestPipeline_WarmUp(t *testing.T) {
	music := &fakeMusic{playlist: []string{"t1", "t2"}}
	p := newTestPipeline(music, &fakeVideo{})

	if err := p.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp failed: %v", err)
	}
	if p.PlaylistSize() != 2 {
		t.Errorf("expected playlist size 2, got %d", p.PlaylistSize())
	}

	// A fresh cache must not trigger another authoritative load.
	res := p.Process(context.Background(), spotifyCandidate("t1"))
	if res.Outcome != OutcomeNotFound {
		// t1 is in the cache but unknown to GetTrack; lookup runs first.
		t.Errorf("expected not_found for unknown track, got %s", res.Outcome)
	}
	if music.listCalls != 1 {
		t.Errorf("expected single playlist load, got %d", music.listCalls)
	}
}
