// Package linkextract parses chat message text into track candidates:
// YouTube links, Spotify track links and explicit mention commands.
package linkextract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CandidateKind discriminates the origin of a candidate.
type CandidateKind int

const (
	// KindYouTubeLink is a candidate extracted from a YouTube URL.
	KindYouTubeLink CandidateKind = iota
	// KindSpotifyLink is a candidate extracted from a Spotify track URL or URI.
	KindSpotifyLink
	// KindManual is a candidate from an explicit "add: Artist - Song" command.
	KindManual
)

// Candidate is a single link or command extracted from one message,
// pending resolution.
type Candidate struct {
	Kind    CandidateKind
	VideoID string // KindYouTubeLink
	TrackID string // KindSpotifyLink
	Artist  string // KindManual
	Song    string // KindManual
}

// Command is a structured instruction addressed to the bot via its mention token.
type Command int

const (
	// CommandNone means the message carried no mention command.
	CommandNone Command = iota
	// CommandAdd is a well-formed "add: Artist - Song" request.
	CommandAdd
	// CommandHelp is a request for usage instructions.
	CommandHelp
	// CommandMalformed is a mention the bot could not parse (e.g. "add:"
	// without the " - " separator).
	CommandMalformed
)

// Result holds everything extracted from one message.
type Result struct {
	Candidates []Candidate
	Command    Command
}

var (
	// Video IDs are exactly 11 characters; the bounded match truncates any
	// trailing query params, punctuation or Slack link markup.
	youtubeRegex = regexp.MustCompile(
		`(?:https?://)?(?:www\.|m\.|music\.)?(?:youtube\.com/watch\?(?:\S*?&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	spotifyTrackRegex = regexp.MustCompile(
		`(?:https?://)?(?:open\.)?spotify\.com/(?:intl-[a-z]{2}/)?track/([a-zA-Z0-9]{22})`)
	spotifyURIRegex = regexp.MustCompile(`spotify:track:([a-zA-Z0-9]{22})`)

	addCommandRegex = regexp.MustCompile(`(?is)^\s*add:\s*(.+)$`)
)

const manualSeparator = " - "

// Extractor parses message text. The bot's own mention token (as it appears
// in Slack message text, e.g. "<@U0123ABCD>") enables command detection.
type Extractor struct {
	mentionToken string
}

// New creates an extractor for the bot identified by userID.
func New(botUserID string) *Extractor {
	token := ""
	if botUserID != "" {
		token = "<@" + botUserID + ">"
	}
	return &Extractor{mentionToken: token}
}

// Extract scans text for link candidates and mention commands. Candidates
// are de-duplicated within the message; order of first appearance is kept.
func (e *Extractor) Extract(text string) Result {
	text = normalizeText(text)

	res := Result{}
	seen := make(map[string]struct{})

	add := func(key string, c Candidate) {
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		res.Candidates = append(res.Candidates, c)
	}

	for _, m := range youtubeRegex.FindAllStringSubmatch(text, -1) {
		add("yt:"+m[1], Candidate{Kind: KindYouTubeLink, VideoID: m[1]})
	}
	for _, m := range spotifyTrackRegex.FindAllStringSubmatch(text, -1) {
		add("sp:"+m[1], Candidate{Kind: KindSpotifyLink, TrackID: m[1]})
	}
	for _, m := range spotifyURIRegex.FindAllStringSubmatch(text, -1) {
		add("sp:"+m[1], Candidate{Kind: KindSpotifyLink, TrackID: m[1]})
	}

	if cmd, candidate, ok := e.parseMention(text); ok {
		res.Command = cmd
		if cmd == CommandAdd {
			add("manual:"+candidate.Artist+"/"+candidate.Song, candidate)
		}
	}

	return res
}

// parseMention handles "<@BOT> add: Artist - Song" and "<@BOT> help".
func (e *Extractor) parseMention(text string) (Command, Candidate, bool) {
	if e.mentionToken == "" || !strings.HasPrefix(text, e.mentionToken) {
		return CommandNone, Candidate{}, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(text, e.mentionToken))
	if rest == "" || strings.EqualFold(rest, "help") {
		return CommandHelp, Candidate{}, true
	}

	m := addCommandRegex.FindStringSubmatch(rest)
	if m == nil {
		// Mention without a recognized command; if it carries links those
		// were already extracted, otherwise treat as malformed.
		if youtubeRegex.MatchString(rest) || spotifyTrackRegex.MatchString(rest) || spotifyURIRegex.MatchString(rest) {
			return CommandNone, Candidate{}, false
		}
		return CommandMalformed, Candidate{}, true
	}

	artist, song, ok := splitArtistSong(m[1])
	if !ok {
		return CommandMalformed, Candidate{}, true
	}

	return CommandAdd, Candidate{Kind: KindManual, Artist: artist, Song: song}, true
}

// splitArtistSong splits "Artist - Song Name" on the first " - " separator.
func splitArtistSong(s string) (artist, song string, ok bool) {
	parts := strings.SplitN(s, manualSeparator, 2)
	if len(parts) != 2 {
		return "", "", false
	}

	artist = strings.TrimSpace(parts[0])
	song = strings.TrimSpace(parts[1])
	if artist == "" || song == "" {
		return "", "", false
	}
	return artist, song, true
}

func normalizeText(text string) string {
	text = norm.NFKC.String(text)
	return strings.TrimSpace(text)
}
