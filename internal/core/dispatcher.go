package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"groovebot/internal/chat"
	"groovebot/internal/i18n"
	"groovebot/pkg/linkextract"
)

// botDisplayName is the handle shown in help and usage texts.
const botDisplayName = "groovebot"

// Gate limits how many candidate-bearing messages a sender may submit.
type Gate interface {
	Allow(channelID, userID string) bool
}

// MetricsRecorder receives processing metrics. Satisfied by the HTTP server.
type MetricsRecorder interface {
	RecordMessage(msgType, status string)
	RecordOutcome(outcome Outcome)
	RecordAdd(source string)
	RecordDuplicate()
	RecordError(component, errorType string)
	RecordProcessingTime(msgType string, duration time.Duration)
	SetPlaylistSize(size int)
}

// Dispatcher connects the chat frontend to the resolution pipeline: it
// filters incoming messages, extracts candidates, processes each message in
// its own goroutine and emits the feedback reaction.
type Dispatcher struct {
	config    *Config
	logger    *zap.Logger
	frontend  chat.Frontend
	pipeline  *Pipeline
	gate      Gate
	metrics   MetricsRecorder
	localizer *i18n.Localizer

	extractor *linkextract.Extractor
	channels  map[string]struct{}

	runCtx context.Context
	wg     sync.WaitGroup
}

func NewDispatcher(
	config *Config,
	frontend chat.Frontend,
	pipeline *Pipeline,
	gate Gate,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Dispatcher {
	channels := make(map[string]struct{}, len(config.Slack.ChannelIDs))
	for _, id := range config.Slack.ChannelIDs {
		if id != "" {
			channels[id] = struct{}{}
		}
	}

	return &Dispatcher{
		config:    config,
		logger:    logger,
		frontend:  frontend,
		pipeline:  pipeline,
		gate:      gate,
		metrics:   metrics,
		localizer: i18n.NewLocalizer(config.App.Language),
		channels:  channels,
	}
}

// Run starts the frontend, warms the membership cache and blocks in the
// message loop until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.frontend.Start(ctx); err != nil {
		return err
	}

	d.extractor = linkextract.New(d.frontend.BotUserID())
	d.runCtx = ctx

	// A failed warm-up is not fatal; the cache reloads on first use.
	if err := d.pipeline.WarmUp(ctx); err != nil {
		d.logger.Warn("Initial playlist load failed, will retry lazily", zap.Error(err))
	}
	d.metrics.SetPlaylistSize(d.pipeline.PlaylistSize())

	err := d.frontend.Listen(ctx, d.handleMessage)
	d.wg.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleMessage filters one incoming message and hands it to a worker
// goroutine when it carries candidates or a command.
func (d *Dispatcher) handleMessage(msg *chat.Message) {
	if !d.watched(msg.ChannelID) {
		return
	}

	result := d.extractor.Extract(msg.Text)

	switch result.Command {
	case linkextract.CommandHelp:
		d.metrics.RecordMessage("command", "help")
		d.replyThreaded(msg, d.localizer.T("bot.help_message", botDisplayName))
		return
	case linkextract.CommandMalformed:
		// A garbled command that still carries links is handled as a link
		// message; usage feedback would only bury the real result.
		if len(result.Candidates) == 0 {
			d.metrics.RecordMessage("command", "malformed")
			d.react(msg, chat.ReactionNotFound)
			d.replyThreaded(msg, d.localizer.T("error.malformed_command", botDisplayName))
			return
		}
	case linkextract.CommandNone, linkextract.CommandAdd:
	}

	if len(result.Candidates) == 0 {
		return
	}

	if !d.gate.Allow(msg.ChannelID, msg.SenderID) {
		d.logger.Info("Dropping flood-limited message",
			zap.String("channelID", msg.ChannelID),
			zap.String("senderID", msg.SenderID))
		d.metrics.RecordMessage(messageType(result.Candidates), "flood_limited")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.processMessage(d.runCtx, msg, result.Candidates)
	}()
}

// processMessage runs every candidate of one message to completion, then
// reacts once with the aggregate outcome.
func (d *Dispatcher) processMessage(ctx context.Context, msg *chat.Message, candidates []linkextract.Candidate) {
	start := time.Now()
	msgType := messageType(candidates)

	results := make([]CandidateResult, 0, len(candidates))
	for _, candidate := range candidates {
		res := d.pipeline.Process(ctx, candidate)
		results = append(results, res)
		d.recordResult(candidate, res)

		if candidate.Kind == linkextract.KindManual {
			d.replyThreaded(msg, d.manualReply(res))
		} else if d.config.App.DebugReplies && res.Track != nil {
			d.replyThreaded(msg, d.debugReply(candidate, res))
		}
	}

	d.react(msg, aggregateReaction(results))

	d.metrics.RecordMessage(msgType, "processed")
	d.metrics.RecordProcessingTime(msgType, time.Since(start))
	d.metrics.SetPlaylistSize(d.pipeline.PlaylistSize())
}

// recordResult updates per-candidate metrics and logs failures.
func (d *Dispatcher) recordResult(candidate linkextract.Candidate, res CandidateResult) {
	d.metrics.RecordOutcome(res.Outcome)

	switch res.Outcome {
	case OutcomeAdded:
		d.metrics.RecordAdd(candidateSource(candidate))
	case OutcomeDuplicate:
		d.metrics.RecordDuplicate()
	case OutcomeNotFound:
		d.logger.Debug("No track resolved for candidate",
			zap.String("source", candidateSource(candidate)),
			zap.Error(res.Err))
	case OutcomeError:
		errorType := "internal"
		if errors.Is(res.Err, ErrUpstream) {
			errorType = "upstream"
		}
		d.metrics.RecordError("pipeline", errorType)
		d.logger.Error("Candidate processing failed",
			zap.String("source", candidateSource(candidate)),
			zap.Error(res.Err))
	}
}

// aggregateReaction folds per-candidate outcomes into the single feedback
// reaction: any error wins over any not_found, which wins over success.
// Duplicates count as success.
func aggregateReaction(results []CandidateResult) chat.Reaction {
	reaction := chat.ReactionAdded
	for _, res := range results {
		switch res.Outcome {
		case OutcomeError:
			return chat.ReactionError
		case OutcomeNotFound:
			reaction = chat.ReactionNotFound
		case OutcomeAdded, OutcomeDuplicate:
		}
	}
	return reaction
}

// manualReply builds the threaded reply for a manual add command.
func (d *Dispatcher) manualReply(res CandidateResult) string {
	switch res.Outcome {
	case OutcomeAdded:
		return d.localizer.T("success.track_added", res.Track.Artist, res.Track.Title)
	case OutcomeDuplicate:
		if res.Track != nil {
			return d.localizer.T("success.duplicate", res.Track.Artist, res.Track.Title)
		}
		return d.localizer.T("success.duplicate", "", "")
	case OutcomeNotFound:
		return d.localizer.T("error.not_found", botDisplayName)
	default:
		return d.localizer.T("error.generic")
	}
}

// debugReply describes how a link candidate was resolved, for thread replies
// enabled by the debug-replies setting.
func (d *Dispatcher) debugReply(candidate linkextract.Candidate, res CandidateResult) string {
	if candidate.Kind == linkextract.KindYouTubeLink {
		return d.localizer.T("debug.resolved_from_video", candidate.VideoID, res.Track.Artist, res.Track.Title)
	}
	return d.localizer.T("debug.search_query", res.Track.Artist, res.Track.Title)
}

func (d *Dispatcher) react(msg *chat.Message, reaction chat.Reaction) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.RequestTimeout())
	defer cancel()

	if err := d.frontend.React(ctx, msg.ChannelID, msg.ID, reaction); err != nil {
		d.logger.Warn("Failed to add reaction",
			zap.String("channelID", msg.ChannelID),
			zap.String("messageID", msg.ID),
			zap.Error(err))
		d.metrics.RecordError("frontend", "react")
	}
}

// replyThreaded posts a reply in the message's thread, starting one when the
// message is not threaded yet.
func (d *Dispatcher) replyThreaded(msg *chat.Message, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.RequestTimeout())
	defer cancel()

	threadID := msg.ThreadID
	if threadID == "" {
		threadID = msg.ID
	}

	if _, err := d.frontend.SendText(ctx, msg.ChannelID, threadID, text); err != nil {
		d.logger.Warn("Failed to send threaded reply",
			zap.String("channelID", msg.ChannelID),
			zap.Error(err))
		d.metrics.RecordError("frontend", "send")
	}
}

// watched reports whether the channel is on the allow-list. An empty list
// watches every channel the bot is in.
func (d *Dispatcher) watched(channelID string) bool {
	if len(d.channels) == 0 {
		return true
	}
	_, ok := d.channels[channelID]
	return ok
}

func messageType(candidates []linkextract.Candidate) string {
	for _, c := range candidates {
		if c.Kind == linkextract.KindManual {
			return "command"
		}
	}
	return "link"
}

func candidateSource(candidate linkextract.Candidate) string {
	switch candidate.Kind {
	case linkextract.KindYouTubeLink:
		return "youtube"
	case linkextract.KindSpotifyLink:
		return "spotify"
	case linkextract.KindManual:
		return "manual"
	default:
		return "unknown"
	}
}
