// Package slack provides Slack integration over Socket Mode using the
// slack-go/slack library.
package slack

import (
	"context"
	"fmt"

	goslack "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"groovebot/internal/chat"
)

// Config holds Slack-specific configuration
type Config struct {
	BotToken string // xoxb- bot token
	AppToken string // xapp- app-level token for Socket Mode
}

// Frontend implements the chat.Frontend interface for Slack
type Frontend struct {
	config *Config
	logger *zap.Logger

	api       *goslack.Client
	sm        *socketmode.Client
	botUserID string

	messageHandler func(*chat.Message)
}

// NewFrontend creates a new Slack frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	return &Frontend{
		config: config,
		logger: logger,
	}
}

// Start creates the API clients and resolves the bot's own user ID
func (f *Frontend) Start(ctx context.Context) error {
	f.api = goslack.New(
		f.config.BotToken,
		goslack.OptionAppLevelToken(f.config.AppToken),
	)
	f.sm = socketmode.New(f.api)

	resp, err := f.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test failed: %w", err)
	}
	f.botUserID = resp.UserID

	f.logger.Info("Slack frontend started",
		zap.String("bot_user_id", f.botUserID),
		zap.String("team", resp.Team))

	return nil
}

// BotUserID returns the bot's own Slack user ID, valid after Start
func (f *Frontend) BotUserID() string {
	return f.botUserID
}

// Listen runs the Socket Mode event loop, delivering each channel message to
// the handler, until the context is cancelled
func (f *Frontend) Listen(ctx context.Context, handler func(*chat.Message)) error {
	f.messageHandler = handler

	runErr := make(chan error, 1)
	go func() {
		runErr <- f.sm.RunContext(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runErr:
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("socket mode connection failed: %w", err)
			}
			return ctx.Err()
		case evt, ok := <-f.sm.Events:
			if !ok {
				return ctx.Err()
			}
			f.handleSocketEvent(&evt)
		}
	}
}

// handleSocketEvent processes a single Socket Mode envelope
func (f *Frontend) handleSocketEvent(evt *socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		f.logger.Debug("Connecting to Slack via Socket Mode")
	case socketmode.EventTypeConnectionError:
		f.logger.Warn("Socket Mode connection error", zap.Any("data", evt.Data))
	case socketmode.EventTypeConnected:
		f.logger.Info("Connected to Slack via Socket Mode")
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			f.logger.Debug("Ignoring unexpected Events API payload")
			return
		}

		// Ack before processing; Slack retries unacked envelopes.
		if evt.Request != nil {
			f.sm.Ack(*evt.Request)
		}

		f.handleEventsAPI(&apiEvent)
	default:
		// Hello, interactive and slash command envelopes are not used.
	}
}

// handleEventsAPI dispatches Events API callbacks to the message handler
func (f *Frontend) handleEventsAPI(apiEvent *slackevents.EventsAPIEvent) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		f.handleMessageEvent(ev)
	case *slackevents.AppMentionEvent:
		// Mentions also arrive as regular message events; handling both
		// would process the same message twice.
	}
}

// handleMessageEvent converts a Slack message event to the unified format
func (f *Frontend) handleMessageEvent(ev *slackevents.MessageEvent) {
	// Skip edits, joins, bot_message and other subtyped events.
	if ev.SubType != "" {
		return
	}

	// Never process the bot's own messages or those of other bots.
	if ev.BotID != "" || ev.User == "" || ev.User == f.botUserID {
		return
	}

	if ev.Text == "" {
		return
	}

	message := chat.Message{
		ID:        ev.TimeStamp,
		ChannelID: ev.Channel,
		ThreadID:  ev.ThreadTimeStamp,
		SenderID:  ev.User,
		Text:      ev.Text,
		Raw:       ev,
	}

	if f.messageHandler != nil {
		f.messageHandler(&message)
	}
}

// SendText sends a text message to the specified channel, threaded under
// threadID when non-empty
func (f *Frontend) SendText(ctx context.Context, channelID, threadID, text string) (string, error) {
	opts := []goslack.MsgOption{
		goslack.MsgOptionText(text, false),
		goslack.MsgOptionDisableLinkUnfurl(),
	}
	if threadID != "" {
		opts = append(opts, goslack.MsgOptionTS(threadID))
	}

	_, ts, err := f.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return ts, nil
}

// React adds an emoji reaction to a message
func (f *Frontend) React(ctx context.Context, channelID, msgID string, r chat.Reaction) error {
	err := f.api.AddReactionContext(ctx, string(r), goslack.NewRefToMessage(channelID, msgID))
	if err != nil {
		// Reacting twice with the same emoji is a no-op, not a failure.
		if err.Error() == "already_reacted" {
			return nil
		}
		return fmt.Errorf("failed to add reaction: %w", err)
	}

	return nil
}
