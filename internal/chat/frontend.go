// Package chat provides a unified interface for chat frontends (Slack, etc.)
package chat

import (
	"context"
)

// Message represents a normalized chat message from any frontend
type Message struct {
	ID         string // frontend-specific message identifier (Slack: message timestamp)
	ChannelID  string
	ThreadID   string // parent message ID when the message was sent in a thread
	SenderID   string
	SenderName string
	Text       string
	Raw        any // underlying library message struct
}

// Reaction represents standard emoji reactions by their short name
type Reaction string

// Reactions used as processing outcome feedback on member messages
const (
	ReactionAdded    Reaction = "white_check_mark"
	ReactionNotFound Reaction = "question"
	ReactionError    Reaction = "x"
)

// Frontend defines the unified interface for all chat integrations
type Frontend interface {
	// Start initializes the chat frontend and resolves the bot's own identity
	Start(ctx context.Context) error

	// Listen blocks, delivering each incoming message to the handler,
	// until the context is cancelled
	Listen(ctx context.Context, handler func(*Message)) error

	// SendText sends a text message to the specified channel, threaded
	// under threadID when non-empty, and returns the new message ID
	SendText(ctx context.Context, channelID string, threadID string, text string) (string, error)

	// React adds an emoji reaction to a message
	React(ctx context.Context, channelID string, msgID string, r Reaction) error

	// BotUserID returns the frontend's own user ID, valid after Start
	BotUserID() string
}
