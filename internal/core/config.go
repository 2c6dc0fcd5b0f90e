package core

import (
	"fmt"
	"time"
)

type Config struct {
	Slack   SlackConfig
	Spotify SpotifyConfig
	Server  ServerConfig
	Log     LogConfig
	App     AppConfig
}

type SlackConfig struct {
	BotToken   string
	AppToken   string
	ChannelIDs []string // channels to watch; empty means all joined channels
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	PlaylistID   string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language            string
	RequestTimeoutSecs  int
	PlaylistRefreshSecs int
	FloodLimitPerMinute int
	MaxPlaylistTracks   int
	DebugReplies        bool // post resolution details as threaded replies
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:            "en",
			RequestTimeoutSecs:  10,
			PlaylistRefreshSecs: 300,
			FloodLimitPerMinute: 6,
			MaxPlaylistTracks:   10000,
			DebugReplies:        false,
		},
	}
}

// RequestTimeout returns the per-operation deadline for upstream calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.App.RequestTimeoutSecs) * time.Second
}

// PlaylistRefreshTTL returns how long the membership cache stays fresh.
func (c *Config) PlaylistRefreshTTL() time.Duration {
	return time.Duration(c.App.PlaylistRefreshSecs) * time.Second
}

// Validate checks that all required settings are present and consistent.
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack bot token is required")
	}
	if c.Slack.AppToken == "" {
		return fmt.Errorf("slack app token is required")
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client credentials are required")
	}
	if c.Spotify.RefreshToken == "" {
		return fmt.Errorf("spotify refresh token is required")
	}
	if c.Spotify.PlaylistID == "" {
		return fmt.Errorf("spotify playlist ID is required")
	}
	if c.App.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", c.App.RequestTimeoutSecs)
	}
	if c.App.PlaylistRefreshSecs <= 0 {
		return fmt.Errorf("playlist refresh interval must be positive, got %d", c.App.PlaylistRefreshSecs)
	}
	if c.App.FloodLimitPerMinute <= 0 {
		return fmt.Errorf("flood limit must be positive, got %d", c.App.FloodLimitPerMinute)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1-65535, got %d", c.Server.Port)
	}
	return nil
}
