// Package main provides the Groovebot CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"groovebot/internal/chat/slack"
	"groovebot/internal/core"
	"groovebot/internal/flood"
	httpserver "groovebot/internal/http"
	"groovebot/internal/i18n"
	"groovebot/internal/spotify"
	"groovebot/internal/store"
	"groovebot/pkg/metadata"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "groovebot",
	Short: "Groovebot - Slack → Spotify playlist bot",
	Long: `Groovebot watches Slack channels for YouTube and Spotify links and mention
commands, resolves them to Spotify tracks and appends them to a shared
playlist, reacting with emoji feedback.`,
	RunE: runGroovebot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("slack-bot-token", "", "Slack bot token (xoxb-)")
	rootCmd.PersistentFlags().String("slack-app-token", "", "Slack app-level token for Socket Mode (xapp-)")
	rootCmd.PersistentFlags().String("slack-channel-ids", "", "Comma-separated channel IDs to watch (empty = all)")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("spotify-refresh-token", "", "Spotify OAuth refresh token")
	rootCmd.PersistentFlags().String("spotify-playlist-id", "", "Spotify playlist ID")
	rootCmd.PersistentFlags().Int("playlist-refresh-secs", 300, "Playlist membership cache TTL in seconds")
	rootCmd.PersistentFlags().Int("request-timeout-secs", 10, "Per-request timeout for upstream calls in seconds")
	rootCmd.PersistentFlags().Int("flood-limit-per-minute", 6, "Maximum candidate-bearing messages per user per minute")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	rootCmd.PersistentFlags().String("language", i18n.DefaultLanguage, fmt.Sprintf("Bot language (%s)", supportedLangs))
	rootCmd.PersistentFlags().Bool("debug-replies", false, "Post resolution details as threaded replies")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix("GROOVEBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Slack.BotToken = viper.GetString("slack-bot-token")
	cfg.Slack.AppToken = viper.GetString("slack-app-token")
	if ids := viper.GetString("slack-channel-ids"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Slack.ChannelIDs = append(cfg.Slack.ChannelIDs, id)
			}
		}
	}

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.RefreshToken = viper.GetString("spotify-refresh-token")
	cfg.Spotify.PlaylistID = viper.GetString("spotify-playlist-id")

	if v := viper.GetInt("playlist-refresh-secs"); v > 0 {
		cfg.App.PlaylistRefreshSecs = v
	}
	if v := viper.GetInt("request-timeout-secs"); v > 0 {
		cfg.App.RequestTimeoutSecs = v
	}
	if v := viper.GetInt("flood-limit-per-minute"); v > 0 {
		cfg.App.FloodLimitPerMinute = v
	}
	if v := viper.GetString("language"); v != "" {
		cfg.App.Language = v
	}
	cfg.App.DebugReplies = viper.GetBool("debug-replies")

	if v := viper.GetString("server-host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetInt("server-port"); v > 0 {
		cfg.Server.Port = v
	}

	if v := viper.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runGroovebot(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting Groovebot",
		zap.String("spotify_playlist", config.Spotify.PlaylistID),
		zap.Strings("channels", config.Slack.ChannelIDs))

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dedup := store.NewDedupStore(config.App.MaxPlaylistTracks, 0.001)

	floodgate := flood.New(config.App.FloodLimitPerMinute)
	defer floodgate.Stop()

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := spotifyClient.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	frontend := slack.NewFrontend(&slack.Config{
		BotToken: config.Slack.BotToken,
		AppToken: config.Slack.AppToken,
	}, logger.Named("slack"))

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))

	pipeline := core.NewPipeline(
		spotifyClient,
		metadata.NewYouTubeResolver(),
		dedup,
		config.RequestTimeout(),
		config.PlaylistRefreshTTL(),
		logger.Named("pipeline"),
	)

	dispatcher := core.NewDispatcher(
		config,
		frontend,
		pipeline,
		floodgate,
		httpServer,
		logger.Named("dispatcher"),
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return dispatcher.Run(gCtx)
	})

	logger.Info("Groovebot started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("Groovebot stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Groovebot stopped gracefully")
	return nil
}
