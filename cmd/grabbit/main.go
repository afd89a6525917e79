// Package main provides the Grabbit CLI application entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"grabbit/internal/core"
	httpserver "grabbit/internal/http"
	"grabbit/internal/i18n"
	"grabbit/internal/instagram"
	"grabbit/internal/spotify"
	"grabbit/internal/telegram"
	"grabbit/internal/youtube"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "grabbit",
	Short: "Grabbit - Telegram media grabber",
	Long: `Grabbit is a Telegram bot that resolves Spotify, YouTube and Instagram
links, locates the matching media on the owning platform and delivers it back
through the chat.`,
	RunE: runGrabbit,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, console)")
	rootCmd.PersistentFlags().String("telegram-bot-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("download-dir", "./downloads", "directory for in-flight downloads")
	rootCmd.PersistentFlags().Int64("max-file-size", core.DefaultMaxFileSizeBytes, "per-file size cap in bytes")
	rootCmd.PersistentFlags().String("language", "en", "bot language for user-facing messages")
	rootCmd.PersistentFlags().Int("server-port", core.DefaultServerPort, "HTTP server port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("GRABBIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Telegram.BotToken = viper.GetString("telegram-bot-token")

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")

	cfg.Download.Dir = viper.GetString("download-dir")
	if cfg.Download.Dir == "" {
		cfg.Download.Dir = "./downloads"
	}
	if size := viper.GetInt64("max-file-size"); size > 0 {
		cfg.Download.MaxFileSizeBytes = size
	}

	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	cfg.Server.Port = viper.GetInt("server-port")

	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")

	if language := viper.GetString("language"); language != "" {
		cfg.App.Language = language
	}

	return cfg
}

func buildLogger(level, format string) *zap.Logger {
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
	if strings.ToLower(format) == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runGrabbit(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting Grabbit",
		zap.String("version", "1.0.0"),
		zap.String("download_dir", config.Download.Dir))

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := os.MkdirAll(config.Download.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	sessions, err := core.NewSessionStore(config.App.SessionCapacity)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}

	spotifyClient := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := spotifyClient.Connect(ctx); err != nil {
		logger.Warn("Spotify connection failed", zap.Error(err))
	}
	if !spotifyClient.Connected() {
		// Degraded mode: track links report unavailable, the rest works.
		logger.Warn("Running without the Spotify catalog")
	}

	searcher := youtube.NewSearcher(logger.Named("search"))
	fetcher := youtube.NewFetcher(&config.Download, logger.Named("fetch"))
	instagramClient := instagram.NewClient(&config.Download, logger.Named("instagram"))

	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))

	formatter := core.NewFormatter(i18n.NewLocalizer(config.App.Language))
	pipeline := core.NewPipeline(
		config,
		logger.Named("pipeline"),
		formatter,
		spotifyClient,
		searcher,
		fetcher,
		instagramClient,
		sessions,
		httpServer,
	)

	frontend := telegram.NewFrontend(&telegram.Config{
		BotToken: config.Telegram.BotToken,
		Language: config.App.Language,
	}, pipeline, logger.Named("telegram"))
	if err := frontend.Start(ctx); err != nil {
		return fmt.Errorf("failed to start telegram frontend: %w", err)
	}
	defer frontend.Stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return frontend.Listen(gCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(config.App.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				httpServer.SetActiveSessions(pipeline.SessionCount())
				sweepDownloads(config.Download.Dir, config.App.SweepMaxAge)
			}
		}
	})

	logger.Info("Grabbit started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("Grabbit stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Grabbit stopped gracefully")
	return nil
}

// sweepDownloads removes stale files a crashed or interrupted delivery
// may have left behind.
func sweepDownloads(dir string, maxAge time.Duration) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

func validateConfig() error {
	if config.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	if config.Download.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("max file size must be positive")
	}

	if (config.Spotify.ClientID == "") != (config.Spotify.ClientSecret == "") {
		return fmt.Errorf("spotify client ID and secret must be set together")
	}

	return nil
}
