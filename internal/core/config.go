package core

import (
	"time"
)

// Default configuration values.
const (
	// DefaultMaxFileSizeBytes is the messaging transport's hard upload
	// limit for bot-sent files (50 MiB).
	DefaultMaxFileSizeBytes = 50 * 1024 * 1024
	// DefaultSearchLimit bounds how many remote search results are
	// requested per cross-platform lookup.
	DefaultSearchLimit = 5
	// DefaultSessionCapacity caps how many per-user sessions are kept
	// in memory before the oldest is evicted.
	DefaultSessionCapacity = 10000
	// DefaultServerPort is the metrics/health HTTP port.
	DefaultServerPort = 8080
	// DefaultAudioQuality is used when a fetch is triggered without an
	// explicit quality choice.
	DefaultAudioQuality = "192k"
)

type Config struct {
	Telegram TelegramConfig
	Spotify  SpotifyConfig
	Download DownloadConfig
	Server   ServerConfig
	Log      LogConfig
	App      AppConfig
}

type TelegramConfig struct {
	BotToken string
}

// SpotifyConfig holds client-credentials grant settings. Both fields may
// be empty; the metadata provider then degrades to always-unavailable.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type DownloadConfig struct {
	Dir              string
	MaxFileSizeBytes int64
	AudioQuality     string
	SearchLimit      int
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
	Language        string
	SessionCapacity int
	SweepInterval   time.Duration
	SweepMaxAge     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			Dir:              "./downloads",
			MaxFileSizeBytes: DefaultMaxFileSizeBytes,
			AudioQuality:     DefaultAudioQuality,
			SearchLimit:      DefaultSearchLimit,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:        "en",
			SessionCapacity: DefaultSessionCapacity,
			SweepInterval:   15 * time.Minute,
			SweepMaxAge:     time.Hour,
		},
	}
}
