package core

import (
	"testing"

	"grabbit/internal/i18n"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.App.Language != i18n.DefaultLanguage {
		t.Errorf("Expected default language to be %s, got %s", i18n.DefaultLanguage, config.App.Language)
	}

	// Test that other defaults are set correctly
	if config.Download.MaxFileSizeBytes != DefaultMaxFileSizeBytes {
		t.Errorf("Expected default size cap %d, got %d", DefaultMaxFileSizeBytes, config.Download.MaxFileSizeBytes)
	}

	if config.Download.SearchLimit != DefaultSearchLimit {
		t.Errorf("Expected default search limit %d, got %d", DefaultSearchLimit, config.Download.SearchLimit)
	}

	if config.Spotify.ClientID != "" {
		t.Errorf("Expected default Spotify client ID to be empty (requiring explicit configuration), got %s", config.Spotify.ClientID)
	}
}

func TestLanguageConfiguration(t *testing.T) {
	config := DefaultConfig()

	// Test supported languages
	supportedLanguages := i18n.GetSupportedLanguages()
	for _, lang := range supportedLanguages {
		config.App.Language = lang
		// Should not panic or error
		localizer := i18n.NewLocalizer(config.App.Language)
		if localizer == nil {
			t.Errorf("Failed to create localizer for language %s", lang)
		}

		// Test a known message key
		message := localizer.T("error.generic")
		if message == "" {
			t.Errorf("Empty message for key 'error.generic' in language %s", lang)
		}
	}
}

func TestConfigConstants(t *testing.T) {
	// Verify configuration constants are reasonable
	if DefaultMaxFileSizeBytes != 50*1024*1024 {
		t.Error("DefaultMaxFileSizeBytes should match the transport's 50 MiB upload limit")
	}

	if DefaultSearchLimit <= 0 {
		t.Error("DefaultSearchLimit should be positive")
	}

	if DefaultServerPort <= 0 || DefaultServerPort > 65535 {
		t.Error("DefaultServerPort should be a valid port number")
	}
}
