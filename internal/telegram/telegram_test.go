package telegram

import (
	"testing"

	"go.uber.org/zap"

	"grabbit/internal/core"
)

func newTestFrontend() *Frontend {
	return NewFrontend(&Config{BotToken: "test", Language: "en"}, nil, zap.NewNop())
}

func TestParseQualityCallback(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantFormat  string
		wantQuality string
	}{
		{"audio tier", "quality_mp3_192k", "mp3", "192k"},
		{"video tier", "quality_mp4_720p", "mp4", "720p"},
		{"best maps to empty quality", "quality_mp3_best", "mp3", ""},
		{"malformed data", "quality_mp3", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, quality := parseQualityCallback(tt.data)
			if format != tt.wantFormat || quality != tt.wantQuality {
				t.Errorf("parseQualityCallback(%q) = (%q, %q), want (%q, %q)",
					tt.data, format, quality, tt.wantFormat, tt.wantQuality)
			}
		})
	}
}

func TestQualityKeyboardCallbackDataRoundTrips(t *testing.T) {
	f := newTestFrontend()

	for _, format := range []string{"mp3", "mp4"} {
		keyboard := f.qualityKeyboard(format)
		for _, row := range keyboard.InlineKeyboard {
			for _, button := range row {
				if button.CallbackData == callbackCancel {
					continue
				}
				gotFormat, _ := parseQualityCallback(button.CallbackData)
				if gotFormat != format {
					t.Errorf("button %q parses to format %q, want %q",
						button.CallbackData, gotFormat, format)
				}
			}
		}
	}
}

func TestQualityKeyboardTiers(t *testing.T) {
	f := newTestFrontend()

	audio := f.qualityKeyboard("mp3")
	if got := len(audio.InlineKeyboard[0]); got != len(audioQualityTiers) {
		t.Errorf("audio keyboard has %d tier buttons, want %d", got, len(audioQualityTiers))
	}

	video := f.qualityKeyboard("mp4")
	if got := len(video.InlineKeyboard[0]); got != len(videoQualityTiers) {
		t.Errorf("video keyboard has %d tier buttons, want %d", got, len(videoQualityTiers))
	}
}

func TestKeyboardForPrompt(t *testing.T) {
	f := newTestFrontend()

	tests := []struct {
		name     string
		prompt   core.Prompt
		wantNil  bool
		wantData string
	}{
		{"track actions offer quality buttons", core.PromptTrackActions, false, "quality_mp3_128k"},
		{"format choice offers audio and video", core.PromptFormatChoice, false, "format_mp3"},
		{"post actions offer download", core.PromptPostActions, false, "download_go"},
		{"story actions offer download", core.PromptStoryActions, false, "download_go"},
		{"collection info is terminal", core.PromptCollectionInfo, true, ""},
		{"none is terminal", core.PromptNone, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyboard := f.keyboardFor(tt.prompt)
			if tt.wantNil {
				if keyboard != nil {
					t.Fatalf("keyboardFor(%v) = %v, want nil", tt.prompt, keyboard)
				}
				return
			}
			if keyboard == nil {
				t.Fatalf("keyboardFor(%v) = nil, want keyboard", tt.prompt)
			}
			found := false
			for _, row := range keyboard.InlineKeyboard {
				for _, button := range row {
					if button.CallbackData == tt.wantData {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("keyboardFor(%v) missing button with data %q", tt.prompt, tt.wantData)
			}
		})
	}
}

func TestStopReleasesRateGate(t *testing.T) {
	f := newTestFrontend()
	f.Stop()

	// Stop only ends the gate's cleanup goroutine; the limit itself still
	// applies to any straggling updates.
	if !f.gate.Allow(1) {
		t.Error("Allow() = false after Stop() for a fresh user")
	}
}

func TestMenuKeyboard(t *testing.T) {
	f := newTestFrontend()

	keyboard := f.menuKeyboard()
	if keyboard == nil {
		t.Fatal("menuKeyboard() = nil")
	}

	// /start and /help carry the same main menu: help and about pages.
	for _, data := range []string{callbackMenuPrefix + "help", callbackMenuPrefix + "about"} {
		found := false
		for _, row := range keyboard.InlineKeyboard {
			for _, button := range row {
				if button.CallbackData == data {
					found = true
					if button.Text == "" {
						t.Errorf("menu button %q has empty label", data)
					}
				}
			}
		}
		if !found {
			t.Errorf("menuKeyboard() missing button with data %q", data)
		}
	}
}

func TestEveryKeyboardHasCancel(t *testing.T) {
	f := newTestFrontend()

	for _, prompt := range []core.Prompt{
		core.PromptTrackActions,
		core.PromptFormatChoice,
		core.PromptPostActions,
		core.PromptStoryActions,
	} {
		keyboard := f.keyboardFor(prompt)
		found := false
		for _, row := range keyboard.InlineKeyboard {
			for _, button := range row {
				if button.CallbackData == callbackCancel {
					found = true
				}
			}
		}
		if !found {
			t.Errorf("keyboard for prompt %v has no cancel button", prompt)
		}
	}
}
