// Package telegram provides the chat frontend using go-telegram/bot library.
package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"grabbit/internal/core"
	"grabbit/internal/flood"
	"grabbit/internal/i18n"
	"grabbit/internal/store"
)

const (
	commandStart = "/start"
	commandHelp  = "/help"

	callbackCancel         = "cancel"
	callbackFormatPrefix   = "format_"
	callbackQualityPrefix  = "quality_"
	callbackDownloadPrefix = "download_"
	callbackMenuPrefix     = "menu_"

	// progressEditInterval throttles download progress edits so the
	// Bot API rate limit is never a concern.
	progressEditInterval = 2 * time.Second

	seenCapacity          = 10000
	seenFalsePositiveRate = 0.01

	// requestsPerMinute bounds how many links a single user may submit.
	requestsPerMinute = 10
)

var audioQualityTiers = []string{"128k", "192k", "320k"}
var videoQualityTiers = []string{"360p", "480p", "720p", "1080p"}

// Config holds Telegram-specific configuration.
type Config struct {
	BotToken string
	Language string
}

// Frontend receives updates, drives the pipeline for each user and
// delivers the resulting media files.
type Frontend struct {
	config    *Config
	logger    *zap.Logger
	bot       *bot.Bot
	pipeline  *core.Pipeline
	localizer *i18n.Localizer
	seen      *store.SeenStore
	gate      *flood.Gate

	// deliverMutex serializes artifact delivery per process; uploads are
	// large and concurrent sends to the Bot API buy nothing.
	deliverMutex sync.Mutex
}

// NewFrontend creates a new Telegram frontend.
func NewFrontend(config *Config, pipeline *core.Pipeline, logger *zap.Logger) *Frontend {
	language := config.Language
	if language == "" {
		language = i18n.DefaultLanguage
	}

	return &Frontend{
		config:    config,
		logger:    logger,
		pipeline:  pipeline,
		localizer: i18n.NewLocalizer(language),
		seen:      store.NewSeenStore(seenCapacity, seenFalsePositiveRate),
		gate:      flood.New(requestsPerMinute),
	}
}

// Start initializes the bot connection.
func (f *Frontend) Start(_ context.Context) error {
	opts := []bot.Option{
		bot.WithDefaultHandler(f.handleUpdate),
		bot.WithCallbackQueryDataHandler(callbackFormatPrefix, bot.MatchTypePrefix, f.handleFormatCallback),
		bot.WithCallbackQueryDataHandler(callbackQualityPrefix, bot.MatchTypePrefix, f.handleQualityCallback),
		bot.WithCallbackQueryDataHandler(callbackDownloadPrefix, bot.MatchTypePrefix, f.handleDownloadCallback),
		bot.WithCallbackQueryDataHandler(callbackMenuPrefix, bot.MatchTypePrefix, f.handleMenuCallback),
		bot.WithCallbackQueryDataHandler(callbackCancel, bot.MatchTypeExact, f.handleCancelCallback),
	}

	b, err := bot.New(f.config.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	f.bot = b

	f.logger.Info("Telegram frontend started successfully")
	return nil
}

// Listen blocks polling for updates until the context is cancelled.
func (f *Frontend) Listen(ctx context.Context) error {
	f.bot.Start(ctx)
	return nil
}

// Stop releases frontend resources, notably the rate gate's cleanup
// goroutine.
func (f *Frontend) Stop() {
	f.gate.Stop()
}

// handleUpdate processes incoming Telegram updates.
func (f *Frontend) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	// Telegram redelivers updates after restarts and timeouts.
	if !f.seen.MarkSeen(update.ID) {
		f.logger.Debug("Dropping duplicate update", zap.Int64("update_id", update.ID))
		return
	}
	if update.Message == nil {
		return
	}
	f.handleMessage(ctx, update.Message)
}

func (f *Frontend) handleMessage(ctx context.Context, msg *models.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, commandStart):
		f.sendMenu(ctx, msg.Chat.ID, f.localizer.T("bot.welcome"))
		return
	case strings.HasPrefix(text, commandHelp):
		f.sendMenu(ctx, msg.Chat.ID, f.localizer.T("bot.help_message"))
		return
	case text == "":
		return
	}

	if !f.gate.Allow(msg.From.ID) {
		f.logger.Info("Rate limited user request", zap.Int64("user_id", msg.From.ID))
		return
	}

	// Everything else is treated as a potential link.
	statusID := f.sendText(ctx, msg.Chat.ID, f.localizer.T("status.processing"))

	outcome, err := f.pipeline.HandleLink(ctx, msg.From.ID, text)
	if err != nil {
		f.editText(ctx, msg.Chat.ID, statusID, f.pipeline.Formatter().UserMessage(err), nil)
		return
	}

	f.editText(ctx, msg.Chat.ID, statusID, outcome.Info, f.keyboardFor(outcome.Prompt))
}

// handleFormatCallback swaps the format prompt for the matching quality
// prompt. No pipeline call; the choice is carried in the callback data
// of the quality buttons.
func (f *Frontend) handleFormatCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	f.answerCallback(ctx, b, query.ID, "")

	format := strings.TrimPrefix(query.Data, callbackFormatPrefix)
	msg := query.Message.Message
	f.editText(ctx, msg.Chat.ID, msg.ID,
		f.localizer.T("note.choose_quality"),
		f.qualityKeyboard(format))
}

// handleQualityCallback runs the remaining pipeline stages and delivers
// the result. Callback data carries both format and quality.
func (f *Frontend) handleQualityCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	f.answerCallback(ctx, b, query.ID, "")

	format, quality := parseQualityCallback(query.Data)
	f.runDownload(ctx, query.From.ID, query.Message.Message, format, quality)
}

// handleDownloadCallback is the post and story path: no format or
// quality to choose.
func (f *Frontend) handleDownloadCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	f.answerCallback(ctx, b, query.ID, "")
	f.runDownload(ctx, query.From.ID, query.Message.Message, "", "")
}

// handleMenuCallback switches the welcome message between the help and
// about pages, keeping the menu attached.
func (f *Frontend) handleMenuCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	f.answerCallback(ctx, b, query.ID, "")

	var text string
	switch strings.TrimPrefix(query.Data, callbackMenuPrefix) {
	case "help":
		text = f.localizer.T("bot.help_message")
	case "about":
		text = f.localizer.T("bot.about")
	default:
		text = f.localizer.T("bot.welcome")
	}

	msg := query.Message.Message
	f.editText(ctx, msg.Chat.ID, msg.ID, text, f.menuKeyboard())
}

func (f *Frontend) handleCancelCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}
	f.pipeline.Cancel(query.From.ID)
	f.answerCallback(ctx, b, query.ID, f.localizer.T("success.cancelled"))

	if query.Message.Message != nil {
		msg := query.Message.Message
		f.editText(ctx, msg.Chat.ID, msg.ID, f.localizer.T("success.cancelled"), nil)
	}
}

// runDownload executes the fetch stages behind a status message and
// delivers the artifacts.
func (f *Frontend) runDownload(ctx context.Context, userID int64, statusMsg *models.Message, format, quality string) {
	chatID := statusMsg.Chat.ID
	f.editText(ctx, chatID, statusMsg.ID, f.localizer.T("status.searching"), nil)

	progress := f.progressReporter(ctx, chatID, statusMsg.ID)
	outcome, err := f.pipeline.SelectQuality(ctx, userID, format, quality, progress)
	if err != nil {
		f.editText(ctx, chatID, statusMsg.ID, f.pipeline.Formatter().UserMessage(err), nil)
		return
	}

	f.editText(ctx, chatID, statusMsg.ID, f.localizer.T("status.uploading"), nil)
	delivered := f.deliver(ctx, chatID, outcome)

	final := f.localizer.T("success.delivered")
	if outcome.Info != "" {
		final += "\n" + outcome.Info
	}
	if !delivered {
		final = f.pipeline.Formatter().UserMessage(core.ErrUnavailable)
	}
	f.editText(ctx, chatID, statusMsg.ID, final, nil)
}

// deliver uploads every artifact and removes the local files afterwards,
// success or not. Returns false when nothing could be sent.
func (f *Frontend) deliver(ctx context.Context, chatID int64, outcome *core.Outcome) bool {
	f.deliverMutex.Lock()
	defer f.deliverMutex.Unlock()

	sent := 0
	for i, artifact := range outcome.Artifacts {
		caption := ""
		if i == 0 {
			caption = outcome.Caption
		}
		if err := f.sendArtifact(ctx, chatID, artifact, caption, outcome); err != nil {
			f.logger.Warn("Failed to deliver artifact",
				zap.String("path", artifact.LocalPath),
				zap.Error(err))
		} else {
			sent++
		}
		if err := artifact.Remove(); err != nil {
			f.logger.Warn("Failed to remove delivered artifact",
				zap.String("path", artifact.LocalPath),
				zap.Error(err))
		}
	}
	return len(outcome.Artifacts) == 0 || sent > 0
}

func (f *Frontend) sendArtifact(ctx context.Context, chatID int64, artifact core.Artifact, caption string, outcome *core.Outcome) error {
	file, err := os.Open(artifact.LocalPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	upload := &models.InputFileUpload{
		Filename: f.uploadFilename(artifact, outcome),
		Data:     file,
	}

	switch artifact.Kind {
	case core.MediaAudio:
		params := &bot.SendAudioParams{
			ChatID:  chatID,
			Audio:   upload,
			Caption: caption,
		}
		if outcome.Track != nil {
			params.Title = outcome.Track.Title
			params.Performer = strings.Join(outcome.Track.Contributors, ", ")
			params.Duration = int(outcome.Track.Duration.Seconds())
		} else if outcome.Video != nil {
			params.Title = outcome.Video.Title
			params.Performer = outcome.Video.Author
			params.Duration = int(outcome.Video.Duration.Seconds())
		}
		_, err = f.bot.SendAudio(ctx, params)

	case core.MediaVideo:
		_, err = f.bot.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:  chatID,
			Video:   upload,
			Caption: caption,
		})

	case core.MediaImage:
		_, err = f.bot.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:  chatID,
			Photo:   upload,
			Caption: caption,
		})

	case core.MediaDocument:
		_, err = f.bot.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID:   chatID,
			Document: upload,
			Caption:  caption,
		})
	}
	if err != nil {
		return fmt.Errorf("send media: %w", err)
	}
	return nil
}

// uploadFilename derives a safe filename for the upload from the
// resolved title, keeping the downloaded file's extension.
func (f *Frontend) uploadFilename(artifact core.Artifact, outcome *core.Outcome) string {
	name := ""
	switch {
	case outcome.Track != nil:
		name = outcome.Track.Title
	case outcome.Video != nil:
		name = outcome.Video.Title
	}
	return core.SanitizeFilename(name) + filepath.Ext(artifact.LocalPath)
}

// progressReporter returns a throttled progress sink that edits the
// status message in place. Edit failures are ignored; progress is
// cosmetic.
func (f *Frontend) progressReporter(ctx context.Context, chatID int64, messageID int) core.ProgressFunc {
	var (
		mutex     sync.Mutex
		lastEdit  time.Time
		lastBytes int64
	)
	return func(downloaded, total int64) {
		mutex.Lock()
		defer mutex.Unlock()

		now := time.Now()
		if now.Sub(lastEdit) < progressEditInterval || total <= 0 {
			return
		}

		percent := downloaded * 100 / total
		elapsed := now.Sub(lastEdit)
		if lastEdit.IsZero() {
			elapsed = progressEditInterval
		}
		rate := float64(downloaded-lastBytes) / elapsed.Seconds()
		lastEdit = now
		lastBytes = downloaded

		f.editText(ctx, chatID, messageID,
			f.localizer.T("status.downloading", percent, core.FormatSize(int64(rate))), nil)
	}
}

// keyboardFor maps a pipeline prompt to the inline keyboard offered
// under the info card.
func (f *Frontend) keyboardFor(prompt core.Prompt) *models.InlineKeyboardMarkup {
	switch prompt {
	case core.PromptTrackActions:
		return f.qualityKeyboard("mp3")
	case core.PromptFormatChoice:
		return f.formatKeyboard()
	case core.PromptPostActions, core.PromptStoryActions:
		return f.downloadKeyboard()
	default:
		return nil
	}
}

func (f *Frontend) formatKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: f.localizer.T("button.audio"), CallbackData: callbackFormatPrefix + "mp3"},
				{Text: f.localizer.T("button.video"), CallbackData: callbackFormatPrefix + "mp4"},
			},
			{
				{Text: f.localizer.T("button.cancel"), CallbackData: callbackCancel},
			},
		},
	}
}

func (f *Frontend) qualityKeyboard(format string) *models.InlineKeyboardMarkup {
	tiers := audioQualityTiers
	if format == "mp4" {
		tiers = videoQualityTiers
	}

	var row []models.InlineKeyboardButton
	for _, tier := range tiers {
		row = append(row, models.InlineKeyboardButton{
			Text:         tier,
			CallbackData: callbackQualityPrefix + format + "_" + tier,
		})
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			row,
			{
				{Text: f.localizer.T("button.best"), CallbackData: callbackQualityPrefix + format + "_best"},
				{Text: f.localizer.T("button.cancel"), CallbackData: callbackCancel},
			},
		},
	}
}

// menuKeyboard is the main menu offered under /start and /help.
func (f *Frontend) menuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: f.localizer.T("button.help"), CallbackData: callbackMenuPrefix + "help"},
				{Text: f.localizer.T("button.about"), CallbackData: callbackMenuPrefix + "about"},
			},
		},
	}
}

func (f *Frontend) downloadKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: f.localizer.T("button.download"), CallbackData: callbackDownloadPrefix + "go"},
				{Text: f.localizer.T("button.cancel"), CallbackData: callbackCancel},
			},
		},
	}
}

// parseQualityCallback splits "quality_<format>_<tier>" callback data.
// The "best" tier maps to the empty quality so the fetcher picks the
// top of its ladder.
func parseQualityCallback(data string) (format, quality string) {
	rest := strings.TrimPrefix(data, callbackQualityPrefix)
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return "", ""
	}
	format = parts[0]
	quality = parts[1]
	if quality == "best" {
		quality = ""
	}
	return format, quality
}

// sendMenu sends a text message with the main-menu keyboard attached.
func (f *Frontend) sendMenu(ctx context.Context, chatID int64, text string) {
	if _, err := f.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: f.menuKeyboard(),
	}); err != nil {
		f.logger.Warn("Failed to send menu message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (f *Frontend) sendText(ctx context.Context, chatID int64, text string) int {
	msg, err := f.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		f.logger.Warn("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0
	}
	return msg.ID
}

func (f *Frontend) editText(ctx context.Context, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) {
	if messageID == 0 {
		f.sendText(ctx, chatID, text)
		return
	}
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := f.bot.EditMessageText(ctx, params); err != nil {
		f.logger.Debug("Failed to edit message", zap.Int("message_id", messageID), zap.Error(err))
	}
}

func (f *Frontend) answerCallback(ctx context.Context, b *bot.Bot, callbackQueryID, text string) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}); err != nil {
		f.logger.Debug("Failed to answer callback query", zap.Error(err))
	}
}
