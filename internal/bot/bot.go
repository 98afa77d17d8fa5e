package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/example/toeicbot/internal/format"
	"github.com/example/toeicbot/internal/importer"
	"github.com/example/toeicbot/internal/logger"
	"github.com/example/toeicbot/internal/quiz"
	"github.com/example/toeicbot/pkg/models"
)

// MenuButton represents a button in an inline keyboard
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Importer loads an uploaded vocabulary file into the word bank
type Importer interface {
	ImportNamed(ctx context.Context, name string, r io.Reader) (*importer.Result, error)
}

// StatisticsProvider reports bot-wide usage totals
type StatisticsProvider interface {
	Summary(ctx context.Context) (*models.Statistics, error)
}

const commandAdminStats = "admin_stats"

const replyAdminOnly = "This command is only available for administrators\\."

// Bot represents the Telegram bot application
type Bot struct {
	api          *tgbotapi.BotAPI
	dispatcher   *Dispatcher
	importer     Importer
	stats        StatisticsProvider
	config       *BotConfig
	adminUserIDs map[int64]bool
	httpClient   *http.Client
	logger       *logger.Logger
	wg           sync.WaitGroup
}

// New creates a new bot instance authorized with token
func New(token string, dispatcher *Dispatcher, imp Importer, stats StatisticsProvider, config *BotConfig, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if config == nil {
		config = DefaultConfig()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Info("Authorized on account", "username", api.Self.UserName)

	b := &Bot{
		api:          api,
		dispatcher:   dispatcher,
		importer:     imp,
		stats:        stats,
		config:       config,
		adminUserIDs: make(map[int64]bool),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		logger:       log,
	}
	for _, id := range config.AdminUserIDs {
		b.adminUserIDs[id] = true
	}
	return b, nil
}

// Start receives updates until ctx is cancelled. Each update is handled in its own goroutine.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}(update)
		}
	}
}

// Stop waits for in-flight updates, giving up after ctx is done
func (b *Bot) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("Bot stopped")
	case <-ctx.Done():
		b.logger.Warn("Bot stopped with updates still in flight")
	}
}

// SendStreakReminder implements scheduler.Notifier
func (b *Bot) SendStreakReminder(ctx context.Context, learnerID int64, streakDays int) error {
	// For private chats the user ID is the chat ID
	return b.send(learnerID, Reply{Text: format.StreakReminder(streakDays)})
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// handleUpdate handles one incoming update. Panics are recovered and answered with the generic reply.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	requestID := uuid.NewString()
	log := b.logger.With("request_id", requestID, "update_id", update.UpdateID)

	chatID := updateChatID(update)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while handling update", "panic", r, "stack", string(debug.Stack()))
			if chatID != 0 {
				b.deliver(chatID, GenericError(), log)
			}
		}
	}()

	// In-flight updates finish on shutdown, bounded by the request timeout
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.config.RequestTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery, requestID, log)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message, requestID, log)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message, requestID string, log *logger.Logger) {
	if message.Document != nil && strings.HasPrefix(strings.TrimSpace(message.Caption), "/import") {
		b.handleImport(ctx, message, log)
		return
	}

	cmd, ok := commandFromMessage(message)
	if !ok {
		return
	}
	cmd.RequestID = requestID

	start := time.Now()
	var reply Reply
	if cmd.Name == commandAdminStats {
		reply = b.adminStats(ctx, cmd.Sender.ID, log)
	} else {
		reply = b.dispatcher.Dispatch(ctx, cmd)
	}
	b.deliver(message.Chat.ID, reply, log)
	log.Debug("Command handled", "command", cmd.Name, "duration", time.Since(start))
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, requestID string, log *logger.Logger) {
	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Warn("Failed to answer callback", "error", err)
	}
	if callback.Message == nil || callback.From == nil {
		return
	}

	quizID, chosen, err := quiz.ParseCallback(callback.Data)
	if err != nil {
		log.Warn("Ignoring callback", "data", callback.Data, "error", err)
		return
	}

	chatID := callback.Message.Chat.ID
	sender := Sender{ID: callback.From.ID, DisplayName: displayName(callback.From)}
	reply, closed := b.dispatcher.AnswerQuiz(ctx, sender, requestID, quizID, chosen)
	if closed {
		strip := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
		if _, err := b.api.Request(strip); err != nil {
			log.Warn("Failed to remove quiz keyboard", "error", err)
		}
	}
	b.deliver(chatID, reply, log)
}

// adminStats builds the statistics reply for an administrator
func (b *Bot) adminStats(ctx context.Context, userID int64, log *logger.Logger) Reply {
	if !b.isAdmin(userID) || b.stats == nil {
		return Reply{Text: replyAdminOnly}
	}
	stats, err := b.stats.Summary(ctx)
	if err != nil {
		log.Error("Failed to load statistics", "error", err)
		return GenericError()
	}
	return Reply{Text: format.AdminStats(stats)}
}

// handleImport loads a vocabulary file sent by an admin with the caption /import
func (b *Bot) handleImport(ctx context.Context, message *tgbotapi.Message, log *logger.Logger) {
	chatID := message.Chat.ID
	if message.From == nil || !b.isAdmin(message.From.ID) {
		b.deliver(chatID, Reply{Text: replyAdminOnly}, log)
		return
	}
	doc := message.Document
	if int64(doc.FileSize) > b.config.MaxImportSize {
		b.deliver(chatID, Reply{Text: format.Escape(fmt.Sprintf("The file is too large (limit %d bytes).", b.config.MaxImportSize))}, log)
		return
	}

	fileURL, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		log.Error("Failed to resolve uploaded file", "error", err)
		b.deliver(chatID, GenericError(), log)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		log.Error("Failed to create download request", "error", err)
		b.deliver(chatID, GenericError(), log)
		return
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to download uploaded file", "error", err)
		b.deliver(chatID, GenericError(), log)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Error("Failed to download uploaded file", "status", resp.StatusCode)
		b.deliver(chatID, GenericError(), log)
		return
	}

	result, err := b.importer.ImportNamed(ctx, doc.FileName, io.LimitReader(resp.Body, b.config.MaxImportSize))
	if err != nil {
		log.Error("Vocabulary import failed", "file", doc.FileName, "error", err)
		b.deliver(chatID, GenericError(), log)
		return
	}
	log.Info("Vocabulary imported", "file", doc.FileName, "created", result.Created,
		"skipped", result.Skipped, "errors", len(result.Errors))
	b.deliver(chatID, Reply{Text: format.ImportSummary(result)}, log)
}

func (b *Bot) send(chatID int64, reply Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	if len(reply.Buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(reply.Buttons)
	}
	_, err := b.api.Send(msg)
	return err
}

// deliver sends reply, falling back to the generic error when Telegram rejects it
// so the chat still gets an answer
func (b *Bot) deliver(chatID int64, reply Reply, log *logger.Logger) {
	err := b.send(chatID, reply)
	if err == nil {
		return
	}
	log.Error("Failed to send reply", "error", err)
	if reply.Text == replyGenericError {
		return
	}
	if err := b.send(chatID, GenericError()); err != nil {
		log.Error("Failed to send error reply", "error", err)
	}
}

// commandFromMessage converts a Telegram command message into a Command
func commandFromMessage(message *tgbotapi.Message) (Command, bool) {
	if message == nil || message.From == nil || message.Chat == nil || !message.IsCommand() {
		return Command{}, false
	}
	return Command{
		Name: strings.ToLower(message.Command()),
		Args: strings.TrimSpace(message.CommandArguments()),
		Sender: Sender{
			ID:          message.From.ID,
			DisplayName: displayName(message.From),
		},
	}, true
}

func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
