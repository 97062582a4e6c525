package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Config for the instructor notification channel.
type Config struct {
	Enabled  bool
	BotToken string
	ChatID   int64
}

// Telegram pushes short status messages about executed actions to the
// instructor's chat. Delivery is best-effort: a failed send is logged and
// dropped, it never affects the pipeline.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegram creates the notifier, or returns (nil, nil) when notifications
// are disabled. Callers treat a nil notifier as "no channel configured".
func NewTelegram(cfg Config, logger *zap.Logger) (*Telegram, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	logger.Info("Telegram notifier enabled", zap.Int64("chat_id", cfg.ChatID))
	return &Telegram{bot: bot, chatID: cfg.ChatID, logger: logger}, nil
}

// Notify sends one message to the configured chat.
func (t *Telegram) Notify(_ context.Context, message string) {
	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Failed to send notification", zap.Error(err))
	}
}
