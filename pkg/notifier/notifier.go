package notifier

import (
	"golang-stock-dashboard/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Level classifies a user-visible notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier delivers one user-visible message per batch-level event. Failures
// inside a batch are reported here once, never per item.
type Notifier interface {
	Notify(level Level, text string) error
}

// telegramNotifier delivers notifications to a Telegram chat.
type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram-backed notifier.
func NewTelegram(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &telegramNotifier{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Notify sends the message to the configured Telegram chat.
func (n *telegramNotifier) Notify(level Level, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, "["+string(level)+"] "+text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := n.bot.Send(msg)
	return err
}

// logNotifier writes notifications to the application log. Used when no
// Telegram credentials are configured.
type logNotifier struct {
	log *logger.Logger
}

// NewLog creates a logger-backed notifier.
func NewLog(log *logger.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(level Level, text string) error {
	switch level {
	case LevelError:
		n.log.Error(text, logger.StringField("notify_level", string(level)))
	default:
		n.log.Info(text, logger.StringField("notify_level", string(level)))
	}
	return nil
}
