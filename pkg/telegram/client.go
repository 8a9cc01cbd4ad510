package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for a Telegram notifier.
type Notifier interface {
	// SendMessage sends to the configured operator chat.
	SendMessage(text string) error
	// SendMessageUser sends to a specific user chat.
	SendMessageUser(text string, chatID int64) error
}

// client is an implementation of Notifier.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram notifier client.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends a message to the configured Telegram chat.
func (c *client) SendMessage(text string) error {
	return c.SendMessageUser(text, c.chatID)
}

// SendMessageUser sends a message to chatID, split into parts when it exceeds the Telegram limit.
func (c *client) SendMessageUser(text string, chatID int64) error {
	for _, part := range SplitMessage(text, MaxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		if _, err := c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

type nopNotifier struct{}

// NewNopNotifier returns a Notifier that drops every message. Used when no bot token is configured.
func NewNopNotifier() Notifier { return nopNotifier{} }

func (nopNotifier) SendMessage(string) error { return nil }

func (nopNotifier) SendMessageUser(string, int64) error { return nil }
