package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Sender posts MarkdownV2 messages to a chat.
type Sender struct {
	api API
}

func NewSender(api API) *Sender {
	return &Sender{api: api}
}

func (s *Sender) Send(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, chatID, text, nil)
}

func (s *Sender) SendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	return s.send(ctx, chatID, text, &keyboard)
}

func (s *Sender) send(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}
