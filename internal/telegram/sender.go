package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/menu"
)

// API is the part of *tgbotapi.BotAPI the sender uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender renders screens as Telegram messages.
type Sender struct {
	api    API
	logger *zap.Logger
}

func NewSender(api API, logger *zap.Logger) *Sender {
	return &Sender{api: api, logger: logger}
}

func (s *Sender) Send(_ context.Context, chatID int64, screen menu.Screen) (int, error) {
	msg := tgbotapi.NewMessage(chatID, screen.Text)
	switch {
	case len(screen.Keyboard) > 0:
		msg.ReplyMarkup = replyKeyboard(screen.Keyboard)
	case len(screen.Rows) > 0:
		msg.ReplyMarkup = inlineKeyboard(screen.Rows)
	}

	sent, err := s.api.Send(msg)
	if err != nil {
		s.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

func (s *Sender) Edit(_ context.Context, chatID int64, messageID int, screen menu.Screen) error {
	var edit tgbotapi.EditMessageTextConfig
	if len(screen.Rows) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, screen.Text, inlineKeyboard(screen.Rows))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, screen.Text)
	}

	if _, err := s.api.Send(edit); err != nil {
		if isNotModified(err) {
			return bot.ErrNotModified
		}
		s.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Ack answers a button press; notice, when set, is shown as a toast.
func (s *Sender) Ack(_ context.Context, callbackID, notice string) error {
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, notice)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (s *Sender) Delete(_ context.Context, chatID int64, messageID int) error {
	if messageID == 0 {
		return nil
	}
	if _, err := s.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func inlineKeyboard(rows [][]menu.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Encode()))
		}
		out = append(out, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	out := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		out = append(out, buttons)
	}
	kb := tgbotapi.NewReplyKeyboard(out...)
	kb.ResizeKeyboard = true
	return kb
}

// Telegram refuses edits that change nothing with a 400 carrying this text.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
