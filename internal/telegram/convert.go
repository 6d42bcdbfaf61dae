package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledgerbot/internal/bot"
)

// Convert maps a Telegram update onto the router's Update. It reports false
// for updates the bot does not handle (edits, channel posts, inline queries).
func Convert(u tgbotapi.Update) (bot.Update, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.From == nil {
			return bot.Update{}, false
		}
		out := bot.Update{
			ID:         int64(u.UpdateID),
			UserID:     cq.From.ID,
			ChatID:     cq.From.ID,
			CallbackID: cq.ID,
			Data:       cq.Data,
		}
		if cq.Message != nil {
			out.MessageID = cq.Message.MessageID
			if cq.Message.Chat != nil {
				out.ChatID = cq.Message.Chat.ID
			}
		}
		return out, true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil {
			return bot.Update{}, false
		}
		text := m.Text
		// "/start <payload>" from deep links is still /start
		if m.IsCommand() && m.Command() == "start" {
			text = "/start"
		}
		return bot.Update{
			ID:        int64(u.UpdateID),
			UserID:    m.From.ID,
			ChatID:    m.Chat.ID,
			MessageID: m.MessageID,
			Text:      text,
		}, true
	}
	return bot.Update{}, false
}
