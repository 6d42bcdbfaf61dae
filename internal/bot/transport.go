package bot

import (
	"context"
	"errors"

	"ledgerbot/internal/menu"
)

// ErrNotModified is returned by a Sender when an edit would leave the message
// unchanged. The router ignores it.
var ErrNotModified = errors.New("message is not modified")

// Update is one inbound event: a text message or a button press.
type Update struct {
	ID        int64
	UserID    int64
	ChatID    int64
	MessageID int // the inbound message, or the message carrying the button

	Text string

	CallbackID string
	Data       string
}

func (u Update) IsCallback() bool {
	return u.CallbackID != ""
}

func (u Update) kind() string {
	if u.IsCallback() {
		return "callback"
	}
	return "message"
}

// Sender is the outbound half of the chat transport.
type Sender interface {
	Send(ctx context.Context, chatID int64, s menu.Screen) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, s menu.Screen) error
	Ack(ctx context.Context, callbackID, notice string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// Deduper suppresses redelivered updates.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler string, id int64) bool
}
