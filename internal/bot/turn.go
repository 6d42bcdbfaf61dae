package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/events"
	"ledgerbot/internal/menu"
	"ledgerbot/internal/repository"
	"ledgerbot/pkg/trace"
)

type outKind int

const (
	outSend outKind = iota
	outEdit
	outDelete
)

type outbound struct {
	kind   outKind
	screen menu.Screen
}

// turn is the processing of one update. Outbound calls are buffered and only
// flushed after the transaction commits.
type turn struct {
	ctx  context.Context
	u    Update
	sess *repository.Session
	log  *zap.Logger
	now  time.Time

	out    []outbound
	notice string
	events []events.Event
}

// show renders s as the answer to the update: callbacks edit their message in
// place, text messages get a new one. Reply keyboards cannot be attached by
// an edit, so such screens replace the old message.
func (t *turn) show(s menu.Screen) {
	if !t.u.IsCallback() {
		t.send(s)
		return
	}
	if len(s.Keyboard) > 0 {
		t.send(s)
		t.out = append(t.out, outbound{kind: outDelete})
		return
	}
	t.out = append(t.out, outbound{kind: outEdit, screen: s})
}

func (t *turn) send(s menu.Screen) {
	t.out = append(t.out, outbound{kind: outSend, screen: s})
}

// tell shows a short notice: the callback toast, or a message for text turns.
func (t *turn) tell(text string) {
	if t.u.IsCallback() {
		t.notice = text
		return
	}
	t.send(menu.Prompt(text))
}

func (t *turn) emit(eventType string, recordID int64, detail string) {
	t.events = append(t.events, events.Event{
		Type:       eventType,
		UserID:     t.u.UserID,
		RecordID:   recordID,
		Detail:     detail,
		OccurredAt: t.now,
		TraceID:    trace.FromContext(t.ctx),
	})
}

func (t *turn) flush(ctx context.Context, sender Sender) error {
	if t.u.IsCallback() {
		if err := sender.Ack(ctx, t.u.CallbackID, t.notice); err != nil {
			t.log.Warn("Failed to acknowledge callback", zap.Error(err))
		}
	}

	for _, o := range t.out {
		switch o.kind {
		case outSend:
			if _, err := sender.Send(ctx, t.u.ChatID, o.screen); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		case outEdit:
			err := sender.Edit(ctx, t.u.ChatID, t.u.MessageID, o.screen)
			if errors.Is(err, ErrNotModified) {
				t.log.Debug("Edit skipped, message not modified")
				continue
			}
			if err != nil {
				return fmt.Errorf("edit: %w", err)
			}
		case outDelete:
			if err := sender.Delete(ctx, t.u.ChatID, t.u.MessageID); err != nil {
				t.log.Debug("Failed to delete message", zap.Error(err))
			}
		}
	}
	return nil
}

// notFoundError marks a by-id lookup that matched nothing. The router shows
// it as a notice instead of failing the turn.
type notFoundError struct {
	what string
}

func (e *notFoundError) Error() string {
	return e.what + " not found"
}

func missing(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &notFoundError{what: what}
	}
	return err
}
