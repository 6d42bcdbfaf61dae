package events

import (
	"context"
	"time"
)

// routing keys on the ledger.events exchange
const (
	ProjectCreated       = "project.created"
	ProjectStatusChanged = "project.status_changed"
	ProjectCompleted     = "project.completed"
	ProjectDeleted       = "project.deleted"
	TaskCreated          = "task.created"
	TaskCompleted        = "task.completed"
	TaskDeleted          = "task.deleted"
	ExpenseCreated       = "expense.created"
	ExpenseDeleted       = "expense.deleted"
)

// Event 一次已提交的记录变更
type Event struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	RecordID   int64     `json:"record_id"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	TraceID    string    `json:"trace_id,omitempty"`
}

// Publisher hands committed events to a broker. Delivery is best effort and
// never fails the turn that produced the events.
type Publisher interface {
	Publish(ctx context.Context, evs []Event)
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, []Event) {}
