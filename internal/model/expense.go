package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount caps expense amounts and project costs so sums of cents stay
// within int64.
var MaxAmount = decimal.New(1, 12)

type Expense struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Comment   *string         `json:"comment,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
