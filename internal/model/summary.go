package model

import "github.com/shopspring/decimal"

// Summary is the per-user profit/loss snapshot. Sums are zero, never absent.
type Summary struct {
	CompletedProjects int64           `json:"completed_projects"`
	ActiveProjects    int64           `json:"active_projects"`
	Income            decimal.Decimal `json:"income"`
	Expenses          decimal.Decimal `json:"expenses"`
}

func (s Summary) Profit() decimal.Decimal {
	return s.Income.Sub(s.Expenses)
}
