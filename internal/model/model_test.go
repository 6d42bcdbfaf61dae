package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(ProjectTypePersonal); got != StatusIdea {
		t.Errorf("InitialStatus(personal) = %q, want %q", got, StatusIdea)
	}
	if got := InitialStatus(ProjectTypeOrder); got != StatusAgreement {
		t.Errorf("InitialStatus(order) = %q, want %q", got, StatusAgreement)
	}
}

func TestStatusesFor(t *testing.T) {
	personal := StatusesFor(ProjectTypePersonal)
	for _, s := range personal {
		if s == StatusAgreement {
			t.Error("personal projects must not offer the agreement status")
		}
	}
	order := StatusesFor(ProjectTypeOrder)
	for _, s := range order {
		if s == StatusIdea {
			t.Error("orders must not offer the idea status")
		}
	}
	if personal[len(personal)-1] != StatusCompleted || order[len(order)-1] != StatusCompleted {
		t.Error("completed should be the last choice for both types")
	}
}

func TestSummary_ProfitZeroValue(t *testing.T) {
	var s Summary
	if !s.Profit().Equal(decimal.Zero) {
		t.Errorf("Profit() = %s, want 0", s.Profit())
	}
}

func TestSummary_Profit(t *testing.T) {
	s := Summary{
		Income:   decimal.RequireFromString("1500"),
		Expenses: decimal.RequireFromString("99.9"),
	}
	want := decimal.RequireFromString("1400.1")
	if !s.Profit().Equal(want) {
		t.Errorf("Profit() = %s, want %s", s.Profit(), want)
	}
}
