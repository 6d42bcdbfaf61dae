package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbot/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return store
}

// inSession runs fn in one committed session.
func inSession(t *testing.T, store Store, fn func(s *Session)) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	defer s.Rollback(ctx)
	fn(s)
	if err := s.Commit(ctx); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

var t0 = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

// ─── Projects ───────────────────────────────────────────────────────────────

func TestProjects_InsertAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		p := &model.Project{
			UserID:    7,
			Name:      "Website",
			Type:      model.ProjectTypeOrder,
			Status:    model.StatusAgreement,
			Cost:      decimal.NewNullDecimal(decimal.RequireFromString("1500")),
			CreatedAt: t0,
		}
		id, err := s.Projects().Insert(ctx, p)
		if err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		if id == 0 || p.ID != id {
			t.Fatalf("Insert() id = %d, p.ID = %d", id, p.ID)
		}

		got, err := s.Projects().FindByID(ctx, id)
		if err != nil {
			t.Fatalf("FindByID() error: %v", err)
		}
		if got.Name != "Website" || got.Type != model.ProjectTypeOrder || got.Status != model.StatusAgreement {
			t.Errorf("FindByID() = %+v", got)
		}
		if !got.Cost.Valid || !got.Cost.Decimal.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("Cost = %v, want 1500", got.Cost)
		}
		if got.Deadline != nil {
			t.Errorf("Deadline = %v, want nil", got.Deadline)
		}
		if !got.CreatedAt.Equal(t0) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, t0)
		}
		if got.CompletedAt != nil {
			t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
		}
	})
}

func TestProjects_FindMissing(t *testing.T) {
	store := newTestStore(t)
	inSession(t, store, func(s *Session) {
		_, err := s.Projects().FindByID(context.Background(), 404)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})
}

func TestProjects_ListByUserFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		seed := []model.Project{
			{UserID: 1, Name: "blog", Type: model.ProjectTypePersonal, Status: model.StatusIdea},
			{UserID: 1, Name: "shop", Type: model.ProjectTypeOrder, Status: model.StatusInProgress},
			{UserID: 1, Name: "done order", Type: model.ProjectTypeOrder, Status: model.StatusCompleted},
			{UserID: 1, Name: "done personal", Type: model.ProjectTypePersonal, Status: model.StatusCompleted},
			{UserID: 2, Name: "other user", Type: model.ProjectTypePersonal, Status: model.StatusIdea},
		}
		for i := range seed {
			seed[i].CreatedAt = t0.Add(time.Duration(i) * time.Minute)
			if _, err := s.Projects().Insert(ctx, &seed[i]); err != nil {
				t.Fatalf("Insert() error: %v", err)
			}
		}
	})

	tests := []struct {
		name   string
		filter model.ProjectFilter
		want   []string
	}{
		{"all", model.ProjectFilter{}, []string{"blog", "shop", "done order", "done personal"}},
		{"personal active", model.ProjectFilter{Type: model.ProjectTypePersonal, Completed: ptr(false)}, []string{"blog"}},
		{"orders active", model.ProjectFilter{Type: model.ProjectTypeOrder, Completed: ptr(false)}, []string{"shop"}},
		{"completed", model.ProjectFilter{Completed: ptr(true)}, []string{"done order", "done personal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inSession(t, store, func(s *Session) {
				got, err := s.Projects().ListByUser(ctx, 1, tt.filter)
				if err != nil {
					t.Fatalf("ListByUser() error: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("ListByUser() len = %d, want %d", len(got), len(tt.want))
				}
				for i, p := range got {
					if p.Name != tt.want[i] {
						t.Errorf("[%d] = %q, want %q", i, p.Name, tt.want[i])
					}
				}
			})
		})
	}
}

func TestProjects_CompletedAtSetOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	var id int64

	inSession(t, store, func(s *Session) {
		p := &model.Project{UserID: 1, Name: "x", Type: model.ProjectTypePersonal, Status: model.StatusIdea, CreatedAt: t0}
		id, _ = s.Projects().Insert(ctx, p)

		first := t0.Add(time.Hour)
		if err := s.Projects().Complete(ctx, id, first); err != nil {
			t.Fatalf("Complete() error: %v", err)
		}
		if err := s.Projects().UpdateStatus(ctx, id, model.StatusInProgress, t0); err != nil {
			t.Fatalf("UpdateStatus() error: %v", err)
		}
		if err := s.Projects().UpdateStatus(ctx, id, model.StatusCompleted, first.Add(time.Hour)); err != nil {
			t.Fatalf("UpdateStatus() error: %v", err)
		}

		got, _ := s.Projects().FindByID(ctx, id)
		if got.Status != model.StatusCompleted {
			t.Errorf("Status = %q, want completed", got.Status)
		}
		if got.CompletedAt == nil || !got.CompletedAt.Equal(first) {
			t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, first)
		}
	})
}

func TestProjects_UpdateMissing(t *testing.T) {
	store := newTestStore(t)
	inSession(t, store, func(s *Session) {
		if err := s.Projects().Complete(context.Background(), 99, t0); !errors.Is(err, ErrNotFound) {
			t.Errorf("Complete() error = %v, want ErrNotFound", err)
		}
		if err := s.Projects().Rename(context.Background(), 99, "n"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Rename() error = %v, want ErrNotFound", err)
		}
	})
}

func TestProjects_DeleteKeepsTaskReference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	var projectID, taskID int64

	inSession(t, store, func(s *Session) {
		p := &model.Project{UserID: 1, Name: "p", Type: model.ProjectTypePersonal, Status: model.StatusIdea, CreatedAt: t0}
		projectID, _ = s.Projects().Insert(ctx, p)
		task := &model.Task{UserID: 1, ProjectID: &projectID, Title: "t", CreatedAt: t0}
		taskID, _ = s.Tasks().Insert(ctx, task)

		if err := s.Projects().Delete(ctx, projectID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		// deleting twice is still fine
		if err := s.Projects().Delete(ctx, projectID); err != nil {
			t.Fatalf("second Delete() error: %v", err)
		}
	})

	inSession(t, store, func(s *Session) {
		got, err := s.Tasks().FindByID(ctx, taskID)
		if err != nil {
			t.Fatalf("FindByID() error: %v", err)
		}
		if got.ProjectID == nil || *got.ProjectID != projectID {
			t.Errorf("ProjectID = %v, want %d", got.ProjectID, projectID)
		}
		if got.ProjectName != nil {
			t.Errorf("ProjectName = %q, want nil", *got.ProjectName)
		}
	})
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func TestTasks_InsertFindList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		p := &model.Project{UserID: 1, Name: "Website", Type: model.ProjectTypeOrder, Status: model.StatusAgreement, CreatedAt: t0}
		pid, _ := s.Projects().Insert(ctx, p)

		deadline := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		withProject := &model.Task{UserID: 1, ProjectID: &pid, Title: "design", Description: ptr("mockups"), Deadline: &deadline, CreatedAt: t0}
		loose := &model.Task{UserID: 1, Title: "call bank", CreatedAt: t0.Add(time.Minute)}
		other := &model.Task{UserID: 2, Title: "not mine", CreatedAt: t0}
		for _, task := range []*model.Task{withProject, loose, other} {
			if _, err := s.Tasks().Insert(ctx, task); err != nil {
				t.Fatalf("Insert() error: %v", err)
			}
		}

		got, err := s.Tasks().FindByID(ctx, withProject.ID)
		if err != nil {
			t.Fatalf("FindByID() error: %v", err)
		}
		if got.ProjectName == nil || *got.ProjectName != "Website" {
			t.Errorf("ProjectName = %v, want Website", got.ProjectName)
		}
		if got.Description == nil || *got.Description != "mockups" {
			t.Errorf("Description = %v, want mockups", got.Description)
		}
		if got.Deadline == nil || !got.Deadline.Equal(deadline) {
			t.Errorf("Deadline = %v, want %v", got.Deadline, deadline)
		}
		if got.IsCompleted {
			t.Error("new task should not be completed")
		}

		list, err := s.Tasks().ListActiveByUser(ctx, 1)
		if err != nil {
			t.Fatalf("ListActiveByUser() error: %v", err)
		}
		if len(list) != 2 || list[0].Title != "design" || list[1].Title != "call bank" {
			t.Fatalf("ListActiveByUser() = %+v", list)
		}
		if list[1].ProjectID != nil || list[1].ProjectName != nil {
			t.Errorf("loose task project = %v / %v, want nil", list[1].ProjectID, list[1].ProjectName)
		}
	})
}

func TestTasks_MarkCompletedTwiceOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		task := &model.Task{UserID: 1, Title: "t", CreatedAt: t0}
		id, _ := s.Tasks().Insert(ctx, task)

		first := t0.Add(time.Hour)
		second := t0.Add(2 * time.Hour)
		if err := s.Tasks().MarkCompleted(ctx, id, first); err != nil {
			t.Fatalf("MarkCompleted() error: %v", err)
		}
		if err := s.Tasks().MarkCompleted(ctx, id, second); err != nil {
			t.Fatalf("second MarkCompleted() error: %v", err)
		}

		got, _ := s.Tasks().FindByID(ctx, id)
		if !got.IsCompleted {
			t.Error("IsCompleted = false, want true")
		}
		if got.CompletedAt == nil || !got.CompletedAt.Equal(second) {
			t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, second)
		}

		list, _ := s.Tasks().ListActiveByUser(ctx, 1)
		if len(list) != 0 {
			t.Errorf("ListActiveByUser() len = %d, want 0", len(list))
		}
	})
}

func TestTasks_RetitleAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		id, _ := s.Tasks().Insert(ctx, &model.Task{UserID: 1, Title: "old", CreatedAt: t0})
		if err := s.Tasks().Retitle(ctx, id, "new"); err != nil {
			t.Fatalf("Retitle() error: %v", err)
		}
		got, _ := s.Tasks().FindByID(ctx, id)
		if got.Title != "new" {
			t.Errorf("Title = %q, want new", got.Title)
		}
		if err := s.Tasks().Delete(ctx, id); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := s.Tasks().FindByID(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
		}
	})
}

// ─── Expenses ───────────────────────────────────────────────────────────────

func TestExpenses_InsertKeepsDecimalAmount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		e := &model.Expense{UserID: 1, Amount: decimal.RequireFromString("99.9"), Date: t0, CreatedAt: t0}
		id, err := s.Expenses().Insert(ctx, e)
		if err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		got, err := s.Expenses().FindByID(ctx, id)
		if err != nil {
			t.Fatalf("FindByID() error: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("99.90")) {
			t.Errorf("Amount = %s, want 99.9", got.Amount)
		}
		if got.Comment != nil {
			t.Errorf("Comment = %q, want nil", *got.Comment)
		}
		if !got.Date.Equal(t0) {
			t.Errorf("Date = %v, want %v", got.Date, t0)
		}
	})
}

func TestAmountOutOfRangeIsRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	huge := decimal.RequireFromString("92233720368547758.08")

	inSession(t, store, func(s *Session) {
		_, err := s.Expenses().Insert(ctx, &model.Expense{UserID: 1, Amount: huge, Date: t0, CreatedAt: t0})
		if !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("expense Insert() error = %v, want ErrAmountOutOfRange", err)
		}

		p := &model.Project{
			UserID: 1, Name: "big", Type: model.ProjectTypeOrder, Status: model.StatusAgreement,
			Cost: decimal.NewNullDecimal(huge), CreatedAt: t0,
		}
		if _, err := s.Projects().Insert(ctx, p); !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("project Insert() error = %v, want ErrAmountOutOfRange", err)
		}

		id, err := s.Expenses().Insert(ctx, &model.Expense{UserID: 1, Amount: decimal.NewFromInt(10), Date: t0, CreatedAt: t0})
		if err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		if err := s.Expenses().UpdateAmount(ctx, id, huge); !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("UpdateAmount() error = %v, want ErrAmountOutOfRange", err)
		}

		sum, err := s.Stats().Summary(ctx, 1)
		if err != nil {
			t.Fatalf("Summary() error: %v", err)
		}
		if !sum.Expenses.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expenses = %s, want 10", sum.Expenses)
		}
	})
}

func TestExpenses_ListSinceOrderedDesc(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		dates := []time.Time{
			t0.AddDate(0, 0, -40), // too old
			t0.AddDate(0, 0, -10),
			t0,
			t0.AddDate(0, 0, -20),
		}
		for _, d := range dates {
			e := &model.Expense{UserID: 1, Amount: decimal.NewFromInt(10), Date: d, CreatedAt: t0}
			if _, err := s.Expenses().Insert(ctx, e); err != nil {
				t.Fatalf("Insert() error: %v", err)
			}
		}
		other := &model.Expense{UserID: 2, Amount: decimal.NewFromInt(1), Date: t0, CreatedAt: t0}
		s.Expenses().Insert(ctx, other)

		got, err := s.Expenses().ListSince(ctx, 1, t0.AddDate(0, 0, -30))
		if err != nil {
			t.Fatalf("ListSince() error: %v", err)
		}
		want := []time.Time{t0, t0.AddDate(0, 0, -10), t0.AddDate(0, 0, -20)}
		if len(got) != len(want) {
			t.Fatalf("ListSince() len = %d, want %d", len(got), len(want))
		}
		for i, e := range got {
			if !e.Date.Equal(want[i]) {
				t.Errorf("[%d].Date = %v, want %v", i, e.Date, want[i])
			}
		}
	})
}

func TestExpenses_UpdateAmountAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		id, _ := s.Expenses().Insert(ctx, &model.Expense{UserID: 1, Amount: decimal.NewFromInt(5), Date: t0, CreatedAt: t0})
		if err := s.Expenses().UpdateAmount(ctx, id, decimal.RequireFromString("12.5")); err != nil {
			t.Fatalf("UpdateAmount() error: %v", err)
		}
		got, _ := s.Expenses().FindByID(ctx, id)
		if !got.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("Amount = %s, want 12.5", got.Amount)
		}
		if err := s.Expenses().UpdateAmount(ctx, 999, decimal.NewFromInt(1)); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateAmount(missing) error = %v, want ErrNotFound", err)
		}
		if err := s.Expenses().Delete(ctx, id); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if err := s.Expenses().Delete(ctx, id); err != nil {
			t.Fatalf("second Delete() error: %v", err)
		}
	})
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestStats_EmptyUserIsZero(t *testing.T) {
	store := newTestStore(t)
	inSession(t, store, func(s *Session) {
		sum, err := s.Stats().Summary(context.Background(), 42)
		if err != nil {
			t.Fatalf("Summary() error: %v", err)
		}
		if sum.CompletedProjects != 0 || sum.ActiveProjects != 0 {
			t.Errorf("counts = %d/%d, want 0/0", sum.CompletedProjects, sum.ActiveProjects)
		}
		if !sum.Income.IsZero() || !sum.Expenses.IsZero() || !sum.Profit().IsZero() {
			t.Errorf("sums = %s/%s/%s, want zeros", sum.Income, sum.Expenses, sum.Profit())
		}
	})
}

func TestStats_Summary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	inSession(t, store, func(s *Session) {
		cost := func(v string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(v)) }
		projects := []*model.Project{
			{UserID: 1, Name: "a", Type: model.ProjectTypeOrder, Status: model.StatusCompleted, Cost: cost("1500"), CreatedAt: t0},
			{UserID: 1, Name: "b", Type: model.ProjectTypeOrder, Status: model.StatusCompleted, Cost: cost("250.50"), CreatedAt: t0},
			{UserID: 1, Name: "c", Type: model.ProjectTypeOrder, Status: model.StatusInProgress, Cost: cost("999"), CreatedAt: t0},
			{UserID: 1, Name: "d", Type: model.ProjectTypePersonal, Status: model.StatusCompleted, CreatedAt: t0},
			{UserID: 1, Name: "e", Type: model.ProjectTypePersonal, Status: model.StatusIdea, CreatedAt: t0},
			{UserID: 2, Name: "f", Type: model.ProjectTypeOrder, Status: model.StatusCompleted, Cost: cost("10000"), CreatedAt: t0},
		}
		for _, p := range projects {
			if _, err := s.Projects().Insert(ctx, p); err != nil {
				t.Fatalf("Insert() error: %v", err)
			}
		}
		for _, amount := range []string{"99.9", "0.1", "400"} {
			e := &model.Expense{UserID: 1, Amount: decimal.RequireFromString(amount), Date: t0, CreatedAt: t0}
			s.Expenses().Insert(ctx, e)
		}

		sum, err := s.Stats().Summary(ctx, 1)
		if err != nil {
			t.Fatalf("Summary() error: %v", err)
		}
		if sum.CompletedProjects != 3 {
			t.Errorf("CompletedProjects = %d, want 3", sum.CompletedProjects)
		}
		if sum.ActiveProjects != 2 {
			t.Errorf("ActiveProjects = %d, want 2", sum.ActiveProjects)
		}
		if !sum.Income.Equal(decimal.RequireFromString("1750.5")) {
			t.Errorf("Income = %s, want 1750.5", sum.Income)
		}
		if !sum.Expenses.Equal(decimal.NewFromInt(500)) {
			t.Errorf("Expenses = %s, want 500", sum.Expenses)
		}
		if !sum.Profit().Equal(decimal.RequireFromString("1250.5")) {
			t.Errorf("Profit = %s, want 1250.5", sum.Profit())
		}
	})
}

// ─── Session ────────────────────────────────────────────────────────────────

func TestSession_RollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	id, err := s.Expenses().Insert(ctx, &model.Expense{UserID: 1, Amount: decimal.NewFromInt(1), Date: t0, CreatedAt: t0})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if err := s.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error: %v", err)
	}
	if err := s.Commit(ctx); err != nil {
		t.Errorf("Commit() after Rollback error = %v, want nil", err)
	}

	inSession(t, store, func(s *Session) {
		if _, err := s.Expenses().FindByID(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})
}

func TestRebind(t *testing.T) {
	got := rebind(`SELECT * FROM t WHERE a = $1 AND b = $12 OR a = $1`)
	want := `SELECT * FROM t WHERE a = ?1 AND b = ?12 OR a = ?1`
	if got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}
}

func TestCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12.5", 1250},
		{"99.90", 9990},
		{"0.015", 2},
		{"1500", 150000},
	}
	for _, tt := range tests {
		got, err := toCents(decimal.RequireFromString(tt.in))
		if err != nil || got != tt.want {
			t.Errorf("toCents(%s) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
	for _, in := range []string{"92233720368547758.08", "1e20", "-1000000000000.01"} {
		if _, err := toCents(decimal.RequireFromString(in)); !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("toCents(%s) error = %v, want ErrAmountOutOfRange", in, err)
		}
	}
	if !fromCents(9990).Equal(decimal.RequireFromString("99.9")) {
		t.Errorf("fromCents(9990) = %s", fromCents(9990))
	}
}
