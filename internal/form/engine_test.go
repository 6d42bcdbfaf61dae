package form

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbot/internal/model"
)

const user = int64(100)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(zap.NewNop())
	e.SetClock(func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) })
	return e
}

func mustAdvance(t *testing.T, e *Engine, in Input) Result {
	t.Helper()
	res, err := e.Advance(user, in)
	if err != nil {
		t.Fatalf("Advance(%+v) error: %v", in, err)
	}
	return res
}

func expectStep(t *testing.T, res Result, want StepID) {
	t.Helper()
	if res.Outcome != Advanced {
		t.Fatalf("outcome = %v, want advanced", res.Outcome)
	}
	if res.Step.ID != want {
		t.Fatalf("step = %q, want %q", res.Step.ID, want)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		reason Reason
	}{
		{"12,5", "12.5", ""},
		{"12.5", "12.5", ""},
		{" 99,90 ", "99.9", ""},
		{"1500", "1500", ""},
		{"0", "", ReasonNotPositive},
		{"-3", "", ReasonNotPositive},
		{"0,001", "", ReasonBelowCent},
		{"0.004", "", ReasonBelowCent},
		{"0.005", "0.01", ""},
		{"1000000000000", "1000000000000", ""},
		{"1000000000000.01", "", ReasonTooLarge},
		{"92233720368547758.08", "", ReasonTooLarge},
		{"1e20", "", ReasonTooLarge},
		{"abc", "", ReasonNotANumber},
		{"", "", ReasonNotANumber},
		{"12,5,1", "", ReasonNotANumber},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, reason, ok := ParseAmount(tt.in)
			if tt.reason != "" {
				if ok || reason != tt.reason {
					t.Errorf("ParseAmount(%q) = %s, %q, %v; want reason %q", tt.in, got, reason, ok, tt.reason)
				}
				return
			}
			if !ok || !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, %v; want %s", tt.in, got, ok, tt.want)
			}
		})
	}
}

func TestProjectForm_OrderAsksCostBeforeDeadline(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.Start(user, KindProject, nil)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if first.ID != StepName {
		t.Fatalf("first step = %q, want name", first.ID)
	}

	expectStep(t, mustAdvance(t, e, Text("Website")), StepType)
	expectStep(t, mustAdvance(t, e, Choice("order")), StepCost)
	expectStep(t, mustAdvance(t, e, Text("1500")), StepDeadline)

	res := mustAdvance(t, e, Skip())
	if res.Outcome != Completed {
		t.Fatalf("outcome = %v, want completed", res.Outcome)
	}
	d := res.Draft
	if name, _ := d.String("name"); name != "Website" {
		t.Errorf("name = %q, want Website", name)
	}
	if d.ProjectType() != model.ProjectTypeOrder {
		t.Errorf("type = %q, want order", d.ProjectType())
	}
	if cost, ok := d.Decimal("cost"); !ok || !cost.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("cost = %v, %v; want 1500", cost, ok)
	}
	if d.TimePtr("deadline") != nil {
		t.Errorf("deadline = %v, want absent", d.TimePtr("deadline"))
	}
	if _, ok := e.Current(user); ok {
		t.Error("form should be cleared after completion")
	}
}

func TestProjectForm_PersonalNeverAsksCost(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindProject, nil)

	expectStep(t, mustAdvance(t, e, Text("Blog")), StepType)
	expectStep(t, mustAdvance(t, e, Choice("personal")), StepDeadline)

	deadline := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	res := mustAdvance(t, e, Date(deadline))
	if res.Outcome != Completed {
		t.Fatalf("outcome = %v, want completed", res.Outcome)
	}
	if res.Draft.Has("cost") {
		t.Error("personal draft must not carry a cost")
	}
	if got := res.Draft.TimePtr("deadline"); got == nil || !got.Equal(deadline) {
		t.Errorf("deadline = %v, want %v", got, deadline)
	}
}

func TestAmountStep_InvalidRepromptsWithoutMutation(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindExpense, nil)

	for _, bad := range []string{"abc", "0", "-5", "0,00"} {
		res := mustAdvance(t, e, Text(bad))
		if res.Outcome != Invalid {
			t.Fatalf("Advance(%q) outcome = %v, want invalid", bad, res.Outcome)
		}
		if res.Step.ID != StepAmount {
			t.Errorf("Advance(%q) step = %q, want amount", bad, res.Step.ID)
		}
		if res.Err == nil || res.Err.Step != StepAmount || res.Err.Form != KindExpense {
			t.Errorf("Advance(%q) err = %+v", bad, res.Err)
		}
		if res.Draft.Has("amount") {
			t.Errorf("Advance(%q) stored an amount", bad)
		}
	}

	pos, ok := e.Current(user)
	if !ok || pos.Step.ID != StepAmount {
		t.Fatalf("Current() = %+v, %v; want amount step", pos, ok)
	}
}

func TestExpenseForm_Scenario(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindExpense, nil)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expectStep(t, mustAdvance(t, e, Text("99,90")), StepDate)
	expectStep(t, mustAdvance(t, e, Date(day)), StepComment)
	res := mustAdvance(t, e, Skip())
	if res.Outcome != Completed {
		t.Fatalf("outcome = %v, want completed", res.Outcome)
	}
	if amount, _ := res.Draft.Decimal("amount"); !amount.Equal(decimal.RequireFromString("99.9")) {
		t.Errorf("amount = %s, want 99.9", amount)
	}
	if got, _ := res.Draft.Time("date"); !got.Equal(day) {
		t.Errorf("date = %v, want %v", got, day)
	}
	if res.Draft.StringPtr("comment") != nil {
		t.Error("comment should be absent")
	}
}

func TestExpenseForm_SkipDateMeansNow(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindExpense, nil)
	mustAdvance(t, e, Text("10"))
	mustAdvance(t, e, Skip())
	res := mustAdvance(t, e, Text("lunch"))

	want := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	if got, ok := res.Draft.Time("date"); !ok || !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}
	if c := res.Draft.StringPtr("comment"); c == nil || *c != "lunch" {
		t.Errorf("comment = %v, want lunch", c)
	}
}

func TestTaskForm_TypedSkipAndNoProject(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindTask, nil)

	expectStep(t, mustAdvance(t, e, Text("Call bank")), StepDescription)
	expectStep(t, mustAdvance(t, e, Text("Skip")), StepProject)
	expectStep(t, mustAdvance(t, e, Skip()), StepDeadline)
	res := mustAdvance(t, e, Skip())

	if res.Outcome != Completed {
		t.Fatalf("outcome = %v, want completed", res.Outcome)
	}
	if res.Draft.StringPtr("description") != nil {
		t.Error("typed Skip should leave description absent")
	}
	if res.Draft.Int64Ptr("project_id") != nil {
		t.Error("project should be absent")
	}
}

func TestTaskForm_SelectProject(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindTask, nil)
	mustAdvance(t, e, Text("Design"))
	mustAdvance(t, e, Text("mockups"))
	expectStep(t, mustAdvance(t, e, ChoiceID(7)), StepDeadline)
	res := mustAdvance(t, e, Skip())

	if id := res.Draft.Int64Ptr("project_id"); id == nil || *id != 7 {
		t.Errorf("project_id = %v, want 7", id)
	}
	if d := res.Draft.StringPtr("description"); d == nil || *d != "mockups" {
		t.Errorf("description = %v, want mockups", d)
	}
}

func TestAdvance_UnexpectedInputKeepsState(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindProject, nil)

	if _, err := e.Advance(user, Skip()); !errors.Is(err, ErrUnexpectedInput) {
		t.Errorf("Skip on required step error = %v, want ErrUnexpectedInput", err)
	}
	if _, err := e.Advance(user, Choice("order")); !errors.Is(err, ErrUnexpectedInput) {
		t.Errorf("Choice on text step error = %v, want ErrUnexpectedInput", err)
	}
	pos, _ := e.Current(user)
	if pos.Step.ID != StepName {
		t.Errorf("step = %q, want name", pos.Step.ID)
	}
}

func TestAdvance_NoActiveForm(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Advance(user, Text("x")); !errors.Is(err, ErrNoActiveForm) {
		t.Errorf("Advance() error = %v, want ErrNoActiveForm", err)
	}
}

func TestStart_DiscardsPreviousForm(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindProject, nil)
	mustAdvance(t, e, Text("Half done"))

	step, err := e.Start(user, KindExpense, nil)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if step.ID != StepAmount {
		t.Errorf("first step = %q, want amount", step.ID)
	}
	pos, _ := e.Current(user)
	if pos.Kind != KindExpense || pos.Draft.Has("name") {
		t.Errorf("Current() = %+v, want a fresh expense form", pos)
	}
}

func TestForms_ArePerUser(t *testing.T) {
	e := newTestEngine(t)
	e.Start(1, KindProject, nil)
	e.Start(2, KindExpense, nil)

	if _, err := e.Advance(1, Text("mine")); err != nil {
		t.Fatalf("Advance(1) error: %v", err)
	}
	pos, _ := e.Current(2)
	if pos.Step.ID != StepAmount {
		t.Errorf("user 2 step = %q, want amount", pos.Step.ID)
	}
}

func TestStatusForm_ChoicesFollowProjectType(t *testing.T) {
	e := newTestEngine(t)
	seed := map[string]any{FieldTarget: int64(3), "type": model.ProjectTypePersonal}
	e.Start(user, KindProjectStatus, seed)

	res := mustAdvance(t, e, Choice(string(model.StatusAgreement)))
	if res.Outcome != Invalid || res.Err.Reason != ReasonInvalidChoice {
		t.Fatalf("agreement for personal = %v / %+v, want invalid choice", res.Outcome, res.Err)
	}

	res = mustAdvance(t, e, Choice(string(model.StatusInProgress)))
	if res.Outcome != Completed {
		t.Fatalf("outcome = %v, want completed", res.Outcome)
	}
	if res.Draft.Status() != model.StatusInProgress || res.Draft.Target() != 3 {
		t.Errorf("draft status/target = %q/%d", res.Draft.Status(), res.Draft.Target())
	}
}

func TestCancel(t *testing.T) {
	e := newTestEngine(t)
	e.Start(user, KindProjectStatus, map[string]any{"type": model.ProjectTypeOrder})
	if !e.Cancel(user) {
		t.Error("Cancel() = false, want true")
	}
	if e.Cancel(user) {
		t.Error("second Cancel() = true, want false")
	}
}

func TestAwaits(t *testing.T) {
	e := newTestEngine(t)
	if e.Awaits(user, InputText) {
		t.Error("Awaits(text) without a form = true")
	}
	e.Start(user, KindTask, nil)
	if !e.Awaits(user, InputText) || e.Awaits(user, InputSkip) {
		t.Error("title step should await text and refuse skip")
	}
	mustAdvance(t, e, Text("t"))
	if !e.Awaits(user, InputSkip) {
		t.Error("description step should accept skip")
	}
}
