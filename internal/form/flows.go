package form

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/model"
)

// Kind names a form flow.
type Kind string

const (
	KindProject       Kind = "project"
	KindTask          Kind = "task"
	KindExpense       Kind = "expense"
	KindProjectStatus Kind = "project_status"
	KindProjectName   Kind = "project_name"
	KindTaskTitle     Kind = "task_title"
	KindExpenseAmount Kind = "expense_amount"
)

// StepID is both the step name and the draft field it fills.
type StepID string

const (
	StepName        StepID = "name"
	StepType        StepID = "type"
	StepCost        StepID = "cost"
	StepDeadline    StepID = "deadline"
	StepTitle       StepID = "title"
	StepDescription StepID = "description"
	StepProject     StepID = "project_id"
	StepAmount      StepID = "amount"
	StepDate        StepID = "date"
	StepComment     StepID = "comment"
	StepStatus      StepID = "status"
)

// FieldTarget is the seed field holding the record an edit form applies to.
const FieldTarget = "target_id"

type Step struct {
	ID       StepID
	Accepts  InputKind
	Optional bool

	// when reports whether the step applies to the draft; nil means always.
	when func(d Draft) bool
	// parse validates the input; a nil value stores the field as absent.
	parse func(d Draft, in Input) (any, *ValidationError)
	// onSkip gives the value stored on skip; nil means absent.
	onSkip func(now time.Time) any
}

func (s Step) applies(d Draft) bool {
	return s.when == nil || s.when(d)
}

type Flow struct {
	Kind  Kind
	Steps []Step
}

// ParseAmount accepts a positive decimal with "." or "," as separator,
// rounded to two places and no larger than model.MaxAmount.
func ParseAmount(s string) (decimal.Decimal, Reason, bool) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, ReasonNotANumber, false
	}
	if !d.IsPositive() {
		return decimal.Zero, ReasonNotPositive, false
	}
	if d.GreaterThan(model.MaxAmount) {
		return decimal.Zero, ReasonTooLarge, false
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ReasonBelowCent, false
	}
	return d, "", true
}

func reject(d Draft, step StepID, reason Reason, in Input) *ValidationError {
	return &ValidationError{Form: d.Kind, Step: step, Reason: reason, Input: in.raw()}
}

func textStep(id StepID) Step {
	return Step{
		ID:      id,
		Accepts: InputText,
		parse: func(d Draft, in Input) (any, *ValidationError) {
			v := strings.TrimSpace(in.Text)
			if v == "" {
				return nil, reject(d, id, ReasonEmpty, in)
			}
			return v, nil
		},
	}
}

func amountStep(id StepID) Step {
	return Step{
		ID:      id,
		Accepts: InputText,
		parse: func(d Draft, in Input) (any, *ValidationError) {
			v, reason, ok := ParseAmount(in.Text)
			if !ok {
				return nil, reject(d, id, reason, in)
			}
			return v, nil
		},
	}
}

var skipWords = map[string]bool{"skip": true, "пропустить": true}

// optionalTextStep stores free text; typing a skip word counts as skipping.
func optionalTextStep(id StepID) Step {
	return Step{
		ID:       id,
		Accepts:  InputText,
		Optional: true,
		parse: func(d Draft, in Input) (any, *ValidationError) {
			v := strings.TrimSpace(in.Text)
			if v == "" || skipWords[strings.ToLower(v)] {
				return nil, nil
			}
			return v, nil
		},
	}
}

func dateStep(id StepID, onSkip func(now time.Time) any) Step {
	return Step{
		ID:       id,
		Accepts:  InputDate,
		Optional: true,
		parse: func(d Draft, in Input) (any, *ValidationError) {
			return in.Date, nil
		},
		onSkip: onSkip,
	}
}

func projectTypeStep() Step {
	return Step{
		ID:      StepType,
		Accepts: InputChoice,
		parse: func(d Draft, in Input) (any, *ValidationError) {
			t := model.ProjectType(in.Choice)
			if !t.Valid() {
				return nil, reject(d, StepType, ReasonInvalidChoice, in)
			}
			return t, nil
		},
	}
}

func statusStep() Step {
	return Step{
		ID:      StepStatus,
		Accepts: InputChoice,
		parse: func(d Draft, in Input) (any, *ValidationError) {
			s := model.ProjectStatus(in.Choice)
			for _, allowed := range model.StatusesFor(d.ProjectType()) {
				if s == allowed {
					return s, nil
				}
			}
			return nil, reject(d, StepStatus, ReasonInvalidChoice, in)
		},
	}
}

func projectRefStep() Step {
	return Step{
		ID:       StepProject,
		Accepts:  InputChoice,
		Optional: true,
		parse: func(d Draft, in Input) (any, *ValidationError) {
			if in.ID <= 0 {
				return nil, reject(d, StepProject, ReasonInvalidChoice, in)
			}
			return in.ID, nil
		},
	}
}

func isOrder(d Draft) bool {
	return d.ProjectType() == model.ProjectTypeOrder
}

// DefaultFlows returns every flow the bot runs.
func DefaultFlows() []Flow {
	cost := amountStep(StepCost)
	cost.when = isOrder

	return []Flow{
		{Kind: KindProject, Steps: []Step{
			textStep(StepName),
			projectTypeStep(),
			cost,
			dateStep(StepDeadline, nil),
		}},
		{Kind: KindTask, Steps: []Step{
			textStep(StepTitle),
			optionalTextStep(StepDescription),
			projectRefStep(),
			dateStep(StepDeadline, nil),
		}},
		{Kind: KindExpense, Steps: []Step{
			amountStep(StepAmount),
			dateStep(StepDate, func(now time.Time) any { return now }),
			optionalTextStep(StepComment),
		}},
		{Kind: KindProjectStatus, Steps: []Step{statusStep()}},
		{Kind: KindProjectName, Steps: []Step{textStep(StepName)}},
		{Kind: KindTaskTitle, Steps: []Step{textStep(StepTitle)}},
		{Kind: KindExpenseAmount, Steps: []Step{amountStep(StepAmount)}},
	}
}

// ProjectType reads the "type" field, seeded or collected.
func (d Draft) ProjectType() model.ProjectType {
	t, _ := d.values[string(StepType)].(model.ProjectType)
	return t
}

func (d Draft) Status() model.ProjectStatus {
	s, _ := d.values[string(StepStatus)].(model.ProjectStatus)
	return s
}

// Target is the record id an edit form was started for.
func (d Draft) Target() int64 {
	id, _ := d.Int64(FieldTarget)
	return id
}
