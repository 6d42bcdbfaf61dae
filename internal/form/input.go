package form

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoActiveForm 当前用户没有进行中的表单
	ErrNoActiveForm = errors.New("no active form")
	// ErrUnexpectedInput 输入类型与当前步骤不匹配，状态不变
	ErrUnexpectedInput = errors.New("input not accepted by current step")
)

type InputKind int

const (
	InputText InputKind = iota
	InputChoice
	InputDate
	InputSkip
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputChoice:
		return "choice"
	case InputDate:
		return "date"
	case InputSkip:
		return "skip"
	}
	return "unknown"
}

// Input is one inbound value offered to the current step.
type Input struct {
	Kind   InputKind
	Text   string
	Choice string // fixed choice id, e.g. "order"
	ID     int64  // record id carried by a choice, e.g. the selected project
	Date   time.Time
}

func Text(s string) Input     { return Input{Kind: InputText, Text: s} }
func Choice(id string) Input  { return Input{Kind: InputChoice, Choice: id} }
func ChoiceID(id int64) Input { return Input{Kind: InputChoice, ID: id} }
func Date(d time.Time) Input  { return Input{Kind: InputDate, Date: d} }
func Skip() Input             { return Input{Kind: InputSkip} }

func (in Input) raw() string {
	switch in.Kind {
	case InputText:
		return in.Text
	case InputChoice:
		if in.Choice != "" {
			return in.Choice
		}
		return fmt.Sprint(in.ID)
	case InputDate:
		return in.Date.Format("2006-01-02")
	}
	return ""
}

type Reason string

const (
	ReasonNotANumber    Reason = "not_a_number"
	ReasonNotPositive   Reason = "not_positive"
	ReasonBelowCent     Reason = "below_cent"
	ReasonTooLarge      Reason = "too_large"
	ReasonEmpty         Reason = "empty"
	ReasonInvalidChoice Reason = "invalid_choice"
)

// ValidationError is the payload of a rejected input. The step stays current
// and no collected field changes.
type ValidationError struct {
	Form   Kind
	Step   StepID
	Reason Reason
	Input  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s form, step %s: %s (%q)", e.Form, e.Step, e.Reason, e.Input)
}
