package bot

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/calendar"
	"ledgerbot/internal/form"
	"ledgerbot/internal/menu"
	"ledgerbot/internal/model"
	"ledgerbot/pkg/metrics"
)

func (r *Router) registerForms() {
	choice := func(t *turn, a menu.Action) error {
		return r.advance(t, form.Choice(a.Value))
	}
	skip := func(t *turn, _ menu.Action) error {
		return r.advance(t, form.Skip())
	}

	r.Register(menu.OpProjectType, choice)
	r.Register(menu.OpSetStatus, choice)
	r.Register(menu.OpSelectProject, func(t *turn, a menu.Action) error {
		return r.advance(t, form.ChoiceID(a.ID))
	})
	for _, op := range []menu.Op{
		menu.OpSkipDeadline,
		menu.OpSkipDescription,
		menu.OpSelectNoProject,
		menu.OpSkip,
		menu.OpSkipDate,
		menu.OpSkipComment,
	} {
		r.Register(op, skip)
	}
	r.Register(menu.OpCalendarDay, r.pickDay)
	r.Register(menu.OpCalendarNav, r.navigateCalendar)
}

// startForm begins kind, dropping whatever form the user had open.
func (r *Router) startForm(kind form.Kind) handlerFunc {
	return func(t *turn, _ menu.Action) error {
		step, err := r.forms.Start(t.u.UserID, kind, nil)
		if err != nil {
			return err
		}
		screen, err := r.prompt(t, kind, step, t.now)
		if err != nil {
			return err
		}
		t.show(screen)
		return nil
	}
}

func (r *Router) pickDay(t *turn, a menu.Action) error {
	if !r.forms.Awaits(t.u.UserID, form.InputDate) {
		return nil
	}
	day, err := calendar.ParseDay(a.Value)
	if err != nil {
		t.log.Warn("Bad calendar day", zap.Error(err))
		return nil
	}
	return r.advance(t, form.Date(day))
}

// navigateCalendar redraws the date step for another month; the form does not move.
func (r *Router) navigateCalendar(t *turn, a menu.Action) error {
	pos, ok := r.forms.Current(t.u.UserID)
	if !ok || pos.Step.Accepts != form.InputDate {
		return nil
	}
	month, err := calendar.ParseMonth(a.Value)
	if err != nil {
		t.log.Warn("Bad calendar month", zap.Error(err))
		return nil
	}
	screen, err := r.prompt(t, pos.Kind, pos.Step, month)
	if err != nil {
		return err
	}
	t.show(screen)
	return nil
}

// advance offers in to the user's form and renders the outcome.
func (r *Router) advance(t *turn, in form.Input) error {
	res, err := r.forms.Advance(t.u.UserID, in)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case form.Invalid:
		screen, err := r.prompt(t, res.Kind, res.Step, t.now)
		if err != nil {
			return err
		}
		screen.Text = validationText(res.Err)
		t.show(screen)
		return nil
	case form.Advanced:
		screen, err := r.prompt(t, res.Kind, res.Step, t.now)
		if err != nil {
			return err
		}
		t.show(screen)
		return nil
	}
	return r.commitDraft(t, res.Draft)
}

func (r *Router) commitDraft(t *turn, d form.Draft) error {
	var err error
	switch d.Kind {
	case form.KindProject:
		err = r.createProject(t, d)
	case form.KindTask:
		err = r.createTask(t, d)
	case form.KindExpense:
		err = r.createExpense(t, d)
	case form.KindProjectStatus:
		return r.applyProjectStatus(t, d)
	case form.KindProjectName:
		return r.applyProjectName(t, d)
	case form.KindTaskTitle:
		return r.applyTaskTitle(t, d)
	case form.KindExpenseAmount:
		return r.applyExpenseAmount(t, d)
	default:
		return fmt.Errorf("no commit for form %q", d.Kind)
	}
	if err == nil {
		metrics.IncrementRecordsCreated(string(d.Kind))
	}
	return err
}

func skipButton(a menu.Action) []menu.Button {
	return []menu.Button{{Label: "Skip", Action: a}}
}

func dateScreen(text string, month time.Time, skip menu.Action) menu.Screen {
	return menu.Prompt(text, calendar.Keyboard(month, skip)...)
}

// prompt renders the screen asking for step. month positions date pickers.
func (r *Router) prompt(t *turn, kind form.Kind, step form.Step, month time.Time) (menu.Screen, error) {
	switch step.ID {
	case form.StepName:
		if kind == form.KindProjectName {
			return menu.Prompt("Enter a new project name:"), nil
		}
		return menu.Prompt("Enter the project name:"), nil
	case form.StepType:
		return r.render.ProjectTypeChoice(), nil
	case form.StepCost:
		return menu.Prompt("Enter the order cost:"), nil
	case form.StepDeadline:
		skip := menu.Do(menu.OpSkipDeadline)
		if kind == form.KindTask {
			skip = menu.Do(menu.OpSkip)
		}
		return dateScreen("Choose a deadline (or press 'Skip'):", month, skip), nil
	case form.StepTitle:
		if kind == form.KindTaskTitle {
			return menu.Prompt("Enter a new task title:"), nil
		}
		return menu.Prompt("Enter the task title:"), nil
	case form.StepDescription:
		return menu.Prompt("Enter the task description:", skipButton(menu.Do(menu.OpSkipDescription))), nil
	case form.StepProject:
		return r.projectPicker(t)
	case form.StepAmount:
		if kind == form.KindExpenseAmount {
			return menu.Prompt("Enter a new amount:"), nil
		}
		return menu.Prompt("Enter the expense amount:"), nil
	case form.StepDate:
		return dateScreen("Choose the expense date:", month, menu.Do(menu.OpSkipDate)), nil
	case form.StepComment:
		return menu.Prompt("Enter a comment for the expense:", skipButton(menu.Do(menu.OpSkipComment))), nil
	case form.StepStatus:
		pos, ok := r.forms.Current(t.u.UserID)
		if !ok {
			return menu.Screen{}, form.ErrNoActiveForm
		}
		name, _ := pos.Draft.String(string(form.StepName))
		return r.render.StatusChoice(&model.Project{ID: pos.Draft.Target(), Name: name, Type: pos.Draft.ProjectType()}), nil
	}
	return menu.Screen{}, fmt.Errorf("no prompt for step %q", step.ID)
}

func validationText(err *form.ValidationError) string {
	if err == nil {
		return "Please try again:"
	}
	switch err.Reason {
	case form.ReasonNotANumber:
		return "Please enter a valid amount (a number, e.g. 500 or 500.50):"
	case form.ReasonNotPositive:
		return "The amount must be a positive number. Try again:"
	case form.ReasonBelowCent:
		return "The amount must be at least 0.01. Try again:"
	case form.ReasonTooLarge:
		return "The amount is too large (at most 1 000 000 000 000). Try again:"
	case form.ReasonEmpty:
		return "This can't be empty. Try again:"
	case form.ReasonInvalidChoice:
		return "Please choose one of the options below:"
	}
	return "Please try again:"
}
