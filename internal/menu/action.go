package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction is returned for callback data no screen produces.
var ErrUnknownAction = errors.New("unknown action")

// Op is the operation half of an action id.
type Op int

const (
	OpUnknown Op = iota

	OpMainMenu
	OpStatistics

	OpProjectsMenu
	OpMyProjects
	OpOrders
	OpCompletedProjects
	OpAddProject
	OpProjectType // Value: personal | order
	OpSkipDeadline
	OpProject
	OpCompleteProject
	OpChangeStatus
	OpSetStatus // Value: project status
	OpCancelStatus
	OpEditProject
	OpDeleteProject

	OpTasksMenu
	OpMyTasks
	OpAddTask
	OpSkipDescription
	OpSelectProject
	OpSelectNoProject
	OpSkip
	OpTask
	OpCompleteTask
	OpEditTask
	OpDeleteTask

	OpExpensesMenu
	OpExpensesHistory
	OpAddExpense
	OpSkipDate
	OpSkipComment
	OpExpense
	OpEditExpense
	OpDeleteExpense

	OpCalendarDay // Value: YYYY-MM-DD
	OpCalendarNav // Value: YYYY-MM
	OpCalendarIgnore
)

// Action is a decoded action id: an operation plus its target record id or
// choice value.
type Action struct {
	Op    Op
	ID    int64
	Value string
}

// Do builds a plain action.
func Do(op Op) Action {
	return Action{Op: op}
}

// On builds an action targeting record id.
func On(op Op, id int64) Action {
	return Action{Op: op, ID: id}
}

// With builds an action carrying a choice value.
func With(op Op, value string) Action {
	return Action{Op: op, Value: value}
}

// IsSkip reports whether the action is one of the skip buttons.
func (a Action) IsSkip() bool {
	switch a.Op {
	case OpSkipDeadline, OpSkipDescription, OpSkip, OpSkipDate, OpSkipComment, OpSelectNoProject:
		return true
	}
	return false
}

var fixedNames = map[Op]string{
	OpMainMenu:          "main_menu",
	OpStatistics:        "statistics",
	OpProjectsMenu:      "projects_menu",
	OpMyProjects:        "my_projects",
	OpOrders:            "orders",
	OpCompletedProjects: "completed_projects",
	OpAddProject:        "add_project",
	OpSkipDeadline:      "skip_deadline",
	OpCancelStatus:      "cancel_status",
	OpTasksMenu:         "tasks_menu",
	OpMyTasks:           "my_tasks",
	OpAddTask:           "add_task",
	OpSkipDescription:   "skip_description",
	OpSelectNoProject:   "select_no_project",
	OpSkip:              "skip",
	OpExpensesMenu:      "expenses_menu",
	OpExpensesHistory:   "expenses_history",
	OpAddExpense:        "add_expense",
	OpSkipDate:          "skip_date",
	OpSkipComment:       "skip_comment",
	OpCalendarIgnore:    "cal:ignore",
}

// id-carrying actions encode as prefix + decimal id
var idPrefixes = map[Op]string{
	OpProject:         "project_",
	OpCompleteProject: "complete_project_",
	OpChangeStatus:    "change_status_",
	OpEditProject:     "edit_project_",
	OpDeleteProject:   "delete_project_",
	OpSelectProject:   "select_project_",
	OpTask:            "task_",
	OpCompleteTask:    "complete_task_",
	OpEditTask:        "edit_task_",
	OpDeleteTask:      "delete_task_",
	OpExpense:         "expense_",
	OpEditExpense:     "edit_expense_",
	OpDeleteExpense:   "delete_expense_",
}

var valuePrefixes = map[Op]string{
	OpSetStatus:   "status_",
	OpCalendarDay: "cal:day:",
	OpCalendarNav: "cal:nav:",
}

var (
	byName   = invert(fixedNames)
	byPrefix = invert(idPrefixes)
)

// project types encode bare, as the type value itself
var projectTypes = map[string]bool{"personal": true, "order": true}

func invert(m map[Op]string) map[string]Op {
	out := make(map[string]Op, len(m))
	for op, s := range m {
		out[s] = op
	}
	return out
}

// Encode renders the action as callback data.
func (a Action) Encode() string {
	if name, ok := fixedNames[a.Op]; ok {
		return name
	}
	if prefix, ok := idPrefixes[a.Op]; ok {
		return prefix + strconv.FormatInt(a.ID, 10)
	}
	if prefix, ok := valuePrefixes[a.Op]; ok {
		return prefix + a.Value
	}
	if a.Op == OpProjectType {
		return a.Value
	}
	return ""
}

func (a Action) String() string {
	return a.Encode()
}

// Decode parses callback data produced by Encode.
func Decode(data string) (Action, error) {
	if op, ok := byName[data]; ok {
		return Action{Op: op}, nil
	}
	if projectTypes[data] {
		return Action{Op: OpProjectType, Value: data}, nil
	}

	for op, prefix := range valuePrefixes {
		if v, ok := strings.CutPrefix(data, prefix); ok && v != "" {
			return Action{Op: op, Value: v}, nil
		}
	}

	// the id is the trailing token; the rest must be a known prefix exactly
	cut := strings.LastIndexByte(data, '_')
	if cut > 0 {
		if op, ok := byPrefix[data[:cut+1]]; ok {
			id, err := strconv.ParseInt(data[cut+1:], 10, 64)
			if err == nil && id > 0 {
				return Action{Op: op, ID: id}, nil
			}
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}
