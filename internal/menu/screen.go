package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/model"
)

type Button struct {
	Label  string
	Action Action
}

// Screen is one rendered message: text, inline buttons by row, and an
// optional persistent reply keyboard.
type Screen struct {
	Text     string
	Rows     [][]Button
	Keyboard [][]string
}

// Grid lays buttons out cols per row.
func Grid(cols int, buttons ...Button) [][]Button {
	if cols < 1 {
		cols = 1
	}
	rows := make([][]Button, 0, (len(buttons)+cols-1)/cols)
	for len(buttons) > 0 {
		n := min(cols, len(buttons))
		rows = append(rows, buttons[:n:n])
		buttons = buttons[n:]
	}
	return rows
}

// Prompt is a screen for a form step.
func Prompt(text string, rows ...[]Button) Screen {
	return Screen{Text: text, Rows: rows}
}

// Reply-keyboard keywords of the main menu.
const (
	KeywordProjects   = "📁 Projects"
	KeywordTasks      = "✅ Tasks"
	KeywordExpenses   = "💸 Expenses"
	KeywordStatistics = "📊 Statistics"
)

var keywords = map[string]Op{
	KeywordProjects:   OpProjectsMenu,
	KeywordTasks:      OpTasksMenu,
	KeywordExpenses:   OpExpensesMenu,
	KeywordStatistics: OpStatistics,
}

// Keyword maps a main-menu keyword to the screen it opens.
func Keyword(text string) (Action, bool) {
	op, ok := keywords[strings.TrimSpace(text)]
	return Action{Op: op}, ok
}

const dateLayout = "02.01.2006"

var (
	backToMain     = Button{Label: "◀️ Back", Action: Do(OpMainMenu)}
	backToProjects = Button{Label: "◀️ Back", Action: Do(OpProjectsMenu)}
	backToTasks    = Button{Label: "◀️ Back", Action: Do(OpTasksMenu)}
	backToExpenses = Button{Label: "◀️ Back", Action: Do(OpExpensesMenu)}
)

func StatusLabel(s model.ProjectStatus) string {
	switch s {
	case model.StatusIdea:
		return "💡 Idea"
	case model.StatusAgreement:
		return "📋 In agreement"
	case model.StatusInProgress:
		return "🚀 In progress"
	case model.StatusCompleted:
		return "✅ Completed"
	}
	return string(s)
}

func TypeLabel(t model.ProjectType) string {
	switch t {
	case model.ProjectTypePersonal:
		return "Personal project"
	case model.ProjectTypeOrder:
		return "Order"
	}
	return string(t)
}

// Renderer builds screens. It holds only formatting settings.
type Renderer struct {
	currency string
}

func NewRenderer(currency string) *Renderer {
	return &Renderer{currency: currency}
}

func (r *Renderer) Money(d decimal.Decimal) string {
	if r.currency == "" {
		return d.StringFixed(2)
	}
	return d.StringFixed(2) + " " + r.currency
}

// ─── main ───────────────────────────────────────────────────────────────────

func (r *Renderer) Main() Screen {
	return Screen{
		Text: "Welcome to the project manager!\nChoose a section:",
		Keyboard: [][]string{
			{KeywordProjects, KeywordTasks},
			{KeywordExpenses, KeywordStatistics},
		},
	}
}

func (r *Renderer) Statistics(s *model.Summary) Screen {
	text := fmt.Sprintf(
		"📊 Your statistics:\n\n"+
			"✅ Completed projects: %d\n"+
			"🚀 Active projects: %d\n"+
			"💰 Income: %s\n"+
			"💸 Expenses: %s\n"+
			"💵 Profit: %s",
		s.CompletedProjects,
		s.ActiveProjects,
		r.Money(s.Income),
		r.Money(s.Expenses),
		r.Money(s.Profit()),
	)
	return Screen{Text: text, Rows: Grid(1, backToMain)}
}

// ─── projects ───────────────────────────────────────────────────────────────

// ProjectList selects one of the three project lists.
type ProjectList int

const (
	ListPersonal ProjectList = iota
	ListOrders
	ListCompleted
)

// Filter is the store filter behind the list.
func (l ProjectList) Filter() model.ProjectFilter {
	active, done := false, true
	switch l {
	case ListOrders:
		return model.ProjectFilter{Type: model.ProjectTypeOrder, Completed: &active}
	case ListCompleted:
		return model.ProjectFilter{Completed: &done}
	}
	return model.ProjectFilter{Type: model.ProjectTypePersonal, Completed: &active}
}

func (r *Renderer) projectsMenuRows() [][]Button {
	return Grid(2,
		Button{Label: "📋 My projects", Action: Do(OpMyProjects)},
		Button{Label: "💰 Orders", Action: Do(OpOrders)},
		Button{Label: "✅ Completed", Action: Do(OpCompletedProjects)},
		Button{Label: "➕ Add project", Action: Do(OpAddProject)},
		backToMain,
	)
}

func (r *Renderer) ProjectsMenu() Screen {
	return Screen{Text: "Project management:", Rows: r.projectsMenuRows()}
}

func (r *Renderer) Projects(list ProjectList, projects []*model.Project) Screen {
	title, empty := "Your projects:", "You have no active personal projects."
	switch list {
	case ListOrders:
		title, empty = "Your orders:", "You have no active orders."
	case ListCompleted:
		title, empty = "Completed projects:", "You have no completed projects."
	}
	if len(projects) == 0 {
		return Screen{Text: empty, Rows: r.projectsMenuRows()}
	}

	buttons := make([]Button, 0, len(projects)+1)
	for _, p := range projects {
		tag := StatusLabel(p.Status)
		if list == ListCompleted {
			tag = TypeLabel(p.Type)
		}
		buttons = append(buttons, Button{
			Label:  fmt.Sprintf("%s (%s)", p.Name, tag),
			Action: On(OpProject, p.ID),
		})
	}
	buttons = append(buttons, backToProjects)
	return Screen{Text: title, Rows: Grid(1, buttons...)}
}

func (r *Renderer) ProjectDetail(p *model.Project) Screen {
	var b strings.Builder
	fmt.Fprintf(&b, "📁 Project: %s\n", p.Name)
	fmt.Fprintf(&b, "📝 Type: %s\n", TypeLabel(p.Type))
	fmt.Fprintf(&b, "📊 Status: %s\n", StatusLabel(p.Status))
	if p.Deadline != nil {
		fmt.Fprintf(&b, "⏰ Deadline: %s\n", p.Deadline.Format(dateLayout))
	}
	if p.Cost.Valid {
		fmt.Fprintf(&b, "💰 Cost: %s\n", r.Money(p.Cost.Decimal))
	}
	if p.CompletedAt != nil {
		fmt.Fprintf(&b, "✅ Completed: %s\n", p.CompletedAt.Format(dateLayout))
	}

	var buttons []Button
	if !p.IsCompleted() {
		buttons = append(buttons, Button{Label: "✅ Complete", Action: On(OpCompleteProject, p.ID)})
	}
	buttons = append(buttons,
		Button{Label: "📊 Change status", Action: On(OpChangeStatus, p.ID)},
		Button{Label: "✏️ Edit", Action: On(OpEditProject, p.ID)},
		Button{Label: "🗑️ Delete", Action: On(OpDeleteProject, p.ID)},
		backToProjects,
	)
	return Screen{Text: b.String(), Rows: Grid(1, buttons...)}
}

func (r *Renderer) StatusChoice(p *model.Project) Screen {
	var buttons []Button
	for _, s := range model.StatusesFor(p.Type) {
		buttons = append(buttons, Button{Label: StatusLabel(s), Action: With(OpSetStatus, string(s))})
	}
	buttons = append(buttons, Button{Label: "◀️ Cancel", Action: Do(OpCancelStatus)})
	return Screen{
		Text: fmt.Sprintf("Choose a new status for project '%s':", p.Name),
		Rows: Grid(1, buttons...),
	}
}

func (r *Renderer) ProjectTypeChoice() Screen {
	return Prompt("Choose the project type:", Grid(1,
		Button{Label: "Personal project", Action: With(OpProjectType, string(model.ProjectTypePersonal))},
		Button{Label: "Order", Action: With(OpProjectType, string(model.ProjectTypeOrder))},
	)...)
}

// ─── tasks ──────────────────────────────────────────────────────────────────

func (r *Renderer) tasksMenuRows() [][]Button {
	return Grid(1,
		Button{Label: "📋 My tasks", Action: Do(OpMyTasks)},
		Button{Label: "➕ Add task", Action: Do(OpAddTask)},
		backToMain,
	)
}

func (r *Renderer) TasksMenu() Screen {
	return Screen{Text: "Task management:", Rows: r.tasksMenuRows()}
}

func projectNameOf(t *model.TaskWithProject) string {
	if t.ProjectName != nil {
		return *t.ProjectName
	}
	return "No project"
}

func (r *Renderer) Tasks(tasks []*model.TaskWithProject) Screen {
	if len(tasks) == 0 {
		return Screen{Text: "You have no active tasks.", Rows: r.tasksMenuRows()}
	}
	buttons := make([]Button, 0, len(tasks)+1)
	for _, t := range tasks {
		buttons = append(buttons, Button{
			Label:  fmt.Sprintf("%s (%s)", t.Title, projectNameOf(t)),
			Action: On(OpTask, t.ID),
		})
	}
	buttons = append(buttons, backToTasks)
	return Screen{Text: "Your tasks:", Rows: Grid(1, buttons...)}
}

func (r *Renderer) TaskDetail(t *model.TaskWithProject) Screen {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Task: %s\n", t.Title)
	if t.Description != nil {
		fmt.Fprintf(&b, "📝 Description: %s\n", *t.Description)
	}
	if t.ProjectID != nil {
		fmt.Fprintf(&b, "📁 Project: %s\n", projectNameOf(t))
	}
	if t.Deadline != nil {
		fmt.Fprintf(&b, "⏰ Deadline: %s\n", t.Deadline.Format(dateLayout))
	}
	status := "Active"
	if t.IsCompleted {
		status = "Done"
	}
	fmt.Fprintf(&b, "📊 Status: %s\n", status)

	return Screen{Text: b.String(), Rows: Grid(1,
		Button{Label: "✅ Mark done", Action: On(OpCompleteTask, t.ID)},
		Button{Label: "✏️ Edit", Action: On(OpEditTask, t.ID)},
		Button{Label: "🗑️ Delete", Action: On(OpDeleteTask, t.ID)},
		backToTasks,
	)}
}

// ProjectPicker lists projects a new task can belong to.
func (r *Renderer) ProjectPicker(projects []*model.Project) Screen {
	buttons := make([]Button, 0, len(projects)+2)
	for _, p := range projects {
		buttons = append(buttons, Button{Label: p.Name, Action: On(OpSelectProject, p.ID)})
	}
	buttons = append(buttons,
		Button{Label: "No project", Action: Do(OpSelectNoProject)},
		backToTasks,
	)
	return Screen{Text: "Choose a project for the task:", Rows: Grid(1, buttons...)}
}

// ─── expenses ───────────────────────────────────────────────────────────────

func (r *Renderer) expensesMenuRows() [][]Button {
	return Grid(1,
		Button{Label: "💵 Add expense", Action: Do(OpAddExpense)},
		Button{Label: "📊 Expense history", Action: Do(OpExpensesHistory)},
		backToMain,
	)
}

func (r *Renderer) ExpensesMenu() Screen {
	return Screen{Text: "Expense management:", Rows: r.expensesMenuRows()}
}

// ExpenseHistory renders expenses newest first with their total.
func (r *Renderer) ExpenseHistory(expenses []*model.Expense) Screen {
	if len(expenses) == 0 {
		return Screen{Text: "You have no expenses in the last month.", Rows: r.expensesMenuRows()}
	}

	var b strings.Builder
	b.WriteString("Your expenses for the last month:\n\n")
	total := decimal.Zero
	buttons := make([]Button, 0, len(expenses)+1)
	for _, e := range expenses {
		total = total.Add(e.Amount)
		fmt.Fprintf(&b, "📅 %s: %s\n", e.Date.Format(dateLayout), r.Money(e.Amount))
		if e.Comment != nil {
			fmt.Fprintf(&b, "   💬 %s\n", *e.Comment)
		}
		fmt.Fprintf(&b, "   [ID: %d]\n\n", e.ID)
		buttons = append(buttons, Button{
			Label:  fmt.Sprintf("%s · %s", e.Date.Format(dateLayout), r.Money(e.Amount)),
			Action: On(OpExpense, e.ID),
		})
	}
	fmt.Fprintf(&b, "💵 Total: %s", r.Money(total))

	buttons = append(buttons, backToExpenses)
	return Screen{Text: b.String(), Rows: Grid(1, buttons...)}
}

func (r *Renderer) ExpenseDetail(e *model.Expense) Screen {
	var b strings.Builder
	fmt.Fprintf(&b, "💸 Expense: %s\n", r.Money(e.Amount))
	fmt.Fprintf(&b, "📅 Date: %s\n", e.Date.Format(dateLayout))
	if e.Comment != nil {
		fmt.Fprintf(&b, "💬 Comment: %s\n", *e.Comment)
	}
	return Screen{Text: b.String(), Rows: Grid(1,
		Button{Label: "✏️ Edit", Action: On(OpEditExpense, e.ID)},
		Button{Label: "🗑️ Delete", Action: On(OpDeleteExpense, e.ID)},
		backToExpenses,
	)}
}

// HistorySince is the start of the expense history window.
func HistorySince(now time.Time) time.Time {
	return now.AddDate(0, 0, -30)
}
