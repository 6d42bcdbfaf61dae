package bot

import (
	"ledgerbot/internal/events"
	"ledgerbot/internal/form"
	"ledgerbot/internal/menu"
	"ledgerbot/internal/model"
)

func (r *Router) registerExpenses() {
	r.Register(menu.OpExpensesMenu, r.showExpensesMenu)
	r.Register(menu.OpExpensesHistory, r.showExpenseHistory)
	r.Register(menu.OpExpense, r.showExpense)
	r.Register(menu.OpEditExpense, r.startEditExpense)
	r.Register(menu.OpDeleteExpense, r.deleteExpense)
	r.Register(menu.OpAddExpense, r.startForm(form.KindExpense))
}

func (r *Router) showExpensesMenu(t *turn, _ menu.Action) error {
	t.show(r.render.ExpensesMenu())
	return nil
}

func (r *Router) showExpenseHistory(t *turn, _ menu.Action) error {
	expenses, err := t.sess.Expenses().ListSince(t.ctx, t.u.UserID, menu.HistorySince(t.now))
	if err != nil {
		return err
	}
	t.show(r.render.ExpenseHistory(expenses))
	return nil
}

func (r *Router) showExpense(t *turn, a menu.Action) error {
	e, err := t.sess.Expenses().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Expense", err)
	}
	t.show(r.render.ExpenseDetail(e))
	return nil
}

func (r *Router) startEditExpense(t *turn, a menu.Action) error {
	e, err := t.sess.Expenses().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Expense", err)
	}
	if _, err := r.forms.Start(t.u.UserID, form.KindExpenseAmount, map[string]any{form.FieldTarget: e.ID}); err != nil {
		return err
	}
	t.show(menu.Prompt("Current amount: " + r.render.Money(e.Amount) + "\nEnter a new amount:"))
	return nil
}

func (r *Router) deleteExpense(t *turn, a menu.Action) error {
	if err := t.sess.Expenses().Delete(t.ctx, a.ID); err != nil {
		return err
	}
	t.emit(events.ExpenseDeleted, a.ID, "")
	t.tell("Expense deleted!")
	t.show(r.render.ExpensesMenu())
	return nil
}

func (r *Router) createExpense(t *turn, d form.Draft) error {
	amount, _ := d.Decimal(string(form.StepAmount))
	date, ok := d.Time(string(form.StepDate))
	if !ok {
		date = t.now
	}
	e := &model.Expense{
		UserID:    t.u.UserID,
		Amount:    amount,
		Date:      date,
		Comment:   d.StringPtr(string(form.StepComment)),
		CreatedAt: t.now,
	}
	id, err := t.sess.Expenses().Insert(t.ctx, e)
	if err != nil {
		return err
	}
	t.emit(events.ExpenseCreated, id, amount.String())
	t.send(menu.Prompt("Expense added successfully!"))
	t.show(r.render.ExpensesMenu())
	return nil
}

func (r *Router) applyExpenseAmount(t *turn, d form.Draft) error {
	amount, _ := d.Decimal(string(form.StepAmount))
	if err := t.sess.Expenses().UpdateAmount(t.ctx, d.Target(), amount); err != nil {
		return missing("Expense", err)
	}
	e, err := t.sess.Expenses().FindByID(t.ctx, d.Target())
	if err != nil {
		return missing("Expense", err)
	}
	t.tell("Expense updated!")
	t.show(r.render.ExpenseDetail(e))
	return nil
}
