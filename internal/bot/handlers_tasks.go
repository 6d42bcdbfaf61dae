package bot

import (
	"fmt"

	"ledgerbot/internal/events"
	"ledgerbot/internal/form"
	"ledgerbot/internal/menu"
	"ledgerbot/internal/model"
)

func (r *Router) registerTasks() {
	r.Register(menu.OpTasksMenu, r.showTasksMenu)
	r.Register(menu.OpMyTasks, r.listTasks)
	r.Register(menu.OpTask, r.showTask)
	r.Register(menu.OpCompleteTask, r.completeTask)
	r.Register(menu.OpEditTask, r.startRetitleTask)
	r.Register(menu.OpDeleteTask, r.deleteTask)
	r.Register(menu.OpAddTask, r.startForm(form.KindTask))
}

func (r *Router) showTasksMenu(t *turn, _ menu.Action) error {
	t.show(r.render.TasksMenu())
	return nil
}

func (r *Router) listTasks(t *turn, _ menu.Action) error {
	tasks, err := t.sess.Tasks().ListActiveByUser(t.ctx, t.u.UserID)
	if err != nil {
		return err
	}
	t.show(r.render.Tasks(tasks))
	return nil
}

func (r *Router) showTask(t *turn, a menu.Action) error {
	task, err := t.sess.Tasks().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Task", err)
	}
	t.show(r.render.TaskDetail(task))
	return nil
}

// completeTask may run on an already completed task; completed_at moves to now.
func (r *Router) completeTask(t *turn, a menu.Action) error {
	if err := t.sess.Tasks().MarkCompleted(t.ctx, a.ID, t.now); err != nil {
		return missing("Task", err)
	}
	t.emit(events.TaskCompleted, a.ID, "")
	t.tell("Task completed!")
	t.show(r.render.TasksMenu())
	return nil
}

func (r *Router) startRetitleTask(t *turn, a menu.Action) error {
	task, err := t.sess.Tasks().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Task", err)
	}
	if _, err := r.forms.Start(t.u.UserID, form.KindTaskTitle, map[string]any{form.FieldTarget: task.ID}); err != nil {
		return err
	}
	t.show(menu.Prompt(fmt.Sprintf("Enter a new title for task '%s':", task.Title)))
	return nil
}

func (r *Router) deleteTask(t *turn, a menu.Action) error {
	if err := t.sess.Tasks().Delete(t.ctx, a.ID); err != nil {
		return err
	}
	t.emit(events.TaskDeleted, a.ID, "")
	t.tell("Task deleted!")
	t.show(r.render.TasksMenu())
	return nil
}

// projectPicker offers the user's projects that are not completed.
func (r *Router) projectPicker(t *turn) (menu.Screen, error) {
	active := false
	projects, err := t.sess.Projects().ListByUser(t.ctx, t.u.UserID, model.ProjectFilter{Completed: &active})
	if err != nil {
		return menu.Screen{}, err
	}
	return r.render.ProjectPicker(projects), nil
}

func (r *Router) createTask(t *turn, d form.Draft) error {
	title, _ := d.String(string(form.StepTitle))
	task := &model.Task{
		UserID:      t.u.UserID,
		ProjectID:   d.Int64Ptr(string(form.StepProject)),
		Title:       title,
		Description: d.StringPtr(string(form.StepDescription)),
		Deadline:    d.TimePtr(string(form.StepDeadline)),
		CreatedAt:   t.now,
	}
	id, err := t.sess.Tasks().Insert(t.ctx, task)
	if err != nil {
		return err
	}
	t.emit(events.TaskCreated, id, "")
	t.send(menu.Prompt("Task created successfully!"))
	t.show(r.render.TasksMenu())
	return nil
}

func (r *Router) applyTaskTitle(t *turn, d form.Draft) error {
	title, _ := d.String(string(form.StepTitle))
	if err := t.sess.Tasks().Retitle(t.ctx, d.Target(), title); err != nil {
		return missing("Task", err)
	}
	task, err := t.sess.Tasks().FindByID(t.ctx, d.Target())
	if err != nil {
		return missing("Task", err)
	}
	t.tell("Task updated!")
	t.show(r.render.TaskDetail(task))
	return nil
}
