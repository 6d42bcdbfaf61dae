package bot

import (
	"fmt"

	"go.uber.org/zap"

	"ledgerbot/internal/events"
	"ledgerbot/internal/form"
	"ledgerbot/internal/menu"
	"ledgerbot/internal/model"
)

func (r *Router) registerProjects() {
	r.Register(menu.OpProjectsMenu, r.showProjectsMenu)
	r.Register(menu.OpMyProjects, r.listProjects(menu.ListPersonal))
	r.Register(menu.OpOrders, r.listProjects(menu.ListOrders))
	r.Register(menu.OpCompletedProjects, r.listProjects(menu.ListCompleted))
	r.Register(menu.OpProject, r.showProject)
	r.Register(menu.OpCompleteProject, r.completeProject)
	r.Register(menu.OpChangeStatus, r.startChangeStatus)
	r.Register(menu.OpCancelStatus, r.cancelChangeStatus)
	r.Register(menu.OpEditProject, r.startRenameProject)
	r.Register(menu.OpDeleteProject, r.deleteProject)
	r.Register(menu.OpAddProject, r.startForm(form.KindProject))
}

func (r *Router) showProjectsMenu(t *turn, _ menu.Action) error {
	t.show(r.render.ProjectsMenu())
	return nil
}

func (r *Router) listProjects(list menu.ProjectList) handlerFunc {
	return func(t *turn, _ menu.Action) error {
		projects, err := t.sess.Projects().ListByUser(t.ctx, t.u.UserID, list.Filter())
		if err != nil {
			return err
		}
		t.show(r.render.Projects(list, projects))
		return nil
	}
}

func (r *Router) showProject(t *turn, a menu.Action) error {
	p, err := t.sess.Projects().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Project", err)
	}
	t.show(r.render.ProjectDetail(p))
	return nil
}

func (r *Router) completeProject(t *turn, a menu.Action) error {
	p, err := t.sess.Projects().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Project", err)
	}
	// stale button on a project completed earlier
	if !p.IsCompleted() {
		if err := t.sess.Projects().Complete(t.ctx, a.ID, t.now); err != nil {
			return missing("Project", err)
		}
		t.emit(events.ProjectCompleted, a.ID, "")
	}
	t.tell("Project completed!")
	t.show(r.render.ProjectsMenu())
	return nil
}

func (r *Router) startChangeStatus(t *turn, a menu.Action) error {
	p, err := t.sess.Projects().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Project", err)
	}
	seed := map[string]any{
		form.FieldTarget:      p.ID,
		string(form.StepType): p.Type,
		string(form.StepName): p.Name,
	}
	if _, err := r.forms.Start(t.u.UserID, form.KindProjectStatus, seed); err != nil {
		return err
	}
	t.show(r.render.StatusChoice(p))
	return nil
}

// cancelChangeStatus only applies while a status choice is pending.
func (r *Router) cancelChangeStatus(t *turn, _ menu.Action) error {
	pos, ok := r.forms.Current(t.u.UserID)
	if !ok || pos.Kind != form.KindProjectStatus {
		return nil
	}
	r.forms.Cancel(t.u.UserID)
	t.tell("Status change cancelled")
	t.show(r.render.ProjectsMenu())
	return nil
}

func (r *Router) startRenameProject(t *turn, a menu.Action) error {
	p, err := t.sess.Projects().FindByID(t.ctx, a.ID)
	if err != nil {
		return missing("Project", err)
	}
	if _, err := r.forms.Start(t.u.UserID, form.KindProjectName, map[string]any{form.FieldTarget: p.ID}); err != nil {
		return err
	}
	t.show(menu.Prompt(fmt.Sprintf("Enter a new name for project '%s':", p.Name)))
	return nil
}

// deleteProject never checks existence; dependent tasks keep their reference.
func (r *Router) deleteProject(t *turn, a menu.Action) error {
	if err := t.sess.Projects().Delete(t.ctx, a.ID); err != nil {
		return err
	}
	t.emit(events.ProjectDeleted, a.ID, "")
	t.tell("Project deleted!")
	t.show(r.render.ProjectsMenu())
	return nil
}

func (r *Router) createProject(t *turn, d form.Draft) error {
	name, _ := d.String(string(form.StepName))
	p := &model.Project{
		UserID:    t.u.UserID,
		Name:      name,
		Type:      d.ProjectType(),
		Status:    model.InitialStatus(d.ProjectType()),
		Deadline:  d.TimePtr(string(form.StepDeadline)),
		CreatedAt: t.now,
	}
	if cost, ok := d.Decimal(string(form.StepCost)); ok {
		p.Cost.Decimal, p.Cost.Valid = cost, true
	}

	id, err := t.sess.Projects().Insert(t.ctx, p)
	if err != nil {
		return err
	}
	t.log.Info("Project form committed", zap.Int64("project_id", id), zap.String("type", string(p.Type)))
	t.emit(events.ProjectCreated, id, string(p.Type))
	t.send(menu.Prompt("Project created successfully!"))
	t.show(r.render.ProjectsMenu())
	return nil
}

func (r *Router) applyProjectStatus(t *turn, d form.Draft) error {
	id, status := d.Target(), d.Status()
	before, err := t.sess.Projects().FindByID(t.ctx, id)
	if err != nil {
		return missing("Project", err)
	}
	if err := t.sess.Projects().UpdateStatus(t.ctx, id, status, t.now); err != nil {
		return missing("Project", err)
	}
	t.emit(events.ProjectStatusChanged, id, string(status))
	if status == model.StatusCompleted && !before.IsCompleted() {
		t.emit(events.ProjectCompleted, id, "")
	}
	t.tell("Status changed to: " + menu.StatusLabel(status))
	t.show(r.render.ProjectsMenu())
	return nil
}

func (r *Router) applyProjectName(t *turn, d form.Draft) error {
	name, _ := d.String(string(form.StepName))
	if err := t.sess.Projects().Rename(t.ctx, d.Target(), name); err != nil {
		return missing("Project", err)
	}
	p, err := t.sess.Projects().FindByID(t.ctx, d.Target())
	if err != nil {
		return missing("Project", err)
	}
	t.tell("Project renamed!")
	t.show(r.render.ProjectDetail(p))
	return nil
}
