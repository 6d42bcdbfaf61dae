package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/model"
)

type ProjectRepository struct {
	q      querier
	logger *zap.Logger
}

func NewProjectRepository(q querier, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{q: q, logger: logger}
}

const projectColumns = `id, user_id, name, type, status, deadline, cost_cents, created_at, completed_at`

func scanProject(r row) (*model.Project, error) {
	var (
		p      model.Project
		typ    string
		status string
		cost   *int64
	)
	err := r.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&typ,
		&status,
		scanNullTime(&p.Deadline),
		&cost,
		scanTime(&p.CreatedAt),
		scanNullTime(&p.CompletedAt),
	)
	if err != nil {
		return nil, err
	}
	p.Type = model.ProjectType(typ)
	p.Status = model.ProjectStatus(status)
	p.Cost = fromNullCents(cost)
	return &p, nil
}

// Insert persists a new project and fills in p.ID.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int64, error) {
	defer observe("insert", "projects", time.Now())
	r.logger.Debug("Inserting project", zap.Int64("user_id", p.UserID), zap.String("type", string(p.Type)))

	cost, err := nullCents(p.Cost)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}

	query := `
        INSERT INTO projects (user_id, name, type, status, deadline, cost_cents, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int64
	err = r.q.QueryRow(ctx, query,
		p.UserID,
		p.Name,
		string(p.Type),
		string(p.Status),
		p.Deadline,
		cost,
		p.CreatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Int64("user_id", p.UserID), zap.Error(err))
		return 0, fmt.Errorf("insert project: %w", err)
	}
	p.ID = id
	r.logger.Info("Project created", zap.Int64("project_id", id), zap.Int64("user_id", p.UserID))
	return id, nil
}

// FindByID returns ErrNotFound when no project has the id.
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*model.Project, error) {
	defer observe("select", "projects", time.Now())

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.q.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to find project", zap.Int64("project_id", id), zap.Error(err))
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

// ListByUser returns the user's projects in creation order.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int64, filter model.ProjectFilter) ([]*model.Project, error) {
	defer observe("select", "projects", time.Now())

	conds := []string{"user_id = $1"}
	args := []any{userID}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Completed != nil {
		args = append(args, string(model.StatusCompleted))
		op := "<>"
		if *filter.Completed {
			op = "="
		}
		conds = append(conds, fmt.Sprintf("status %s $%d", op, len(args)))
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at, id`
	rs, err := r.q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rs.Close()

	var out []*model.Project
	for rs.Next() {
		p, err := scanProject(rs)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

// UpdateStatus sets the status. Moving to completed stamps completed_at
// unless it is already set.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int64, status model.ProjectStatus, now time.Time) error {
	defer observe("update", "projects", time.Now())
	r.logger.Debug("Updating project status", zap.Int64("project_id", id), zap.String("status", string(status)))

	var n int64
	var err error
	if status == model.StatusCompleted {
		n, err = r.q.Exec(ctx, `
            UPDATE projects
            SET status = $2, completed_at = COALESCE(completed_at, $3)
            WHERE id = $1
        `, id, string(status), now)
	} else {
		n, err = r.q.Exec(ctx, `UPDATE projects SET status = $2 WHERE id = $1`, id, string(status))
	}
	if err != nil {
		r.logger.Error("Failed to update project status", zap.Int64("project_id", id), zap.Error(err))
		return fmt.Errorf("update project status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.logger.Info("Project status updated", zap.Int64("project_id", id), zap.String("status", string(status)))
	return nil
}

// Complete is UpdateStatus(completed).
func (r *ProjectRepository) Complete(ctx context.Context, id int64, now time.Time) error {
	return r.UpdateStatus(ctx, id, model.StatusCompleted, now)
}

func (r *ProjectRepository) Rename(ctx context.Context, id int64, name string) error {
	defer observe("update", "projects", time.Now())

	n, err := r.q.Exec(ctx, `UPDATE projects SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		r.logger.Error("Failed to rename project", zap.Int64("project_id", id), zap.Error(err))
		return fmt.Errorf("rename project: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.logger.Info("Project renamed", zap.Int64("project_id", id))
	return nil
}

// Delete removes the project unconditionally. Tasks keep their project_id.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	defer observe("delete", "projects", time.Now())

	n, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Int64("project_id", id), zap.Error(err))
		return fmt.Errorf("delete project: %w", err)
	}
	r.logger.Info("Project deleted", zap.Int64("project_id", id), zap.Int64("rows", n))
	return nil
}
