package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ledgerbot/internal/model"
)

type TaskRepository struct {
	q      querier
	logger *zap.Logger
}

func NewTaskRepository(q querier, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{q: q, logger: logger}
}

// project name comes from a LEFT JOIN so a dangling project_id reads as no name
const taskSelect = `
    SELECT t.id, t.user_id, t.project_id, t.title, t.description, t.is_completed,
           t.deadline, t.created_at, t.completed_at, p.name
    FROM tasks t
    LEFT JOIN projects p ON p.id = t.project_id
`

func scanTask(r row) (*model.TaskWithProject, error) {
	var t model.TaskWithProject
	err := r.Scan(
		&t.ID,
		&t.UserID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.IsCompleted,
		scanNullTime(&t.Deadline),
		scanTime(&t.CreatedAt),
		scanNullTime(&t.CompletedAt),
		&t.ProjectName,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int64, error) {
	defer observe("insert", "tasks", time.Now())
	r.logger.Debug("Inserting task", zap.Int64("user_id", t.UserID))

	query := `
        INSERT INTO tasks (user_id, project_id, title, description, is_completed, deadline, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int64
	err := r.q.QueryRow(ctx, query,
		t.UserID,
		t.ProjectID,
		t.Title,
		t.Description,
		false,
		t.Deadline,
		t.CreatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert task", zap.Int64("user_id", t.UserID), zap.Error(err))
		return 0, fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	r.logger.Info("Task created", zap.Int64("task_id", id), zap.Int64("user_id", t.UserID))
	return id, nil
}

// FindByID returns ErrNotFound when no task has the id.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*model.TaskWithProject, error) {
	defer observe("select", "tasks", time.Now())

	t, err := scanTask(r.q.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to find task", zap.Int64("task_id", id), zap.Error(err))
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

// ListActiveByUser returns the user's open tasks in creation order.
func (r *TaskRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*model.TaskWithProject, error) {
	defer observe("select", "tasks", time.Now())

	query := taskSelect + ` WHERE t.user_id = $1 AND t.is_completed = $2 ORDER BY t.created_at, t.id`
	rs, err := r.q.Query(ctx, query, userID, false)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rs.Close()

	var out []*model.TaskWithProject
	for rs.Next() {
		t, err := scanTask(rs)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

// MarkCompleted flags the task done and overwrites completed_at with now.
func (r *TaskRepository) MarkCompleted(ctx context.Context, id int64, now time.Time) error {
	defer observe("update", "tasks", time.Now())

	n, err := r.q.Exec(ctx, `UPDATE tasks SET is_completed = $2, completed_at = $3 WHERE id = $1`, id, true, now)
	if err != nil {
		r.logger.Error("Failed to complete task", zap.Int64("task_id", id), zap.Error(err))
		return fmt.Errorf("complete task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.logger.Info("Task completed", zap.Int64("task_id", id))
	return nil
}

func (r *TaskRepository) Retitle(ctx context.Context, id int64, title string) error {
	defer observe("update", "tasks", time.Now())

	n, err := r.q.Exec(ctx, `UPDATE tasks SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		r.logger.Error("Failed to retitle task", zap.Int64("task_id", id), zap.Error(err))
		return fmt.Errorf("retitle task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.logger.Info("Task retitled", zap.Int64("task_id", id))
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	defer observe("delete", "tasks", time.Now())

	n, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Int64("task_id", id), zap.Error(err))
		return fmt.Errorf("delete task: %w", err)
	}
	r.logger.Info("Task deleted", zap.Int64("task_id", id), zap.Int64("rows", n))
	return nil
}
