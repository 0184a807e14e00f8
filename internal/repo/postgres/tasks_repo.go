package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub-dev/taskhub/internal/domain/project"
	"github.com/taskhub-dev/taskhub/internal/domain/task"
)

const foreignKeyViolation = "23503"

type TasksRepo struct {
	pool *pgxpool.Pool
}

func NewTasksRepo(pool *pgxpool.Pool) *TasksRepo {
	return &TasksRepo{pool: pool}
}

func (r *TasksRepo) CreateTask(ctx context.Context, projectID int, title string, description *string, status task.Status) (task.Task, error) {
	var t task.Task

	// the insert races fairly with the cascade's transaction: the FK either
	// sees the project row or fails, never a half-deleted hierarchy
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO tasks (project_id, title, description, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, now(), now())
         RETURNING id, project_id, title, description, status, created_at, updated_at`,
		projectID,
		title,
		description,
		string(status),
	).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if pgErrCode(err) == foreignKeyViolation {
			return task.Task{}, project.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) GetTask(ctx context.Context, projectID, taskID int) (task.Task, error) {
	var t task.Task

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, project_id, title, description, status, created_at, updated_at
         FROM tasks
         WHERE id = $1 AND project_id = $2`,
		taskID,
		projectID,
	).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) ListTasks(ctx context.Context, projectID int) ([]task.Task, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, project_id, title, description, status, created_at, updated_at
         FROM tasks
         WHERE project_id = $1
         ORDER BY id`,
		projectID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]task.Task, 0)

	for rows.Next() {
		var t task.Task

		err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

// UpdateTask applies the patch under a row lock and reports whether anything
// actually changed; the timestamp refreshes only on a real change.
func (r *TasksRepo) UpdateTask(ctx context.Context, projectID, taskID int, patch task.Patch) (task.Task, bool, error) {
	tx, err := r.pool.Begin(ctx)

	if err != nil {
		return task.Task{}, false, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var t task.Task

	err = tx.QueryRow(
		ctx,
		`SELECT id, project_id, title, description, status, created_at, updated_at
         FROM tasks
         WHERE id = $1 AND project_id = $2
         FOR UPDATE`,
		taskID,
		projectID,
	).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, false, task.ErrNotFound
		}

		return task.Task{}, false, err
	}

	changed := false

	if patch.Title != nil && *patch.Title != t.Title {
		t.Title = *patch.Title
		changed = true
	}

	if patch.Description != nil && !equalString(patch.Description, t.Description) {
		t.Description = patch.Description
		changed = true
	}

	if patch.Status != nil && *patch.Status != t.Status {
		t.Status = *patch.Status
		changed = true
	}

	if !changed {
		return t, false, tx.Commit(ctx)
	}

	err = tx.QueryRow(
		ctx,
		`UPDATE tasks
         SET title = $2, description = $3, status = $4, updated_at = now()
         WHERE id = $1
         RETURNING updated_at`,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
	).Scan(&t.UpdatedAt)

	if err != nil {
		return task.Task{}, false, err
	}

	return t, true, tx.Commit(ctx)
}

func (r *TasksRepo) DeleteTask(ctx context.Context, projectID, taskID int) error {
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND project_id = $2`,
		taskID,
		projectID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
