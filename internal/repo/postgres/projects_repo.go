package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub-dev/taskhub/internal/domain/project"
)

type ProjectsRepo struct {
	pool *pgxpool.Pool
}

func NewProjectsRepo(pool *pgxpool.Pool) *ProjectsRepo {
	return &ProjectsRepo{pool: pool}
}

func (r *ProjectsRepo) CreateProject(ctx context.Context, ownerID int, name string, description *string) (project.Project, error) {
	var p project.Project

	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO projects (owner_id, name, description, created_at, updated_at)
         VALUES ($1, $2, $3, now(), now())
         RETURNING id, owner_id, name, description, created_at, updated_at`,
		ownerID,
		name,
		description,
	).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) GetProject(ctx context.Context, id int) (project.Project, error) {
	var p project.Project

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at
         FROM projects
         WHERE id = $1`,
		id,
	).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) ListProjectsByOwner(ctx context.Context, ownerID int) ([]project.Project, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, owner_id, name, description, created_at, updated_at
         FROM projects
         WHERE owner_id = $1
         ORDER BY id`,
		ownerID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]project.Project, 0)

	for rows.Next() {
		var p project.Project

		err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *ProjectsRepo) UpdateProject(ctx context.Context, id int, patch project.Patch) (project.Project, error) {
	var p project.Project

	err := r.pool.QueryRow(
		ctx,
		`UPDATE projects
         SET name        = COALESCE($2, name),
             description = CASE WHEN $4 THEN $3 ELSE description END,
             updated_at  = now()
         WHERE id = $1
         RETURNING id, owner_id, name, description, created_at, updated_at`,
		id,
		patch.Name,
		patch.Description,
		patch.Description != nil,
	).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

// DeleteProjectCascade removes the project and its tasks in one transaction.
func (r *ProjectsRepo) DeleteProjectCascade(ctx context.Context, id int) error {
	tx, err := r.pool.Begin(ctx)

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, id)

	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return project.ErrNotFound
	}

	return tx.Commit(ctx)
}
