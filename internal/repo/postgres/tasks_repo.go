package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TasksRepo scopes every statement by user_id. A row owned by someone else
// is indistinguishable from a missing row.
type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

func scanTask(row pgx.Row, t *task.Task) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TasksRepo) Create(ctx context.Context, ownerID string, in task.NewTask) (task.Task, error) {
	t := task.NewForOwner(ownerID, in)

	err := r.prom.ObserveDB("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, title, description, status, user_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.Title, t.Description, t.Status, t.UserID, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, ownerID string, filter task.ListFilter) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{ownerID}

	if filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, *filter.Status)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	out := make([]task.Task, 0)

	err := r.prom.ObserveDB("tasks.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t task.Task
			if err := scanTask(rows, &t); err != nil {
				return err
			}
			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}

	var t task.Task

	err := r.prom.ObserveDB("tasks.get_by_id", func() error {
		return scanTask(r.pool.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		), &t)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, ownerID, id string, p task.Patch) (task.Task, error) {
	if p.IsEmpty() {
		return task.Task{}, task.ErrEmptyUpdate
	}

	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}

	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	var t task.Task

	err := r.prom.ObserveDB("tasks.update", func() error {
		return scanTask(r.pool.QueryRow(ctx,
			`UPDATE tasks
			 SET title       = COALESCE($3, title),
			     description = COALESCE($4, description),
			     status      = COALESCE($5, status),
			     updated_at  = NOW()
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+taskColumns,
			id, ownerID, p.Title, p.Description, status,
		), &t)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return task.ErrNotFound
	}

	var tag pgconn.CommandTag

	err := r.prom.ObserveDB("tasks.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}
