package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
)

type TasksRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewTasksRepo(db *sql.DB, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{db: db, prom: prom}
}

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner, t *task.Task) error {
	var status string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}
	t.Status = task.Status(status)
	return nil
}

func (r *TasksRepo) Create(ctx context.Context, ownerID string, in task.NewTask) (task.Task, error) {
	t := task.NewForOwner(ownerID, in)

	err := r.prom.ObserveDB("tasks.create", func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tasks (id, title, description, status, user_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Description, string(t.Status), t.UserID, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, ownerID string, filter task.ListFilter) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{ownerID}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC, id DESC`

	out := make([]task.Task, 0)

	err := r.prom.ObserveDB("tasks.list", func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
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
	var t task.Task

	err := r.prom.ObserveDB("tasks.get_by_id", func() error {
		return scanTask(r.db.QueryRowContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
			id, ownerID,
		), &t)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	var t task.Task

	err := r.prom.ObserveDB("tasks.update", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(ctx,
			`UPDATE tasks
			 SET title       = COALESCE(?, title),
			     description = COALESCE(?, description),
			     status      = COALESCE(?, status),
			     updated_at  = ?
			 WHERE id = ? AND user_id = ?`,
			p.Title, p.Description, status, time.Now().UTC(), id, ownerID,
		)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}

		if err := scanTask(tx.QueryRowContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
			id, ownerID,
		), &t); err != nil {
			return err
		}

		return tx.Commit()
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, ownerID, id string) error {
	var affected int64

	err := r.prom.ObserveDB("tasks.delete", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}
