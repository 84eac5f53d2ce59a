// Package sqlite stores users and tasks in a single SQLite file for local
// development and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/mattn/go-sqlite3"
)

type UsersRepo struct {
	db   *sql.DB
	prom *observability.Prom
}

func NewUsersRepo(db *sql.DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	return errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (r *UsersRepo) Create(ctx context.Context, in user.NewUser) (user.User, error) {
	u := user.NewFromRegistration(in)

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, name, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var (
		u    user.User
		name sql.NullString
	)

	err := r.prom.ObserveDB(op, func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE `+where,
			arg,
		).Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &u.CreatedAt, &u.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	if name.Valid {
		u.Name = &name.String
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", "email = ?", email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", "id = ?", id)
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	var affected int64

	err := r.prom.ObserveDB("users.update_password", func() error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
			hash, time.Now().UTC(), id,
		)
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
		return user.ErrNotFound
	}

	return nil
}
