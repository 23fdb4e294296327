package repository

import (
	"context"
	"database/sql"

	"classlab/internal/domain"
)

var _ domain.UserStore = (*UserRepo)(nil)

// UserRepo implements domain.UserStore on the user_ids table.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Lookup returns the upstream user ID for a username.
func (r *UserRepo) Lookup(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM user_ids WHERE username = ?`, username).Scan(&id)
	if err != nil {
		return 0, mapDBError(err)
	}
	return id, nil
}

// Insert records a username mapping. Each insert is a single durable write.
func (r *UserRepo) Insert(ctx context.Context, username string, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_ids (username, user_id) VALUES (?, ?)`, username, userID)
	return mapDBError(err)
}

// Remove deletes a username mapping.
func (r *UserRepo) Remove(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_ids WHERE username = ?`, username)
	return requireRow(res, err)
}
