package postgres

import (
	"context"
	"database/sql"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a user row.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (email, password_hash) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, q, u.Email, u.PasswordHash); err != nil {
		return translate(err)
	}
	return nil
}

// FindByEmail fetches a user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT email, password_hash FROM users WHERE email = $1`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&u.Email, &u.PasswordHash); err != nil {
		return nil, err
	}
	return &u, nil
}
