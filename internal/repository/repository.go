package repository

import (
	"context"
	"errors"
	"time"

	"fileapi/internal/model"
)

// Package repository contains data access abstractions for file metadata and users.
// Implementations live in subpackages (postgres). Lookups that find nothing return sql.ErrNoRows.

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// FileRepository defines persistence for file metadata rows. No business logic here.
type FileRepository interface {
	// Create inserts a new file row and returns the stored record.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its UUID.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// FindByPath returns a file by its storage key.
	FindByPath(ctx context.Context, path string) (*model.File, error)

	// UpdateSize sets the size of the row at path and refreshes its creation timestamp.
	UpdateSize(ctx context.Context, path string, size int64, createdAt time.Time) (*model.File, error)

	// List returns every file row, newest first.
	List(ctx context.Context) ([]model.File, error)
}

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	// Create inserts a user. A duplicate email returns ErrDuplicate.
	Create(ctx context.Context, u *model.User) error

	// FindByEmail returns the user with the given email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
