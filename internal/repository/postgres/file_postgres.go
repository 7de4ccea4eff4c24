package postgres

import (
	"context"
	"database/sql"
	"time"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, created_at, name, path, size, owner_email`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.CreatedAt,
		&f.Name,
		&f.Path,
		&f.Size,
		&f.OwnerEmail,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, created_at, name, path, size, owner_email)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.CreatedAt,
		f.Name,
		f.Path,
		f.Size,
		f.OwnerEmail,
	)
	out, err := scanFile(row)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// FindByPath fetches a single file by its storage key.
func (r *FilePostgres) FindByPath(ctx context.Context, path string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE path = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, path))
}

// UpdateSize refreshes size and created_at for the row at path.
// It returns sql.ErrNoRows when no row exists.
func (r *FilePostgres) UpdateSize(ctx context.Context, path string, size int64, createdAt time.Time) (*model.File, error) {
	const q = `
		UPDATE files SET size = $1, created_at = $2
		WHERE path = $3
		RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, q, size, createdAt, path))
}

// List returns all files, newest first.
func (r *FilePostgres) List(ctx context.Context) ([]model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
