// Package testutil provides in-memory stand-ins for the repositories and the
// object store, for tests that drive whole workflows.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

// MemStorage keeps objects in a map.
type MemStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{objects: map[string][]byte{}}
}

func (m *MemStorage) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return storage.ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return storage.ObjectInfo{Key: key, Size: int64(buf.Len()), ContentType: opt.ContentType}, nil
}

func (m *MemStorage) Stat(_ context.Context, key string) (storage.StatResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return storage.NotFound(key), nil
	}
	return storage.Found(storage.ObjectInfo{Key: key, Size: int64(len(b))}), nil
}

func (m *MemStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// PresignGet returns a deterministic path-style link on an internal host.
func (m *MemStorage) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("http://minio:9000/files/%s?X-Amz-Expires=%d", key, int(expiry.Seconds())), nil
}

func (m *MemStorage) Ping(context.Context) error { return nil }

// Object returns the stored bytes for key.
func (m *MemStorage) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// MemFileRepo is a FileRepository with a unique index on Path.
type MemFileRepo struct {
	mu     sync.Mutex
	byPath map[string]model.File
}

func NewMemFileRepo() *MemFileRepo {
	return &MemFileRepo{byPath: map[string]model.File{}}
}

func (r *MemFileRepo) Create(_ context.Context, f *model.File) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPath[f.Path]; ok {
		return nil, fmt.Errorf("%w: files_path_key", repository.ErrDuplicate)
	}
	r.byPath[f.Path] = *f
	out := *f
	return &out, nil
}

func (r *MemFileRepo) FindByID(_ context.Context, id string) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.byPath {
		if f.ID == id {
			out := f
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemFileRepo) FindByPath(_ context.Context, path string) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byPath[path]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &f, nil
}

func (r *MemFileRepo) UpdateSize(_ context.Context, path string, size int64, createdAt time.Time) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byPath[path]
	if !ok {
		return nil, sql.ErrNoRows
	}
	f.Size = size
	f.CreatedAt = createdAt
	r.byPath[path] = f
	return &f, nil
}

func (r *MemFileRepo) List(context.Context) ([]model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.File, 0, len(r.byPath))
	for _, f := range r.byPath {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// MemUserRepo is a UserRepository keyed by email.
type MemUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{users: map[string]model.User{}}
}

func (r *MemUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return fmt.Errorf("%w: users_pkey", repository.ErrDuplicate)
	}
	r.users[u.Email] = *u
	return nil
}

func (r *MemUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

var (
	_ storage.Storage           = (*MemStorage)(nil)
	_ repository.FileRepository = (*MemFileRepo)(nil)
	_ repository.UserRepository = (*MemUserRepo)(nil)
)
