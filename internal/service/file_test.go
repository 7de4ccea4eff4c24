package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fileapi/internal/model"
	repoMocks "fileapi/internal/repository/mocks"
	"fileapi/internal/storage"
	storeMocks "fileapi/internal/storage/mocks"
	"fileapi/internal/testutil"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestFileService(store storage.Storage, repo *repoMocks.MockFileRepository, opts FileServiceOptions) *fileService {
	svc := NewFileService(store, repo, opts, nil).(*fileService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestFileService_Upload(t *testing.T) {
	ctx := context.Background()
	const key = "a@test.com/temp/example.txt"

	tests := []struct {
		name       string
		in         UploadInput
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository)
		wantErr    error
		check      func(t *testing.T, v *model.FileView)
	}{
		{
			name: "new file inserts a row",
			in:   UploadInput{RawPath: "temp", Filename: "example.txt", Size: 11, OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.ExpectStat(key, storage.NotFound(key)).Once()
				mStore.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
				mStore.ExpectStat(key, storage.Found(storage.ObjectInfo{Key: key, Size: 11})).Once()
				mRepo.On("FindByPath", mock.Anything, key).Return(nil, sql.ErrNoRows)
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *model.File) bool {
					return f.ID != "" && f.Path == key && f.Name == "example.txt" && f.Size == 11 &&
						f.OwnerEmail == "a@test.com" && f.CreatedAt.Equal(fixedNow)
				})).Return(&model.File{ID: "id-1", Path: key, Name: "example.txt", Size: 11, OwnerEmail: "a@test.com"}, nil)
			},
			check: func(t *testing.T, v *model.FileView) {
				assert.Equal(t, key, v.Path)
				assert.Equal(t, int64(11), v.Size)
				assert.True(t, v.IsDownloadable)
			},
		},
		{
			name: "existing row is updated",
			in:   UploadInput{RawPath: "temp", Filename: "example.txt", Size: 20, OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.ExpectStat(key, storage.Found(storage.ObjectInfo{Key: key, Size: 11})).Once()
				mStore.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
				mStore.ExpectStat(key, storage.Found(storage.ObjectInfo{Key: key, Size: 20})).Once()
				mRepo.On("FindByPath", mock.Anything, key).Return(&model.File{ID: "id-1", Path: key, Size: 11, OwnerEmail: "a@test.com"}, nil)
				mRepo.On("UpdateSize", mock.Anything, key, int64(20), fixedNow).
					Return(&model.File{ID: "id-1", Path: key, Size: 20, OwnerEmail: "a@test.com", CreatedAt: fixedNow}, nil)
			},
			check: func(t *testing.T, v *model.FileView) {
				assert.Equal(t, "id-1", v.ID)
				assert.Equal(t, int64(20), v.Size)
			},
		},
		{
			name: "orphan object gets a row",
			in:   UploadInput{RawPath: "temp", Filename: "example.txt", Size: 5, OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.ExpectStat(key, storage.Found(storage.ObjectInfo{Key: key, Size: 3})).Once()
				mStore.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
				mStore.ExpectStat(key, storage.Found(storage.ObjectInfo{Key: key, Size: 5})).Once()
				mRepo.On("FindByPath", mock.Anything, key).Return(nil, sql.ErrNoRows)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(&model.File{ID: "id-2", Path: key, Size: 5, OwnerEmail: "a@test.com"}, nil)
			},
			check: func(t *testing.T, v *model.FileView) {
				assert.Equal(t, "id-2", v.ID)
			},
		},
		{
			name:       "missing filename",
			in:         UploadInput{RawPath: "temp", Filename: "", OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {},
			wantErr:    ErrFilenameRequired,
		},
		{
			name: "stat error",
			in:   UploadInput{RawPath: "temp", Filename: "example.txt", OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Stat", mock.Anything, key).Return(storage.StatResult{}, errors.New("store down"))
			},
			wantErr: ErrUpload,
		},
		{
			name: "put error",
			in:   UploadInput{RawPath: "temp", Filename: "example.txt", OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.ExpectStat(key, storage.NotFound(key)).Once()
				mStore.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("put fail"))
			},
			wantErr: ErrUpload,
		},
		{
			name: "object missing after put",
			in:   UploadInput{RawPath: "temp", Filename: "example.txt", OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Stat", mock.Anything, key).Return(storage.NotFound(key), nil).Twice()
				mStore.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
			},
			wantErr: ErrUpload,
		},
		{
			name: "repository error leaves the object in place",
			in:   UploadInput{RawPath: "temp", Filename: "example.txt", OwnerEmail: "a@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.ExpectStat(key, storage.NotFound(key)).Once()
				mStore.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
				mStore.ExpectStat(key, storage.Found(storage.ObjectInfo{Key: key, Size: 1})).Once()
				mRepo.On("FindByPath", mock.Anything, key).Return(nil, sql.ErrNoRows)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: ErrUpload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockFileRepository)
			svc := newTestFileService(mStore, mRepo, FileServiceOptions{LinkLifetime: time.Hour})

			tt.setupMocks(mStore, mRepo)
			tt.in.Body = strings.NewReader("payload")

			v, err := svc.Upload(ctx, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, v)
			} else {
				require.NoError(t, err)
				require.NotNil(t, v)
				tt.check(t, v)
			}
			mStore.AssertExpectations(t)
			mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFileService_UploadTwiceKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStorage()
	repo := testutil.NewMemFileRepo()
	svc := NewFileService(store, repo, FileServiceOptions{LinkLifetime: time.Hour}, nil)

	first, err := svc.Upload(ctx, UploadInput{RawPath: "temp", Filename: "example.txt", Body: strings.NewReader("hello"), Size: 5, OwnerEmail: "a@test.com"})
	require.NoError(t, err)

	second, err := svc.Upload(ctx, UploadInput{RawPath: "temp", Filename: "example.txt", Body: strings.NewReader("hello world"), Size: 11, OwnerEmail: "a@test.com"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(11), second.Size)

	files, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(11), files[0].Size)
	assert.Equal(t, "a@test.com/temp/example.txt", files[0].Path)
}

func TestFileService_List(t *testing.T) {
	ctx := context.Background()
	viewer := model.User{Email: "a@test.com"}

	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockFileRepository)
		wantErr    bool
		want       []model.FileView
	}{
		{
			name: "annotates rows for viewer",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("List", mock.Anything).Return([]model.File{
					{ID: "1", Path: "a@test.com/x.txt", OwnerEmail: "a@test.com"},
					{ID: "2", Path: "b@test.com/y.txt", OwnerEmail: "b@test.com"},
				}, nil)
			},
			want: []model.FileView{
				{ID: "1", Path: "a@test.com/x.txt", IsDownloadable: true},
				{ID: "2", Path: "b@test.com/y.txt", IsDownloadable: false},
			},
		},
		{
			name: "empty",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("List", mock.Anything).Return([]model.File{}, nil)
			},
			want: []model.FileView{},
		},
		{
			name: "repository error",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("List", mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockFileRepository)
			svc := newTestFileService(nil, mRepo, FileServiceOptions{})
			tt.setupMocks(mRepo)

			got, err := svc.List(ctx, viewer)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFileService_ResolveDownload(t *testing.T) {
	ctx := context.Background()
	const (
		id   = "5f0c7b4e-7d0a-4c43-9c1b-0c5c7b0b9a11"
		path = "a@test.com/temp/example.txt"
	)
	owner := model.User{Email: "a@test.com"}
	row := &model.File{ID: id, Path: path, OwnerEmail: "a@test.com"}

	tests := []struct {
		name       string
		identifier string
		viewer     model.User
		opts       FileServiceOptions
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository)
		want       string
		wantErr    error
		anyErr     bool
	}{
		{
			name:       "by id",
			identifier: id,
			viewer:     owner,
			opts:       FileServiceOptions{LinkLifetime: 24 * time.Hour},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", mock.Anything, id).Return(row, nil)
				mStore.On("PresignGet", mock.Anything, path, 24*time.Hour).Return("http://minio:9000/files/"+path+"?sig=1", nil)
			},
			want: "http://minio:9000/files/" + path + "?sig=1",
		},
		{
			name:       "by path with public endpoint",
			identifier: path,
			viewer:     owner,
			opts:       FileServiceOptions{LinkLifetime: time.Hour, PublicEndpoint: "files.example.com:9000"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByPath", mock.Anything, path).Return(row, nil)
				mStore.On("PresignGet", mock.Anything, path, time.Hour).Return("http://minio:9000/files/"+path+"?sig=1", nil)
			},
			want: "http://files.example.com:9000/files/" + path + "?sig=1",
		},
		{
			name:       "not an id or a path",
			identifier: "temp",
			viewer:     owner,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {},
			wantErr:    ErrInvalidIdentifier,
		},
		{
			name:       "unknown id",
			identifier: id,
			viewer:     owner,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByID", mock.Anything, id).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "not the owner",
			identifier: path,
			viewer:     model.User{Email: "b@test.com"},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByPath", mock.Anything, path).Return(row, nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:       "presign failure",
			identifier: path,
			viewer:     owner,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByPath", mock.Anything, path).Return(row, nil)
				mStore.On("PresignGet", mock.Anything, path, mock.Anything).Return("", errors.New("sign fail"))
			},
			wantErr: ErrLinkGeneration,
		},
		{
			name:       "repository failure",
			identifier: path,
			viewer:     owner,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByPath", mock.Anything, path).Return(nil, errors.New("db fail"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockFileRepository)
			svc := newTestFileService(mStore, mRepo, tt.opts)
			tt.setupMocks(mStore, mRepo)

			link, err := svc.ResolveDownload(ctx, tt.identifier, tt.viewer)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, link)
			case tt.anyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrNotFound)
				assert.NotErrorIs(t, err, ErrLinkGeneration)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.want, link)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFileService_DownloadByIDAndPathMatch(t *testing.T) {
	ctx := context.Background()
	svc := NewFileService(testutil.NewMemStorage(), testutil.NewMemFileRepo(), FileServiceOptions{LinkLifetime: 24 * time.Hour}, nil)
	owner := model.User{Email: "a@test.com"}

	v, err := svc.Upload(ctx, UploadInput{RawPath: "docs/report.pdf", Filename: "upload.bin", Body: strings.NewReader("x"), Size: 1, OwnerEmail: owner.Email})
	require.NoError(t, err)
	assert.Equal(t, "a@test.com/docs/report.pdf", v.Path)

	byID, err := svc.ResolveDownload(ctx, v.ID, owner)
	require.NoError(t, err)
	byPath, err := svc.ResolveDownload(ctx, v.Path, owner)
	require.NoError(t, err)

	assert.Equal(t, byID, byPath)
	assert.Contains(t, byID, "X-Amz-Expires=86400")
}

func TestCanDownload(t *testing.T) {
	users := []model.User{{Email: "a@test.com"}, {Email: "b@test.com"}, {Email: ""}}
	files := []model.File{{OwnerEmail: "a@test.com"}, {OwnerEmail: "b@test.com"}}

	for _, u := range users {
		for _, f := range files {
			assert.Equal(t, u.Email == f.OwnerEmail, CanDownload(f, u), "viewer %q file owner %q", u.Email, f.OwnerEmail)
		}
	}
}

func TestRewriteHost(t *testing.T) {
	got, err := rewriteHost("http://minio:9000/files/k?sig=1", "")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/files/k?sig=1", got)

	got, err = rewriteHost("http://minio:9000/files/k?sig=1", "localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/files/k?sig=1", got)

	_, err = rewriteHost("http://[::1", "localhost:9000")
	assert.Error(t, err)
}
