package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

const tracerName = "fileapi/service"

// UploadInput carries one multipart upload.
type UploadInput struct {
	// RawPath is the optional folder or target path supplied by the client.
	RawPath     string
	Body        io.Reader
	Size        int64
	ContentType string
	OwnerEmail  string
	Filename    string
}

// FileServiceOptions configures download link generation.
type FileServiceOptions struct {
	LinkLifetime time.Duration
	// PublicEndpoint replaces the host of generated links when set.
	PublicEndpoint string
}

// FileService defines the use cases for stored files.
type FileService interface {
	// Upload stores the body under the owner's prefix and upserts its metadata row.
	Upload(ctx context.Context, in UploadInput) (*model.FileView, error)

	// List returns every file annotated for the viewer.
	List(ctx context.Context, viewer model.User) ([]model.FileView, error)

	// ResolveDownload finds a file by id or path and returns a presigned link when the viewer owns it.
	ResolveDownload(ctx context.Context, identifier string, viewer model.User) (string, error)
}

type fileService struct {
	store  storage.Storage
	repo   repository.FileRepository
	opts   FileServiceOptions
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.Storage, repo repository.FileRepository, opts FileServiceOptions, logger *slog.Logger) FileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileService{
		store:  store,
		repo:   repo,
		opts:   opts,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CanDownload reports whether viewer may fetch f.
func CanDownload(f model.File, viewer model.User) bool {
	return f.IsOwnedBy(viewer.Email)
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (_ *model.FileView, err error) {
	name := baseName(in.Filename)
	if name == "" {
		return nil, ErrFilenameRequired
	}
	key := OwnerPrefix(in.OwnerEmail) + ResolvePath(in.RawPath, name)

	ctx, span := s.tracer.Start(ctx, "FileService.Upload", trace.WithAttributes(attribute.String("file.path", key)))
	defer func() { endSpan(span, err) }()

	before, err := s.store.Stat(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrUpload, key, err)
	}

	if _, err = s.store.Put(ctx, key, in.Body, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata:    map[string]string{"original-filename": name},
	}); err != nil {
		return nil, fmt.Errorf("%w: put %s: %w", ErrUpload, key, err)
	}

	after, err := s.store.Stat(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrUpload, key, err)
	}
	if !after.Exists() {
		err = fmt.Errorf("%w: object %s missing after put", ErrUpload, key)
		return nil, err
	}
	size := after.Info.Size

	existing, err := s.repo.FindByPath(ctx, key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: find %s: %w", ErrUpload, key, err)
	}

	var stored *model.File
	if existing == nil {
		if before.Exists() {
			s.logger.WarnContext(ctx, "object existed without metadata row", "event", "orphan_object", "path", key)
		}
		stored, err = s.repo.Create(ctx, &model.File{
			ID:         uuid.New().String(),
			CreatedAt:  s.now(),
			Name:       name,
			Path:       key,
			Size:       size,
			OwnerEmail: in.OwnerEmail,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", ErrUpload, key, err)
		}
	} else {
		stored, err = s.repo.UpdateSize(ctx, key, size, s.now())
		if err != nil {
			return nil, fmt.Errorf("%w: update %s: %w", ErrUpload, key, err)
		}
	}

	s.logger.InfoContext(ctx, "file stored", "event", "file_upload", "path", key, "size", size, "replaced", existing != nil)
	view := stored.ViewFor(model.User{Email: in.OwnerEmail})
	return &view, nil
}

func (s *fileService) List(ctx context.Context, viewer model.User) (_ []model.FileView, err error) {
	ctx, span := s.tracer.Start(ctx, "FileService.List")
	defer func() { endSpan(span, err) }()

	files, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	views := make([]model.FileView, 0, len(files))
	for _, f := range files {
		views = append(views, f.ViewFor(viewer))
	}
	return views, nil
}

func (s *fileService) ResolveDownload(ctx context.Context, identifier string, viewer model.User) (_ string, err error) {
	ctx, span := s.tracer.Start(ctx, "FileService.ResolveDownload", trace.WithAttributes(attribute.String("file.identifier", identifier)))
	defer func() { endSpan(span, err) }()

	f, err := s.lookup(ctx, identifier)
	if err != nil {
		return "", err
	}
	if !CanDownload(*f, viewer) {
		return "", ErrForbidden
	}

	link, err := s.store.PresignGet(ctx, f.Path, s.opts.LinkLifetime)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLinkGeneration, err)
	}
	link, err = rewriteHost(link, s.opts.PublicEndpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLinkGeneration, err)
	}
	return link, nil
}

// lookup classifies identifier as a UUID or a path and loads the row.
func (s *fileService) lookup(ctx context.Context, identifier string) (*model.File, error) {
	var (
		f   *model.File
		err error
	)
	switch {
	case isUUID(identifier):
		f, err = s.repo.FindByID(ctx, identifier)
	case hasExtension(identifier):
		f, err = s.repo.FindByPath(ctx, identifier)
	default:
		return nil, ErrInvalidIdentifier
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// rewriteHost points link at the public endpoint so clients never see the internal store address.
func rewriteHost(link, publicEndpoint string) (string, error) {
	if publicEndpoint == "" {
		return link, nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse presigned url: %w", err)
	}
	u.Host = publicEndpoint
	return u.String(), nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
