package service

import "errors"

var (
	ErrUpload            = errors.New("upload failed")
	ErrFilenameRequired  = errors.New("filename is required")
	ErrInvalidIdentifier = errors.New("identifier is neither a file id nor a file path")
	ErrNotFound          = errors.New("file not found")
	ErrForbidden         = errors.New("file belongs to another user")
	ErrLinkGeneration    = errors.New("download link generation failed")

	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
)
