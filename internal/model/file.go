package model

import "time"

// File is the metadata row for one uploaded object.
// Path is the storage key and is always prefixed by OwnerEmail + "/".
type File struct {
	ID         string
	CreatedAt  time.Time
	Name       string
	Path       string
	Size       int64
	OwnerEmail string
}

// FileView is the client-facing shape of a File.
// IsDownloadable is computed per request for the viewing user and is never persisted.
type FileView struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Name           string    `json:"name"`
	Path           string    `json:"path"`
	Size           int64     `json:"size"`
	IsDownloadable bool      `json:"is_downloadable"`
}

// IsOwnedBy reports whether email owns the file.
func (f File) IsOwnedBy(email string) bool {
	return f.OwnerEmail == email
}

// ViewFor annotates the file for the viewing user.
func (f File) ViewFor(viewer User) FileView {
	return FileView{
		ID:             f.ID,
		CreatedAt:      f.CreatedAt,
		Name:           f.Name,
		Path:           f.Path,
		Size:           f.Size,
		IsDownloadable: f.IsOwnedBy(viewer.Email),
	}
}
