package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/http/middleware"
	"fileapi/internal/model"
	"fileapi/internal/service"
)

type downloadResponse struct {
	DownloadLink string `json:"download_link"`
}

// UploadFile stores a multipart file under the caller's prefix.
//
// @Summary  Upload a file
// @Tags     Files
// @Accept   multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param    path formData string false "<full-path-to-file> or <path-to-folder>"
// @Param    file formData file true "file"
// @Success  201 {object} model.FileView
// @Failure  400 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /files/upload [post]
func UploadFile(files service.FileService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		view, err := files.Upload(c.UserContext(), service.UploadInput{
			RawPath:     c.FormValue("path"),
			Body:        f,
			Size:        fh.Size,
			ContentType: ct,
			OwnerEmail:  user.Email,
			Filename:    fh.Filename,
		})
		if err != nil {
			if errors.Is(err, service.ErrFilenameRequired) {
				return writeError(c, fiber.StatusUnprocessableEntity, "FILE_REQUIRED", "file name is required")
			}
			logFailure(c, logger, "file_upload", err)
			return writeError(c, fiber.StatusBadRequest, "UPLOAD_FAILED", "file could not be uploaded")
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// ListFiles returns every stored file annotated for the caller.
//
// @Summary  List files
// @Tags     Files
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} model.FileView
// @Failure  500 {object} errorPayload
// @Router   /files/files [get]
func ListFiles(files service.FileService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		views, err := files.List(c.UserContext(), user)
		if err != nil {
			logFailure(c, logger, "file_list", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if views == nil {
			views = []model.FileView{}
		}
		return c.JSON(views)
	}
}

// DownloadFile returns a presigned link for a file the caller owns.
//
// @Summary  Get a download link
// @Tags     Files
// @Produce  json
// @Security BearerAuth
// @Param    path query string true "file path or id"
// @Success  200 {object} downloadResponse
// @Failure  403 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Router   /files/download [get]
func DownloadFile(files service.FileService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		identifier := c.Query("path")
		if identifier == "" {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_PATH", "path is required")
		}

		link, err := files.ResolveDownload(c.UserContext(), identifier, user)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidIdentifier), errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_PATH", "file path or identifier is incorrect")
			case errors.Is(err, service.ErrForbidden):
				return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "you are not allowed to download this file")
			}
			logFailure(c, logger, "file_download", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(downloadResponse{DownloadLink: link})
	}
}
