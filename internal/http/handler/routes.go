package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fileapi/internal/database"
	"fileapi/internal/http/middleware"
	"fileapi/internal/service"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	DB          database.Pinger
	Store       StorePinger
	Users       service.UserService
	Files       service.FileService
	Gatherer    prometheus.Gatherer
	AuthLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers translate service errors to status codes and carry no business logic.
func RegisterRoutes(app *fiber.App, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app.Get("/healthz", LivenessProbe())
	app.Get("/ping", Ping(d.DB, d.Store))
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	limited := []fiber.Handler{}
	if d.AuthLimiter != nil {
		limited = append(limited, d.AuthLimiter.Handler())
	}
	app.Post("/register", append(limited, Register(d.Users, logger))...)
	app.Post("/auth", append(limited, Login(d.Users, logger))...)

	files := app.Group("/files", middleware.Auth(d.Users))
	files.Post("/upload", UploadFile(d.Files, logger))
	files.Get("/files", ListFiles(d.Files, logger))
	files.Get("/download", DownloadFile(d.Files, logger))
}
