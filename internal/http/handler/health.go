package handler

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/database"
)

// probeTimeout bounds each dependency check.
const probeTimeout = 2 * time.Second

// StorePinger is satisfied by storage.Storage.
type StorePinger interface {
	Ping(ctx context.Context) error
}

type pingResponse struct {
	DB          *string `json:"db"`
	ObjectStore *string `json:"object_store"`
}

// Ping reports dependency latency; an unreachable dependency is null.
//
// @Summary  Dependency latency
// @Tags     Check health
// @Produce  json
// @Success  200 {object} pingResponse
// @Router   /ping [get]
func Ping(db database.Pinger, store StorePinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := pingResponse{
			DB: probe(c.UserContext(), func(ctx context.Context) (time.Duration, error) {
				return database.Probe(ctx, db)
			}),
			ObjectStore: probe(c.UserContext(), func(ctx context.Context) (time.Duration, error) {
				start := time.Now()
				if err := store.Ping(ctx); err != nil {
					return 0, err
				}
				return time.Since(start), nil
			}),
		}
		return c.JSON(res)
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

func probe(parent context.Context, check func(context.Context) (time.Duration, error)) *string {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	d, err := check(ctx)
	if err != nil {
		return nil
	}
	s := formatMillis(d)
	return &s
}

// formatMillis renders d as "<ms> milliseconds" rounded to two decimals.
func formatMillis(d time.Duration) string {
	ms := math.Round(float64(d)/float64(time.Millisecond)*100) / 100
	return strconv.FormatFloat(ms, 'f', -1, 64) + " milliseconds"
}
