package handler

import (
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"
)

// SwaggerUI points info at the host and scheme the client used before serving next.
// info is shared by every request, so updating it and rendering the doc happen under one lock.
func SwaggerUI(info *swag.Spec, next fiber.Handler) fiber.Handler {
	var mu sync.Mutex
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get(fiber.HeaderXForwardedProto); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		mu.Lock()
		defer mu.Unlock()
		info.Host = c.Get(fiber.HeaderHost)
		info.Schemes = []string{scheme}
		return next(c)
	}
}
