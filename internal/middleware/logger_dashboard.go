package middleware

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/pgpchub/internal/debug"
)

// DashboardLogger middleware para enviar logs al dashboard en tiempo real
func DashboardLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !debug.IsEnabled() {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		level := "info"
		if status >= 500 {
			level = "error"
		} else if status >= 400 {
			level = "warn"
		}

		// La fuente es el recurso: /api/usuarios/login -> usuarios
		path := c.Path()
		source := "backend"
		if rest := strings.TrimPrefix(path, "/api/"); rest != path {
			if i := strings.Index(rest, "/"); i > 0 {
				source = rest[:i]
			}
		}

		debug.SendLog(source, level, fmt.Sprintf("%s %s", c.Method(), path), map[string]interface{}{
			"method":      c.Method(),
			"path":        path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"ip":          c.IP(),
		})
		return err
	}
}

// Heartbeat envía goroutines activas al dashboard hasta que ctx termine
func Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			debug.LogDebug("System heartbeat", map[string]interface{}{
				"goroutines": runtime.NumGoroutine(),
			})
		}
	}
}
