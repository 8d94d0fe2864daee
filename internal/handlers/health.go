package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/pgpchub/internal/debug"
)

// HealthResponse representa el estado de salud del backend
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version,omitempty"`
}

// Health revisa el almacén y reporta el estado del caché y del dashboard.
func (h *Handler) Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	// ============================================================================
	// CHECK: Almacén
	// ============================================================================
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.deps.Store.Ping(ctx); err != nil {
		services["store"] = "unhealthy: " + err.Error()
		overall = "degraded"
	} else {
		services["store"] = "healthy"
	}

	// ============================================================================
	// CHECK: Catálogos
	// ============================================================================
	if items, err := h.deps.Store.OfertasFlash(ctx); err != nil {
		services["catalog"] = "unhealthy: " + err.Error()
		overall = "degraded"
	} else if len(items) == 0 {
		services["catalog"] = "empty"
	} else {
		services["catalog"] = "healthy"
	}

	stats := h.colonias.GetStats()
	services["colonias_cache"] = fmt.Sprintf("%d items, hit rate %.2f", stats.ValidItems, stats.HitRate)

	if debug.IsEnabled() {
		services["debug_dashboard"] = "enabled"
	} else {
		services["debug_dashboard"] = "disabled"
	}

	statusCode := fiber.StatusOK
	if overall == "degraded" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Version:   os.Getenv("APP_VERSION"),
	})
}
