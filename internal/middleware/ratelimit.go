package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ============================================================================
// RATE LIMITING MIDDLEWARE
// ============================================================================
// Las respuestas usan el mismo sobre {exito, error} que el resto de la API
// para que el cliente muestre el mensaje en el toast.

// RateLimiter limita las peticiones generales por IP
func RateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"exito":       false,
				"error":       "Demasiadas solicitudes, intenta de nuevo en un minuto",
				"retry_after": 60,
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// AuthRateLimiter protege login, registro y códigos contra fuerza bruta.
// La llave es IP + ruta para que un endpoint no agote a los demás.
func AuthRateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"exito":       false,
				"error":       "Demasiados intentos, espera un minuto antes de volver a intentar",
				"retry_after": 60,
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
