package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/pgpchub/internal/debug"
)

// DebugLogRequest es un log enviado por el cliente de la tienda
type DebugLogRequest struct {
	Source   string                 `json:"source"`
	Level    string                 `json:"level"` // debug, info, warn, error
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	UserID   string                 `json:"userId,omitempty"`
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ReceiveClientLog recibe logs del cliente y los reenvía al dashboard
func ReceiveClientLog(c *fiber.Ctx) error {
	if !debug.IsEnabled() {
		return c.JSON(fiber.Map{"status": "disabled"})
	}

	var req DebugLogRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "JSON inválido")
	}
	if !validLevels[req.Level] {
		req.Level = "info"
	}
	if req.Source == "" {
		req.Source = "frontend"
	}
	if req.Metadata == nil {
		req.Metadata = make(map[string]interface{})
	}
	if req.UserID != "" {
		req.Metadata["userId"] = req.UserID
	}

	debug.SendLog(req.Source, req.Level, req.Message, req.Metadata)
	return c.JSON(fiber.Map{"status": "ok"})
}

// ============================================================================
// HERRAMIENTAS DE DESARROLLO (no se registran en producción)
// ============================================================================

// GetMailbox maneja GET /api/dev/correos/:email: correos enviados a la
// dirección, del más antiguo al más reciente.
func (h *Handler) GetMailbox(c *fiber.Ctx) error {
	mails := h.deps.Mailbox.Messages(c.Params("email"))
	if len(mails) == 0 {
		return fail(c, "No hay correos para "+c.Params("email"))
	}
	return ok(c, "", mails)
}

// GetCacheStats maneja GET /api/dev/cache.
func (h *Handler) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"colonias": h.colonias.GetStats(),
	})
}

// ClearCache maneja DELETE /api/dev/cache?cp=42000. Sin cp limpia todo.
func (h *Handler) ClearCache(c *fiber.Ctx) error {
	if cp := c.Query("cp"); cp != "" {
		h.colonias.Delete(cp)
		return c.JSON(fiber.Map{"status": "ok", "cleared": cp})
	}
	h.colonias.Clear()
	return c.JSON(fiber.Map{"status": "ok", "cleared": "all"})
}
