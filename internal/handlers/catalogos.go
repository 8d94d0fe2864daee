package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/validation"
)

var errNoColonias = errors.New("sin colonias")

// GetColonias maneja GET /api/CodigosPostales/ObtenerColonias/:cp. Las
// consultas con resultado se guardan en caché.
func (h *Handler) GetColonias(c *fiber.Ctx) error {
	cp := c.Params("cp")
	if !validation.IsPostalCode(cp) {
		return respondError(c, fiber.StatusBadRequest, "El código postal debe tener 5 dígitos")
	}
	ctx := c.UserContext()
	list, err := h.colonias.GetOrLoad(cp, func() ([]models.Colonia, error) {
		list, err := h.deps.Store.Colonias(ctx, cp)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, errNoColonias
		}
		return list, nil
	})
	if errors.Is(err, errNoColonias) {
		return fail(c, "No se encontraron colonias para el código postal "+cp)
	}
	if err != nil {
		return internalError(c, "Colonias", err)
	}
	return ok(c, "", list)
}

// GetCombos maneja GET /api/DatosFacturacionClientes/GetCombos.
func (h *Handler) GetCombos(c *fiber.Ctx) error {
	items, err := h.deps.Store.Combos(c.UserContext())
	if err != nil {
		return internalError(c, "Combos", err)
	}
	return ok(c, "", items)
}

// GetOfertasFlash maneja GET /api/Productos/OfertasFlash.
func (h *Handler) GetOfertasFlash(c *fiber.Ctx) error {
	items, err := h.deps.Store.OfertasFlash(c.UserContext())
	if err != nil {
		return internalError(c, "OfertasFlash", err)
	}
	if items == nil {
		items = []models.Producto{}
	}
	return ok(c, "", items)
}
