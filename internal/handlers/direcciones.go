package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/store"
)

// GetDirecciones maneja GET /api/Direcciones/ObtenerDireccionesPorIdCte/:id.
func (h *Handler) GetDirecciones(c *fiber.Ctx) error {
	cliente, err := h.ownCliente(c, c.Params("id"))
	if cliente == nil {
		return err
	}
	list, err := h.deps.Store.Direcciones(c.UserContext(), cliente.ID)
	if err != nil {
		return internalError(c, "Direcciones", err)
	}
	if list == nil {
		list = []models.Direccion{}
	}
	return ok(c, "", list)
}

// AddDireccion maneja POST /api/Direcciones/Agregar.
func (h *Handler) AddDireccion(c *fiber.Ctx) error {
	return h.saveDireccion(c, false)
}

// UpdateDireccion maneja POST /api/Direcciones/Actualizar.
func (h *Handler) UpdateDireccion(c *fiber.Ctx) error {
	return h.saveDireccion(c, true)
}

func (h *Handler) saveDireccion(c *fiber.Ctx, update bool) error {
	var req models.Direccion
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	cliente, err := h.ownCliente(c, req.IDCliente)
	if cliente == nil {
		return err
	}
	ctx := c.UserContext()

	if update {
		if req.IDDireccion == "" {
			return respondError(c, fiber.StatusBadRequest, "idDireccion es requerido")
		}
		found, err := h.findDireccion(c, cliente.ID, req.IDDireccion)
		if !found {
			return err
		}
	} else {
		req.IDDireccion = ""
	}

	col, err := h.deps.Store.ColoniaByID(ctx, req.IDCp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respondError(c, fiber.StatusBadRequest, "La colonia seleccionada no es válida")
		}
		return internalError(c, "ColoniaByID", err)
	}
	if req.CodigoPostal != "" && req.CodigoPostal != col.CodigoPostal {
		return respondError(c, fiber.StatusBadRequest, "La colonia no corresponde al código postal")
	}
	req.CodigoPostal = col.CodigoPostal
	req.AliasDireccion = strings.TrimSpace(req.AliasDireccion)
	req.Calle = strings.TrimSpace(req.Calle)

	if err := h.deps.Store.SaveDireccion(ctx, &req); err != nil {
		return internalError(c, "SaveDireccion", err)
	}
	if update {
		return ok(c, "Dirección actualizada exitosamente", []models.Direccion{req})
	}
	return ok(c, "Dirección agregada exitosamente", []models.Direccion{req})
}

// DeleteDireccion maneja DELETE /api/Direcciones/Eliminar/:id.
func (h *Handler) DeleteDireccion(c *fiber.Ctx) error {
	cliente, err := h.ownCliente(c, "")
	if cliente == nil {
		return err
	}
	id := c.Params("id")
	found, err := h.findDireccion(c, cliente.ID, id)
	if !found {
		return err
	}
	if err := h.deps.Store.DeleteDireccion(c.UserContext(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respondError(c, fiber.StatusNotFound, "La dirección no existe")
		}
		return internalError(c, "DeleteDireccion", err)
	}
	return ok(c, "Dirección eliminada exitosamente", nil)
}

// findDireccion responde 404 cuando la dirección no es del cliente.
func (h *Handler) findDireccion(c *fiber.Ctx, idCliente, id string) (bool, error) {
	list, err := h.deps.Store.Direcciones(c.UserContext(), idCliente)
	if err != nil {
		return false, internalError(c, "Direcciones", err)
	}
	for _, d := range list {
		if d.IDDireccion == id {
			return true, nil
		}
	}
	return false, respondError(c, fiber.StatusNotFound, "La dirección no existe")
}
