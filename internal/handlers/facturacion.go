package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/store"
	"github.com/yourorg/pgpchub/internal/validation"
)

// GetDatosFacturacion maneja GET /api/DatosFacturacionClientes/ObtenerPorIdCliente/:id.
func (h *Handler) GetDatosFacturacion(c *fiber.Ctx) error {
	cliente, err := h.ownCliente(c, c.Params("id"))
	if cliente == nil {
		return err
	}
	list, err := h.deps.Store.DatosFacturacion(c.UserContext(), cliente.ID)
	if err != nil {
		return internalError(c, "DatosFacturacion", err)
	}
	if list == nil {
		list = []models.DatoFacturacion{}
	}
	return ok(c, "", list)
}

func (h *Handler) AddDatoFacturacion(c *fiber.Ctx) error {
	return h.saveDatoFacturacion(c, false)
}

func (h *Handler) UpdateDatoFacturacion(c *fiber.Ctx) error {
	return h.saveDatoFacturacion(c, true)
}

func (h *Handler) saveDatoFacturacion(c *fiber.Ctx, update bool) error {
	var req models.DatoFacturacion
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	cliente, err := h.ownCliente(c, req.IDCliente)
	if cliente == nil {
		return err
	}
	ctx := c.UserContext()

	req.RFC = validation.NormalizeRFC(req.RFC)
	if errs := validation.ValidateBilling(req); len(errs) > 0 {
		return respondError(c, fiber.StatusBadRequest, errorsMessage(errs))
	}

	if update {
		if req.IDDatoFacturacion == "" {
			return respondError(c, fiber.StatusBadRequest, "idDatoFacturacion es requerido")
		}
		found, err := h.findDatoFacturacion(c, cliente.ID, req.IDDatoFacturacion)
		if !found {
			return err
		}
	} else {
		req.IDDatoFacturacion = ""
	}

	combos, err := h.deps.Store.Combos(ctx)
	if err != nil {
		return internalError(c, "Combos", err)
	}
	if msg := fillComboTexts(&req, combos); msg != "" {
		return respondError(c, fiber.StatusBadRequest, msg)
	}
	req.RazonSocial = strings.TrimSpace(req.RazonSocial)
	req.Correo = strings.TrimSpace(req.Correo)

	if err := h.deps.Store.SaveDatoFacturacion(ctx, &req); err != nil {
		return internalError(c, "SaveDatoFacturacion", err)
	}
	if update {
		return ok(c, "Datos de facturación actualizados exitosamente", []models.DatoFacturacion{req})
	}
	return ok(c, "Datos de facturación agregados exitosamente", []models.DatoFacturacion{req})
}

// fillComboTexts valida cada clave contra su catálogo y copia la descripción.
func fillComboTexts(f *models.DatoFacturacion, combos []models.ComboItem) string {
	texts := make(map[string]string, len(combos))
	for _, item := range combos {
		texts[item.Combo+"|"+item.Valor] = item.Texto
	}
	fields := []struct {
		combo string
		value string
		text  *string
		label string
	}{
		{models.ComboRegimenFiscal, f.IDRegimen, &f.Regimen, "régimen fiscal"},
		{models.ComboUsoCfdi, f.IDUsoCfdi, &f.UsoCfdi, "uso de CFDI"},
		{models.ComboFormaPago, f.IDFormaPago, &f.FormaPago, "forma de pago"},
		{models.ComboMetodoPago, f.IDMetodoPago, &f.MetodoPago, "método de pago"},
	}
	for _, fd := range fields {
		text, found := texts[fd.combo+"|"+fd.value]
		if !found {
			return "El " + fd.label + " seleccionado no es válido"
		}
		*fd.text = text
	}
	return ""
}

// DeleteDatoFacturacion maneja DELETE /api/DatosFacturacionClientes/Eliminar/:id.
func (h *Handler) DeleteDatoFacturacion(c *fiber.Ctx) error {
	cliente, err := h.ownCliente(c, "")
	if cliente == nil {
		return err
	}
	id := c.Params("id")
	found, err := h.findDatoFacturacion(c, cliente.ID, id)
	if !found {
		return err
	}
	if err := h.deps.Store.DeleteDatoFacturacion(c.UserContext(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respondError(c, fiber.StatusNotFound, "Los datos de facturación no existen")
		}
		return internalError(c, "DeleteDatoFacturacion", err)
	}
	return ok(c, "Datos de facturación eliminados exitosamente", nil)
}

func (h *Handler) findDatoFacturacion(c *fiber.Ctx, idCliente, id string) (bool, error) {
	list, err := h.deps.Store.DatosFacturacion(c.UserContext(), idCliente)
	if err != nil {
		return false, internalError(c, "DatosFacturacion", err)
	}
	for _, d := range list {
		if d.IDDatoFacturacion == id {
			return true, nil
		}
	}
	return false, respondError(c, fiber.StatusNotFound, "Los datos de facturación no existen")
}
