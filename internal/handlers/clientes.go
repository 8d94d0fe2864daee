package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/pgpchub/internal/middleware"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/store"
	"github.com/yourorg/pgpchub/internal/validation"
)

// MaxPhotoBytes es el tamaño máximo de la foto de perfil (5MB).
const MaxPhotoBytes = 5 * 1024 * 1024

// PhotoURLPrefix es la ruta pública bajo la que se sirven las fotos.
const PhotoURLPrefix = "/fotos/"

// GetClienteByUsuario maneja GET /api/Clientes/ObtenerPorIdUsuario/:id.
func (h *Handler) GetClienteByUsuario(c *fiber.Ctx) error {
	idUsuario := c.Params("id")
	if idUsuario != middleware.UserID(c) {
		return respondError(c, fiber.StatusForbidden, "No tienes permiso sobre este usuario")
	}
	cliente, err := h.deps.Store.ClienteByUsuario(c.UserContext(), idUsuario)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return respondError(c, fiber.StatusNotFound, "Cliente no encontrado")
		}
		return internalError(c, "ClienteByUsuario", err)
	}
	return ok(c, "", []models.Cliente{*cliente})
}

// UpdateCliente maneja POST /api/Clientes/Actualizar. La foto no se cambia
// por aquí.
func (h *Handler) UpdateCliente(c *fiber.Ctx) error {
	var req models.Cliente
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	cliente, err := h.ownCliente(c, req.ID)
	if cliente == nil {
		return err
	}
	if errs := validation.ValidatePersonal(req); len(errs) > 0 {
		return respondError(c, fiber.StatusBadRequest, errorsMessage(errs))
	}

	cliente.Nombres = strings.TrimSpace(req.Nombres)
	cliente.ApellidoPaterno = strings.TrimSpace(req.ApellidoPaterno)
	cliente.ApellidoMaterno = strings.TrimSpace(req.ApellidoMaterno)
	cliente.Telefono = req.Telefono
	if err := h.deps.Store.UpdateCliente(c.UserContext(), cliente); err != nil {
		return internalError(c, "UpdateCliente", err)
	}
	return ok(c, "Datos actualizados exitosamente", nil)
}

// UploadPhoto maneja POST /api/Clientes/SubirFoto (multipart: idCliente, foto).
func (h *Handler) UploadPhoto(c *fiber.Ctx) error {
	cliente, err := h.ownCliente(c, c.FormValue("idCliente"))
	if cliente == nil {
		return err
	}
	fh, err := c.FormFile("foto")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "La foto es requerida")
	}
	if fh.Size > MaxPhotoBytes {
		return respondError(c, fiber.StatusBadRequest, "La imagen no debe superar los 5MB")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if contentType == "" || contentType == fiber.MIMEOctetStream {
		f, err := fh.Open()
		if err != nil {
			return internalError(c, "FormFile.Open", err)
		}
		head := make([]byte, 512)
		n, _ := f.Read(head)
		f.Close()
		contentType = http.DetectContentType(head[:n])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return respondError(c, fiber.StatusBadRequest, "Solo se permiten archivos de imagen")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = "." + strings.TrimPrefix(contentType, "image/")
	}
	name := cliente.ID + ext
	if h.deps.PhotoDir != "" {
		if err := os.MkdirAll(h.deps.PhotoDir, 0o755); err != nil {
			return internalError(c, "MkdirAll", err)
		}
		if err := c.SaveFile(fh, filepath.Join(h.deps.PhotoDir, name)); err != nil {
			return internalError(c, "SaveFile", err)
		}
	}

	cliente.PathFoto = PhotoURLPrefix + name
	if err := h.deps.Store.UpdateCliente(c.UserContext(), cliente); err != nil {
		return internalError(c, "UpdateCliente", err)
	}
	log.Printf("📷 Foto actualizada para cliente %s (%s, %d bytes)", cliente.ID, contentType, fh.Size)
	return ok(c, "Foto actualizada exitosamente", []models.FotoRespuesta{{PathFoto: cliente.PathFoto}})
}
