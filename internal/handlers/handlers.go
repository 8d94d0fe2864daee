// ============================================================================
// HANDLERS - API REST del backend de desarrollo
// ============================================================================
// Implementa el contrato que consume el cliente de la tienda: usuarios,
// clientes, direcciones, datos de facturación, códigos postales y ofertas.
//
// Todas las respuestas usan el sobre {exito, mensaje, error, data}:
//   - 200 + exito=true: operación exitosa
//   - 200 + exito=false: regla de negocio (credenciales, código incorrecto...)
//   - 4xx/5xx + exito=false: petición mal formada, sesión, permisos o falla
// ============================================================================

package handlers

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/pgpchub/internal/cache"
	"github.com/yourorg/pgpchub/internal/debug"
	"github.com/yourorg/pgpchub/internal/middleware"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/otp"
	"github.com/yourorg/pgpchub/internal/store"
	"github.com/yourorg/pgpchub/internal/validation"
)

// Deps son las dependencias del backend.
type Deps struct {
	Store     store.Store
	OTP       *otp.Store
	Mailbox   *debug.Mailbox
	JWTSecret []byte
	TokenTTL  time.Duration
	// PhotoDir es donde se guardan las fotos de perfil ("" = no se escriben).
	PhotoDir string
	// Policy es la política de contraseñas del servidor.
	Policy validation.PasswordPolicy
}

// Handler agrupa los endpoints.
type Handler struct {
	deps     Deps
	validate *validator.Validate
	colonias *cache.Cache[[]models.Colonia]
}

// New crea el handler. Close detiene el caché de colonias.
func New(d Deps) *Handler {
	if d.TokenTTL <= 0 {
		d.TokenTTL = 24 * time.Hour
	}
	if d.Policy.MinLength <= 0 {
		d.Policy.MinLength = 8
	}
	if d.Mailbox == nil {
		d.Mailbox = debug.NewMailbox(0)
	}
	if d.OTP == nil {
		d.OTP = otp.NewStore(10 * time.Minute)
	}
	return &Handler{
		deps:     d,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		colonias: cache.New[[]models.Colonia](30*time.Minute, 10*time.Minute),
	}
}

func (h *Handler) Close() {
	h.colonias.Stop()
}

// Mailbox expone el buzón de desarrollo.
func (h *Handler) Mailbox() *debug.Mailbox {
	return h.deps.Mailbox
}

// respuesta es el sobre común de la API.
type respuesta struct {
	Exito   bool        `json:"exito"`
	Mensaje string      `json:"mensaje,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data"`
}

func ok(c *fiber.Ctx, mensaje string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(respuesta{Exito: true, Mensaje: mensaje, Data: data})
}

// fail es un rechazo de negocio: HTTP 200 con exito=false.
func fail(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(respuesta{Exito: false, Error: msg})
}

func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(respuesta{Exito: false, Error: msg})
}

func internalError(c *fiber.Ctx, where string, err error) error {
	log.Printf("❌ %s: %v", where, err)
	debug.LogError(where, map[string]interface{}{"error": err.Error()})
	return respondError(c, fiber.StatusInternalServerError, "Error interno del servidor")
}

// parse decodifica el cuerpo JSON y aplica las etiquetas validate. Con false
// la respuesta 400 ya fue enviada y err es el resultado del envío.
func (h *Handler) parse(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, respondError(c, fiber.StatusBadRequest, "JSON inválido")
	}
	if err := h.validate.Struct(out); err != nil {
		return false, respondError(c, fiber.StatusBadRequest, validationMessage(err))
	}
	return true, nil
}

// validationMessage traduce validator.ValidationErrors a un mensaje legible.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Datos inválidos"
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerCamel(fe.Field())
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s es requerido", field))
		case "email":
			details = append(details, fmt.Sprintf("%s no es un correo válido", field))
		case "min", "max", "len":
			details = append(details, fmt.Sprintf("%s tiene una longitud inválida", field))
		default:
			details = append(details, fmt.Sprintf("%s es inválido", field))
		}
	}
	return "Datos inválidos: " + strings.Join(details, ", ")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// errorsMessage une los mensajes de validation.Errors en orden de campo.
func errorsMessage(errs validation.Errors) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, errs[f])
	}
	return strings.Join(msgs, ". ")
}

// ownCliente carga el cliente del usuario autenticado y verifica que sea
// idCliente (si viene). Con nil la respuesta de error ya fue enviada.
func (h *Handler) ownCliente(c *fiber.Ctx, idCliente string) (*models.Cliente, error) {
	cliente, err := h.deps.Store.ClienteByUsuario(c.UserContext(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, respondError(c, fiber.StatusNotFound, "Cliente no encontrado")
		}
		return nil, internalError(c, "ClienteByUsuario", err)
	}
	if idCliente != "" && cliente.ID != idCliente {
		return nil, respondError(c, fiber.StatusForbidden, "No tienes permiso sobre este cliente")
	}
	return cliente, nil
}
