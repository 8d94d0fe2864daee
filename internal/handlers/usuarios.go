package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/pgpchub/internal/debug"
	"github.com/yourorg/pgpchub/internal/middleware"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/otp"
	"github.com/yourorg/pgpchub/internal/store"
	"github.com/yourorg/pgpchub/internal/validation"
)

const (
	msgBadCredentials = "Usuario o contraseña incorrectos"
	msgNotVerified    = "Tu cuenta no ha sido verificada. Revisa tu correo"
	msgInactiveSocial = "Tu cuenta está inactiva. Contacta a soporte para reactivarla"
)

// maxFailedLogins bloquea la cuenta hasta restablecer la contraseña.
const maxFailedLogins = 5

// otpMessage traduce los errores del almacén de códigos.
func otpMessage(err error) string {
	switch {
	case errors.Is(err, otp.ErrInvalidCode):
		return "El código es incorrecto"
	case errors.Is(err, otp.ErrTooManyAttempts):
		return "Demasiados intentos fallidos. Solicita un nuevo código"
	default:
		return "El código expiró. Solicita uno nuevo"
	}
}

func userResponse(u *models.User, token string) models.UsuarioRespuesta {
	return models.UsuarioRespuesta{
		ID:            u.ID,
		NombreUsuario: u.NombreUsuario,
		Mail:          u.Mail,
		Verificar2FA:  u.Auth2FA,
		Token:         token,
		UKey:          u.UKey,
		Activo:        u.Activo,
	}
}

// ============================================================================
// LOGIN
// ============================================================================

// Login maneja POST /api/usuarios/login. Sin contraseña solo entran cuentas
// registradas con red social.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	ctx := c.UserContext()
	social := req.Pass == ""

	if !social && strings.TrimSpace(req.CaptchaToken) == "" {
		return fail(c, "Captcha inválido, intenta de nuevo")
	}

	user, err := h.deps.Store.UserByLogin(ctx, req.Usuario)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, msgBadCredentials)
		}
		return internalError(c, "UserByLogin", err)
	}

	if social {
		if !user.EsRedSocial {
			return fail(c, msgBadCredentials)
		}
		if !user.Activo {
			return ok(c, msgInactiveSocial, userResponse(user, ""))
		}
	} else {
		if user.FailedLogins >= maxFailedLogins {
			return fail(c, "Cuenta bloqueada por intentos fallidos. Restablece tu contraseña")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Pass)); err != nil {
			user.FailedLogins++
			if err := h.deps.Store.UpdateUser(ctx, user); err != nil {
				log.Printf("⚠️ No se pudo registrar el intento fallido de %s: %v", user.ID, err)
			}
			debug.LogWarn("login fallido", map[string]interface{}{"usuario": user.NombreUsuario, "intentos": user.FailedLogins})
			return fail(c, msgBadCredentials)
		}
		if !user.Activo {
			return fail(c, msgNotVerified)
		}
		if user.FailedLogins > 0 {
			user.FailedLogins = 0
			if err := h.deps.Store.UpdateUser(ctx, user); err != nil {
				log.Printf("⚠️ No se pudo reiniciar intentos de %s: %v", user.ID, err)
			}
		}
	}

	if user.Auth2FA {
		code, err := h.deps.OTP.Generate(otp.PurposeTwoFactor, strings.ToLower(user.Mail))
		if err != nil {
			return internalError(c, "Generate2FA", err)
		}
		h.deps.Mailbox.Send(user.Mail, "Código de acceso",
			fmt.Sprintf("Tu código de verificación es %s", code), code)
	}

	token, _, err := middleware.IssueToken(h.deps.JWTSecret, h.deps.TokenTTL, user.ID, user.NombreUsuario, user.Mail)
	if err != nil {
		return internalError(c, "IssueToken", err)
	}
	log.Printf("✅ Login: %s (2FA=%v, social=%v)", user.NombreUsuario, user.Auth2FA, social)
	c.Set("Cache-Control", "no-store")
	return ok(c, "Acceso exitoso", userResponse(user, token))
}

// Verify2FA maneja POST /api/usuarios/verificarCodigo2FA.
func (h *Handler) Verify2FA(c *fiber.Ctx) error {
	var req models.Verify2FARequest
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	if err := h.deps.OTP.Verify(otp.PurposeTwoFactor, strings.ToLower(strings.TrimSpace(req.Email)), req.Codigo2FA); err != nil {
		return fail(c, otpMessage(err))
	}
	return ok(c, "Código verificado", models.Verify2FARespuesta{RedirectURL: "/"})
}

// ============================================================================
// REGISTRO Y VERIFICACIÓN DE CUENTA
// ============================================================================

// Register maneja POST /api/usuarios/agregar. Las cuentas de red social no
// llevan contraseña y quedan activas de inmediato.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegistroUsuario
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	req.Email = strings.TrimSpace(req.Email)
	req.GamerTag = strings.TrimSpace(req.GamerTag)

	user := &models.User{
		NombreUsuario: req.GamerTag,
		Mail:          req.Email,
		UKey:          uuid.NewString(),
		EsRedSocial:   req.EsRedSocial,
		Activo:        req.EsRedSocial,
		MailVerified:  req.EsRedSocial,
	}

	if !req.EsRedSocial {
		errs := validation.Errors{}
		errs.AddErr(validation.ValidateEmailConfirmation("confirmacionEMail", req.Email, req.ConfirmacionEMail))
		h.deps.Policy.ValidatePasswordPair(errs, "contrasenia", "confirmacionContrasenia", req.Contrasenia, req.ConfirmacionContrasenia)
		if len(errs) > 0 {
			return respondError(c, fiber.StatusBadRequest, errorsMessage(errs))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Contrasenia), bcrypt.DefaultCost)
		if err != nil {
			return internalError(c, "bcrypt", err)
		}
		user.PasswordHash = string(hash)
	}

	ctx := c.UserContext()
	if err := h.deps.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fail(c, "El correo o el gamertag ya están registrados")
		}
		return internalError(c, "CreateUser", err)
	}
	if err := h.deps.Store.CreateCliente(ctx, &models.Cliente{IDUsuario: user.ID}); err != nil {
		return internalError(c, "CreateCliente", err)
	}

	if req.EsRedSocial {
		log.Printf("✅ Usuario de red social registrado: %s", user.NombreUsuario)
		return ok(c, "¡Registro exitoso! Ya puedes iniciar sesión", models.RegistroRespuesta{UKey: user.UKey})
	}
	if err := h.sendVerificationCode(user); err != nil {
		return internalError(c, "sendVerificationCode", err)
	}
	log.Printf("✅ Usuario registrado: %s (pendiente de verificar)", user.NombreUsuario)
	return ok(c, "Registro exitoso. Te enviamos un código a tu correo", models.RegistroRespuesta{UKey: user.UKey})
}

func (h *Handler) sendVerificationCode(user *models.User) error {
	code, err := h.deps.OTP.Generate(otp.PurposeVerify, user.UKey)
	if err != nil {
		return err
	}
	h.deps.Mailbox.Send(user.Mail, "Verifica tu cuenta",
		fmt.Sprintf("Hola %s, tu código de verificación es %s", user.NombreUsuario, code), code)
	return nil
}

// ConfirmEmail maneja POST /api/usuarios/ConfirmarCorreo.
func (h *Handler) ConfirmEmail(c *fiber.Ctx) error {
	var req models.VerifyAccount
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	ctx := c.UserContext()
	user, err := h.deps.Store.UserByUKey(ctx, req.UKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, "El enlace de verificación no es válido")
		}
		return internalError(c, "UserByUKey", err)
	}
	if user.MailVerified {
		return ok(c, "La cuenta ya estaba verificada", nil)
	}
	if err := h.deps.OTP.Verify(otp.PurposeVerify, user.UKey, req.Codigo); err != nil {
		return fail(c, otpMessage(err))
	}

	user.MailVerified = true
	user.Activo = true
	if err := h.deps.Store.UpdateUser(ctx, user); err != nil {
		return internalError(c, "UpdateUser", err)
	}
	return ok(c, "Cuenta verificada exitosamente", nil)
}

// ResendCode maneja POST /api/usuarios/reenvioCodigo; el parámetro es el uKey.
func (h *Handler) ResendCode(c *fiber.Ctx) error {
	var req models.Parametro
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	user, err := h.deps.Store.UserByUKey(c.UserContext(), req.Parametro)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, "El enlace de verificación no es válido")
		}
		return internalError(c, "UserByUKey", err)
	}
	if user.MailVerified {
		return fail(c, "La cuenta ya está verificada")
	}
	if err := h.sendVerificationCode(user); err != nil {
		return internalError(c, "sendVerificationCode", err)
	}
	return ok(c, "Se envió un nuevo código a tu correo", nil)
}

// ============================================================================
// CONTRASEÑAS
// ============================================================================

// RecoveryPassword maneja POST /api/usuarios/recoveryPassword; el parámetro es
// el correo. Rota el uKey y envía el enlace de restablecimiento.
func (h *Handler) RecoveryPassword(c *fiber.Ctx) error {
	var req models.Parametro
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	ctx := c.UserContext()
	user, err := h.deps.Store.UserByLogin(ctx, req.Parametro)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, "El correo no está registrado")
		}
		return internalError(c, "UserByLogin", err)
	}
	if user.EsRedSocial && user.PasswordHash == "" {
		return fail(c, "Esta cuenta inicia sesión con red social")
	}

	user.UKey = uuid.NewString()
	if err := h.deps.Store.UpdateUser(ctx, user); err != nil {
		return internalError(c, "UpdateUser", err)
	}
	link := "/resetPassword?" + url.Values{
		"user":  {user.NombreUsuario},
		"email": {user.Mail},
		"token": {user.UKey},
	}.Encode()
	h.deps.Mailbox.Send(user.Mail, "Restablece tu contraseña",
		"Para restablecer tu contraseña entra a "+link, user.UKey)
	return ok(c, "Te enviamos un correo con las instrucciones para restablecer tu contraseña", nil)
}

// ResetPassword maneja POST /api/usuarios/restablecerContrasenia.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPassword
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	if msg := h.deps.Policy.ValidatePassword(req.Contrasenia); msg != "" {
		return respondError(c, fiber.StatusBadRequest, msg)
	}
	ctx := c.UserContext()
	user, err := h.deps.Store.UserByUKey(ctx, req.UKey)
	if err != nil || !strings.EqualFold(user.Mail, strings.TrimSpace(req.Mail)) {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return internalError(c, "UserByUKey", err)
		}
		return fail(c, "El enlace para restablecer la contraseña no es válido o ya fue usado")
	}
	if err := h.setPassword(c, user, req.Contrasenia); err != nil {
		return internalError(c, "setPassword", err)
	}
	return ok(c, "Contraseña restablecida exitosamente", nil)
}

// ChangePassword maneja POST /api/usuarios/cambiarContrasenia (con sesión).
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var req models.ChangePassword
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	if req.IDUsuario != middleware.UserID(c) {
		return respondError(c, fiber.StatusForbidden, "No tienes permiso sobre este usuario")
	}
	if msg := h.deps.Policy.ValidatePassword(req.Contrasenia); msg != "" {
		return respondError(c, fiber.StatusBadRequest, msg)
	}
	user, err := h.deps.Store.UserByID(c.UserContext(), req.IDUsuario)
	if err != nil {
		return internalError(c, "UserByID", err)
	}
	if err := h.setPassword(c, user, req.Contrasenia); err != nil {
		return internalError(c, "setPassword", err)
	}
	return ok(c, "Contraseña actualizada exitosamente", nil)
}

// setPassword guarda el hash, rota el uKey y desbloquea la cuenta.
func (h *Handler) setPassword(c *fiber.Ctx, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UKey = uuid.NewString()
	user.FailedLogins = 0
	return h.deps.Store.UpdateUser(c.UserContext(), user)
}

// Configure2FA maneja POST /api/usuarios/configurar2FA (con sesión).
func (h *Handler) Configure2FA(c *fiber.Ctx) error {
	var req models.Toggle2FA
	if ok, err := h.parse(c, &req); !ok {
		return err
	}
	if req.IDUsuario != middleware.UserID(c) {
		return respondError(c, fiber.StatusForbidden, "No tienes permiso sobre este usuario")
	}
	ctx := c.UserContext()
	user, err := h.deps.Store.UserByID(ctx, req.IDUsuario)
	if err != nil {
		return internalError(c, "UserByID", err)
	}
	user.Auth2FA = req.Activo
	if err := h.deps.Store.UpdateUser(ctx, user); err != nil {
		return internalError(c, "UpdateUser", err)
	}
	if req.Activo {
		return ok(c, "Doble factor de autenticación activado", nil)
	}
	return ok(c, "Doble factor de autenticación desactivado", nil)
}
