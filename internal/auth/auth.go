// ============================================================================
// AUTH - Flujos de autenticación
// ============================================================================
// Login (captcha + recordarme), 2FA, registro, verificación de cuenta,
// recuperación de contraseña y acceso con Google/Facebook.
//
// Los flujos no navegan ni muestran nada por sí mismos: devuelven un
// notify.Outcome que el llamador entrega con notify.Deliver. Los errores de
// validación se devuelven como validation.Errors antes de cualquier llamada;
// los errores de transporte y de negocio (exito=false) viajan en el toast.
// ============================================================================

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

// Rutas de la app
const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteVerify2FA      = "/verify2fa"
	RouteVerifyAccount  = "/verifyAccount"
	RouteRegisterSocial = "/registersocial"
	RouteProfile        = "/profile"
)

// Endpoints de usuarios
const (
	EndpointLogin         = "usuarios/login"
	EndpointRegister      = "usuarios/agregar"
	EndpointConfirmEmail  = "usuarios/ConfirmarCorreo"
	EndpointResendCode    = "usuarios/reenvioCodigo"
	EndpointRecovery      = "usuarios/recoveryPassword"
	EndpointResetPassword = "usuarios/restablecerContrasenia"
	EndpointVerify2FA     = "usuarios/verificarCodigo2FA"
)

const headerNotificacion = "Notificación!"

var (
	ErrCaptchaRequired    = errors.New("Por favor, completa el captcha para continuar")
	ErrNoPendingChallenge = errors.New("no hay un reto 2FA pendiente")
	ErrInProgress         = errors.New("ya hay una petición en curso")
	ErrNoCredential       = errors.New("No se recibió credencial")
	ErrSocialEmailMissing = errors.New("No se pudo obtener el email del usuario")
)

// Deps son las dependencias compartidas por los flujos.
type Deps struct {
	Client   *apiclient.Client
	Graph    *apiclient.Client
	Session  *session.Store
	Tokens   *session.Tokens
	Remember *session.RememberStore
	Markers  *session.TwoFactorMarkers
	Policy   validation.PasswordPolicy
}

type (
	loginResponse    = apiclient.Respuesta[models.UsuarioRespuesta]
	loginPoster      = apiclient.Poster[models.LoginRequest, loginResponse]
	genericResponse  = apiclient.Respuesta[json.RawMessage]
	parametroPoster  = apiclient.Poster[models.Parametro, genericResponse]
	registerResponse = apiclient.Respuesta[models.RegistroRespuesta]
)

// startSession guarda la sesión y el token del usuario autenticado. Si el
// usuario requiere 2FA deja las marcas del reto y retorna RouteVerify2FA;
// si no, from (o RouteHome).
func startSession(d Deps, user models.UsuarioRespuesta, from string) (string, error) {
	if err := d.Session.SetAuth(user.ID, user.Mail, user.NombreUsuario, user.Verificar2FA, user.UKey); err != nil {
		return "", err
	}
	if err := d.Tokens.Set(user.Token); err != nil {
		return "", fmt.Errorf("guardar token: %w", err)
	}
	if user.Verificar2FA {
		if err := d.Markers.Begin(user.Mail); err != nil {
			return "", fmt.Errorf("iniciar reto 2FA: %w", err)
		}
		return RouteVerify2FA, nil
	}
	return redirectOrHome(from), nil
}

// Logout limpia la sesión y el token y manda al login.
func Logout(d Deps) (notify.Outcome, error) {
	if err := d.Session.ClearAuth(); err != nil {
		return notify.Outcome{}, err
	}
	if err := d.Tokens.Clear(); err != nil {
		return notify.Outcome{}, err
	}
	return notify.Outcome{Redirect: RouteLogin}, nil
}

func redirectOrHome(from string) string {
	if from == "" {
		return RouteHome
	}
	return from
}

func withQuery(route string, params url.Values) string {
	return route + "?" + params.Encode()
}

func successToast(header, message string) *notify.Toast {
	t := notify.Success(header, message)
	return &t
}

func dangerToast(header, message string) *notify.Toast {
	t := notify.Danger(header, message)
	return &t
}

// failureMessage retorna el error del servidor, o el mensaje, o fallback.
func failureMessage[T any](r *apiclient.Respuesta[T], fallback string) string {
	if r == nil {
		return fallback
	}
	return r.MessageOr(fallback)
}
