package auth

import (
	"context"
	"strings"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/validation"
)

// ============================================================================
// Olvidé mi contraseña
// ============================================================================

type ForgotPasswordFlow struct {
	poster *parametroPoster
}

func NewForgotPasswordFlow(d Deps) *ForgotPasswordFlow {
	return &ForgotPasswordFlow{
		poster: apiclient.NewPoster[models.Parametro, genericResponse](d.Client, EndpointRecovery),
	}
}

func (f *ForgotPasswordFlow) Loading() bool {
	return f.poster.Loading()
}

// Submit pide el correo de recuperación para email.
func (f *ForgotPasswordFlow) Submit(ctx context.Context, email string) (notify.Outcome, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail("email", email); err != nil {
		errs := validation.Errors{}
		errs.AddErr(err)
		return notify.Outcome{}, errs
	}

	resp, err := f.poster.Post(ctx, models.Parametro{Parametro: email})
	if err != nil {
		return notify.Outcome{Toast: dangerToast("Error", "Error al enviar el correo. Por favor, intenta nuevamente.")}, nil
	}
	if !resp.Exito {
		return notify.Outcome{Toast: dangerToast("Error", failureMessage(resp, "Error al enviar el correo. Por favor, intenta nuevamente."))}, nil
	}
	return notify.Outcome{
		Toast:    successToast("Revisa la bandeja de tu correo electrónico...", "Se ha enviado un correo con instrucciones para recuperar tu contraseña"),
		Redirect: RouteLogin,
	}, nil
}

// ============================================================================
// Restablecer contraseña
// ============================================================================

type resetPoster = apiclient.Poster[models.ResetPassword, genericResponse]

const resetFailed = "Error al restablecer la contraseña. Por favor, intenta nuevamente."

// ResetPasswordFlow fija una contraseña nueva desde el enlace de recuperación.
type ResetPasswordFlow struct {
	deps   Deps
	user   string
	email  string
	token  string
	poster *resetPoster
}

// NewResetPasswordFlow recibe los parámetros user, email y token de la ruta.
func NewResetPasswordFlow(d Deps, user, email, token string) *ResetPasswordFlow {
	return &ResetPasswordFlow{
		deps:   d,
		user:   user,
		email:  email,
		token:  token,
		poster: apiclient.NewPoster[models.ResetPassword, genericResponse](d.Client, EndpointResetPassword),
	}
}

// NombreUsuario es el usuario mostrado (solo lectura) en el formulario.
func (f *ResetPasswordFlow) NombreUsuario() string {
	return f.user
}

func (f *ResetPasswordFlow) Submit(ctx context.Context, password, confirmation string) (notify.Outcome, error) {
	errs := validation.Errors{}
	f.deps.Policy.ValidatePasswordPair(errs, "contrasenia", "confirmacionContrasenia", password, confirmation)
	if len(errs) > 0 {
		return notify.Outcome{}, errs
	}

	resp, err := f.poster.Post(ctx, models.ResetPassword{
		Usuario:     f.user,
		Mail:        f.email,
		UKey:        f.token,
		Contrasenia: password,
	})
	if err != nil {
		return notify.Outcome{Toast: dangerToast("Error", resetFailed)}, nil
	}
	if !resp.Exito {
		return notify.Outcome{Toast: dangerToast("Error", failureMessage(resp, resetFailed))}, nil
	}
	return notify.Outcome{
		Toast:    successToast("¡Éxito!", "Contraseña restablecida exitosamente"),
		Redirect: RouteLogin,
	}, nil
}
