package auth

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/validation"
)

type registerPoster = apiclient.Poster[models.RegistroUsuario, registerResponse]

// RegisterFlow es el alta de cuenta con correo y contraseña.
type RegisterFlow struct {
	deps   Deps
	poster *registerPoster
}

func NewRegisterFlow(d Deps) *RegisterFlow {
	return &RegisterFlow{
		deps:   d,
		poster: apiclient.NewPoster[models.RegistroUsuario, registerResponse](d.Client, EndpointRegister),
	}
}

// Validate aplica todas las reglas del formulario de registro.
func (f *RegisterFlow) Validate(form models.RegistroUsuario) validation.Errors {
	errs := validation.Errors{}
	errs.AddErr(validation.ValidateEmail("email", form.Email))
	errs.AddErr(validation.ValidateEmailConfirmation("confirmacionEMail", form.Email, form.ConfirmacionEMail))
	f.deps.Policy.ValidatePasswordPair(errs, "contrasenia", "confirmacionContrasenia", form.Contrasenia, form.ConfirmacionContrasenia)
	errs.AddErr(validation.ValidateGamerTag("gamerTag", form.GamerTag))
	return errs
}

func (f *RegisterFlow) Loading() bool {
	return f.poster.Loading()
}

// Submit valida y registra. Con éxito manda a verificar la cuenta con el
// uKey recibido.
func (f *RegisterFlow) Submit(ctx context.Context, form models.RegistroUsuario) (notify.Outcome, error) {
	if errs := f.Validate(form); len(errs) > 0 {
		return notify.Outcome{}, errs
	}
	form.EsRedSocial = false

	resp, err := f.poster.Post(ctx, form)
	if err != nil {
		log.Printf("❌ Registro falló: %v", err)
		return notify.Outcome{Toast: dangerToast(headerNotificacion, f.poster.Err())}, nil
	}
	if !resp.Exito {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, failureMessage(resp, "No se pudo registrar el usuario"))}, nil
	}

	var uKey string
	if data, ok := resp.First(); ok {
		uKey = data.UKey
	}
	return notify.Outcome{
		Toast:    successToast(headerNotificacion, resp.Mensaje),
		Redirect: VerifyAccountRoute(uKey, form.Email),
	}, nil
}

// VerifyAccountRoute arma /verifyAccount?token=<uKey>&user=<email>.
func VerifyAccountRoute(uKey, email string) string {
	return withQuery(RouteVerifyAccount, url.Values{"token": {uKey}, "user": {email}})
}

// ============================================================================
// Registro con red social
// ============================================================================

// RegisterSocialFlow completa el alta de un usuario que llegó por Google o
// Facebook: solo pide el Gamer Tag.
type RegisterSocialFlow struct {
	deps   Deps
	email  string
	poster *registerPoster
}

func NewRegisterSocialFlow(d Deps, email string) *RegisterSocialFlow {
	return &RegisterSocialFlow{
		deps:   d,
		email:  strings.TrimSpace(email),
		poster: apiclient.NewPoster[models.RegistroUsuario, registerResponse](d.Client, EndpointRegister),
	}
}

func (f *RegisterSocialFlow) Email() string {
	return f.email
}

func (f *RegisterSocialFlow) Submit(ctx context.Context, gamerTag string) (notify.Outcome, error) {
	errs := validation.Errors{}
	errs.AddErr(validation.ValidateGamerTag("gamerTag", gamerTag))
	if len(errs) > 0 {
		return notify.Outcome{}, errs
	}

	form := models.RegistroUsuario{
		Email:             f.email,
		ConfirmacionEMail: f.email,
		GamerTag:          strings.TrimSpace(gamerTag),
		EsRedSocial:       true,
	}
	resp, err := f.poster.Post(ctx, form)
	if err != nil {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, f.poster.Err())}, nil
	}
	if !resp.Exito {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, failureMessage(resp, "No se pudo completar el registro"))}, nil
	}
	return notify.Outcome{
		Toast:    successToast(headerNotificacion, resp.Mensaje),
		Redirect: RouteHome,
	}, nil
}
