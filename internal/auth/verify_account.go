package auth

import (
	"context"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
)

type verifyAccountPoster = apiclient.Poster[models.VerifyAccount, genericResponse]

// VerifyAccountFlow confirma el correo con el código enviado. El código se
// envía con el botón, no al completarse.
type VerifyAccountFlow struct {
	token  string
	user   string
	input  *CodeInput
	verify *verifyAccountPoster
	resend *parametroPoster
}

// NewVerifyAccountFlow recibe los parámetros token (uKey) y user de la ruta.
func NewVerifyAccountFlow(d Deps, token, user string) *VerifyAccountFlow {
	return &VerifyAccountFlow{
		token:  token,
		user:   user,
		input:  NewCodeInput(SubmitGated),
		verify: apiclient.NewPoster[models.VerifyAccount, genericResponse](d.Client, EndpointConfirmEmail),
		resend: apiclient.NewPoster[models.Parametro, genericResponse](d.Client, EndpointResendCode),
	}
}

func (f *VerifyAccountFlow) Input() *CodeInput {
	return f.input
}

func (f *VerifyAccountFlow) Loading() bool {
	return f.verify.Loading() || f.resend.Loading()
}

// Paste reparte el texto pegado; sin dígitos muestra el error.
func (f *VerifyAccountFlow) Paste(raw string) notify.Outcome {
	if _, err := f.input.Paste(raw); err != nil {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, err.Error())}
	}
	return notify.Outcome{}
}

// Submit envía el código capturado.
func (f *VerifyAccountFlow) Submit(ctx context.Context) notify.Outcome {
	if !f.input.Complete() {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Capture los 6 dígitos enviados a su correo")}
	}

	resp, err := f.verify.Post(ctx, models.VerifyAccount{
		Codigo:  f.input.Code(),
		Usuario: f.user,
		UKey:    f.token,
	})
	if err != nil {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Error al verificar cuenta: "+f.verify.Err())}
	}
	if !resp.Exito {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, failureMessage(resp, "Hubo un problema al verificar la cuenta"))}
	}
	return notify.Outcome{
		Toast:    successToast(headerNotificacion, resp.Mensaje),
		Redirect: RouteLogin,
	}
}

// Resend pide un nuevo código para el uKey.
func (f *VerifyAccountFlow) Resend(ctx context.Context) notify.Outcome {
	resp, err := f.resend.Post(ctx, models.Parametro{Parametro: f.token})
	if err != nil {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Error al reenviar código")}
	}
	if !resp.Exito {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, failureMessage(resp, "Error al reenviar código"))}
	}
	return notify.Outcome{Toast: successToast(headerNotificacion, resp.Mensaje)}
}
