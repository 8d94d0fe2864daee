package auth

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
)

const twoFactorServerError = "Error en el servidor, por favor intenta de nuevo"

type verify2FAPoster = apiclient.Poster[models.Verify2FARequest, apiclient.Respuesta[models.Verify2FARespuesta]]

// TwoFactorFlow es el reto de segundo factor. Los dígitos completos se
// envían solos.
type TwoFactorFlow struct {
	deps   Deps
	from   string
	email  string
	poster *verify2FAPoster
	input  *CodeInput

	mu  sync.Mutex
	err string
}

// NewTwoFactorFlow toma el correo de las marcas del reto. Sin reto pendiente
// retorna ErrNoPendingChallenge y el llamador debe mandar a RouteLogin.
func NewTwoFactorFlow(d Deps, from string) (*TwoFactorFlow, error) {
	email := d.Markers.Email()
	if email == "" {
		return nil, ErrNoPendingChallenge
	}
	return &TwoFactorFlow{
		deps:   d,
		from:   from,
		email:  email,
		poster: apiclient.NewPoster[models.Verify2FARequest, apiclient.Respuesta[models.Verify2FARespuesta]](d.Client, EndpointVerify2FA),
		input:  NewCodeInput(AutoSubmit),
	}, nil
}

func (f *TwoFactorFlow) Email() string {
	return f.email
}

// MaskedEmail es el correo que se muestra en pantalla.
func (f *TwoFactorFlow) MaskedEmail() string {
	return MaskEmail(f.email)
}

func (f *TwoFactorFlow) Input() *CodeInput {
	return f.input
}

// Err es el mensaje visible del último intento.
func (f *TwoFactorFlow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *TwoFactorFlow) Loading() bool {
	return f.poster.Loading()
}

// Type escribe un dígito; si completa el código lo verifica. submitted indica
// si hubo llamada.
func (f *TwoFactorFlow) Type(ctx context.Context, index int, value string) (out notify.Outcome, submitted bool) {
	if !f.input.Type(index, value) {
		return notify.Outcome{}, false
	}
	return f.Verify(ctx, f.input.Code()), true
}

// Paste pega el portapapeles; con 6 dígitos verifica de inmediato.
func (f *TwoFactorFlow) Paste(ctx context.Context, raw string) (out notify.Outcome, submitted bool) {
	complete, _ := f.input.Paste(raw)
	if !complete {
		return notify.Outcome{}, false
	}
	return f.Verify(ctx, f.input.Code()), true
}

// Verify envía el código. Si el servidor lo rechaza se limpian las celdas y
// el foco vuelve a la primera.
func (f *TwoFactorFlow) Verify(ctx context.Context, code string) notify.Outcome {
	f.setErr("")

	resp, err := f.poster.Post(ctx, models.Verify2FARequest{Email: f.email, Codigo2FA: code})
	if err != nil {
		f.reject(twoFactorServerError)
		return notify.Outcome{}
	}
	if !resp.Exito {
		f.reject(failureMessage(resp, "Código incorrecto"))
		return notify.Outcome{}
	}

	f.clearMarkers()
	redirect := RouteHome
	if data, ok := resp.First(); ok && data.RedirectURL != "" {
		redirect = data.RedirectURL
	}
	return notify.Outcome{Redirect: redirect}
}

// Cancel abandona el reto y vuelve a la ruta de origen.
func (f *TwoFactorFlow) Cancel() notify.Outcome {
	f.clearMarkers()
	return notify.Outcome{Redirect: redirectOrHome(f.from)}
}

func (f *TwoFactorFlow) clearMarkers() {
	if err := f.deps.Markers.Clear(); err != nil {
		log.Printf("⚠️  No se pudieron limpiar los marcadores de 2FA: %v", err)
	}
}

func (f *TwoFactorFlow) reject(msg string) {
	f.setErr(msg)
	f.input.Clear()
}

func (f *TwoFactorFlow) setErr(msg string) {
	f.mu.Lock()
	f.err = msg
	f.mu.Unlock()
}

// MaskEmail deja los primeros 3 caracteres del usuario: "gam...@hub.mx".
// Si no parece un correo lo retorna igual.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return email
	}
	visible := local
	if r := []rune(local); len(r) > 3 {
		visible = string(r[:3])
	}
	return visible + "...@" + domain
}
