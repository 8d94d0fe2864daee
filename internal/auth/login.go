package auth

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/validation"
)

// LoginState es el estado del flujo de login.
type LoginState int

const (
	LoginIdle LoginState = iota
	LoginSubmitting
	LoginSuccessTwoFactor
	LoginSuccess
	LoginFailed
)

func (s LoginState) String() string {
	switch s {
	case LoginSubmitting:
		return "submitting"
	case LoginSuccessTwoFactor:
		return "success_2fa"
	case LoginSuccess:
		return "success"
	case LoginFailed:
		return "failed"
	default:
		return "idle"
	}
}

// LoginForm son los datos capturados en el formulario.
type LoginForm struct {
	Usuario    string
	Pass       string
	RememberMe bool
}

// LoginFlow: Idle -> Submitting -> SuccessTwoFactor | Success | Failed.
type LoginFlow struct {
	deps   Deps
	from   string
	poster *loginPoster

	mu      sync.Mutex
	state   LoginState
	captcha string
}

// NewLoginFlow crea el flujo. from es la ruta a la que se quería ir antes de
// pedir login ("" = inicio).
func NewLoginFlow(d Deps, from string) *LoginFlow {
	return &LoginFlow{
		deps:   d,
		from:   from,
		poster: apiclient.NewPoster[models.LoginRequest, loginResponse](d.Client, EndpointLogin),
	}
}

// LoadRemembered llena el formulario con el usuario recordado, si hay.
func (f *LoginFlow) LoadRemembered() LoginForm {
	if f.deps.Remember == nil {
		return LoginForm{}
	}
	r, ok := f.deps.Remember.Load()
	if !ok {
		return LoginForm{}
	}
	return LoginForm{Usuario: r.Usuario, RememberMe: true}
}

// SetCaptcha guarda el token del captcha resuelto. Es de un solo uso.
func (f *LoginFlow) SetCaptcha(token string) {
	f.mu.Lock()
	f.captcha = token
	f.mu.Unlock()
}

func (f *LoginFlow) Captcha() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captcha
}

func (f *LoginFlow) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *LoginFlow) Loading() bool {
	return f.poster.Loading()
}

// Validate revisa usuario, contraseña y captcha sin tocar la red.
func (f *LoginFlow) Validate(form LoginForm) error {
	errs := validation.Errors{}
	errs.AddErr(validation.Required("usuario", form.Usuario, "El usuario es requerido"))
	if form.Pass == "" {
		errs.Add("pass", "La contraseña es requerida")
	}
	if len(errs) > 0 {
		return errs
	}
	if f.Captcha() == "" {
		return ErrCaptchaRequired
	}
	return nil
}

// Submit envía las credenciales. Con validación fallida no hay llamada y se
// retorna el error. Cualquier intento enviado consume el captcha.
func (f *LoginFlow) Submit(ctx context.Context, form LoginForm) (notify.Outcome, error) {
	if err := f.Validate(form); err != nil {
		return notify.Outcome{}, err
	}

	f.mu.Lock()
	if f.state == LoginSubmitting {
		f.mu.Unlock()
		return notify.Outcome{}, ErrInProgress
	}
	f.state = LoginSubmitting
	captcha := f.captcha
	f.captcha = ""
	f.mu.Unlock()

	req := models.LoginRequest{
		Usuario:      strings.TrimSpace(form.Usuario),
		Pass:         form.Pass,
		CaptchaToken: captcha,
	}
	resp, err := f.poster.Post(ctx, req)
	if err != nil {
		log.Printf("❌ Login falló: %v", err)
		f.setState(LoginFailed)
		return notify.Outcome{Toast: dangerToast(headerNotificacion, f.poster.Err())}, nil
	}
	if !resp.Exito {
		f.setState(LoginFailed)
		return notify.Outcome{Toast: dangerToast(headerNotificacion, failureMessage(resp, "Usuario o contraseña incorrectos"))}, nil
	}

	user, ok := resp.First()
	if !ok {
		f.setState(LoginFailed)
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Respuesta inválida del servidor")}, nil
	}

	redirect, err := startSession(f.deps, user, f.from)
	if err != nil {
		f.setState(LoginFailed)
		return notify.Outcome{}, err
	}
	if f.deps.Remember != nil {
		if err := f.deps.Remember.Save(req.Usuario, form.RememberMe); err != nil {
			log.Printf("⚠️  No se pudo guardar recordarme: %v", err)
		}
	}

	if user.Verificar2FA {
		f.setState(LoginSuccessTwoFactor)
	} else {
		f.setState(LoginSuccess)
	}
	return notify.Outcome{
		Toast:    successToast(headerNotificacion, "Acceso exitoso! Redirigiendo... "),
		Redirect: redirect,
	}, nil
}

func (f *LoginFlow) setState(s LoginState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}
