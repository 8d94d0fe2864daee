package auth

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
)

// GoogleClaims es el payload del ID token de Google que usa la tienda.
type GoogleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// FacebookUser es la respuesta de /me del Graph API.
type FacebookUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SocialFlow canjea la identidad de Google o Facebook por una sesión de la
// tienda usando usuarios/login con el correo del proveedor y contraseña vacía.
// Si el usuario no existe se manda a completar el registro.
type SocialFlow struct {
	deps   Deps
	from   string
	poster *loginPoster
}

func NewSocialFlow(d Deps, from string) *SocialFlow {
	return &SocialFlow{
		deps:   d,
		from:   from,
		poster: apiclient.NewPoster[models.LoginRequest, loginResponse](d.Client, EndpointLogin),
	}
}

// DecodeGoogleCredential lee el payload del ID token sin verificar la firma;
// la verificación es del backend.
func DecodeGoogleCredential(credential string) (*GoogleClaims, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrNoCredential
	}
	claims := &GoogleClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("decodificar credencial de Google: %w", err)
	}
	return claims, nil
}

// Google inicia sesión con la credencial (ID token) del botón de Google.
func (f *SocialFlow) Google(ctx context.Context, credential string) (notify.Outcome, error) {
	claims, err := DecodeGoogleCredential(credential)
	if err != nil {
		log.Printf("❌ Login con Google: %v", err)
		return notify.Outcome{}, err
	}
	if claims.Email == "" {
		return notify.Outcome{}, ErrSocialEmailMissing
	}

	resp, err := f.poster.Post(ctx, models.LoginRequest{Usuario: claims.Email})
	if err != nil {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Error al iniciar sesión con Google")}, nil
	}
	if !resp.Exito {
		return notify.Outcome{Redirect: registerSocialRoute(claims.Email)}, nil
	}

	user, ok := resp.First()
	if !ok {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Error al iniciar sesión con Google")}, nil
	}
	redirect, err := startSession(f.deps, user, f.from)
	if err != nil {
		return notify.Outcome{}, err
	}
	return notify.Outcome{Redirect: redirect}, nil
}

// FetchFacebookUser consulta /me con el access token del SDK.
func (f *SocialFlow) FetchFacebookUser(ctx context.Context, accessToken string) (*FacebookUser, error) {
	if f.deps.Graph == nil {
		return nil, fmt.Errorf("cliente de Graph API no configurado")
	}
	params := url.Values{
		"fields":       {"name,email,picture"},
		"access_token": {accessToken},
	}
	var user FacebookUser
	if err := f.deps.Graph.Get(ctx, "me?"+params.Encode(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Facebook inicia sesión con el access token del SDK de Facebook. Una cuenta
// existente pero inactiva solo muestra el mensaje del servidor.
func (f *SocialFlow) Facebook(ctx context.Context, accessToken string) (notify.Outcome, error) {
	if strings.TrimSpace(accessToken) == "" {
		return notify.Outcome{}, ErrNoCredential
	}
	fbUser, err := f.FetchFacebookUser(ctx, accessToken)
	if err != nil {
		log.Printf("❌ Login con Facebook: %v", err)
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Error al iniciar sesión con Facebook")}, nil
	}
	if fbUser.Email == "" {
		return notify.Outcome{}, ErrSocialEmailMissing
	}

	resp, err := f.poster.Post(ctx, models.LoginRequest{Usuario: fbUser.Email})
	if err != nil {
		return notify.Outcome{Toast: dangerToast(headerNotificacion, "Error al iniciar sesión con Facebook")}, nil
	}
	if !resp.Exito {
		return notify.Outcome{Redirect: registerSocialRoute(fbUser.Email)}, nil
	}

	user, _ := resp.First()
	if !user.Activo {
		return notify.Outcome{Toast: successToast(headerNotificacion, resp.Mensaje)}, nil
	}
	redirect, err := startSession(f.deps, user, f.from)
	if err != nil {
		return notify.Outcome{}, err
	}
	return notify.Outcome{
		Toast:    successToast(headerNotificacion, resp.Mensaje),
		Redirect: redirect,
	}, nil
}

func registerSocialRoute(email string) string {
	return withQuery(RouteRegisterSocial, url.Values{"email": {email}})
}
