package profile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

// ============================================================================
// Cambio de contraseña
// ============================================================================

// ChangePasswordForm es el modal de cambio de contraseña con la fortaleza
// en vivo.
type ChangePasswordForm struct {
	deps   Deps
	poster *apiclient.Poster[models.ChangePassword, genericResponse]
}

func NewChangePasswordForm(d Deps) *ChangePasswordForm {
	return &ChangePasswordForm{
		deps:   d,
		poster: apiclient.NewPoster[models.ChangePassword, genericResponse](d.Client, EndpointChangePassword),
	}
}

// Strength evalúa la contraseña mientras se escribe.
func (f *ChangePasswordForm) Strength(password string) validation.PasswordStrength {
	return f.deps.Policy.Strength(password)
}

func (f *ChangePasswordForm) Loading() bool {
	return f.poster.Loading()
}

func (f *ChangePasswordForm) Submit(ctx context.Context, password, confirmation string) (notify.Outcome, error) {
	errs := validation.Errors{}
	f.deps.Policy.ValidatePasswordPair(errs, "contrasenia", "confirmacionContrasenia", password, confirmation)
	if len(errs) > 0 {
		return notify.Outcome{}, errs
	}
	userID := session.Value(f.deps.Session.State().ID)
	if userID == "" {
		return notify.Outcome{}, ErrNotAuthenticated
	}

	resp, err := f.poster.Post(ctx, models.ChangePassword{IDUsuario: userID, Contrasenia: password})
	out, _ := result(resp, err,
		"Error al cambiar la contraseña",
		"Contraseña actualizada exitosamente",
		"Error al cambiar la contraseña")
	return out, nil
}

// ============================================================================
// Foto de perfil
// ============================================================================

// MaxPhotoSize es el tamaño máximo de la foto (5MB).
const MaxPhotoSize = 5 * 1024 * 1024

var (
	ErrNotImage      = errors.New("Por favor, selecciona un archivo de imagen válido")
	ErrPhotoTooLarge = errors.New("La imagen no debe superar los 5MB")
)

// Photo es el archivo elegido por el usuario. Sin ContentType se detecta de
// los primeros bytes.
type Photo struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ValidatePhoto revisa tipo image/* y tamaño.
func ValidatePhoto(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	if size > MaxPhotoSize {
		return ErrPhotoTooLarge
	}
	return nil
}

// PhotoUpload sube la foto con multipart a Clientes/SubirFoto.
type PhotoUpload struct {
	poster *apiclient.Poster[struct{}, apiclient.Respuesta[models.FotoRespuesta]]

	mu   sync.Mutex
	path string
}

func NewPhotoUpload(d Deps) *PhotoUpload {
	return &PhotoUpload{
		poster: apiclient.NewPoster[struct{}, apiclient.Respuesta[models.FotoRespuesta]](d.Client, EndpointUploadPhoto),
	}
}

// PathFoto es la ruta devuelta por la última subida exitosa.
func (u *PhotoUpload) PathFoto() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.path
}

// Upload valida y sube la foto. Los errores de tipo y tamaño se muestran
// como toast sin llamar al servidor.
func (u *PhotoUpload) Upload(ctx context.Context, clienteID string, p Photo) (notify.Outcome, error) {
	if p.Content == nil {
		return notify.Outcome{}, fmt.Errorf("foto sin contenido")
	}
	content := bufio.NewReader(p.Content)
	contentType := p.ContentType
	if contentType == "" {
		head, _ := content.Peek(512)
		contentType = http.DetectContentType(head)
	}
	if err := ValidatePhoto(contentType, p.Size); err != nil {
		return notify.Outcome{Toast: dangerToast(err.Error())}, nil
	}

	resp, err := u.poster.PostMultipart(ctx, apiclient.MultipartForm{
		Fields: map[string]string{"idCliente": clienteID},
		Files: []apiclient.FilePart{{
			Field:       "foto",
			FileName:    p.Name,
			ContentType: contentType,
			Content:     io.LimitReader(content, MaxPhotoSize+1),
		}},
	})
	out, ok := result(resp, err,
		"Error al subir la foto",
		"Foto actualizada exitosamente",
		"Error al subir la foto")
	if ok {
		if data, found := resp.First(); found {
			u.mu.Lock()
			u.path = data.PathFoto
			u.mu.Unlock()
		}
	}
	return out, nil
}

// ============================================================================
// Doble factor
// ============================================================================

// TwoFactorToggle activa o desactiva el 2FA del usuario en sesión.
type TwoFactorToggle struct {
	deps   Deps
	poster *apiclient.Poster[models.Toggle2FA, genericResponse]
}

func NewTwoFactorToggle(d Deps) *TwoFactorToggle {
	return &TwoFactorToggle{
		deps:   d,
		poster: apiclient.NewPoster[models.Toggle2FA, genericResponse](d.Client, EndpointConfigure2FA),
	}
}

// Enabled lee el estado de la sesión.
func (t *TwoFactorToggle) Enabled() bool {
	return t.deps.Session.State().Verificar2FA
}

// Set envía el cambio y, si el servidor lo acepta, actualiza la sesión.
func (t *TwoFactorToggle) Set(ctx context.Context, enabled bool) (notify.Outcome, error) {
	userID := session.Value(t.deps.Session.State().ID)
	if userID == "" {
		return notify.Outcome{}, ErrNotAuthenticated
	}

	okMsg := "Doble factor de autenticación desactivado"
	if enabled {
		okMsg = "Doble factor de autenticación activado"
	}
	resp, err := t.poster.Post(ctx, models.Toggle2FA{IDUsuario: userID, Activo: enabled})
	out, ok := result(resp, err,
		"Error al configurar el doble factor",
		okMsg,
		"Error al configurar el doble factor")
	if !ok {
		return out, nil
	}
	if err := t.deps.Session.SetVerificar2FA(enabled); err != nil {
		return out, err
	}
	return out, nil
}
