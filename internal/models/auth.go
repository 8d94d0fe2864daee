package models

// LoginRequest represents credentials provided by the client.
// Social sign-in sends the provider email with an empty password.
type LoginRequest struct {
	Usuario      string `json:"usuario" validate:"required"`
	Pass         string `json:"pass"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}

// UsuarioRespuesta is the user payload returned by usuarios/login.
type UsuarioRespuesta struct {
	ID            string `json:"id"`
	NombreUsuario string `json:"nombreUsuario"`
	Mail          string `json:"mail"`
	Verificar2FA  bool   `json:"verificar2FA"`
	Token         string `json:"token"`
	UKey          string `json:"uKey"`
	Activo        bool   `json:"activo"`
}

// RegistroUsuario holds the data for creating a new account.
type RegistroUsuario struct {
	Email                   string `json:"email" validate:"required,email"`
	ConfirmacionEMail       string `json:"confirmacionEMail"`
	Contrasenia             string `json:"contrasenia"`
	ConfirmacionContrasenia string `json:"confirmacionContrasenia"`
	GamerTag                string `json:"gamerTag" validate:"required,min=6,max=50"`
	EsRedSocial             bool   `json:"esRedSocial"`
}

// RegistroRespuesta carries the opaque key used to verify the new account.
type RegistroRespuesta struct {
	UKey string `json:"uKey"`
}

// VerifyAccount confirms an account with the emailed code.
type VerifyAccount struct {
	UKey    string `json:"uKey" validate:"required"`
	Usuario string `json:"usuario"`
	Codigo  string `json:"codigo" validate:"required,len=6,numeric"`
}

// Parametro is the single-value body used by resend and recovery endpoints.
type Parametro struct {
	Parametro string `json:"parametro" validate:"required"`
}

// Verify2FARequest submits the second-factor code.
type Verify2FARequest struct {
	Email     string `json:"email" validate:"required,email"`
	Codigo2FA string `json:"codigo2FA" validate:"required,len=6,numeric"`
}

// Verify2FARespuesta tells the client where to go after the challenge.
type Verify2FARespuesta struct {
	RedirectURL string `json:"redirectUrl"`
}

// ResetPassword sets a new password from the recovery link.
type ResetPassword struct {
	Usuario     string `json:"usuario"`
	Mail        string `json:"mail" validate:"required,email"`
	UKey        string `json:"uKey"`
	Contrasenia string `json:"contrasenia" validate:"required,min=8"`
}

// ChangePassword updates the password of a signed-in user.
type ChangePassword struct {
	IDUsuario   string `json:"idUsuario" validate:"required"`
	Contrasenia string `json:"contrasenia" validate:"required,min=8"`
}

// Toggle2FA enables or disables the second factor for a user.
type Toggle2FA struct {
	IDUsuario string `json:"idUsuario" validate:"required"`
	Activo    bool   `json:"activo"`
}
