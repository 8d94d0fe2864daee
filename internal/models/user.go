package models

import "time"

// User represents a user record in the store (internal use only).
type User struct {
	ID            string    `json:"id"`
	NombreUsuario string    `json:"nombreUsuario"`
	Mail          string    `json:"mail"`
	PasswordHash  string    `json:"-"`
	UKey          string    `json:"uKey"`
	Activo        bool      `json:"activo"`
	Auth2FA       bool      `json:"auth2FA"`
	MailVerified  bool      `json:"mailVerificado"`
	EsRedSocial   bool      `json:"esRedSocial"`
	FailedLogins  int       `json:"intentosFallidos"`
	CreatedAt     time.Time `json:"fechaRegistro"`
}

// Cliente is the customer profile linked to a user.
type Cliente struct {
	ID              string `json:"id"`
	IDUsuario       string `json:"idUsuario"`
	Nombres         string `json:"nombres" validate:"required,max=100"`
	ApellidoPaterno string `json:"apellidoPaterno" validate:"required,max=100"`
	ApellidoMaterno string `json:"apellidoMaterno" validate:"required,max=100"`
	Telefono        string `json:"telefono" validate:"required,len=10,numeric"`
	PathFoto        string `json:"pathFoto"`
	Auth2FA         bool   `json:"auth2FA"`
	EsRedSocial     bool   `json:"esRedSocial"`
}

// FotoRespuesta is returned by Clientes/SubirFoto.
type FotoRespuesta struct {
	PathFoto string `json:"pathFoto"`
}
