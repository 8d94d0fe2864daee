package session

import (
	"encoding/json"
	"fmt"
	"log"
)

const (
	TokenKey      = "token"
	RememberKey   = "remember-me"
	Pending2FAKey = "pending2FA"
	Email2FAKey   = "email2FA"
)

// ============================================================================
// Token
// ============================================================================

// Tokens guarda el token de autenticación en el almacenamiento durable.
type Tokens struct {
	storage Storage
}

func NewTokens(storage Storage) *Tokens {
	return &Tokens{storage: storage}
}

func (t *Tokens) Set(token string) error {
	return t.storage.Set(TokenKey, []byte(token))
}

// Get retorna el token o "" si no hay.
func (t *Tokens) Get() string {
	data, ok, err := t.storage.Get(TokenKey)
	if err != nil {
		log.Printf("⚠️  No se pudo leer el token: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(data)
}

func (t *Tokens) Clear() error {
	return t.storage.Remove(TokenKey)
}

// ============================================================================
// Recordarme
// ============================================================================

// Remembered es {usuario, rememberMe}. Vive aparte de la sesión: puede
// existir sin usuario autenticado.
type Remembered struct {
	Usuario    string `json:"usuario"`
	RememberMe bool   `json:"rememberMe"`
}

type RememberStore struct {
	storage Storage
}

func NewRememberStore(storage Storage) *RememberStore {
	return &RememberStore{storage: storage}
}

// Save guarda el usuario si rememberMe es true; si no, borra lo guardado.
func (r *RememberStore) Save(usuario string, rememberMe bool) error {
	if !rememberMe {
		return r.storage.Remove(RememberKey)
	}
	data, err := json.Marshal(Remembered{Usuario: usuario, RememberMe: true})
	if err != nil {
		return fmt.Errorf("serializar recordarme: %w", err)
	}
	return r.storage.Set(RememberKey, data)
}

// Load retorna lo recordado; ok=false si no hay nada válido.
func (r *RememberStore) Load() (Remembered, bool) {
	var out Remembered
	data, ok, err := r.storage.Get(RememberKey)
	if err != nil || !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("⚠️  Datos de recordarme inválidos: %v", err)
		return Remembered{}, false
	}
	return out, out.RememberMe
}

// ============================================================================
// Marcadores 2FA
// ============================================================================

// TwoFactorMarkers son las marcas de un reto 2FA en curso. Van en el
// almacenamiento de corta duración.
type TwoFactorMarkers struct {
	storage Storage
}

func NewTwoFactorMarkers(storage Storage) *TwoFactorMarkers {
	return &TwoFactorMarkers{storage: storage}
}

func (m *TwoFactorMarkers) Begin(email string) error {
	if err := m.storage.Set(Pending2FAKey, []byte("true")); err != nil {
		return err
	}
	return m.storage.Set(Email2FAKey, []byte(email))
}

func (m *TwoFactorMarkers) Pending() bool {
	data, ok, err := m.storage.Get(Pending2FAKey)
	return err == nil && ok && string(data) == "true"
}

// Email retorna el correo del reto en curso o "".
func (m *TwoFactorMarkers) Email() string {
	data, ok, err := m.storage.Get(Email2FAKey)
	if err != nil || !ok {
		return ""
	}
	return string(data)
}

func (m *TwoFactorMarkers) Clear() error {
	if err := m.storage.Remove(Pending2FAKey); err != nil {
		return err
	}
	return m.storage.Remove(Email2FAKey)
}
