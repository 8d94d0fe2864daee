package otp

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/yourorg/pgpchub/internal/cache"
)

// Purpose separa los códigos de verificación de cuenta de los de 2FA para
// una misma llave.
type Purpose string

const (
	PurposeVerify    Purpose = "verify"
	PurposeTwoFactor Purpose = "2fa"
)

const (
	CodeLength  = 6
	MaxAttempts = 3
)

var (
	ErrNotFound        = errors.New("código no encontrado o expirado")
	ErrInvalidCode     = errors.New("código incorrecto")
	ErrTooManyAttempts = errors.New("demasiados intentos fallidos")
)

type entry struct {
	code     string
	attempts int
}

// Store guarda códigos de un solo uso con TTL y límite de intentos.
type Store struct {
	ttl   time.Duration
	mu    sync.Mutex
	codes *cache.Cache[*entry]
}

// NewStore crea el almacén. Los códigos expirados se purgan cada minuto.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		codes: cache.New[*entry](ttl, time.Minute),
	}
}

func key(p Purpose, subject string) string {
	return string(p) + ":" + subject
}

// Generate crea un código nuevo y reemplaza el anterior del mismo sujeto.
func (s *Store) Generate(p Purpose, subject string) (string, error) {
	code, err := randomCode(CodeLength)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes.SetWithTTL(key(p, subject), &entry{code: code}, s.ttl)
	return code, nil
}

// Verify consume el código si coincide. Al tercer fallo el código se descarta.
func (s *Store) Verify(p Purpose, subject, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(p, subject)
	e, ok := s.codes.Get(k)
	if !ok {
		return ErrNotFound
	}
	if e.attempts >= MaxAttempts {
		s.codes.Delete(k)
		return ErrTooManyAttempts
	}
	if e.code != code {
		e.attempts++
		if e.attempts >= MaxAttempts {
			s.codes.Delete(k)
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}
	s.codes.Delete(k)
	return nil
}

// Discard elimina el código pendiente, si lo hay.
func (s *Store) Discard(p Purpose, subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes.Delete(key(p, subject))
}

func (s *Store) Stop() {
	s.codes.Stop()
}

func randomCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}
