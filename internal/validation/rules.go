package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// GenericRFC es el RFC genérico para público en general; siempre es válido.
const GenericRFC = "XAXX010101000"

// MinGamerTagLength es la longitud mínima del Gamer Tag.
const MinGamerTagLength = 6

var (
	emailRegex     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	rfcMoralRegex  = regexp.MustCompile(`^[A-ZÑ&]{3}[0-9]{6}[A-Z0-9]{3}$`)
	rfcFisicaRegex = regexp.MustCompile(`^[A-ZÑ&]{4}[0-9]{6}[A-Z0-9]{3}$`)
	postalRegex    = regexp.MustCompile(`^\d{5}$`)
	phoneRegex     = regexp.MustCompile(`^\d{10}$`)
)

// IsEmail valida el formato de un correo.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsRFC acepta el RFC genérico, el de persona moral (12) y el de física (13).
func IsRFC(s string) bool {
	if s == GenericRFC {
		return true
	}
	return rfcMoralRegex.MatchString(s) || rfcFisicaRegex.MatchString(s)
}

func IsPostalCode(s string) bool {
	return postalRegex.MatchString(s)
}

func IsPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// ============================================================================
// Validadores de campo
// ============================================================================

// ValidateEmail valida un correo requerido.
func ValidateEmail(field, email string) error {
	if strings.TrimSpace(email) == "" {
		return &FieldError{Field: field, Message: "El correo electrónico es requerido"}
	}
	if !IsEmail(email) {
		return &FieldError{Field: field, Message: "El formato del correo electrónico no es válido"}
	}
	return nil
}

// ValidateEmailConfirmation valida que la confirmación coincida.
func ValidateEmailConfirmation(field, email, confirmation string) error {
	if confirmation == "" {
		return &FieldError{Field: field, Message: "La confirmación del correo es requerida"}
	}
	if email != confirmation {
		return &FieldError{Field: field, Message: "Los correos electrónicos no coinciden"}
	}
	return nil
}

func ValidateGamerTag(field, tag string) error {
	if strings.TrimSpace(tag) == "" {
		return &FieldError{Field: field, Message: "El Gamer Tag es requerido"}
	}
	if utf8.RuneCountInString(tag) < MinGamerTagLength {
		return &FieldError{Field: field, Message: "El Gamer Tag debe tener al menos 6 caracteres"}
	}
	return nil
}

func ValidatePhone(field, phone string) error {
	if strings.TrimSpace(phone) == "" {
		return &FieldError{Field: field, Message: "El teléfono es requerido"}
	}
	if !IsPhone(phone) {
		return &FieldError{Field: field, Message: "El teléfono debe tener 10 dígitos"}
	}
	return nil
}

// ValidatePostalCode usa requiredMsg cuando el código viene vacío.
func ValidatePostalCode(field, cp, requiredMsg string) error {
	if strings.TrimSpace(cp) == "" {
		return &FieldError{Field: field, Message: requiredMsg}
	}
	if !IsPostalCode(cp) {
		return &FieldError{Field: field, Message: "El código postal debe tener 5 dígitos"}
	}
	return nil
}

func ValidateRFC(field, rfc string) error {
	if strings.TrimSpace(rfc) == "" {
		return &FieldError{Field: field, Message: "El RFC es requerido"}
	}
	if !IsRFC(rfc) {
		return &FieldError{Field: field, Message: "RFC inválido. Debe ser de 12 caracteres (Moral) o 13 (Física)"}
	}
	return nil
}

// Required valida que value no esté vacío (ignorando espacios).
func Required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field, Message: message}
	}
	return nil
}

// ============================================================================
// Sanitizadores de entrada
// ============================================================================

// DigitsOnly deja solo dígitos y corta a max (max <= 0 no corta).
func DigitsOnly(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			if max > 0 && b.Len() >= max {
				break
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeRFC pasa a mayúsculas, quita lo que no sea [A-Z0-9] y corta a 13.
func NormalizeRFC(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if b.Len() >= 13 {
				break
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
