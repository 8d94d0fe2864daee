package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// specialChars son los caracteres especiales aceptados por la política.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordPolicy es la política de contraseñas. MinLength viene de la
// configuración (PGPC_PASSWORD_MIN_LENGTH).
type PasswordPolicy struct {
	MinLength int
}

// ValidatePassword retorna el primer mensaje que falla, en orden: requerida,
// longitud, mayúscula, minúscula, dígito, especial. "" si es válida.
func (p PasswordPolicy) ValidatePassword(password string) string {
	if password == "" {
		return "La contraseña es requerida"
	}
	for _, r := range p.rules() {
		if !r.ok(password) {
			return r.message
		}
	}
	return ""
}

// ValidateConfirmation valida la confirmación contra la contraseña.
func ValidateConfirmation(password, confirmation string) string {
	if confirmation == "" {
		return "La confirmación de contraseña es requerida"
	}
	if password != confirmation {
		return "Las contraseñas no coinciden"
	}
	return ""
}

// ValidatePasswordPair valida contraseña y confirmación con las keys dadas.
func (p PasswordPolicy) ValidatePasswordPair(errs Errors, passwordField, confirmField, password, confirmation string) {
	if msg := p.ValidatePassword(password); msg != "" {
		errs.Add(passwordField, msg)
	}
	if msg := ValidateConfirmation(password, confirmation); msg != "" {
		errs.Add(confirmField, msg)
	}
}

type passwordRule struct {
	label   string
	message string
	ok      func(string) bool
}

func (p PasswordPolicy) rules() []passwordRule {
	return []passwordRule{
		{
			label:   fmt.Sprintf("Al menos %d caracteres", p.MinLength),
			message: fmt.Sprintf("La contraseña debe tener al menos %d caracteres", p.MinLength),
			ok:      func(s string) bool { return utf8.RuneCountInString(s) >= p.MinLength },
		},
		{
			label:   "Una letra mayúscula",
			message: "La contraseña debe contener al menos una letra mayúscula",
			ok:      func(s string) bool { return strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") },
		},
		{
			label:   "Una letra minúscula",
			message: "La contraseña debe contener al menos una letra minúscula",
			ok:      func(s string) bool { return strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") },
		},
		{
			label:   "Un dígito",
			message: "La contraseña debe contener al menos un dígito",
			ok:      func(s string) bool { return strings.ContainsAny(s, "0123456789") },
		},
		{
			label:   "Un carácter especial",
			message: "La contraseña debe contener al menos un carácter especial",
			ok:      func(s string) bool { return strings.ContainsAny(s, specialChars) },
		},
	}
}

// ============================================================================
// Fortaleza (feedback en vivo)
// ============================================================================

type Level string

const (
	LevelWeak   Level = "débil"
	LevelMedium Level = "media"
	LevelStrong Level = "fuerte"
)

// Check es una regla de la política y si se cumple.
type Check struct {
	Label string
	Met   bool
}

// PasswordStrength es el resultado de Strength.
type PasswordStrength struct {
	Checks []Check
	Met    int
	Level  Level
}

// Valid indica si se cumplen todas las reglas.
func (s PasswordStrength) Valid() bool {
	return s.Met == len(s.Checks)
}

// Strength evalúa cada regla de la política. Todas cumplidas es fuerte,
// tres o más es media, menos es débil.
func (p PasswordPolicy) Strength(password string) PasswordStrength {
	rules := p.rules()
	out := PasswordStrength{Checks: make([]Check, 0, len(rules))}
	for _, r := range rules {
		met := password != "" && r.ok(password)
		if met {
			out.Met++
		}
		out.Checks = append(out.Checks, Check{Label: r.label, Met: met})
	}

	switch {
	case out.Met == len(rules):
		out.Level = LevelStrong
	case out.Met >= 3:
		out.Level = LevelMedium
	default:
		out.Level = LevelWeak
	}
	return out
}
