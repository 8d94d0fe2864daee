package validation

import (
	"fmt"
	"sort"
	"strings"
)

// FieldError representa un error de validación de un campo del formulario
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors agrupa los errores de un formulario por campo (campo -> mensaje).
// Un Errors vacío no es un error: usar Err() para convertirlo.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// Add registra el mensaje solo si el campo no tenía uno; gana el primero.
func (e Errors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// AddErr registra err si es un *FieldError.
func (e Errors) AddErr(err error) {
	if fe, ok := err.(*FieldError); ok && fe != nil {
		e.Add(fe.Field, fe.Message)
	}
}

// Has indica si el campo tiene error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Err retorna nil si no hay errores.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
