package auth

import (
	"errors"
	"strings"

	"github.com/yourorg/pgpchub/internal/validation"
)

// CodeLength es el número de celdas del código.
const CodeLength = 6

// CodeMode define si completar el código lo envía solo.
type CodeMode int

const (
	// AutoSubmit (2FA): escribir o pegar los 6 dígitos envía el código.
	AutoSubmit CodeMode = iota
	// SubmitGated (verificación de cuenta): se envía con el botón.
	SubmitGated
)

// ErrCodeNotNumeric se retorna al pegar texto sin dígitos en modo SubmitGated.
var ErrCodeNotNumeric = errors.New("El código debe contener solo números")

// CodeInput son seis celdas de un dígito con foco. No es seguro para uso
// concurrente; lo maneja un solo flujo.
type CodeInput struct {
	mode  CodeMode
	cells [CodeLength]string
	focus int
}

func NewCodeInput(mode CodeMode) *CodeInput {
	return &CodeInput{mode: mode}
}

// Type escribe value en la celda index. En AutoSubmit solo acepta un dígito
// o vacío; en SubmitGated descarta lo que no sea dígito. Con un dígito el
// foco avanza. Retorna true cuando, en AutoSubmit, el código quedó completo.
func (c *CodeInput) Type(index int, value string) bool {
	if index < 0 || index >= CodeLength {
		return false
	}
	digits := validation.DigitsOnly(value, 0)
	if c.mode == AutoSubmit && digits != value {
		return false
	}
	if len(digits) > 1 {
		return false
	}

	c.cells[index] = digits
	if digits != "" && index < CodeLength-1 {
		c.focus = index + 1
	}
	return c.mode == AutoSubmit && c.Complete()
}

// Backspace borra la celda index; si ya estaba vacía retrocede el foco y
// borra la anterior.
func (c *CodeInput) Backspace(index int) {
	if index < 0 || index >= CodeLength {
		return
	}
	if c.cells[index] != "" {
		c.cells[index] = ""
		c.focus = index
		return
	}
	if index > 0 {
		c.focus = index - 1
		c.cells[index-1] = ""
	}
}

// Paste reparte los dígitos del texto pegado. En AutoSubmit solo llena si
// hay exactamente 6 dígitos y en ese caso retorna true. En SubmitGated llena
// hasta 6 celdas desde la primera.
func (c *CodeInput) Paste(raw string) (bool, error) {
	digits := validation.DigitsOnly(raw, 0)

	if c.mode == AutoSubmit {
		if len(digits) != CodeLength {
			return false, nil
		}
		c.fill(digits)
		c.focus = CodeLength - 1
		return true, nil
	}

	if digits == "" {
		return false, ErrCodeNotNumeric
	}
	if len(digits) > CodeLength {
		digits = digits[:CodeLength]
	}
	c.fill(digits)
	c.focus = CodeLength - 1
	for i, d := range c.cells {
		if d == "" {
			c.focus = i
			break
		}
	}
	return false, nil
}

func (c *CodeInput) fill(digits string) {
	for i := 0; i < len(digits) && i < CodeLength; i++ {
		c.cells[i] = digits[i : i+1]
	}
}

// Clear vacía las celdas y regresa el foco a la primera.
func (c *CodeInput) Clear() {
	c.cells = [CodeLength]string{}
	c.focus = 0
}

func (c *CodeInput) Code() string {
	return strings.Join(c.cells[:], "")
}

// Complete indica si las seis celdas tienen dígito.
func (c *CodeInput) Complete() bool {
	for _, d := range c.cells {
		if d == "" {
			return false
		}
	}
	return true
}

func (c *CodeInput) Cells() [CodeLength]string {
	return c.cells
}

func (c *CodeInput) Focus() int {
	return c.focus
}

func (c *CodeInput) Mode() CodeMode {
	return c.mode
}
