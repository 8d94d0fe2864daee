package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind clasifica un fallo de transporte.
type Kind int

const (
	// KindServer: el servidor respondió con un status fuera de 2xx.
	KindServer Kind = iota + 1
	// KindNoResponse: red caída, timeout o conexión rechazada.
	KindNoResponse
	// KindSend: la petición no se pudo construir ni enviar.
	KindSend
	// KindDecode: respuesta 2xx cuyo cuerpo no es el JSON esperado.
	KindDecode
)

// RequestError es el error que devuelven el Client y los hooks.
type RequestError struct {
	Kind   Kind
	Status int
	Body   []byte
	Err    error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindServer:
		return fmt.Sprintf("Error del servidor: %d", e.Status)
	case KindNoResponse:
		return "No se recibió respuesta del servidor."
	case KindDecode:
		return "La respuesta del servidor no es válida."
	default:
		msg := "desconocido"
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return "Error al enviar la petición: " + msg
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ServerMessage extrae "mensaje" o "error" del cuerpo de la respuesta, en ese orden.
func (e *RequestError) ServerMessage() string {
	if len(e.Body) == 0 {
		return ""
	}
	var body struct {
		Mensaje string `json:"mensaje"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if m := strings.TrimSpace(body.Mensaje); m != "" {
		return m
	}
	return strings.TrimSpace(body.Error)
}

// StatusCode retorna el status HTTP de err, o 0 si no hubo respuesta.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == KindServer {
		return reqErr.Status
	}
	return 0
}

// Message convierte err en el texto que se muestra al usuario.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
