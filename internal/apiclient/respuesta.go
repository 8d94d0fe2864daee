package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Respuesta es el sobre uniforme {exito, mensaje, error, data} del backend.
// Data se normaliza al decodificar: un objeto queda como slice de un
// elemento, un arreglo como slice, un arreglo de arreglos se aplana un
// nivel y null o ausente queda vacío.
type Respuesta[T any] struct {
	Exito   bool   `json:"exito"`
	Mensaje string `json:"mensaje"`
	Error   string `json:"error"`
	Data    []T    `json:"data"`
}

func (r *Respuesta[T]) UnmarshalJSON(b []byte) error {
	var raw struct {
		Exito   bool            `json:"exito"`
		Mensaje *string         `json:"mensaje"`
		Error   *string         `json:"error"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := normalizeData[T](raw.Data)
	if err != nil {
		return fmt.Errorf("respuesta.data: %w", err)
	}
	r.Exito = raw.Exito
	r.Mensaje = deref(raw.Mensaje)
	r.Error = deref(raw.Error)
	r.Data = data
	return nil
}

// First retorna el primer elemento de Data.
func (r *Respuesta[T]) First() (T, bool) {
	var zero T
	if r == nil || len(r.Data) == 0 {
		return zero, false
	}
	return r.Data[0], true
}

// Message retorna el texto a mostrar según Exito.
func (r *Respuesta[T]) Message() string {
	if r == nil {
		return ""
	}
	if r.Exito {
		return r.Mensaje
	}
	if r.Error != "" {
		return r.Error
	}
	return r.Mensaje
}

// MessageOr es Message, o fallback si viene vacío.
func (r *Respuesta[T]) MessageOr(fallback string) string {
	if msg := r.Message(); msg != "" {
		return msg
	}
	return fallback
}

func normalizeData[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	}

	var list []T
	err := json.Unmarshal(trimmed, &list)
	if err == nil {
		return list, nil
	}
	var nested [][]T
	if nestedErr := json.Unmarshal(trimmed, &nested); nestedErr != nil {
		return nil, err
	}
	list = nil
	for _, inner := range nested {
		list = append(list, inner...)
	}
	return list, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
