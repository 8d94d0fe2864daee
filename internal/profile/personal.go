package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/validation"
)

// PersonalDataForm edita nombres, apellidos y teléfono del cliente.
// Lo maneja un solo flujo a la vez.
type PersonalDataForm struct {
	data   models.Cliente
	errs   validation.Errors
	poster *apiclient.Poster[models.Cliente, genericResponse]
}

func NewPersonalDataForm(d Deps, c models.Cliente) *PersonalDataForm {
	return &PersonalDataForm{
		data:   c,
		errs:   validation.Errors{},
		poster: apiclient.NewPoster[models.Cliente, genericResponse](d.Client, EndpointUpdateClient),
	}
}

func (f *PersonalDataForm) Data() models.Cliente {
	return f.data
}

// Errors son los errores de la última validación, menos los de campos
// editados después.
func (f *PersonalDataForm) Errors() validation.Errors {
	out := validation.Errors{}
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *PersonalDataForm) Loading() bool {
	return f.poster.Loading()
}

// Set cambia un campo. El teléfono se queda solo con dígitos, máximo 10.
func (f *PersonalDataForm) Set(field, value string) error {
	switch field {
	case "nombres":
		f.data.Nombres = value
	case "apellidoPaterno":
		f.data.ApellidoPaterno = value
	case "apellidoMaterno":
		f.data.ApellidoMaterno = value
	case "telefono":
		f.data.Telefono = validation.DigitsOnly(value, 10)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	delete(f.errs, field)
	return nil
}

// Save valida y envía Clientes/Actualizar.
func (f *PersonalDataForm) Save(ctx context.Context) (notify.Outcome, error) {
	f.data.Nombres = strings.TrimSpace(f.data.Nombres)
	f.data.ApellidoPaterno = strings.TrimSpace(f.data.ApellidoPaterno)
	f.data.ApellidoMaterno = strings.TrimSpace(f.data.ApellidoMaterno)

	f.errs = validation.ValidatePersonal(f.data)
	if len(f.errs) > 0 {
		return notify.Outcome{}, f.Errors()
	}

	resp, err := f.poster.Post(ctx, f.data)
	out, _ := result(resp, err,
		"Error al guardar los datos personales",
		"¡Datos actualizados exitosamente!",
		"Error al guardar los datos personales")
	return out, nil
}
