package profile

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/validation"
)

// ============================================================================
// AddressManager - direcciones de envío
// ============================================================================

type addressesResponse = apiclient.Respuesta[models.Direccion]

// AddressManager lista, agrega, edita y elimina direcciones de un cliente.
type AddressManager struct {
	deps      Deps
	clienteID string
	list      *apiclient.Loader[addressesResponse]
	save      *apiclient.Poster[models.Direccion, genericResponse]
	deleter   *apiclient.Deleter[genericResponse]

	form    *AddressForm
	pending *models.Direccion
}

func NewAddressManager(d Deps, clienteID string) *AddressManager {
	return &AddressManager{
		deps:      d,
		clienteID: clienteID,
		list:      apiclient.NewLoader[addressesResponse](d.Client, EndpointAddresses+url.PathEscape(clienteID)),
		save:      apiclient.NewPoster[models.Direccion, genericResponse](d.Client, EndpointAddAddress),
		deleter:   apiclient.NewDeleter[genericResponse](d.Client),
	}
}

// Load trae la lista del servidor.
func (m *AddressManager) Load(ctx context.Context) error {
	return m.list.Load(ctx)
}

// Addresses es la última lista recibida.
func (m *AddressManager) Addresses() []models.Direccion {
	resp := m.list.Data()
	return resp.Data
}

func (m *AddressManager) Loading() bool {
	return m.list.Loading() || m.save.Loading() || m.deleter.Loading()
}

// Err es el error de la última carga de la lista.
func (m *AddressManager) Err() string {
	return m.list.Err()
}

func (m *AddressManager) find(idDireccion string) (models.Direccion, bool) {
	for _, d := range m.Addresses() {
		if d.IDDireccion == idDireccion {
			return d, true
		}
	}
	return models.Direccion{}, false
}

// OpenAdd abre el formulario vacío.
func (m *AddressManager) OpenAdd() *AddressForm {
	m.form = newAddressForm(m.deps.Lookups, models.Direccion{IDCliente: m.clienteID}, true)
	return m.form
}

// OpenEdit abre el formulario con la dirección idDireccion y carga las
// colonias de su código postal.
func (m *AddressManager) OpenEdit(ctx context.Context, idDireccion string) (*AddressForm, error) {
	d, ok := m.find(idDireccion)
	if !ok {
		return nil, fmt.Errorf("%w: dirección %s", ErrNotFound, idDireccion)
	}
	m.form = newAddressForm(m.deps.Lookups, d, false)
	if err := m.form.refreshColonias(ctx); err != nil {
		log.Printf("⚠️ No se pudieron cargar colonias de %s: %v", d.CodigoPostal, err)
	}
	return m.form, nil
}

// Form es el formulario abierto, o nil.
func (m *AddressManager) Form() *AddressForm {
	return m.form
}

func (m *AddressManager) CloseForm() {
	m.form = nil
}

// Save valida y guarda el formulario abierto (Agregar o Actualizar). Con
// éxito cierra el formulario y recarga la lista.
func (m *AddressManager) Save(ctx context.Context) (notify.Outcome, error) {
	if m.form == nil {
		return notify.Outcome{}, ErrNoForm
	}
	if errs := m.form.Validate(); len(errs) > 0 {
		return notify.Outcome{}, errs
	}

	endpoint := EndpointAddAddress
	if !m.form.IsNew() {
		endpoint = EndpointUpdateAddress
	}
	m.save.SetEndpoint(endpoint)

	resp, err := m.save.Post(ctx, m.form.Data())
	out, ok := result(resp, err,
		"Error al guardar la dirección: "+m.save.Err(),
		"Dirección guardada exitosamente",
		"Error al guardar la dirección")
	if !ok {
		return out, nil
	}

	m.form = nil
	m.refetch(ctx)
	return out, nil
}

// RequestDelete marca la dirección para eliminar; no llama al servidor.
func (m *AddressManager) RequestDelete(idDireccion string) error {
	d, ok := m.find(idDireccion)
	if !ok {
		return fmt.Errorf("%w: dirección %s", ErrNotFound, idDireccion)
	}
	m.pending = &d
	return nil
}

// Pending es la dirección esperando confirmación.
func (m *AddressManager) Pending() (models.Direccion, bool) {
	if m.pending == nil {
		return models.Direccion{}, false
	}
	return *m.pending, true
}

// DeleteConfirmation es el texto del modal de confirmación.
func (m *AddressManager) DeleteConfirmation() string {
	if m.pending == nil {
		return ""
	}
	return fmt.Sprintf("¿Estás seguro de eliminar la dirección %q?", m.pending.AliasDireccion)
}

func (m *AddressManager) CancelDelete() {
	m.pending = nil
}

// ConfirmDelete elimina la dirección pendiente y recarga la lista.
func (m *AddressManager) ConfirmDelete(ctx context.Context) (notify.Outcome, error) {
	if m.pending == nil {
		return notify.Outcome{}, ErrNoPendingDelete
	}
	resp, err := m.deleter.Delete(ctx, EndpointDeleteAddress+url.PathEscape(m.pending.IDDireccion))
	out, ok := result(resp, err,
		m.deleter.Err(),
		"Dirección eliminada exitosamente",
		"Error al eliminar la dirección")
	if !ok {
		return out, nil
	}

	m.pending = nil
	m.refetch(ctx)
	return out, nil
}

func (m *AddressManager) refetch(ctx context.Context) {
	if err := m.list.Load(ctx); err != nil {
		log.Printf("⚠️ Error recargando direcciones del cliente %s: %v", m.clienteID, err)
	}
}

// Close cancela la carga en curso de la lista.
func (m *AddressManager) Close() {
	m.list.Close()
}

// ============================================================================
// AddressForm
// ============================================================================

// AddressForm es el modal de alta/edición de una dirección con la cascada
// código postal -> colonias.
type AddressForm struct {
	lookups *Lookups
	data    models.Direccion
	isNew   bool
	postal  PostalInfo
	errs    validation.Errors
}

func newAddressForm(l *Lookups, d models.Direccion, isNew bool) *AddressForm {
	return &AddressForm{lookups: l, data: d, isNew: isNew, errs: validation.Errors{}}
}

func (f *AddressForm) Data() models.Direccion {
	return f.data
}

func (f *AddressForm) IsNew() bool {
	return f.isNew
}

// Postal son las colonias y municipio/estado del código postal actual.
func (f *AddressForm) Postal() PostalInfo {
	return f.postal
}

func (f *AddressForm) Errors() validation.Errors {
	out := validation.Errors{}
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Set cambia un campo de texto.
func (f *AddressForm) Set(field, value string) error {
	switch field {
	case "aliasDireccion":
		f.data.AliasDireccion = value
	case "calle":
		f.data.Calle = value
	case "numExt":
		f.data.NumExt = value
	case "numInt":
		f.data.NumInt = value
	case "referencias":
		f.data.Referencias = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	delete(f.errs, field)
	return nil
}

func (f *AddressForm) SetEsFiscal(v bool) {
	f.data.EsFiscal = v
}

// SetCodigoPostal deja solo dígitos (máximo 5). Si el código cambia se
// limpia la colonia; con 5 dígitos consulta las colonias.
func (f *AddressForm) SetCodigoPostal(ctx context.Context, raw string) error {
	cp := validation.DigitsOnly(raw, 5)
	if cp != f.data.CodigoPostal {
		f.data.CodigoPostal = cp
		f.resetColonia()
	}
	delete(f.errs, "codigoPostal")
	if len(cp) < 5 {
		return nil
	}
	return f.refreshColonias(ctx)
}

func (f *AddressForm) refreshColonias(ctx context.Context) error {
	if f.lookups == nil || !validation.IsPostalCode(f.data.CodigoPostal) {
		return nil
	}
	cols, err := f.lookups.Colonias(ctx, f.data.CodigoPostal)
	if err != nil {
		f.errs.Add("codigoPostal", "No se pudo consultar el código postal")
		return err
	}
	if len(cols) == 0 {
		f.errs.Add("codigoPostal", "Código postal no encontrado")
	}
	f.postal = NewPostalInfo(cols)
	f.data.IDMunicipio = f.postal.IDMunicipio
	f.data.Municipio = f.postal.Municipio
	f.data.IDEntidad = f.postal.IDEntidad
	f.data.Entidad = f.postal.Entidad
	return nil
}

func (f *AddressForm) resetColonia() {
	f.postal = PostalInfo{}
	f.data.IDCp = 0
	f.data.Colonia = ""
	f.data.IDMunicipio = 0
	f.data.Municipio = ""
	f.data.IDEntidad = 0
	f.data.Entidad = ""
}

// SelectColonia elige una colonia de las opciones del código postal.
func (f *AddressForm) SelectColonia(idColonia int) error {
	c, ok := f.postal.Find(idColonia)
	if !ok {
		return fmt.Errorf("%w: colonia %d", ErrNotFound, idColonia)
	}
	f.data.IDCp = c.IDColonia
	f.data.Colonia = c.Colonia
	delete(f.errs, "idCp")
	return nil
}

// Validate recorta espacios y valida.
func (f *AddressForm) Validate() validation.Errors {
	f.data.AliasDireccion = strings.TrimSpace(f.data.AliasDireccion)
	f.data.Calle = strings.TrimSpace(f.data.Calle)
	f.data.NumExt = strings.TrimSpace(f.data.NumExt)
	f.data.NumInt = strings.TrimSpace(f.data.NumInt)
	f.data.Referencias = strings.TrimSpace(f.data.Referencias)
	f.errs = validation.ValidateAddress(f.data)
	return f.Errors()
}
