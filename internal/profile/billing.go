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
// BillingManager - datos de facturación
// ============================================================================

type billingResponse = apiclient.Respuesta[models.DatoFacturacion]

// BillingManager lista y edita los datos fiscales de un cliente.
type BillingManager struct {
	deps      Deps
	clienteID string
	list      *apiclient.Loader[billingResponse]
	save      *apiclient.Poster[models.DatoFacturacion, genericResponse]
	deleter   *apiclient.Deleter[genericResponse]

	combos  Combos
	form    *BillingForm
	pending *models.DatoFacturacion
}

func NewBillingManager(d Deps, clienteID string) *BillingManager {
	return &BillingManager{
		deps:      d,
		clienteID: clienteID,
		list:      apiclient.NewLoader[billingResponse](d.Client, EndpointBilling+url.PathEscape(clienteID)),
		save:      apiclient.NewPoster[models.DatoFacturacion, genericResponse](d.Client, EndpointAddBilling),
		deleter:   apiclient.NewDeleter[genericResponse](d.Client),
	}
}

// Load trae la lista y los combos. Si fallan los combos la lista queda
// cargada y se retorna el error.
func (m *BillingManager) Load(ctx context.Context) error {
	if err := m.list.Load(ctx); err != nil {
		return err
	}
	combos, err := m.deps.Lookups.Combos(ctx)
	if err != nil {
		return fmt.Errorf("cargar combos: %w", err)
	}
	m.combos = combos
	return nil
}

func (m *BillingManager) Records() []models.DatoFacturacion {
	resp := m.list.Data()
	return resp.Data
}

func (m *BillingManager) Combos() Combos {
	return m.combos
}

func (m *BillingManager) Loading() bool {
	return m.list.Loading() || m.save.Loading() || m.deleter.Loading()
}

func (m *BillingManager) Err() string {
	return m.list.Err()
}

func (m *BillingManager) find(id string) (models.DatoFacturacion, bool) {
	for _, r := range m.Records() {
		if r.IDDatoFacturacion == id {
			return r, true
		}
	}
	return models.DatoFacturacion{}, false
}

func (m *BillingManager) OpenAdd() *BillingForm {
	m.form = newBillingForm(m.deps.Lookups, models.DatoFacturacion{IDCliente: m.clienteID}, true)
	return m.form
}

func (m *BillingManager) OpenEdit(ctx context.Context, id string) (*BillingForm, error) {
	r, ok := m.find(id)
	if !ok {
		return nil, fmt.Errorf("%w: datos de facturación %s", ErrNotFound, id)
	}
	m.form = newBillingForm(m.deps.Lookups, r, false)
	if err := m.form.refreshPostal(ctx); err != nil {
		log.Printf("⚠️ No se pudo consultar el CP fiscal %s: %v", r.CPFiscal, err)
	}
	return m.form, nil
}

func (m *BillingManager) Form() *BillingForm {
	return m.form
}

func (m *BillingManager) CloseForm() {
	m.form = nil
}

// Save valida el formulario, resuelve los textos de los combos y guarda.
func (m *BillingManager) Save(ctx context.Context) (notify.Outcome, error) {
	if m.form == nil {
		return notify.Outcome{}, ErrNoForm
	}
	if errs := m.form.Validate(); len(errs) > 0 {
		return notify.Outcome{Toast: dangerToast("Por favor completa todos los campos correctamente")}, errs
	}

	data := m.form.Data()
	data.IDCliente = m.clienteID
	data.Regimen = ComboText(m.combos.RegimenesFiscales, data.IDRegimen)
	data.UsoCfdi = ComboText(m.combos.UsosCfdi, data.IDUsoCfdi)
	data.FormaPago = ComboText(m.combos.FormasPago, data.IDFormaPago)
	data.MetodoPago = ComboText(m.combos.MetodosPago, data.IDMetodoPago)

	endpoint := EndpointAddBilling
	if !m.form.IsNew() {
		endpoint = EndpointUpdateBilling
	}
	m.save.SetEndpoint(endpoint)

	resp, err := m.save.Post(ctx, data)
	out, ok := result(resp, err,
		"Error al guardar los datos de facturación",
		"Datos de facturación guardados exitosamente",
		"Error al guardar los datos de facturación")
	if !ok {
		return out, nil
	}

	m.form = nil
	m.refetch(ctx)
	return out, nil
}

func (m *BillingManager) RequestDelete(id string) error {
	r, ok := m.find(id)
	if !ok {
		return fmt.Errorf("%w: datos de facturación %s", ErrNotFound, id)
	}
	m.pending = &r
	return nil
}

func (m *BillingManager) Pending() (models.DatoFacturacion, bool) {
	if m.pending == nil {
		return models.DatoFacturacion{}, false
	}
	return *m.pending, true
}

// DeleteConfirmation es el texto del modal de confirmación.
func (m *BillingManager) DeleteConfirmation() string {
	if m.pending == nil {
		return ""
	}
	return fmt.Sprintf("¿Estás seguro de que deseas eliminar los datos de facturación de %s? Esta acción no se puede deshacer.", m.pending.RazonSocial)
}

func (m *BillingManager) CancelDelete() {
	m.pending = nil
}

func (m *BillingManager) ConfirmDelete(ctx context.Context) (notify.Outcome, error) {
	if m.pending == nil {
		return notify.Outcome{}, ErrNoPendingDelete
	}
	resp, err := m.deleter.Delete(ctx, EndpointDeleteBilling+url.PathEscape(m.pending.IDDatoFacturacion))
	out, ok := result(resp, err,
		m.deleter.Err(),
		"Datos de facturación eliminados exitosamente",
		"Error al eliminar los datos de facturación")
	if !ok {
		return out, nil
	}

	m.pending = nil
	m.refetch(ctx)
	return out, nil
}

func (m *BillingManager) refetch(ctx context.Context) {
	if err := m.list.Load(ctx); err != nil {
		log.Printf("⚠️ Error recargando datos de facturación del cliente %s: %v", m.clienteID, err)
	}
}

func (m *BillingManager) Close() {
	m.list.Close()
}

// ============================================================================
// BillingForm
// ============================================================================

// BillingForm es el modal de datos fiscales. El RFC se normaliza a
// mayúsculas alfanuméricas y el CP fiscal a 5 dígitos mientras se escribe.
type BillingForm struct {
	lookups *Lookups
	data    models.DatoFacturacion
	isNew   bool
	postal  PostalInfo
	errs    validation.Errors
}

func newBillingForm(l *Lookups, d models.DatoFacturacion, isNew bool) *BillingForm {
	return &BillingForm{lookups: l, data: d, isNew: isNew, errs: validation.Errors{}}
}

func (f *BillingForm) Data() models.DatoFacturacion {
	return f.data
}

func (f *BillingForm) IsNew() bool {
	return f.isNew
}

// Postal es el municipio/estado del CP fiscal.
func (f *BillingForm) Postal() PostalInfo {
	return f.postal
}

func (f *BillingForm) Errors() validation.Errors {
	out := validation.Errors{}
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *BillingForm) Set(field, value string) error {
	switch field {
	case "razonSocial":
		f.data.RazonSocial = value
	case "rfc":
		f.data.RFC = validation.NormalizeRFC(value)
	case "correo":
		f.data.Correo = value
	case "idRegimen":
		f.data.IDRegimen = value
	case "idUsoCfdi":
		f.data.IDUsoCfdi = value
	case "idFormaPago":
		f.data.IDFormaPago = value
	case "idMetodoPago":
		f.data.IDMetodoPago = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	delete(f.errs, field)
	return nil
}

// SetCPFiscal deja solo dígitos y con 5 consulta municipio y estado.
func (f *BillingForm) SetCPFiscal(ctx context.Context, raw string) error {
	cp := validation.DigitsOnly(raw, 5)
	if cp != f.data.CPFiscal {
		f.data.CPFiscal = cp
		f.postal = PostalInfo{}
	}
	delete(f.errs, "cpFiscal")
	if len(cp) < 5 {
		return nil
	}
	return f.refreshPostal(ctx)
}

func (f *BillingForm) refreshPostal(ctx context.Context) error {
	if f.lookups == nil || !validation.IsPostalCode(f.data.CPFiscal) {
		return nil
	}
	cols, err := f.lookups.Colonias(ctx, f.data.CPFiscal)
	if err != nil {
		return err
	}
	f.postal = NewPostalInfo(cols)
	return nil
}

func (f *BillingForm) Validate() validation.Errors {
	f.data.RazonSocial = strings.TrimSpace(f.data.RazonSocial)
	f.data.Correo = strings.TrimSpace(f.data.Correo)
	f.errs = validation.ValidateBilling(f.data)
	return f.Errors()
}
