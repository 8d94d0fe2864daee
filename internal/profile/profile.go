// ============================================================================
// PROFILE - Perfil del cliente
// ============================================================================
// Pestañas de datos personales, direcciones de envío y datos de facturación,
// más cambio de contraseña, foto de perfil y 2FA.
//
// Como en auth, las operaciones devuelven un notify.Outcome para el toast y
// validation.Errors antes de cualquier llamada. Cada manager recarga la lista
// del servidor después de una mutación exitosa; nunca edita su copia local.
// ============================================================================

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

// Endpoints del perfil. Los que terminan en "/" llevan un id al final.
const (
	EndpointClientByUser   = "Clientes/ObtenerPorIdUsuario/"
	EndpointUpdateClient   = "Clientes/Actualizar"
	EndpointUploadPhoto    = "Clientes/SubirFoto"
	EndpointAddresses      = "Direcciones/ObtenerDireccionesPorIdCte/"
	EndpointAddAddress     = "Direcciones/Agregar"
	EndpointUpdateAddress  = "Direcciones/Actualizar"
	EndpointDeleteAddress  = "Direcciones/Eliminar/"
	EndpointColonias       = "CodigosPostales/ObtenerColonias/"
	EndpointBilling        = "DatosFacturacionClientes/ObtenerPorIdCliente/"
	EndpointCombos         = "DatosFacturacionClientes/GetCombos"
	EndpointAddBilling     = "DatosFacturacionClientes/Agregar"
	EndpointUpdateBilling  = "DatosFacturacionClientes/Actualizar"
	EndpointDeleteBilling  = "DatosFacturacionClientes/Eliminar/"
	EndpointChangePassword = "usuarios/cambiarContrasenia"
	EndpointConfigure2FA   = "usuarios/configurar2FA"
)

var (
	ErrNotAuthenticated = errors.New("no hay una sesión activa")
	ErrClientNotFound   = errors.New("no se encontró el cliente del usuario")
	ErrUnknownTab       = errors.New("pestaña desconocida")
	ErrUnknownField     = errors.New("campo desconocido")
	ErrNoForm           = errors.New("no hay un formulario abierto")
	ErrNoPendingDelete  = errors.New("no hay una eliminación pendiente")
	ErrNotFound         = errors.New("registro no encontrado")
)

// Deps son las dependencias del perfil.
type Deps struct {
	Client  *apiclient.Client
	Session *session.Store
	Lookups *Lookups
	Policy  validation.PasswordPolicy
}

type genericResponse = apiclient.Respuesta[json.RawMessage]

// Tab es una pestaña del perfil.
type Tab string

const (
	TabPersonal    Tab = "personal"
	TabEnvio       Tab = "envio"
	TabFacturacion Tab = "facturacion"
)

// Profile es la pantalla de perfil: resuelve el cliente del usuario en
// sesión y mantiene abierta solo la pestaña activa. Cambiar de pestaña
// cierra los loaders de la anterior.
type Profile struct {
	deps    Deps
	cliente *apiclient.Loader[apiclient.Respuesta[models.Cliente]]

	password  *ChangePasswordForm
	photo     *PhotoUpload
	twoFactor *TwoFactorToggle

	mu        sync.Mutex
	tab       Tab
	personal  *PersonalDataForm
	addresses *AddressManager
	billing   *BillingManager
}

// NewProfile requiere una sesión autenticada.
func NewProfile(d Deps) (*Profile, error) {
	userID := session.Value(d.Session.State().ID)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &Profile{
		deps:      d,
		cliente:   apiclient.NewLoader[apiclient.Respuesta[models.Cliente]](d.Client, EndpointClientByUser+url.PathEscape(userID)),
		password:  NewChangePasswordForm(d),
		photo:     NewPhotoUpload(d),
		twoFactor: NewTwoFactorToggle(d),
	}, nil
}

// Load resuelve el cliente y abre la pestaña de datos personales.
func (p *Profile) Load(ctx context.Context) error {
	if err := p.cliente.Load(ctx); err != nil {
		return fmt.Errorf("obtener cliente: %w", err)
	}
	if _, ok := p.Cliente(); !ok {
		return ErrClientNotFound
	}
	log.Printf("✅ Perfil cargado para cliente %s", p.clienteID())

	p.mu.Lock()
	tab := p.tab
	p.mu.Unlock()
	if tab == "" {
		tab = TabPersonal
	}
	return p.open(ctx, tab)
}

// Cliente es el registro del cliente resuelto por Load.
func (p *Profile) Cliente() (models.Cliente, bool) {
	resp := p.cliente.Data()
	if !resp.Exito {
		return models.Cliente{}, false
	}
	return resp.First()
}

func (p *Profile) clienteID() string {
	c, _ := p.Cliente()
	return c.ID
}

func (p *Profile) Tab() Tab {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tab
}

// SwitchTab cierra la pestaña actual y carga la nueva. Cambiar a la misma
// pestaña no hace nada.
func (p *Profile) SwitchTab(ctx context.Context, tab Tab) error {
	switch tab {
	case TabPersonal, TabEnvio, TabFacturacion:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	p.mu.Lock()
	same := p.tab == tab
	p.mu.Unlock()
	if same {
		return nil
	}
	return p.open(ctx, tab)
}

func (p *Profile) open(ctx context.Context, tab Tab) error {
	cliente, ok := p.Cliente()
	if !ok {
		return ErrClientNotFound
	}

	p.mu.Lock()
	p.closeTabLocked()
	p.tab = tab
	var load func(context.Context) error
	switch tab {
	case TabPersonal:
		p.personal = NewPersonalDataForm(p.deps, cliente)
	case TabEnvio:
		p.addresses = NewAddressManager(p.deps, cliente.ID)
		load = p.addresses.Load
	case TabFacturacion:
		p.billing = NewBillingManager(p.deps, cliente.ID)
		load = p.billing.Load
	}
	p.mu.Unlock()

	if load == nil {
		return nil
	}
	if err := load(ctx); err != nil && !errors.Is(err, apiclient.ErrClosed) && !errors.Is(err, apiclient.ErrSuperseded) {
		return err
	}
	return nil
}

func (p *Profile) closeTabLocked() {
	if p.addresses != nil {
		p.addresses.Close()
		p.addresses = nil
	}
	if p.billing != nil {
		p.billing.Close()
		p.billing = nil
	}
	p.personal = nil
}

// Personal es el formulario de la pestaña personal, o nil si no está activa.
func (p *Profile) Personal() *PersonalDataForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.personal
}

func (p *Profile) Addresses() *AddressManager {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addresses
}

func (p *Profile) Billing() *BillingManager {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.billing
}

func (p *Profile) Password() *ChangePasswordForm {
	return p.password
}

func (p *Profile) TwoFactor() *TwoFactorToggle {
	return p.twoFactor
}

// UploadPhoto sube la foto del cliente resuelto.
func (p *Profile) UploadPhoto(ctx context.Context, photo Photo) (notify.Outcome, error) {
	id := p.clienteID()
	if id == "" {
		return notify.Outcome{}, ErrClientNotFound
	}
	return p.photo.Upload(ctx, id, photo)
}

// PhotoPath es la ruta de la última foto subida o la del cliente.
func (p *Profile) PhotoPath() string {
	if path := p.photo.PathFoto(); path != "" {
		return path
	}
	c, _ := p.Cliente()
	return c.PathFoto
}

// Close cierra todos los loaders abiertos.
func (p *Profile) Close() {
	p.cliente.Close()
	p.mu.Lock()
	p.closeTabLocked()
	p.mu.Unlock()
}

// ============================================================================
// Helpers de toasts
// ============================================================================

const headerError = "Error"

func successToast(message string) *notify.Toast {
	t := notify.Success(notify.DefaultHeader, message)
	return &t
}

func dangerToast(message string) *notify.Toast {
	t := notify.Danger(headerError, message)
	return &t
}

// result convierte la respuesta de una mutación en Outcome.
func result[T any](resp *apiclient.Respuesta[T], err error, transportMsg, okMsg, failMsg string) (notify.Outcome, bool) {
	if err != nil {
		return notify.Outcome{Toast: dangerToast(transportMsg)}, false
	}
	if !resp.Exito {
		return notify.Outcome{Toast: dangerToast(resp.MessageOr(failMsg))}, false
	}
	return notify.Outcome{Toast: successToast(resp.MessageOr(okMsg))}, true
}
