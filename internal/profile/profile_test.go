package profile

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

const (
	clientePath     = "/api/Clientes/ObtenerPorIdUsuario/u1"
	direccionesPath = "/api/Direcciones/ObtenerDireccionesPorIdCte/c1"
	facturacionPath = "/api/DatosFacturacionClientes/ObtenerPorIdCliente/c1"
	combosPath      = "/api/DatosFacturacionClientes/GetCombos"
	coloniasPath    = "/api/CodigosPostales/ObtenerColonias/01000"
)

const clienteJSON = `{"exito":true,"data":[{"id":"c1","idUsuario":"u1","nombres":"Ana","apellidoPaterno":"López","apellidoMaterno":"Ruiz","telefono":"5512345678","pathFoto":"/fotos/c1.png"}]}`

func newProfileAPI(t *testing.T) *fakeAPI {
	api := newFakeAPI(t)
	api.on(http.MethodGet, clientePath, http.StatusOK, clienteJSON)
	api.on(http.MethodGet, direccionesPath, http.StatusOK, `{"exito":true,"data":[{"idCliente":"c1","idDireccion":"d1","aliasDireccion":"Casa","calle":"Insurgentes","numExt":"100","codigoPostal":"01000","idCp":10}]}`)
	api.on(http.MethodGet, facturacionPath, http.StatusOK, `{"exito":true,"data":{"idCliente":"c1","idDatoFacturacion":"f1","razonSocial":"Ana López Ruiz","rfc":"LORA900101AB1","correo":"ana@hub.mx","cpFiscal":"01000","idRegimen":"612","idUsoCfdi":"G03","idFormaPago":"01","idMetodoPago":"PUE"}}`)
	api.on(http.MethodGet, combosPath, http.StatusOK, combosJSON)
	api.on(http.MethodGet, coloniasPath, http.StatusOK, coloniasJSON)
	return api
}

func TestNewProfileRequiresSession(t *testing.T) {
	store, _ := session.NewStore(session.NewMemoryStorage())
	_, err := NewProfile(Deps{Client: apiclient.NewClient("http://localhost"), Session: store})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestProfileTabs(t *testing.T) {
	api := newProfileAPI(t)
	p, err := NewProfile(newDeps(t, api))
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	defer p.Close()

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Tab() != TabPersonal || p.Personal() == nil {
		t.Fatalf("Expected personal tab open, got %q", p.Tab())
	}
	if p.Personal().Data().Nombres != "Ana" {
		t.Errorf("Personal form should be filled from the client, got %+v", p.Personal().Data())
	}
	if p.PhotoPath() != "/fotos/c1.png" {
		t.Errorf("Unexpected photo path %q", p.PhotoPath())
	}

	if err := p.SwitchTab(context.Background(), TabEnvio); err != nil {
		t.Fatalf("SwitchTab envio: %v", err)
	}
	if p.Personal() != nil || p.Addresses() == nil {
		t.Fatal("Only the active tab should be open")
	}
	if got := p.Addresses().Addresses(); len(got) != 1 || got[0].AliasDireccion != "Casa" {
		t.Errorf("Unexpected addresses %+v", got)
	}
	addresses := p.Addresses()

	if err := p.SwitchTab(context.Background(), TabFacturacion); err != nil {
		t.Fatalf("SwitchTab facturacion: %v", err)
	}
	if p.Addresses() != nil {
		t.Error("Address tab should be closed")
	}
	if err := addresses.Load(context.Background()); !errors.Is(err, apiclient.ErrClosed) {
		t.Errorf("Closed tab loader should refuse loads, got %v", err)
	}
	billing := p.Billing()
	if billing == nil || len(billing.Records()) != 1 {
		t.Fatalf("Expected one billing record")
	}
	if len(billing.Combos().FormasPago) != 2 || len(billing.Combos().UsosCfdi) != 1 {
		t.Errorf("Unexpected combos %+v", billing.Combos())
	}

	before := api.total()
	if err := p.SwitchTab(context.Background(), TabFacturacion); err != nil {
		t.Fatalf("SwitchTab same: %v", err)
	}
	if api.total() != before {
		t.Error("Switching to the active tab must not reload")
	}
	if err := p.SwitchTab(context.Background(), Tab("pedidos")); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("Expected ErrUnknownTab, got %v", err)
	}
}

func TestProfileClientNotFound(t *testing.T) {
	api := newFakeAPI(t)
	api.on(http.MethodGet, clientePath, http.StatusOK, `{"exito":false,"mensaje":"Cliente no encontrado"}`)
	p, _ := NewProfile(newDeps(t, api))
	if err := p.Load(context.Background()); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("Expected ErrClientNotFound, got %v", err)
	}
}

func TestPersonalDataForm(t *testing.T) {
	api := newFakeAPI(t)
	api.on(http.MethodPost, "/api/Clientes/Actualizar", http.StatusOK, `{"exito":true}`)
	f := NewPersonalDataForm(newDeps(t, api), models.Cliente{ID: "c1", IDUsuario: "u1"})

	_, err := f.Save(context.Background())
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) != 4 {
		t.Fatalf("Expected four field errors, got %v", err)
	}
	if api.total() != 0 {
		t.Error("Invalid form must not reach the server")
	}

	f.Set("nombres", " Ana ")
	if f.Errors().Has("nombres") {
		t.Error("Editing a field clears its error")
	}
	f.Set("apellidoPaterno", "López")
	f.Set("apellidoMaterno", "Ruiz")
	f.Set("telefono", "(55) 1234-5678 ext 9")
	if f.Data().Telefono != "5512345678" {
		t.Errorf("Phone should be sanitized, got %q", f.Data().Telefono)
	}
	if err := f.Set("curp", "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}

	out, err := f.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if out.Toast == nil || out.Toast.Variant != notify.VariantSuccess || out.Toast.Message != "¡Datos actualizados exitosamente!" {
		t.Errorf("Unexpected toast %+v", out.Toast)
	}
	var sent models.Cliente
	api.lastBody(http.MethodPost, "/api/Clientes/Actualizar", &sent)
	if sent.Nombres != "Ana" || sent.ID != "c1" {
		t.Errorf("Unexpected request %+v", sent)
	}
}

func TestPersonalDataFormServerError(t *testing.T) {
	api := newFakeAPI(t)
	api.on(http.MethodPost, "/api/Clientes/Actualizar", http.StatusInternalServerError, ``)
	f := NewPersonalDataForm(newDeps(t, api), models.Cliente{ID: "c1", Nombres: "Ana", ApellidoPaterno: "L", ApellidoMaterno: "R", Telefono: "5512345678"})

	out, _ := f.Save(context.Background())
	if out.Toast == nil || out.Toast.Header != "Error" || out.Toast.Message != "Error al guardar los datos personales" {
		t.Errorf("Unexpected toast %+v", out.Toast)
	}
}
