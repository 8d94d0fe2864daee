package handlers_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/auth"
	"github.com/yourorg/pgpchub/internal/catalog"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/profile"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

// storefront es el cliente de la tienda apuntando al backend de pruebas.
type storefront struct {
	server *testServer
	deps   auth.Deps
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	s := newTestServer(t)
	ts := httptest.NewServer(adaptor.FiberApp(s.app))
	t.Cleanup(ts.Close)

	storage := session.NewMemoryStorage()
	sess, err := session.NewStore(storage)
	if err != nil {
		t.Fatal(err)
	}
	tokens := session.NewTokens(storage)
	client := apiclient.NewClient(ts.URL+"/api", apiclient.WithTimeout(5*time.Second), apiclient.WithTokenSource(tokens.Get))
	return &storefront{
		server: s,
		deps: auth.Deps{
			Client:   client,
			Session:  sess,
			Tokens:   tokens,
			Remember: session.NewRememberStore(storage),
			Markers:  session.NewTwoFactorMarkers(storage),
			Policy:   validation.PasswordPolicy{MinLength: 8},
		},
	}
}

func expectSuccess(t *testing.T, step string, out notify.Outcome, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", step, err)
	}
	if out.Toast == nil || out.Toast.Variant != notify.VariantSuccess {
		t.Fatalf("%s: expected success toast, got %+v", step, out.Toast)
	}
}

func TestStorefrontSignupLoginAndProfile(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)

	// Registro
	out, err := auth.NewRegisterFlow(sf.deps).Submit(ctx, models.RegistroUsuario{
		Email:                   "tienda@pgpc.mx",
		ConfirmacionEMail:       "tienda@pgpc.mx",
		Contrasenia:             testPassword,
		ConfirmacionContrasenia: testPassword,
		GamerTag:                "TiendaGamer",
	})
	expectSuccess(t, "register", out, err)
	if !strings.HasPrefix(out.Redirect, auth.RouteVerifyAccount) {
		t.Fatalf("Expected verify redirect, got %q", out.Redirect)
	}
	q := strings.SplitN(out.Redirect, "token=", 2)
	uKey := strings.SplitN(q[1], "&", 2)[0]

	// Verificación con el código del buzón
	verify := auth.NewVerifyAccountFlow(sf.deps, uKey, "tienda@pgpc.mx")
	verify.Paste(sf.server.lastCode("tienda@pgpc.mx"))
	out = verify.Submit(ctx)
	expectSuccess(t, "verify", out, nil)
	if out.Redirect != auth.RouteLogin {
		t.Errorf("Expected login redirect, got %q", out.Redirect)
	}

	// Login
	login := auth.NewLoginFlow(sf.deps, auth.RouteProfile)
	login.SetCaptcha("captcha-ok")
	out, err = login.Submit(ctx, auth.LoginForm{Usuario: "TiendaGamer", Pass: testPassword, RememberMe: true})
	expectSuccess(t, "login", out, err)
	if out.Redirect != auth.RouteProfile || !sf.deps.Session.IsAuthenticated() {
		t.Fatalf("Expected authenticated session, redirect %q", out.Redirect)
	}

	// Perfil: datos personales
	lookups := profile.NewLookups(sf.deps.Client, time.Minute)
	defer lookups.Stop()
	p, err := profile.NewProfile(profile.Deps{Client: sf.deps.Client, Session: sf.deps.Session, Lookups: lookups, Policy: sf.deps.Policy})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if err := p.Load(ctx); err != nil {
		t.Fatalf("profile load: %v", err)
	}

	form := p.Personal()
	_ = form.Set("nombres", "Luis")
	_ = form.Set("apellidoPaterno", "Hernández")
	_ = form.Set("apellidoMaterno", "Ruiz")
	_ = form.Set("telefono", "771-555-1234")
	out, err = form.Save(ctx)
	expectSuccess(t, "personal", out, err)

	// Perfil: dirección con la cascada de código postal
	if err := p.SwitchTab(ctx, profile.TabEnvio); err != nil {
		t.Fatal(err)
	}
	addresses := p.Addresses()
	addr := addresses.OpenAdd()
	_ = addr.Set("aliasDireccion", "Casa")
	_ = addr.Set("calle", "Av. Revolución")
	_ = addr.Set("numExt", "12")
	if err := addr.SetCodigoPostal(ctx, "42000"); err != nil {
		t.Fatalf("cp lookup: %v", err)
	}
	if n := len(addr.Postal().Colonias); n != 5 {
		t.Fatalf("Expected 5 colonias for 42000, got %d", n)
	}
	if err := addr.SelectColonia(2); err != nil {
		t.Fatal(err)
	}
	out, err = addresses.Save(ctx)
	expectSuccess(t, "address", out, err)
	list := addresses.Addresses()
	if len(list) != 1 || list[0].Colonia != "Revolución" {
		t.Fatalf("Expected the saved address after refetch, got %+v", list)
	}

	// Perfil: facturación
	if err := p.SwitchTab(ctx, profile.TabFacturacion); err != nil {
		t.Fatal(err)
	}
	billing := p.Billing()
	bf := billing.OpenAdd()
	_ = bf.Set("razonSocial", "Luis Hernández Ruiz")
	_ = bf.Set("rfc", "hers800101ab1")
	_ = bf.Set("correo", "luis@pgpc.mx")
	_ = bf.Set("idRegimen", "612")
	_ = bf.Set("idUsoCfdi", "G03")
	_ = bf.Set("idFormaPago", "04")
	_ = bf.Set("idMetodoPago", "PUE")
	if err := bf.SetCPFiscal(ctx, "42080"); err != nil {
		t.Fatal(err)
	}
	out, err = billing.Save(ctx)
	expectSuccess(t, "billing", out, err)
	if records := billing.Records(); len(records) != 1 || records[0].RFC != "HERS800101AB1" {
		t.Fatalf("Unexpected billing records %+v", records)
	}
}

func TestStorefrontFlashOffers(t *testing.T) {
	sf := newStorefront(t)
	offers := catalog.NewFlashOffers(sf.deps.Client)
	defer offers.Close()

	if err := offers.Load(context.Background()); err != nil {
		t.Fatalf("Expected offers, got %v", err)
	}
	products := offers.Products()
	if len(products) != 8 {
		t.Fatalf("Expected 8 products, got %d", len(products))
	}
	carousel := catalog.NewCarousel(products, 1300)
	if got := len(carousel.Slides()); got != 3 {
		t.Errorf("Expected 3 slides of 3, got %d", got)
	}
}

func TestStorefrontLoginErrorsBecomeToasts(t *testing.T) {
	ctx := context.Background()
	sf := newStorefront(t)
	sf.server.signup("toast@pgpc.mx", "ToastGamer")

	login := auth.NewLoginFlow(sf.deps, "")
	login.SetCaptcha("captcha-ok")
	out, err := login.Submit(ctx, auth.LoginForm{Usuario: "ToastGamer", Pass: "Incorrecta#1"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Toast == nil || out.Toast.Variant != notify.VariantDanger || out.Toast.Message != "Usuario o contraseña incorrectos" {
		t.Errorf("Expected server message in danger toast, got %+v", out.Toast)
	}
	if sf.deps.Session.IsAuthenticated() {
		t.Error("Failed login must not start a session")
	}
}
