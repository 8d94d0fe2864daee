package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/auth"
	"github.com/yourorg/pgpchub/internal/catalog"
	"github.com/yourorg/pgpchub/internal/config"
	"github.com/yourorg/pgpchub/internal/models"
	"github.com/yourorg/pgpchub/internal/notify"
	"github.com/yourorg/pgpchub/internal/profile"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

// shell es la tienda en modo terminal.
type shell struct {
	cfg     config.Client
	in      *bufio.Reader
	console *notify.Console
	history *notify.History
	auth    auth.Deps
	lookups *profile.Lookups
}

func main() {
	cfg := config.LoadClient()
	s, err := newShell(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer s.lookups.Stop()
	s.run()
}

// newShell arma las dependencias de la tienda. La sesión, el token y el
// "recordarme" viven en disco; los marcadores de 2FA solo duran el proceso.
func newShell(cfg config.Client, in io.Reader, out io.Writer) (*shell, error) {
	storage, err := session.NewFileStorage(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir %s: %w", cfg.StateDir, err)
	}
	log.Printf("📁 Estado local en %s", storage.Dir())
	sess, err := session.NewStore(storage)
	if err != nil {
		return nil, fmt.Errorf("sesión: %w", err)
	}
	tokens := session.NewTokens(storage)
	client := apiclient.NewClient(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithTokenSource(tokens.Get))

	return &shell{
		cfg:     cfg,
		in:      bufio.NewReader(in),
		console: notify.NewConsole(out, cfg.ToastDelay),
		history: notify.NewHistory(auth.RouteHome),
		auth: auth.Deps{
			Client:   client,
			Graph:    apiclient.NewClient(cfg.FacebookGraphURL, apiclient.WithTimeout(cfg.Timeout)),
			Session:  sess,
			Tokens:   tokens,
			Remember: session.NewRememberStore(storage),
			Markers:  session.NewTwoFactorMarkers(session.NewMemoryStorage()),
			Policy:   validation.PasswordPolicy{MinLength: cfg.PasswordMinLength},
		},
		lookups: profile.NewLookups(client, 30*time.Minute),
	}, nil
}

func (s *shell) run() {
	ctx := context.Background()
	for {
		fmt.Println("==== PGPC Hub ====")
		if st := s.auth.Session.State(); s.auth.Session.IsAuthenticated() {
			fmt.Printf("Sesión: %s\n", session.Value(st.NombreUsuario))
		}
		fmt.Println("1) Health check API")
		fmt.Println("2) Ofertas flash")
		fmt.Println("3) Registrarse")
		fmt.Println("4) Verificar cuenta")
		fmt.Println("5) Iniciar sesión")
		fmt.Println("6) Iniciar sesión con Google (credencial)")
		fmt.Println("7) Olvidé mi contraseña")
		fmt.Println("8) Restablecer contraseña")
		fmt.Println("9) Mi perfil")
		fmt.Println("10) Cerrar sesión")
		fmt.Println("0) Salir")
		switch s.prompt("Selecciona una opción") {
		case "1":
			s.healthCheck()
		case "2":
			s.flashOffers(ctx)
		case "3":
			s.register(ctx)
		case "4":
			s.verifyAccount(ctx, s.prompt("uKey"), s.prompt("Gamer Tag"))
		case "5":
			s.login(ctx)
		case "6":
			s.google(ctx)
		case "7":
			s.forgotPassword(ctx)
		case "8":
			s.resetPassword(ctx, s.prompt("Usuario"), s.prompt("Correo"), s.prompt("Token"))
		case "9":
			s.profile(ctx)
		case "10":
			out, err := auth.Logout(s.auth)
			s.deliver(ctx, out, err)
		case "0":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Opción inválida")
		}
		fmt.Println()
	}
}

func (s *shell) prompt(label string) string {
	fmt.Printf("%s: ", label)
	line, _ := s.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (s *shell) confirm(label string) bool {
	answer := strings.ToLower(s.prompt(label + " (s/n)"))
	return answer == "s" || answer == "si" || answer == "sí"
}

// deliver muestra el toast o el error de validación y sigue la redirección.
func (s *shell) deliver(ctx context.Context, out notify.Outcome, err error) {
	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		for field, msg := range errs {
			fmt.Printf("  ✗ %s: %s\n", field, msg)
		}
		return
	case err != nil:
		fmt.Printf("❌ %v\n", err)
		return
	}
	if err := notify.Deliver(ctx, s.console, s.history, out); err != nil {
		fmt.Printf("❌ %v\n", err)
	}
}

func (s *shell) healthCheck() {
	u, err := url.Parse(s.cfg.APIBaseURL)
	if err != nil {
		fmt.Println("URL inválida:", err)
		return
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/health"
	hc := &http.Client{Timeout: 5 * time.Second}
	resp, err := hc.Get(u.String())
	if err != nil {
		fmt.Println("Health check failed:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Health status:", resp.Status)
}

// ============================================================================
// Catálogo
// ============================================================================

func (s *shell) flashOffers(ctx context.Context) {
	offers := catalog.NewFlashOffers(s.auth.Client)
	defer offers.Close()
	if err := offers.Load(ctx); err != nil {
		fmt.Printf("⚠️  %s, mostrando productos de demostración\n", offers.Err())
	}

	carousel := catalog.NewCarousel(offers.Products(), 1300)
	for {
		idx, slide := carousel.Current()
		fmt.Printf("-- Slide %d/%d --\n", idx+1, len(carousel.Slides()))
		for _, p := range slide {
			fmt.Printf("  %s  %s  antes %s  (-%d%%)  %s  ⏱ %s\n",
				p.Nombre, catalog.FormatPrice(p.PrecioOferta), catalog.FormatPrice(p.PrecioOriginal),
				catalog.DiscountPercent(p), catalog.RatingStars(p.Rating), p.TiempoRestante)
		}
		switch s.prompt("[n]ext, [p]rev, [w]idth, [q]uit") {
		case "n":
			carousel.Next()
		case "p":
			carousel.Prev()
		case "w":
			if w, err := strconv.Atoi(s.prompt("Ancho")); err == nil {
				carousel.Resize(w)
			}
		default:
			return
		}
	}
}

// ============================================================================
// Autenticación
// ============================================================================

func (s *shell) register(ctx context.Context) {
	flow := auth.NewRegisterFlow(s.auth)
	form := models.RegistroUsuario{
		Email:                   s.prompt("Correo"),
		ConfirmacionEMail:       s.prompt("Confirma tu correo"),
		GamerTag:                s.prompt("Gamer Tag"),
		Contrasenia:             s.prompt("Contraseña"),
		ConfirmacionContrasenia: s.prompt("Confirma tu contraseña"),
	}
	out, err := flow.Submit(ctx, form)
	s.deliver(ctx, out, err)
	if err == nil && strings.HasPrefix(out.Redirect, auth.RouteVerifyAccount) {
		q := queryOf(out.Redirect)
		s.verifyAccount(ctx, q.Get("token"), q.Get("user"))
	}
}

func (s *shell) verifyAccount(ctx context.Context, token, user string) {
	flow := auth.NewVerifyAccountFlow(s.auth, token, user)
	for {
		code := s.prompt("Código de 6 dígitos (r = reenviar, vacío = salir)")
		switch code {
		case "":
			return
		case "r":
			s.deliver(ctx, flow.Resend(ctx), nil)
			continue
		}
		if out := flow.Paste(code); out.Toast != nil {
			s.deliver(ctx, out, nil)
			continue
		}
		out := flow.Submit(ctx)
		s.deliver(ctx, out, nil)
		if out.Redirect != "" {
			return
		}
	}
}

func (s *shell) login(ctx context.Context) {
	flow := auth.NewLoginFlow(s.auth, "")
	form := flow.LoadRemembered()
	if form.Usuario != "" {
		fmt.Printf("Usuario recordado: %s\n", form.Usuario)
	}
	if u := s.prompt("Usuario o correo"); u != "" {
		form.Usuario = u
	}
	form.Pass = s.prompt("Contraseña")
	form.RememberMe = s.confirm("¿Recordarme?")
	flow.SetCaptcha(s.prompt("Token de captcha"))

	out, err := flow.Submit(ctx, form)
	s.deliver(ctx, out, err)
	if err == nil && out.Redirect == auth.RouteVerify2FA {
		s.twoFactor(ctx)
	}
}

func (s *shell) twoFactor(ctx context.Context) {
	flow, err := auth.NewTwoFactorFlow(s.auth, "")
	if err != nil {
		fmt.Println("❌", err)
		return
	}
	fmt.Printf("Enviamos un código a %s\n", flow.MaskedEmail())
	for {
		code := s.prompt("Código 2FA (vacío = cancelar)")
		if code == "" {
			s.deliver(ctx, flow.Cancel(), nil)
			return
		}
		out, submitted := flow.Paste(ctx, code)
		s.deliver(ctx, out, nil)
		if submitted && flow.Err() == "" {
			return
		}
	}
}

func (s *shell) google(ctx context.Context) {
	flow := auth.NewSocialFlow(s.auth, "")
	out, err := flow.Google(ctx, s.prompt("Credencial de Google (JWT)"))
	s.deliver(ctx, out, err)
	if err != nil {
		return
	}
	switch {
	case strings.HasPrefix(out.Redirect, auth.RouteRegisterSocial):
		reg := auth.NewRegisterSocialFlow(s.auth, queryOf(out.Redirect).Get("email"))
		fmt.Printf("Completa tu registro para %s\n", reg.Email())
		out, err := reg.Submit(ctx, s.prompt("Gamer Tag"))
		s.deliver(ctx, out, err)
	case out.Redirect == auth.RouteVerify2FA:
		s.twoFactor(ctx)
	}
}

func (s *shell) forgotPassword(ctx context.Context) {
	flow := auth.NewForgotPasswordFlow(s.auth)
	out, err := flow.Submit(ctx, s.prompt("Correo"))
	s.deliver(ctx, out, err)
}

func (s *shell) resetPassword(ctx context.Context, user, email, token string) {
	flow := auth.NewResetPasswordFlow(s.auth, user, email, token)
	fmt.Printf("Restableciendo la contraseña de %s\n", flow.NombreUsuario())
	out, err := flow.Submit(ctx, s.prompt("Nueva contraseña"), s.prompt("Confirma la contraseña"))
	s.deliver(ctx, out, err)
}

func queryOf(route string) url.Values {
	if i := strings.Index(route, "?"); i >= 0 {
		q, _ := url.ParseQuery(route[i+1:])
		return q
	}
	return url.Values{}
}

// ============================================================================
// Perfil
// ============================================================================

func (s *shell) profile(ctx context.Context) {
	p, err := profile.NewProfile(profile.Deps{
		Client:  s.auth.Client,
		Session: s.auth.Session,
		Lookups: s.lookups,
		Policy:  s.auth.Policy,
	})
	if err != nil {
		fmt.Println("❌", err)
		return
	}
	defer p.Close()
	if err := p.Load(ctx); err != nil {
		fmt.Println("❌", err)
		return
	}

	for {
		c, _ := p.Cliente()
		fmt.Printf("-- Perfil de %s %s (%s) --\n", c.Nombres, c.ApellidoPaterno, c.Telefono)
		if path := p.PhotoPath(); path != "" {
			fmt.Println("Foto:", path)
		}
		fmt.Println("1) Editar datos personales")
		fmt.Println("2) Direcciones de envío")
		fmt.Println("3) Datos de facturación")
		fmt.Println("4) Cambiar contraseña")
		fmt.Println("5) Activar/desactivar 2FA")
		fmt.Println("6) Subir foto")
		fmt.Println("0) Volver")
		switch s.prompt("Opción") {
		case "1":
			s.editPersonal(ctx, p)
		case "2":
			s.addresses(ctx, p)
		case "3":
			s.billing(ctx, p)
		case "4":
			out, err := p.Password().Submit(ctx, s.prompt("Nueva contraseña"), s.prompt("Confirma la contraseña"))
			s.deliver(ctx, out, err)
		case "5":
			out, err := p.TwoFactor().Set(ctx, !p.TwoFactor().Enabled())
			s.deliver(ctx, out, err)
		case "6":
			s.uploadPhoto(ctx, p)
		default:
			return
		}
	}
}

func (s *shell) editPersonal(ctx context.Context, p *profile.Profile) {
	if err := p.SwitchTab(ctx, profile.TabPersonal); err != nil {
		fmt.Println("❌", err)
		return
	}
	form := p.Personal()
	for _, field := range []string{"nombres", "apellidoPaterno", "apellidoMaterno", "telefono"} {
		if v := s.prompt(field + " (vacío = sin cambio)"); v != "" {
			_ = form.Set(field, v)
		}
	}
	out, err := form.Save(ctx)
	s.deliver(ctx, out, err)
}

func (s *shell) addresses(ctx context.Context, p *profile.Profile) {
	if err := p.SwitchTab(ctx, profile.TabEnvio); err != nil {
		fmt.Println("❌", err)
		return
	}
	m := p.Addresses()
	for {
		for _, d := range m.Addresses() {
			fmt.Printf("  [%s] %s: %s %s, %s, %s CP %s\n", d.IDDireccion, d.AliasDireccion, d.Calle, d.NumExt, d.Colonia, d.Municipio, d.CodigoPostal)
		}
		switch s.prompt("[a]gregar, [e]ditar, [b]orrar, [q] volver") {
		case "a":
			s.fillAddress(ctx, m, m.OpenAdd())
		case "e":
			form, err := m.OpenEdit(ctx, s.prompt("Id de la dirección"))
			if err != nil {
				fmt.Println("❌", err)
				continue
			}
			s.fillAddress(ctx, m, form)
		case "b":
			if err := m.RequestDelete(s.prompt("Id de la dirección")); err != nil {
				fmt.Println("❌", err)
				continue
			}
			if s.confirm(m.DeleteConfirmation()) {
				out, err := m.ConfirmDelete(ctx)
				s.deliver(ctx, out, err)
			} else {
				m.CancelDelete()
			}
		default:
			return
		}
	}
}

func (s *shell) fillAddress(ctx context.Context, m *profile.AddressManager, form *profile.AddressForm) {
	for _, field := range []string{"aliasDireccion", "calle", "numExt", "numInt", "referencias"} {
		if v := s.prompt(field); v != "" {
			_ = form.Set(field, v)
		}
	}
	if err := form.SetCodigoPostal(ctx, s.prompt("Código postal")); err != nil {
		fmt.Println("❌", err)
	}
	info := form.Postal()
	for _, c := range info.Colonias {
		fmt.Printf("  %d) %s\n", c.IDColonia, c.Colonia)
	}
	if info.Municipio != "" {
		fmt.Printf("Municipio: %s, %s\n", info.Municipio, info.Entidad)
	}
	if id, err := strconv.Atoi(s.prompt("Colonia")); err == nil {
		if err := form.SelectColonia(id); err != nil {
			fmt.Println("❌", err)
		}
	}
	form.SetEsFiscal(s.confirm("¿Es dirección fiscal?"))
	out, err := m.Save(ctx)
	s.deliver(ctx, out, err)
	// En consola no se reintenta sobre el mismo formulario.
	if m.Form() != nil {
		m.CloseForm()
	}
}

func (s *shell) billing(ctx context.Context, p *profile.Profile) {
	if err := p.SwitchTab(ctx, profile.TabFacturacion); err != nil {
		fmt.Println("❌", err)
		return
	}
	m := p.Billing()
	for {
		combos := m.Combos()
		for _, r := range m.Records() {
			fmt.Printf("  [%s] %s  RFC %s  %s / %s\n", r.IDDatoFacturacion, r.RazonSocial, r.RFC,
				profile.ComboText(combos.RegimenesFiscales, r.IDRegimen), profile.ComboText(combos.UsosCfdi, r.IDUsoCfdi))
		}
		switch s.prompt("[a]gregar, [e]ditar, [b]orrar, [q] volver") {
		case "a":
			s.fillBilling(ctx, m, m.OpenAdd())
		case "e":
			form, err := m.OpenEdit(ctx, s.prompt("Id del registro"))
			if err != nil {
				fmt.Println("❌", err)
				continue
			}
			s.fillBilling(ctx, m, form)
		case "b":
			if err := m.RequestDelete(s.prompt("Id del registro")); err != nil {
				fmt.Println("❌", err)
				continue
			}
			if s.confirm(m.DeleteConfirmation()) {
				out, err := m.ConfirmDelete(ctx)
				s.deliver(ctx, out, err)
			} else {
				m.CancelDelete()
			}
		default:
			return
		}
	}
}

func (s *shell) fillBilling(ctx context.Context, m *profile.BillingManager, form *profile.BillingForm) {
	combos := m.Combos()
	for _, field := range []string{"razonSocial", "rfc", "correo"} {
		if v := s.prompt(field); v != "" {
			_ = form.Set(field, v)
		}
	}
	if err := form.SetCPFiscal(ctx, s.prompt("Código postal fiscal")); err != nil {
		fmt.Println("❌", err)
	}
	s.pickCombo(form, "idRegimen", combos.RegimenesFiscales)
	s.pickCombo(form, "idUsoCfdi", combos.UsosCfdi)
	s.pickCombo(form, "idFormaPago", combos.FormasPago)
	s.pickCombo(form, "idMetodoPago", combos.MetodosPago)
	out, err := m.Save(ctx)
	s.deliver(ctx, out, err)
	// En consola no se reintenta sobre el mismo formulario.
	if m.Form() != nil {
		m.CloseForm()
	}
}

func (s *shell) pickCombo(form *profile.BillingForm, field string, items []models.ComboItem) {
	for _, item := range items {
		fmt.Printf("  %s) %s\n", item.Valor, item.Texto)
	}
	if v := s.prompt(field); v != "" {
		_ = form.Set(field, v)
	}
}

func (s *shell) uploadPhoto(ctx context.Context, p *profile.Profile) {
	path := s.prompt("Ruta de la imagen")
	f, err := os.Open(path)
	if err != nil {
		fmt.Println("❌", err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		fmt.Println("❌", err)
		return
	}
	out, err := p.UploadPhoto(ctx, profile.Photo{
		Name:    filepath.Base(path),
		Size:    info.Size(),
		Content: f,
	})
	s.deliver(ctx, out, err)
}
