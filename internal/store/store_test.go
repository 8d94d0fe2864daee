package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	appdb "github.com/yourorg/pgpchub/internal/db"
	"github.com/yourorg/pgpchub/internal/models"
)

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("PGPC_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("PGPC_TEST_MYSQL_DSN no configurado")
	}
	conn, err := appdb.Connect(dsn)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Close()
	if err := appdb.EnsureSchema(conn); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	s := NewMySQL(conn)
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	exerciseStore(t, s)
}

func TestSeedColonias(t *testing.T) {
	cols := SeedColonias()
	if len(cols) != 20 {
		t.Fatalf("Expected 20 colonias, got %d", len(cols))
	}
	seen := map[int]bool{}
	for i, c := range cols {
		if c.IDColonia != i+1 || seen[c.IDColonia] {
			t.Errorf("Colonia ids must be sequential, got %d at %d", c.IDColonia, i)
		}
		seen[c.IDColonia] = true
		if c.Entidad != "Hidalgo" || len(c.CodigoPostal) != 5 {
			t.Errorf("Unexpected colonia %+v", c)
		}
	}
}

// exerciseStore corre el mismo contrato contra cualquier implementación.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	// Usuarios
	u := &models.User{NombreUsuario: "gamer_" + suffix, Mail: "Ana." + suffix + "@hub.mx", UKey: uuid.NewString()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatal("CreateUser should assign an id")
	}
	dup := &models.User{NombreUsuario: "otro_" + suffix, Mail: "ana." + suffix + "@HUB.mx", UKey: uuid.NewString()}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for same mail, got %v", err)
	}

	byLogin, err := s.UserByLogin(ctx, "ANA."+suffix+"@hub.mx")
	if err != nil || byLogin.ID != u.ID {
		t.Fatalf("UserByLogin(mail): %v %+v", err, byLogin)
	}
	if byName, err := s.UserByLogin(ctx, "gamer_"+suffix); err != nil || byName.ID != u.ID {
		t.Errorf("UserByLogin(nombre): %v", err)
	}
	if _, err := s.UserByLogin(ctx, "nadie@hub.mx"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if byKey, err := s.UserByUKey(ctx, u.UKey); err != nil || byKey.ID != u.ID {
		t.Errorf("UserByUKey: %v", err)
	}

	u.Activo = true
	u.Auth2FA = true
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got, _ := s.UserByID(ctx, u.ID); !got.Activo || !got.Auth2FA {
		t.Errorf("UpdateUser not persisted: %+v", got)
	}
	if err := s.UpdateUser(ctx, &models.User{ID: uuid.NewString()}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound updating unknown user, got %v", err)
	}

	// Clientes
	c := &models.Cliente{IDUsuario: u.ID, Nombres: "Ana"}
	if err := s.CreateCliente(ctx, c); err != nil {
		t.Fatalf("CreateCliente: %v", err)
	}
	got, err := s.ClienteByUsuario(ctx, u.ID)
	if err != nil || got.ID != c.ID || !got.Auth2FA {
		t.Fatalf("ClienteByUsuario: %v %+v", err, got)
	}
	c.ApellidoPaterno = "López"
	c.Telefono = "7711234567"
	c.PathFoto = "/fotos/a.png"
	if err := s.UpdateCliente(ctx, c); err != nil {
		t.Fatalf("UpdateCliente: %v", err)
	}
	c.PathFoto = ""
	s.UpdateCliente(ctx, c)
	if got, _ := s.ClienteByID(ctx, c.ID); got.Telefono != "7711234567" || got.PathFoto != "/fotos/a.png" {
		t.Errorf("Empty photo path must keep the previous one, got %+v", got)
	}

	// Direcciones
	cols, err := s.Colonias(ctx, "42080")
	if err != nil || len(cols) != 3 || cols[0].Municipio != "Pachuca de Soto" {
		t.Fatalf("Colonias: %v %+v", err, cols)
	}
	if none, _ := s.Colonias(ctx, "99999"); len(none) != 0 {
		t.Errorf("Unknown CP should give no colonias, got %d", len(none))
	}

	d := &models.Direccion{IDCliente: c.ID, AliasDireccion: "Casa", Calle: "Juárez", NumExt: "10", IDCp: cols[1].IDColonia}
	if err := s.SaveDireccion(ctx, d); err != nil {
		t.Fatalf("SaveDireccion: %v", err)
	}
	list, _ := s.Direcciones(ctx, c.ID)
	if len(list) != 1 || list[0].Colonia != "Santa Julia" || list[0].CodigoPostal != "42080" {
		t.Fatalf("Unexpected addresses %+v", list)
	}
	d.NumInt = "3"
	if err := s.SaveDireccion(ctx, d); err != nil {
		t.Fatalf("SaveDireccion update: %v", err)
	}
	if list, _ := s.Direcciones(ctx, c.ID); len(list) != 1 || list[0].NumInt != "3" {
		t.Errorf("Update should not duplicate, got %+v", list)
	}
	if err := s.SaveDireccion(ctx, &models.Direccion{IDCliente: c.ID, IDDireccion: uuid.NewString(), IDCp: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteDireccion(ctx, d.IDDireccion); err != nil {
		t.Fatalf("DeleteDireccion: %v", err)
	}
	if err := s.DeleteDireccion(ctx, d.IDDireccion); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}

	// Facturación
	f := &models.DatoFacturacion{IDCliente: c.ID, RazonSocial: "Ana López", RFC: "LORA900101AB1", Correo: "f@hub.mx",
		CPFiscal: "42000", IDRegimen: "612", IDUsoCfdi: "G03", IDFormaPago: "01", IDMetodoPago: "PUE"}
	if err := s.SaveDatoFacturacion(ctx, f); err != nil {
		t.Fatalf("SaveDatoFacturacion: %v", err)
	}
	f.RazonSocial = "Ana López Ruiz"
	if err := s.SaveDatoFacturacion(ctx, f); err != nil {
		t.Fatalf("SaveDatoFacturacion update: %v", err)
	}
	records, _ := s.DatosFacturacion(ctx, c.ID)
	if len(records) != 1 || records[0].RazonSocial != "Ana López Ruiz" {
		t.Errorf("Unexpected billing records %+v", records)
	}
	if err := s.DeleteDatoFacturacion(ctx, f.IDDatoFacturacion); err != nil {
		t.Fatalf("DeleteDatoFacturacion: %v", err)
	}

	// Catálogos
	combos, _ := s.Combos(ctx)
	if len(combos) != len(SeedCombos()) {
		t.Errorf("Expected %d combos, got %d", len(SeedCombos()), len(combos))
	}
	products, _ := s.OfertasFlash(ctx)
	if len(products) != 8 {
		t.Errorf("Expected 8 products, got %d", len(products))
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
