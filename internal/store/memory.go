package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/pgpchub/internal/models"
)

// Memory guarda todo en mapas. Se usa en desarrollo y en pruebas.
type Memory struct {
	mu          sync.RWMutex
	users       map[string]models.User
	clientes    map[string]models.Cliente
	direcciones map[string][]models.Direccion       // por idCliente
	facturacion map[string][]models.DatoFacturacion // por idCliente
	colonias    []models.Colonia
	combos      []models.ComboItem
	productos   []models.Producto
}

// NewMemory crea un store con los catálogos precargados.
func NewMemory() *Memory {
	return &Memory{
		users:       make(map[string]models.User),
		clientes:    make(map[string]models.Cliente),
		direcciones: make(map[string][]models.Direccion),
		facturacion: make(map[string][]models.DatoFacturacion),
		colonias:    SeedColonias(),
		combos:      SeedCombos(),
		productos:   SeedProductos(),
	}
}

// ============================================================================
// Usuarios
// ============================================================================

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Mail, u.Mail) || strings.EqualFold(existing.NombreUsuario, u.NombreUsuario) {
			return ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) UserByLogin(_ context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Mail, login) || strings.EqualFold(u.NombreUsuario, login) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UserByUKey(_ context.Context, uKey string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if uKey != "" && u.UKey == uKey {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// ============================================================================
// Clientes
// ============================================================================

func (m *Memory) CreateCliente(_ context.Context, c *models.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.clientes {
		if existing.IDUsuario == c.IDUsuario {
			return ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.clientes[c.ID] = *c
	return nil
}

func (m *Memory) UpdateCliente(_ context.Context, c *models.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.clientes[c.ID]
	if !ok {
		return ErrNotFound
	}
	current.Nombres = c.Nombres
	current.ApellidoPaterno = c.ApellidoPaterno
	current.ApellidoMaterno = c.ApellidoMaterno
	current.Telefono = c.Telefono
	if c.PathFoto != "" {
		current.PathFoto = c.PathFoto
	}
	m.clientes[c.ID] = current
	return nil
}

func (m *Memory) ClienteByID(_ context.Context, id string) (*models.Cliente, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clientes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.withUserFlags(c), nil
}

func (m *Memory) ClienteByUsuario(_ context.Context, idUsuario string) (*models.Cliente, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clientes {
		if c.IDUsuario == idUsuario {
			return m.withUserFlags(c), nil
		}
	}
	return nil, ErrNotFound
}

// withUserFlags copia auth2FA y esRedSocial del usuario dueño.
func (m *Memory) withUserFlags(c models.Cliente) *models.Cliente {
	if u, ok := m.users[c.IDUsuario]; ok {
		c.Auth2FA = u.Auth2FA
		c.EsRedSocial = u.EsRedSocial
	}
	return &c
}

// ============================================================================
// Direcciones
// ============================================================================

func (m *Memory) Direcciones(_ context.Context, idCliente string) ([]models.Direccion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.direcciones[idCliente]
	out := make([]models.Direccion, 0, len(list))
	for _, d := range list {
		out = append(out, m.withColonia(d))
	}
	return out, nil
}

func (m *Memory) SaveDireccion(_ context.Context, d *models.Direccion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.IDDireccion == "" {
		d.IDDireccion = uuid.NewString()
		m.direcciones[d.IDCliente] = append(m.direcciones[d.IDCliente], *d)
		*d = m.withColonia(*d)
		return nil
	}
	list := m.direcciones[d.IDCliente]
	for i := range list {
		if list[i].IDDireccion == d.IDDireccion {
			list[i] = *d
			*d = m.withColonia(*d)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteDireccion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cliente, list := range m.direcciones {
		for i, d := range list {
			if d.IDDireccion == id {
				m.direcciones[cliente] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// withColonia llena los nombres de colonia, municipio y entidad desde idCp.
func (m *Memory) withColonia(d models.Direccion) models.Direccion {
	for _, c := range m.colonias {
		if c.IDColonia == d.IDCp {
			d.Colonia = c.Colonia
			d.CodigoPostal = c.CodigoPostal
			d.IDMunicipio = c.IDMunicipio
			d.Municipio = c.Municipio
			d.IDEntidad = c.IDEntidad
			d.Entidad = c.Entidad
			break
		}
	}
	return d
}

// ============================================================================
// Datos de facturación
// ============================================================================

func (m *Memory) DatosFacturacion(_ context.Context, idCliente string) ([]models.DatoFacturacion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.DatoFacturacion{}, m.facturacion[idCliente]...), nil
}

func (m *Memory) SaveDatoFacturacion(_ context.Context, d *models.DatoFacturacion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.IDDatoFacturacion == "" {
		d.IDDatoFacturacion = uuid.NewString()
		m.facturacion[d.IDCliente] = append(m.facturacion[d.IDCliente], *d)
		return nil
	}
	list := m.facturacion[d.IDCliente]
	for i := range list {
		if list[i].IDDatoFacturacion == d.IDDatoFacturacion {
			list[i] = *d
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteDatoFacturacion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cliente, list := range m.facturacion {
		for i, d := range list {
			if d.IDDatoFacturacion == id {
				m.facturacion[cliente] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// ============================================================================
// Catálogos
// ============================================================================

func (m *Memory) Colonias(_ context.Context, cp string) ([]models.Colonia, error) {
	out := []models.Colonia{}
	for _, c := range m.colonias {
		if c.CodigoPostal == cp {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ColoniaByID(_ context.Context, id int) (*models.Colonia, error) {
	for _, c := range m.colonias {
		if c.IDColonia == id {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Combos(context.Context) ([]models.ComboItem, error) {
	return append([]models.ComboItem{}, m.combos...), nil
}

func (m *Memory) OfertasFlash(context.Context) ([]models.Producto, error) {
	return append([]models.Producto{}, m.productos...), nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}
