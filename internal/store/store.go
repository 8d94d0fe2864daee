package store

import (
	"context"
	"errors"

	"github.com/yourorg/pgpchub/internal/models"
)

var (
	ErrNotFound  = errors.New("registro no encontrado")
	ErrDuplicate = errors.New("el registro ya existe")
)

// Store es la persistencia del backend de desarrollo. Memory y MySQL la
// implementan con la misma semántica: los Save insertan cuando el id viene
// vacío (y lo asignan) o actualizan cuando existe.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	// UserByLogin busca por correo o nombre de usuario, sin distinguir mayúsculas.
	UserByLogin(ctx context.Context, login string) (*models.User, error)
	UserByUKey(ctx context.Context, uKey string) (*models.User, error)

	CreateCliente(ctx context.Context, c *models.Cliente) error
	UpdateCliente(ctx context.Context, c *models.Cliente) error
	ClienteByID(ctx context.Context, id string) (*models.Cliente, error)
	ClienteByUsuario(ctx context.Context, idUsuario string) (*models.Cliente, error)

	Direcciones(ctx context.Context, idCliente string) ([]models.Direccion, error)
	SaveDireccion(ctx context.Context, d *models.Direccion) error
	DeleteDireccion(ctx context.Context, id string) error

	DatosFacturacion(ctx context.Context, idCliente string) ([]models.DatoFacturacion, error)
	SaveDatoFacturacion(ctx context.Context, d *models.DatoFacturacion) error
	DeleteDatoFacturacion(ctx context.Context, id string) error

	Colonias(ctx context.Context, cp string) ([]models.Colonia, error)
	ColoniaByID(ctx context.Context, id int) (*models.Colonia, error)
	Combos(ctx context.Context) ([]models.ComboItem, error)
	OfertasFlash(ctx context.Context) ([]models.Producto, error)

	Ping(ctx context.Context) error
}
