package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/yourorg/pgpchub/internal/models"
)

// MySQL implementa Store sobre las tablas creadas por db.EnsureSchema.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// Seed carga colonias, combos y productos. Las filas existentes se respetan.
func (s *MySQL) Seed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range SeedColonias() {
		if _, err := tx.ExecContext(ctx, `
			INSERT IGNORE INTO colonias (id_colonia, colonia, codigo_postal, id_municipio, municipio, id_entidad, entidad, id_pais, pais)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.IDColonia, c.Colonia, c.CodigoPostal, c.IDMunicipio, c.Municipio, c.IDEntidad, c.Entidad, c.IDPais, c.Pais); err != nil {
			return fmt.Errorf("seed colonias: %w", err)
		}
	}
	for _, c := range SeedCombos() {
		if _, err := tx.ExecContext(ctx, `INSERT IGNORE INTO combos (combo, valor, texto) VALUES (?, ?, ?)`, c.Combo, c.Valor, c.Texto); err != nil {
			return fmt.Errorf("seed combos: %w", err)
		}
	}
	for _, p := range SeedProductos() {
		if _, err := tx.ExecContext(ctx, `
			INSERT IGNORE INTO productos (id, nombre, precio_original, precio_oferta, rating, tiempo_restante, imagen, link_detalle)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Nombre, p.PrecioOriginal, p.PrecioOferta, p.Rating, p.TiempoRestante, p.Imagen, p.LinkDetalle); err != nil {
			return fmt.Errorf("seed productos: %w", err)
		}
	}
	return tx.Commit()
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// Usuarios
// ============================================================================

const userColumns = `id, nombre_usuario, mail, password_hash, ukey, activo, auth_2fa, mail_verificado, es_red_social, intentos_fallidos, creado_en`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.NombreUsuario, &u.Mail, &u.PasswordHash, &u.UKey, &u.Activo,
		&u.Auth2FA, &u.MailVerified, &u.EsRedSocial, &u.FailedLogins, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *MySQL) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usuarios (id, nombre_usuario, mail, password_hash, ukey, activo, auth_2fa, mail_verificado, es_red_social)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.NombreUsuario, u.Mail, u.PasswordHash, u.UKey, u.Activo, u.Auth2FA, u.MailVerified, u.EsRedSocial)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MySQL) UpdateUser(ctx context.Context, u *models.User) error {
	return affected(s.db.ExecContext(ctx, `
		UPDATE usuarios SET password_hash = ?, ukey = ?, activo = ?, auth_2fa = ?, mail_verificado = ?, intentos_fallidos = ?
		WHERE id = ?
	`, u.PasswordHash, u.UKey, u.Activo, u.Auth2FA, u.MailVerified, u.FailedLogins, u.ID))
}

func (s *MySQL) UserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = ?`, id))
}

func (s *MySQL) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE LOWER(mail) = LOWER(?) OR LOWER(nombre_usuario) = LOWER(?) LIMIT 1`, login, login))
}

func (s *MySQL) UserByUKey(ctx context.Context, uKey string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE ukey = ?`, uKey))
}

// ============================================================================
// Clientes
// ============================================================================

const clienteQuery = `
	SELECT c.id, c.id_usuario, c.nombres, c.apellido_paterno, c.apellido_materno, c.telefono, c.path_foto, u.auth_2fa, u.es_red_social
	FROM clientes c JOIN usuarios u ON u.id = c.id_usuario`

func scanCliente(row *sql.Row) (*models.Cliente, error) {
	var c models.Cliente
	err := row.Scan(&c.ID, &c.IDUsuario, &c.Nombres, &c.ApellidoPaterno, &c.ApellidoMaterno,
		&c.Telefono, &c.PathFoto, &c.Auth2FA, &c.EsRedSocial)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *MySQL) CreateCliente(ctx context.Context, c *models.Cliente) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clientes (id, id_usuario, nombres, apellido_paterno, apellido_materno, telefono, path_foto)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.IDUsuario, c.Nombres, c.ApellidoPaterno, c.ApellidoMaterno, c.Telefono, c.PathFoto)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MySQL) UpdateCliente(ctx context.Context, c *models.Cliente) error {
	if _, err := s.ClienteByID(ctx, c.ID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE clientes SET nombres = ?, apellido_paterno = ?, apellido_materno = ?, telefono = ?,
			path_foto = IF(? = '', path_foto, ?)
		WHERE id = ?
	`, c.Nombres, c.ApellidoPaterno, c.ApellidoMaterno, c.Telefono, c.PathFoto, c.PathFoto, c.ID)
	return err
}

func (s *MySQL) ClienteByID(ctx context.Context, id string) (*models.Cliente, error) {
	return scanCliente(s.db.QueryRowContext(ctx, clienteQuery+` WHERE c.id = ?`, id))
}

func (s *MySQL) ClienteByUsuario(ctx context.Context, idUsuario string) (*models.Cliente, error) {
	return scanCliente(s.db.QueryRowContext(ctx, clienteQuery+` WHERE c.id_usuario = ?`, idUsuario))
}

// ============================================================================
// Direcciones
// ============================================================================

func (s *MySQL) Direcciones(ctx context.Context, idCliente string) ([]models.Direccion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id_direccion, d.id_cliente, d.alias_direccion, d.calle, d.num_ext, d.num_int, d.id_cp,
			d.referencias, d.es_fiscal, c.colonia, c.codigo_postal, c.id_municipio, c.municipio, c.id_entidad, c.entidad
		FROM direcciones d JOIN colonias c ON c.id_colonia = d.id_cp
		WHERE d.id_cliente = ?
		ORDER BY d.creado_en, d.id_direccion
	`, idCliente)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Direccion{}
	for rows.Next() {
		var d models.Direccion
		if err := rows.Scan(&d.IDDireccion, &d.IDCliente, &d.AliasDireccion, &d.Calle, &d.NumExt, &d.NumInt, &d.IDCp,
			&d.Referencias, &d.EsFiscal, &d.Colonia, &d.CodigoPostal, &d.IDMunicipio, &d.Municipio, &d.IDEntidad, &d.Entidad); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *MySQL) SaveDireccion(ctx context.Context, d *models.Direccion) error {
	if d.IDDireccion == "" {
		d.IDDireccion = uuid.NewString()
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO direcciones (id_direccion, id_cliente, alias_direccion, calle, num_ext, num_int, id_cp, referencias, es_fiscal)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, d.IDDireccion, d.IDCliente, d.AliasDireccion, d.Calle, d.NumExt, d.NumInt, d.IDCp, d.Referencias, d.EsFiscal)
		return err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM direcciones WHERE id_direccion = ? AND id_cliente = ?`, d.IDDireccion, d.IDCliente).Scan(&exists)
	if err != nil {
		return notFound(err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE direcciones SET alias_direccion = ?, calle = ?, num_ext = ?, num_int = ?, id_cp = ?, referencias = ?, es_fiscal = ?
		WHERE id_direccion = ?
	`, d.AliasDireccion, d.Calle, d.NumExt, d.NumInt, d.IDCp, d.Referencias, d.EsFiscal, d.IDDireccion)
	return err
}

func (s *MySQL) DeleteDireccion(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM direcciones WHERE id_direccion = ?`, id))
}

// ============================================================================
// Datos de facturación
// ============================================================================

func (s *MySQL) DatosFacturacion(ctx context.Context, idCliente string) ([]models.DatoFacturacion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id_dato_facturacion, id_cliente, razon_social, rfc, correo, cp_fiscal, id_regimen, regimen,
			id_uso_cfdi, uso_cfdi, id_forma_pago, forma_pago, id_metodo_pago, metodo_pago
		FROM datos_facturacion WHERE id_cliente = ?
		ORDER BY creado_en, id_dato_facturacion
	`, idCliente)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DatoFacturacion{}
	for rows.Next() {
		var d models.DatoFacturacion
		if err := rows.Scan(&d.IDDatoFacturacion, &d.IDCliente, &d.RazonSocial, &d.RFC, &d.Correo, &d.CPFiscal,
			&d.IDRegimen, &d.Regimen, &d.IDUsoCfdi, &d.UsoCfdi, &d.IDFormaPago, &d.FormaPago, &d.IDMetodoPago, &d.MetodoPago); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *MySQL) SaveDatoFacturacion(ctx context.Context, d *models.DatoFacturacion) error {
	if d.IDDatoFacturacion == "" {
		d.IDDatoFacturacion = uuid.NewString()
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO datos_facturacion (id_dato_facturacion, id_cliente, razon_social, rfc, correo, cp_fiscal,
				id_regimen, regimen, id_uso_cfdi, uso_cfdi, id_forma_pago, forma_pago, id_metodo_pago, metodo_pago)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, d.IDDatoFacturacion, d.IDCliente, d.RazonSocial, d.RFC, d.Correo, d.CPFiscal,
			d.IDRegimen, d.Regimen, d.IDUsoCfdi, d.UsoCfdi, d.IDFormaPago, d.FormaPago, d.IDMetodoPago, d.MetodoPago)
		return err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM datos_facturacion WHERE id_dato_facturacion = ? AND id_cliente = ?`,
		d.IDDatoFacturacion, d.IDCliente).Scan(&exists)
	if err != nil {
		return notFound(err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE datos_facturacion SET razon_social = ?, rfc = ?, correo = ?, cp_fiscal = ?, id_regimen = ?, regimen = ?,
			id_uso_cfdi = ?, uso_cfdi = ?, id_forma_pago = ?, forma_pago = ?, id_metodo_pago = ?, metodo_pago = ?
		WHERE id_dato_facturacion = ?
	`, d.RazonSocial, d.RFC, d.Correo, d.CPFiscal, d.IDRegimen, d.Regimen,
		d.IDUsoCfdi, d.UsoCfdi, d.IDFormaPago, d.FormaPago, d.IDMetodoPago, d.MetodoPago, d.IDDatoFacturacion)
	return err
}

func (s *MySQL) DeleteDatoFacturacion(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM datos_facturacion WHERE id_dato_facturacion = ?`, id))
}

// ============================================================================
// Catálogos
// ============================================================================

const coloniaColumns = `id_colonia, colonia, codigo_postal, id_municipio, municipio, id_entidad, entidad, id_pais, pais`

func (s *MySQL) Colonias(ctx context.Context, cp string) ([]models.Colonia, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+coloniaColumns+` FROM colonias WHERE codigo_postal = ? ORDER BY id_colonia`, cp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Colonia{}
	for rows.Next() {
		var c models.Colonia
		if err := rows.Scan(&c.IDColonia, &c.Colonia, &c.CodigoPostal, &c.IDMunicipio, &c.Municipio,
			&c.IDEntidad, &c.Entidad, &c.IDPais, &c.Pais); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *MySQL) ColoniaByID(ctx context.Context, id int) (*models.Colonia, error) {
	var c models.Colonia
	err := s.db.QueryRowContext(ctx, `SELECT `+coloniaColumns+` FROM colonias WHERE id_colonia = ?`, id).Scan(
		&c.IDColonia, &c.Colonia, &c.CodigoPostal, &c.IDMunicipio, &c.Municipio, &c.IDEntidad, &c.Entidad, &c.IDPais, &c.Pais)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *MySQL) Combos(ctx context.Context) ([]models.ComboItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT combo, valor, texto FROM combos ORDER BY combo, valor`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ComboItem{}
	for rows.Next() {
		var c models.ComboItem
		if err := rows.Scan(&c.Combo, &c.Valor, &c.Texto); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *MySQL) OfertasFlash(ctx context.Context) ([]models.Producto, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nombre, precio_original, precio_oferta, rating, tiempo_restante, imagen, link_detalle
		FROM productos ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Producto{}
	for rows.Next() {
		var p models.Producto
		if err := rows.Scan(&p.ID, &p.Nombre, &p.PrecioOriginal, &p.PrecioOferta, &p.Rating,
			&p.TiempoRestante, &p.Imagen, &p.LinkDetalle); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *MySQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
