package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// DSN arma la cadena de conexión de MariaDB/MySQL desde DB_USER, DB_PASS,
// DB_HOST, DB_PORT y DB_NAME.
func DSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn
	}
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3306"
	}
	if name == "" {
		name = "pgpchub"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4,utf8", user, pass, host, port, name)
}

// Connect abre la conexión con el DSN dado.
func Connect(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return conn, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
		id CHAR(36) PRIMARY KEY,
		nombre_usuario VARCHAR(50) NOT NULL UNIQUE,
		mail VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		ukey CHAR(36) NOT NULL,
		activo TINYINT(1) NOT NULL DEFAULT 0,
		auth_2fa TINYINT(1) NOT NULL DEFAULT 0,
		mail_verificado TINYINT(1) NOT NULL DEFAULT 0,
		es_red_social TINYINT(1) NOT NULL DEFAULT 0,
		intentos_fallidos INT NOT NULL DEFAULT 0,
		creado_en TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_usuarios_ukey (ukey)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS clientes (
		id CHAR(36) PRIMARY KEY,
		id_usuario CHAR(36) NOT NULL UNIQUE,
		nombres VARCHAR(100) NOT NULL DEFAULT '',
		apellido_paterno VARCHAR(100) NOT NULL DEFAULT '',
		apellido_materno VARCHAR(100) NOT NULL DEFAULT '',
		telefono VARCHAR(10) NOT NULL DEFAULT '',
		path_foto VARCHAR(255) NOT NULL DEFAULT '',
		FOREIGN KEY (id_usuario) REFERENCES usuarios(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS colonias (
		id_colonia INT PRIMARY KEY,
		colonia VARCHAR(150) NOT NULL,
		codigo_postal CHAR(5) NOT NULL,
		id_municipio INT NOT NULL,
		municipio VARCHAR(150) NOT NULL,
		id_entidad INT NOT NULL,
		entidad VARCHAR(100) NOT NULL,
		id_pais INT NOT NULL,
		pais VARCHAR(100) NOT NULL,
		INDEX idx_colonias_cp (codigo_postal)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS direcciones (
		id_direccion CHAR(36) PRIMARY KEY,
		id_cliente CHAR(36) NOT NULL,
		alias_direccion VARCHAR(50) NOT NULL,
		calle VARCHAR(150) NOT NULL,
		num_ext VARCHAR(20) NOT NULL,
		num_int VARCHAR(20) NOT NULL DEFAULT '',
		id_cp INT NOT NULL,
		referencias VARCHAR(250) NOT NULL DEFAULT '',
		es_fiscal TINYINT(1) NOT NULL DEFAULT 0,
		creado_en TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (id_cliente) REFERENCES clientes(id) ON DELETE CASCADE,
		FOREIGN KEY (id_cp) REFERENCES colonias(id_colonia)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS datos_facturacion (
		id_dato_facturacion CHAR(36) PRIMARY KEY,
		id_cliente CHAR(36) NOT NULL,
		razon_social VARCHAR(250) NOT NULL,
		rfc VARCHAR(13) NOT NULL,
		correo VARCHAR(255) NOT NULL,
		cp_fiscal CHAR(5) NOT NULL,
		id_regimen VARCHAR(10) NOT NULL,
		regimen VARCHAR(150) NOT NULL DEFAULT '',
		id_uso_cfdi VARCHAR(10) NOT NULL,
		uso_cfdi VARCHAR(150) NOT NULL DEFAULT '',
		id_forma_pago VARCHAR(10) NOT NULL,
		forma_pago VARCHAR(150) NOT NULL DEFAULT '',
		id_metodo_pago VARCHAR(10) NOT NULL,
		metodo_pago VARCHAR(150) NOT NULL DEFAULT '',
		creado_en TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (id_cliente) REFERENCES clientes(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS combos (
		combo VARCHAR(30) NOT NULL,
		valor VARCHAR(10) NOT NULL,
		texto VARCHAR(150) NOT NULL,
		PRIMARY KEY (combo, valor)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,

	`CREATE TABLE IF NOT EXISTS productos (
		id INT PRIMARY KEY,
		nombre VARCHAR(150) NOT NULL,
		precio_original DECIMAL(10,2) NOT NULL,
		precio_oferta DECIMAL(10,2) NOT NULL,
		rating DECIMAL(2,1) NOT NULL DEFAULT 0,
		tiempo_restante VARCHAR(8) NOT NULL DEFAULT '',
		imagen VARCHAR(255) NOT NULL DEFAULT '',
		link_detalle VARCHAR(255) NOT NULL DEFAULT ''
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
}

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(db *sql.DB) error {
	if skip := strings.TrimSpace(os.Getenv("DB_SKIP_SCHEMA")); strings.EqualFold(skip, "true") || skip == "1" {
		log.Printf("EnsureSchema: skipped (DB_SKIP_SCHEMA=%q)", skip)
		return nil
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
