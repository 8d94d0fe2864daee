package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL            = "https://api.pgpc.hub-development.net/api/"
	DefaultFacebookGraphURL  = "https://graph.facebook.com/v18.0/"
	DefaultPasswordMinLength = 12
)

// Client agrupa la configuración del cliente de la tienda.
type Client struct {
	APIBaseURL        string
	Timeout           time.Duration
	PasswordMinLength int
	StateDir          string
	ToastDelay        time.Duration
	FacebookGraphURL  string
}

// Server agrupa la configuración del backend local de desarrollo.
type Server struct {
	Port           string
	Env            string
	JWTSecret      string
	JWTTTL         time.Duration
	StoreDriver    string
	OTPTTL         time.Duration
	DebugDashboard bool
	PhotoDir       string

	// PasswordMinLength es la longitud mínima que acepta el backend.
	PasswordMinLength int
}

// devJWTSecret solo se usa fuera de producción cuando JWT_SECRET no existe.
const devJWTSecret = "pgpchub-dev-secret-change-me-0123456789"

// MinJWTSecretLength es la longitud mínima de JWT_SECRET.
const MinJWTSecretLength = 32

// LoadEnv carga el archivo .env si existe. Es seguro llamarlo varias veces.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println(".env not loaded:", err)
	}
}

// LoadClient lee la configuración del cliente desde el entorno.
func LoadClient() Client {
	LoadEnv()
	return Client{
		APIBaseURL:        getEnvOrDefault("PGPC_API_URL", DefaultAPIURL),
		Timeout:           getDurationEnv("PGPC_API_TIMEOUT", 15, time.Second),
		PasswordMinLength: getIntEnv("PGPC_PASSWORD_MIN_LENGTH", DefaultPasswordMinLength),
		StateDir:          getEnvOrDefault("PGPC_STATE_DIR", defaultStateDir()),
		ToastDelay:        getDurationEnv("PGPC_TOAST_DELAY_MS", 4000, time.Millisecond),
		FacebookGraphURL:  getEnvOrDefault("PGPC_FACEBOOK_GRAPH_URL", DefaultFacebookGraphURL),
	}
}

// LoadServer lee la configuración del backend desde el entorno.
func LoadServer() Server {
	LoadEnv()
	cfg := Server{
		Port:           getEnvOrDefault("PORT", "8080"),
		Env:            getEnvOrDefault("ENV", "development"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		JWTTTL:         24 * time.Hour,
		StoreDriver:    strings.ToLower(getEnvOrDefault("STORE_DRIVER", "memory")),
		OTPTTL:         getDurationEnv("OTP_TTL_MINUTES", 10, time.Minute),
		DebugDashboard: getBoolEnv("PGPC_DEBUG_DASHBOARD"),
		PhotoDir:       getEnvOrDefault("PHOTO_DIR", "./fotos"),

		PasswordMinLength: getIntEnv("PGPC_PASSWORD_MIN_LENGTH", 8),
	}
	if ttl := strings.TrimSpace(os.Getenv("JWT_TTL")); ttl != "" {
		dur, err := time.ParseDuration(ttl)
		if err != nil || dur <= 0 {
			log.Printf("invalid JWT_TTL=%q, using default %s", ttl, cfg.JWTTTL)
		} else {
			cfg.JWTTTL = dur
		}
	}
	return cfg
}

// Validate revisa el secreto JWT. Fuera de producción un secreto vacío se
// reemplaza por uno de desarrollo.
func (s *Server) Validate() error {
	if s.JWTSecret == "" {
		if s.IsProduction() {
			return fmt.Errorf("JWT_SECRET es requerido en producción")
		}
		log.Println("⚠️ JWT_SECRET no configurado, usando secreto de desarrollo")
		s.JWTSecret = devJWTSecret
	}
	if len(s.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET debe tener al menos %d caracteres", MinJWTSecretLength)
	}
	switch s.StoreDriver {
	case "memory", "mysql":
	default:
		return fmt.Errorf("STORE_DRIVER desconocido: %q", s.StoreDriver)
	}
	return nil
}

// IsProduction indica si el backend corre en producción.
func (s Server) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pgpchub"
	}
	return filepath.Join(home, ".pgpchub")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string) bool {
	value := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(value, "true") || value == "1"
}
