package middleware

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LocalUserID es la key de c.Locals con el id del usuario autenticado.
const LocalUserID = "userID"

// Claims son los claims de los tokens del backend.
type Claims struct {
	NombreUsuario string `json:"nombreUsuario"`
	Mail          string `json:"mail"`
	jwt.RegisteredClaims
}

// IssueToken firma un token HS256 para el usuario.
func IssueToken(secret []byte, ttl time.Duration, userID, nombreUsuario, mail string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(ttl)
	claims := Claims{
		NombreUsuario: nombreUsuario,
		Mail:          mail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	return signed, expires, err
}

// ParseToken valida firma, algoritmo y expiración.
func ParseToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("token inválido")
	}
	return claims, nil
}

// JWTAuth exige "Authorization: Bearer <token>" y deja el id del usuario en
// c.Locals(LocalUserID).
func JWTAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return unauthorized(c, "Sesión requerida")
		}
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "Token inválido")
		}

		claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("⚠️ [AUTH] token rechazado: %v", err)
			return unauthorized(c, "Sesión expirada, inicia sesión de nuevo")
		}
		c.Locals(LocalUserID, claims.Subject)
		return c.Next()
	}
}

// UserID es el id del usuario autenticado ("" si la ruta es pública).
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"exito": false,
		"error": msg,
	})
}
