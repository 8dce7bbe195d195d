package http

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-offline/internal/application/dto"
	pkgjwt "github.com/jhoicas/Inventario-offline/pkg/jwt"
)

// AuthHandler emite tokens de sesión del dashboard a cambio de la clave de
// acceso compartida. Sin usuarios ni roles: la política de permisos vive en el
// backend autoritativo.
type AuthHandler struct {
	jwtSecret  string
	accessKey  string
	issuer     string
	expMinutes int
}

// NewAuthHandler construye el handler.
func NewAuthHandler(jwtSecret, accessKey, issuer string, expMinutes int) *AuthHandler {
	return &AuthHandler{
		jwtSecret:  jwtSecret,
		accessKey:  accessKey,
		issuer:     issuer,
		expMinutes: expMinutes,
	}
}

// Token intercambia la clave de acceso por un JWT de sesión.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in dto.TokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Actor) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "user_id y actor son requeridos"})
	}
	if h.accessKey == "" || subtle.ConstantTimeCompare([]byte(in.AccessKey), []byte(h.accessKey)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_KEY", Message: "clave de acceso inválida"})
	}

	token, err := pkgjwt.Generate(h.jwtSecret, in.UserID, in.Actor, h.issuer, h.expMinutes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(h.expMinutes) * time.Minute),
	})
}
