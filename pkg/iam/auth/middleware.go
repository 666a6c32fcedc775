package auth

import (
	"strings"

	"github.com/Abraxas-365/workforce/pkg/iam/scopes"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// TokenMiddleware autentica cada request con un bearer token y deja el
// AuthContext disponible para los handlers
type TokenMiddleware struct {
	tokenService *JWTService
}

// NewTokenMiddleware crea un nuevo middleware de autenticación
func NewTokenMiddleware(tokenService *JWTService) *TokenMiddleware {
	return &TokenMiddleware{tokenService: tokenService}
}

// Authenticate valida el token y construye el AuthContext
func (m *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var token string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
				token = parts[1]
			}
		}

		if token == "" {
			token = c.Cookies("access_token")
		}

		if token == "" {
			return ErrUnauthorized()
		}

		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			return err
		}

		userID := claims.UserID
		authContext := &kernel.AuthContext{
			UserID: &userID,
			Role:   claims.Role,
			Email:  claims.Email,
			Name:   claims.Name,
			Scopes: claims.Scopes,
		}

		c.Locals("auth", authContext)
		return c.Next()
	}
}

// RequireScope exige un scope específico
func (m *TokenMiddleware) RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authContext, ok := GetAuthContext(c)
		if !ok {
			return ErrUnauthorized()
		}

		if !authContext.HasAnyScope(scopes.ScopeAll, scopes.ScopeAdminAll, scope) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":          "Insufficient permissions",
				"required_scope": scope,
			})
		}

		return c.Next()
	}
}

// RequireAdmin exige rol de administrador de plataforma
func (m *TokenMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authContext, ok := GetAuthContext(c)
		if !ok {
			return ErrUnauthorized()
		}

		if !authContext.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin role required",
			})
		}

		return c.Next()
	}
}

// GetAuthContext extrae el AuthContext del request
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	authContext, ok := c.Locals("auth").(*kernel.AuthContext)
	return authContext, ok
}
