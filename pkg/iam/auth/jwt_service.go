package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Abraxas-365/workforce/pkg/config"
	"github.com/Abraxas-365/workforce/pkg/errx"
	"github.com/Abraxas-365/workforce/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService valida los tokens emitidos por el colaborador externo de auth.
// Este servicio no emite tokens de usuario: la identidad llega ya firmada y
// aquí solo se verifica y se convierte en un AuthContext.
type JWTService struct {
	secretKey []byte
	issuer    string
	audience  []string
}

// NewJWTServiceFromConfig crea una nueva instancia del servicio JWT
func NewJWTServiceFromConfig(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
	}
}

// JWTClaims son los claims que el colaborador de auth firma en cada token
type JWTClaims struct {
	UserID kernel.UserID `json:"user_id"`
	Role   kernel.Role   `json:"role"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	Scopes []string      `json:"scopes"`
	jwt.RegisteredClaims
}

// ValidateAccessToken valida y decodifica un token de acceso
func (j *JWTService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid().WithDetail("error", err.Error())
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid().WithDetail("error", "invalid claims type")
	}
	return claims, nil
}

// GenerateAccessToken emite un token firmado con los mismos claims que el
// colaborador de auth. Se usa en desarrollo y en tests.
func (j *JWTService) GenerateAccessToken(userID kernel.UserID, role kernel.Role, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Role:   role,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID.String(),
			Audience:  j.audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", errx.Wrap(err, "failed to sign access token", errx.TypeInternal)
	}
	return signed, nil
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeUnauthorized = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthentication, http.StatusUnauthorized, "Autenticación requerida")
	CodeTokenInvalid = ErrRegistry.Register("TOKEN_INVALID", errx.TypeAuthentication, http.StatusUnauthorized, "Token inválido o expirado")
)

func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrTokenInvalid() *errx.Error {
	return ErrRegistry.New(CodeTokenInvalid)
}
