package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for the validated JWT claims
	ClaimsKey contextKey = "claims"
	// UserIDKey is the context key for the authenticated user id
	UserIDKey contextKey = "user_id"
)

// AuthMiddleware validates the HMAC-signed bearer tokens issued by the
// identity service. The token subject is the user id.
type AuthMiddleware struct {
	validator *validator.Validator
}

// NewAuthMiddleware creates an AuthMiddleware for the given issuer,
// audience and shared signing secret.
func NewAuthMiddleware(issuer, audience, secret string) (*AuthMiddleware, error) {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(secret), nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{validator: jwtValidator}, nil
}

// Authenticate returns an Echo middleware that validates bearer tokens and
// injects the user id into the request context.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
			}

			userID, err := uuid.Parse(validatedClaims.RegisteredClaims.Subject)
			if err != nil {
				log.Debug().Err(err).Msg("Token subject is not a user id")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user id from the context.
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetClaims extracts the validated claims from the context.
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// SetUserID injects a user id into the request context. Intended for tests.
func SetUserID(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}
