package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/pkg/jwt"
)

// AuthTokenHeader carries the static service token on incoming requests.
const AuthTokenHeader = "MCP-Auth-Token"

// AuthMiddleware authenticates incoming service calls. Two mechanisms are
// accepted: the static token header, or a Bearer JWT signed with the shared
// secret. Health checks are always allowed through.
type AuthMiddleware struct {
	staticToken string
	jwtManager  *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware. Either mechanism may be
// disabled by leaving its config empty, but not both.
func NewAuthMiddleware(staticToken string, jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		staticToken: staticToken,
		jwtManager:  jwtManager,
	}
}

// Authenticate returns the Echo middleware enforcing service auth.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/health" {
				return next(c)
			}

			if m.staticToken != "" {
				token := c.Request().Header.Get(AuthTokenHeader)
				if token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(m.staticToken)) == 1 {
					return next(c)
				}
			}

			if m.jwtManager != nil {
				if claims, err := m.jwtManager.ValidateServiceToken(extractBearer(c.Request())); err == nil {
					c.Set("service", claims.Service)
					return next(c)
				}
			}

			appErr := apperrors.ErrUnauthenticated()
			return echo.NewHTTPError(appErr.HTTPCode, appErr.Message)
		}
	}
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}
