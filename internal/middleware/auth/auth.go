package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minchat/auth_service/internal/models"
	"github.com/minchat/auth_service/internal/tokens"
)

// Context keys set for downstream handlers.
const (
	UserIDKey = "userID"
	UserKey   = "user"
)

type Middleware struct {
	DB           *gorm.DB
	AccessSecret []byte
}

// authenticate extracts and verifies the bearer token. A missing header, a
// non-Bearer scheme, a bad signature, an expired token and an empty subject
// are all the same failure to callers.
func (m *Middleware) authenticate(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("missing bearer token")
	}

	raw := strings.TrimPrefix(header, "Bearer ")
	claims, err := tokens.ClaimsFromToken(raw, m.AccessSecret)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("empty id claim")
	}

	return claims.Subject, nil
}

// RequireAuth rejects the request unless a valid access token is presented,
// and exposes the resolved user id to the handler.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := m.authenticate(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "Unauthorized")
		}

		c.Set(UserIDKey, userID)
		return next(c)
	}
}

// WithUser additionally loads the user record. The unauthorized body carries
// auth:false so /auth/me clients can branch on it without parsing the status.
func (m *Middleware) WithUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := m.authenticate(c)
		if err != nil {
			return c.JSON(http.StatusForbidden, echo.Map{"auth": false})
		}

		var user models.User
		if err := m.DB.WithContext(c.Request().Context()).
			Where("id = ?", userID).First(&user).Error; err != nil {
			return c.JSON(http.StatusForbidden, echo.Map{"auth": false})
		}

		c.Set(UserIDKey, userID)
		c.Set(UserKey, &user)
		return next(c)
	}
}
