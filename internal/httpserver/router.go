package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minchat/auth_service/internal/handlers"
	authmw "github.com/minchat/auth_service/internal/middleware/auth"
)

type Deps struct {
	DB          *gorm.DB
	AuthHandler *handlers.AuthHandler
	AuthMW      *authmw.Middleware
}

type route struct {
	method     string
	path       string
	handler    echo.HandlerFunc
	middleware []echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = errorHandler

	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "OK") })

	routes := []route{
		{http.MethodPost, "/auth/signup", d.AuthHandler.Signup, nil},
		{http.MethodPost, "/auth/check/id", d.AuthHandler.CheckID, nil},
		{http.MethodPost, "/auth/login", d.AuthHandler.Login, nil},
		{http.MethodPost, "/auth/refresh", d.AuthHandler.Refresh, nil},
		{http.MethodGet, "/auth/user", d.AuthHandler.GetUser, nil},
		{http.MethodGet, "/auth/me", d.AuthHandler.Me, []echo.MiddlewareFunc{d.AuthMW.WithUser}},
		{http.MethodPatch, "/auth/user", d.AuthHandler.PatchUser, []echo.MiddlewareFunc{d.AuthMW.RequireAuth}},
	}

	for _, r := range routes {
		e.Add(r.method, r.path, r.handler, r.middleware...)
	}
}

// errorHandler is the terminal boundary: unmatched routes get the plain 404
// body, explicit HTTPErrors keep their code and message, anything else is a
// 500 carrying the error text.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound && errors.Is(err, echo.ErrNotFound) {
			_ = c.String(http.StatusNotFound, "Page not found!")
			return
		}
		_ = c.JSON(he.Code, echo.Map{"message": fmt.Sprintf("%v", he.Message)})
		return
	}

	_ = c.String(http.StatusInternalServerError, err.Error())
}
