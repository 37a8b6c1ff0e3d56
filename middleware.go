package sitehooks

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(devCacheControl)

	// Echo applies Use middleware to unmatched paths too, so request hooks
	// see /images/ requests before the 404 handler.
	e.Use(a.Hooks.Middleware()...)
}

// devCacheControl disables browser caching so edits show up on reload.
func devCacheControl(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !strings.HasPrefix(c.Request().URL.Path, "/metrics") {
			c.Response().Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		return next(c)
	}
}
