package sitehooks

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

func (a *App) handleIndex(c echo.Context) error {
	posts, err := a.Cache.ListPosts()
	if err != nil {
		return err
	}
	page, err := a.RenderIndex(c.Request().Context(), posts)
	if err != nil {
		return err
	}
	return Render(c, page)
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	if s, err := url.PathUnescape(slug); err == nil {
		slug = s
	}
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	page, err := a.RenderPost(c.Request().Context(), post)
	if err != nil {
		return err
	}
	return Render(c, page)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
