package sitehooks

import (
	"github.com/labstack/echo/v4"
)

// HTMLFilter transforms a fully rendered HTML document.
type HTMLFilter func(html string) string

// FrontMatterFilter adjusts a page's front matter before it is rendered.
type FrontMatterFilter func(fm FrontMatter) FrontMatter

// Plugin registers handlers for the events it cares about.
type Plugin interface {
	Register(h *Hooks)
}

// Hooks dispatches the three site events: after-render, before-post-render
// and request. Handlers run in registration order. Registration is expected
// to finish before dispatch starts; dispatch itself is safe for concurrent use.
type Hooks struct {
	Logger  echo.Logger
	Metrics *Metrics

	afterRender      []HTMLFilter
	beforePostRender []FrontMatterFilter
	request          []echo.MiddlewareFunc
}

// NewHooks returns an empty dispatcher that logs to logger.
func NewHooks(logger echo.Logger, m *Metrics) *Hooks {
	return &Hooks{Logger: logger, Metrics: m}
}

// Register lets each plugin attach its handlers.
func (h *Hooks) Register(plugins ...Plugin) {
	for _, p := range plugins {
		p.Register(h)
	}
}

// OnAfterRender adds a filter for rendered HTML.
func (h *Hooks) OnAfterRender(f HTMLFilter) {
	h.afterRender = append(h.afterRender, f)
}

// OnBeforePostRender adds a filter for post front matter.
func (h *Hooks) OnBeforePostRender(f FrontMatterFilter) {
	h.beforePostRender = append(h.beforePostRender, f)
}

// OnRequest adds a request middleware. A middleware that does not want the
// request calls next without writing a response.
func (h *Hooks) OnRequest(m echo.MiddlewareFunc) {
	h.request = append(h.request, m)
}

// AfterRender runs html through every after-render filter.
func (h *Hooks) AfterRender(html string) string {
	for _, f := range h.afterRender {
		html = f(html)
	}
	return html
}

// BeforePostRender runs fm through every before-post-render filter.
func (h *Hooks) BeforePostRender(fm FrontMatter) FrontMatter {
	for _, f := range h.beforePostRender {
		fm = f(fm)
	}
	return fm
}

// Middleware returns the registered request middleware.
func (h *Hooks) Middleware() []echo.MiddlewareFunc {
	return h.request
}
