// Package sitehooks carries the build and request hooks of a static blog:
// it points post images at a CDN or serves them from disk in development,
// and lets the theme's default banner take priority over a post's cover.
//
// The App type hosts those hooks. It loads markdown posts, runs them through
// the hook pipeline and either serves them with Echo or writes them out as a
// static site.
package sitehooks

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/yuin/goldmark"
)

// App wires the hooks, post cache, renderer and HTTP server together.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Hooks   *Hooks
	Cache   *PostCache
	Metrics *Metrics
	Images  *ImagePaths

	markdown     goldmark.Markdown
	plugins      []Plugin
	customRoutes []func(*App)
}

// New creates an App and registers the built-in plugins. Registration logs
// which image mode was selected.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	a := &App{
		Config:   cfg,
		Echo:     e,
		Metrics:  NewMetrics(),
		Images:   NewImagePaths(cfg.CDNBaseURL, cfg.SourceDir),
		markdown: newMarkdown(),
	}
	a.Cache = NewPostCache(func() ([]Post, error) {
		return LoadPosts(a.Config.SourceDir)
	}, cfg.PostCacheTTL)

	builtins := []Plugin{a.Images, TopImgPriority{DefaultTopImg: cfg.DefaultTopImg}}
	a.plugins = builtins

	for _, opt := range opts {
		opt(a)
	}

	a.Hooks = NewHooks(e.Logger, a.Metrics)
	a.Hooks.Register(a.plugins...)
	return a
}

// Setup installs middleware and routes. Start calls it; tests can call it
// directly and drive a.Echo with httptest.
func (a *App) Setup() {
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
}

// Start sets up the server, watches the posts directory and serves until ctx
// is cancelled or the listener fails.
func (a *App) Start(ctx context.Context) error {
	a.Setup()

	if err := a.watchPosts(ctx, filepath.Join(a.Config.SourceDir, postsDir)); err != nil {
		return fmt.Errorf("sitehooks: watch posts: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = a.Echo.Shutdown(context.Background())
	}()

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))
	e.GET("/", a.handleIndex)
	e.GET("/:slug/", a.handlePost)
}

// Close releases server resources.
func (a *App) Close() error {
	return a.Echo.Close()
}
