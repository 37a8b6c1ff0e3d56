package sitehooks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a sitehooks site. It is built once at
// startup and passed by value to every component.
type Config struct {
	SiteName string // SITE_NAME (default "Blog")
	Favicon  string // SITE_FAVICON (default "/images/favicon.ico")

	SourceDir       string // SOURCE_DIR (default "source")
	ThemeConfigPath string // THEME_CONFIG (default "_config.butterfly.yml")
	OutputDir       string // build output (default "public")
	Addr            string // ADDR, dev server listen address (default ":4000")

	CDNBaseURL    string // CDN_BASE_URL; empty selects local image serving
	DefaultTopImg string // theme default_top_img, overridden by DEFAULT_TOP_IMG

	PostCacheTTL time.Duration // default 5min
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Blog"
	}
	if c.Favicon == "" {
		c.Favicon = "/images/favicon.ico"
	}
	if c.SourceDir == "" {
		c.SourceDir = "source"
	}
	if c.ThemeConfigPath == "" {
		c.ThemeConfigPath = "_config.butterfly.yml"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.Addr == "" {
		c.Addr = ":4000"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// ConfigFromEnv reads the process environment once. Theme settings are not
// loaded here; see LoadThemeConfig.
func ConfigFromEnv() Config {
	cfg := Config{
		SiteName:        os.Getenv("SITE_NAME"),
		Favicon:         os.Getenv("SITE_FAVICON"),
		SourceDir:       os.Getenv("SOURCE_DIR"),
		ThemeConfigPath: os.Getenv("THEME_CONFIG"),
		Addr:            os.Getenv("ADDR"),
		CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
		DefaultTopImg:   os.Getenv("DEFAULT_TOP_IMG"),
	}
	cfg.setDefaults()
	return cfg
}

// ThemeConfig is the subset of the theme's YAML configuration sitehooks reads.
type ThemeConfig struct {
	DefaultTopImg string
}

// LoadThemeConfig reads the theme YAML file at path. A missing file yields a
// zero ThemeConfig. A default_top_img that is not a string is ignored.
func LoadThemeConfig(path string) (ThemeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ThemeConfig{}, nil
		}
		return ThemeConfig{}, fmt.Errorf("read theme config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ThemeConfig{}, fmt.Errorf("parse theme config %s: %w", path, err)
	}
	var tc ThemeConfig
	if s, ok := raw["default_top_img"].(string); ok {
		tc.DefaultTopImg = strings.TrimSpace(s)
	}
	return tc, nil
}

// ApplyTheme fills settings the environment left empty from the theme config.
func (c *Config) ApplyTheme(tc ThemeConfig) {
	if c.DefaultTopImg == "" {
		c.DefaultTopImg = tc.DefaultTopImg
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithPlugins registers extra plugins after the built-in ones.
func WithPlugins(plugins ...Plugin) Option {
	return func(a *App) {
		a.plugins = append(a.plugins, plugins...)
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
