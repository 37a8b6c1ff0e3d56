package sitehooks

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	imagesURLPrefix = "/images/"
	postImagesDir   = "_posts/images"
)

// Each pattern captures everything up to the quote or paren in group 1 and
// then matches one of the relative prefixes /./images/, ./images/, /images/.
// The attribute name must follow whitespace, so data-src and similar are not
// taken for src. A bare images/ is left alone.
var (
	reImgSrc   = regexp.MustCompile(`(<img\s(?:[^>]*\s)?src=["'])(?:/\./|\./|/)images/`)
	reLinkHref = regexp.MustCompile(`(<link\s(?:[^>]*\s)?href=["'])(?:/\./|\./|/)images/`)
	reCSSURL   = regexp.MustCompile(`(url\(\s*["']?)(?:/\./|\./|/)images/`)
)

// ImagePaths points site images at a CDN when a base URL is configured and
// otherwise serves them from <source>/_posts/images.
type ImagePaths struct {
	baseURL string
	root    string
}

// NewImagePaths normalizes cdnBaseURL by stripping trailing slashes.
func NewImagePaths(cdnBaseURL, sourceDir string) *ImagePaths {
	return &ImagePaths{
		baseURL: strings.TrimRight(strings.TrimSpace(cdnBaseURL), "/"),
		root:    ImagesRoot(sourceDir),
	}
}

// CDNEnabled reports whether the plugin runs in CDN mode.
func (p *ImagePaths) CDNEnabled() bool {
	return p.baseURL != ""
}

// BaseURL returns the normalized CDN base URL, empty in local mode.
func (p *ImagePaths) BaseURL() string {
	return p.baseURL
}

// Register implements Plugin.
func (p *ImagePaths) Register(h *Hooks) {
	if p.CDNEnabled() {
		h.OnAfterRender(p.RewriteHTML)
		if h.Logger != nil {
			h.Logger.Infof("[cdn images] enabled, base URL: %s", p.baseURL)
		}
		return
	}
	h.OnRequest(p.ServeLocal(h.Metrics))
	if h.Logger != nil {
		h.Logger.Infof("[cdn images] CDN_BASE_URL not set, serving images from %s", p.root)
	}
}

// RewriteHTML replaces relative image prefixes in img src, link href and CSS
// url() references with the CDN base URL. Running it twice is a no-op.
func (p *ImagePaths) RewriteHTML(html string) string {
	repl := "${1}" + strings.ReplaceAll(p.baseURL, "$", "$$") + "/images/"
	html = reImgSrc.ReplaceAllString(html, repl)
	html = reLinkHref.ReplaceAllString(html, repl)
	return reCSSURL.ReplaceAllString(html, repl)
}

// resolve maps a request path under /images/ to a file under the images root.
// The remainder is cleaned as a rooted path so .. cannot climb above root.
func (p *ImagePaths) resolve(urlPath string) string {
	rest := path.Clean("/" + strings.TrimPrefix(urlPath, imagesURLPrefix))
	return filepath.Join(p.root, filepath.FromSlash(rest))
}

// ServeLocal returns middleware that answers /images/ requests for regular
// files under the images root and passes everything else to next untouched.
func (p *ImagePaths) ServeLocal(m *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			urlPath := c.Request().URL.Path
			if !strings.HasPrefix(urlPath, imagesURLPrefix) {
				return next(c)
			}
			file := p.resolve(urlPath)
			info, err := os.Stat(file)
			if err != nil || !info.Mode().IsRegular() {
				m.imageDeclined()
				return next(c)
			}
			f, err := os.Open(file)
			if err != nil {
				m.imageDeclined()
				return next(c)
			}
			defer f.Close()
			m.imageServed()
			return c.Stream(http.StatusOK, MIMEType(file), f)
		}
	}
}
