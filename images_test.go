package sitehooks

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteHTML(t *testing.T) {
	p := NewImagePaths("https://cdn.example.com", "source")
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"img absolute prefix",
			`<img src="/images/a.png">`,
			`<img src="https://cdn.example.com/images/a.png">`,
		},
		{
			"img dot prefix",
			`<img src="./images/cpp/b.jpg" alt="b">`,
			`<img src="https://cdn.example.com/images/cpp/b.jpg" alt="b">`,
		},
		{
			"img slash dot prefix single quotes",
			`<img src='/./images/c.gif'>`,
			`<img src='https://cdn.example.com/images/c.gif'>`,
		},
		{
			"src is not the first attribute",
			`<img class="hero" loading="lazy" src="/images/d.webp">`,
			`<img class="hero" loading="lazy" src="https://cdn.example.com/images/d.webp">`,
		},
		{
			"link href",
			`<link rel="icon" href="/images/favicon.ico">`,
			`<link rel="icon" href="https://cdn.example.com/images/favicon.ico">`,
		},
		{
			"css url quoted",
			`<div style="background-image: url('/images/bg.png')"></div>`,
			`<div style="background-image: url('https://cdn.example.com/images/bg.png')"></div>`,
		},
		{
			"css url unquoted",
			`.x{background:url(./images/bg.png)}`,
			`.x{background:url(https://cdn.example.com/images/bg.png)}`,
		},
		{
			"css url double quoted with space",
			`.x{background:url( "/./images/bg.png")}`,
			`.x{background:url( "https://cdn.example.com/images/bg.png")}`,
		},
		{
			"absolute url untouched",
			`<img src="https://other.example.org/images/a.png">`,
			`<img src="https://other.example.org/images/a.png">`,
		},
		{
			"other segment untouched",
			`<img src="/img/a.png"><link href="/css/site.css">`,
			`<img src="/img/a.png"><link href="/css/site.css">`,
		},
		{
			"bare images prefix untouched",
			`<img src="images/a.png">`,
			`<img src="images/a.png">`,
		},
		{
			"data-src is not taken for src",
			`<img src="/images/a.png" data-src="/images/b.png">`,
			`<img src="https://cdn.example.com/images/a.png" data-src="/images/b.png">`,
		},
		{
			"data-href is not taken for href",
			`<link data-href="/images/x.ico" href="./images/i.ico">`,
			`<link data-href="/images/x.ico" href="https://cdn.example.com/images/i.ico">`,
		},
		{
			"srcset untouched",
			`<img srcset="/images/a.png 2x">`,
			`<img srcset="/images/a.png 2x">`,
		},
		{
			"anchor href untouched",
			`<a href="/images/a.png">a</a>`,
			`<a href="/images/a.png">a</a>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.RewriteHTML(tt.input))
		})
	}
}

func TestRewriteHTMLMultipleOccurrences(t *testing.T) {
	p := NewImagePaths("https://cdn.example.com", "source")
	input := `<p><img src="/images/1.png"><img src="./images/2.png"></p>` +
		`<link rel="icon" href="/images/i.ico"><style>.a{background:url(/images/3.png)}</style>`
	want := `<p><img src="https://cdn.example.com/images/1.png"><img src="https://cdn.example.com/images/2.png"></p>` +
		`<link rel="icon" href="https://cdn.example.com/images/i.ico"><style>.a{background:url(https://cdn.example.com/images/3.png)}</style>`
	assert.Equal(t, want, p.RewriteHTML(input))
}

func TestRewriteHTMLIdempotent(t *testing.T) {
	p := NewImagePaths("https://cdn.example.com", "source")
	input := `<img src="/images/a.png"><link href="./images/b.ico"><i style="background:url('/./images/c.png')"></i>`
	once := p.RewriteHTML(input)
	assert.Equal(t, once, p.RewriteHTML(once))
}

func TestRewriteHTMLTrailingSlashes(t *testing.T) {
	input := `<img src="/images/a.png">`
	plain := NewImagePaths("https://cdn.example.com", "source")
	slashed := NewImagePaths("https://cdn.example.com///", "source")
	assert.Equal(t, "https://cdn.example.com", slashed.BaseURL())
	assert.Equal(t, plain.RewriteHTML(input), slashed.RewriteHTML(input))
}

func TestRewriteHTMLDollarInBaseURL(t *testing.T) {
	p := NewImagePaths("https://cdn.example.com/$1", "source")
	assert.Equal(t,
		`<img src="https://cdn.example.com/$1/images/a.png">`,
		p.RewriteHTML(`<img src="/images/a.png">`))
}

func newTestLogger(buf *bytes.Buffer) *log.Logger {
	l := log.New("test")
	l.SetOutput(buf)
	l.SetLevel(log.INFO)
	return l
}

func TestImagePathsRegisterCDNMode(t *testing.T) {
	var buf bytes.Buffer
	h := NewHooks(newTestLogger(&buf), nil)
	h.Register(NewImagePaths("https://cdn.example.com/", "source"))

	assert.Empty(t, h.Middleware())
	assert.Equal(t, `<img src="https://cdn.example.com/images/a.png">`, h.AfterRender(`<img src="/images/a.png">`))
	assert.Contains(t, buf.String(), "https://cdn.example.com")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("[cdn images]")))
}

func TestImagePathsRegisterLocalMode(t *testing.T) {
	for _, base := range []string{"", "  ", "///"} {
		var buf bytes.Buffer
		h := NewHooks(newTestLogger(&buf), nil)
		p := NewImagePaths(base, "source")
		h.Register(p)

		assert.False(t, p.CDNEnabled(), "base %q", base)
		assert.Len(t, h.Middleware(), 1)
		assert.Equal(t, `<img src="/images/a.png">`, h.AfterRender(`<img src="/images/a.png">`))
		assert.Contains(t, buf.String(), "CDN_BASE_URL not set")
	}
}

// imageSite lays out <src>/_posts/images with one png, a nested jpg, a
// directory and a file outside the images root.
func imageSite(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	root := ImagesRoot(src)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cpp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.png"), []byte("png-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cpp", "B.JPG"), []byte("jpg-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "secret.txt"), []byte("secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "_posts", "secret.txt"), []byte("secret"), 0o644))
	return src
}

func serveLocal(t *testing.T, src, target string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := func(c echo.Context) error {
		called = true
		return nil
	}
	h := NewImagePaths("", src).ServeLocal(nil)(next)
	require.NoError(t, h(c))
	return rec, called
}

func TestServeLocalExistingFile(t *testing.T) {
	src := imageSite(t)

	rec, called := serveLocal(t, src, "/images/a.png")
	assert.False(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec, called = serveLocal(t, src, "/images/cpp/B.JPG")
	assert.False(t, called)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "jpg-bytes", rec.Body.String())
}

func TestServeLocalDeclines(t *testing.T) {
	src := imageSite(t)
	for _, target := range []string{
		"/images/missing.png",
		"/images/cpp",
		"/images/cpp/",
		"/images/",
		"/images/../secret.txt",
		"/images/../../secret.txt",
		"/images/cpp/../../../secret.txt",
		"/other/a.png",
	} {
		rec, called := serveLocal(t, src, target)
		assert.True(t, called, "target %s", target)
		assert.Zero(t, rec.Body.Len(), "target %s", target)
		assert.Empty(t, rec.Header().Get(echo.HeaderContentType), "target %s", target)
	}
}

func TestNilMetricsHandler(t *testing.T) {
	var m *Metrics
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeLocalCountsMetrics(t *testing.T) {
	src := imageSite(t)
	m := NewMetrics()
	e := echo.New()
	mw := NewImagePaths("", src).ServeLocal(m)
	next := func(c echo.Context) error { return nil }

	for _, target := range []string{"/images/a.png", "/images/a.png", "/images/nope.png"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		require.NoError(t, mw(next)(c))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "sitehooks_images_served_total 2")
	assert.Contains(t, rec.Body.String(), "sitehooks_images_declined_total 1")
}
