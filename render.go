package sitehooks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// heroImage picks the banner the way the theme does: top_img, then cover,
// then the theme default.
func heroImage(fm FrontMatter, themeDefault string) string {
	for _, key := range []string{"top_img", "cover"} {
		if s, ok := fm[key].(string); ok && s != "" {
			return s
		}
	}
	return themeDefault
}

// cssURL reports whether s can sit inside url('...') without ending it.
// Entities in a style attribute are decoded before CSS parsing, so HTML
// escaping does not cover this.
func cssURL(s string) bool {
	return !strings.ContainsAny(s, "'\"()\\\n\r\f")
}

func writeHead(w io.Writer, cfg Config, title string) error {
	_, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title><link rel="icon" href="%s"></head><body>`,
		templ.EscapeString(title), templ.EscapeString(cfg.Favicon))
	return err
}

// PostPage renders one post. fm is the post's front matter after the
// before-post-render hooks ran; body is rendered HTML.
func PostPage(cfg Config, post Post, fm FrontMatter, body []byte) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeHead(w, cfg, post.Title+" | "+cfg.SiteName); err != nil {
			return err
		}
		if hero := heroImage(fm, cfg.DefaultTopImg); hero != "" && cssURL(hero) {
			if _, err := fmt.Fprintf(w, `<header id="page-header" style="background-image: url('%s')"></header>`, templ.EscapeString(hero)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<article class="post"><h1>%s</h1>`, templ.EscapeString(post.Title)); err != nil {
			return err
		}
		if !post.Date.IsZero() {
			if _, err := fmt.Fprintf(w, `<time datetime="%s">%s</time>`, post.Date.Format("2006-01-02"), post.Date.Format("2006-01-02")); err != nil {
				return err
			}
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</article></body></html>`)
		return err
	})
}

// IndexPage lists posts newest first.
func IndexPage(cfg Config, posts []Post) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeHead(w, cfg, cfg.SiteName); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<h1>%s</h1><ul class="posts">`, templ.EscapeString(cfg.SiteName)); err != nil {
			return err
		}
		for _, p := range posts {
			if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`, p.Link(), templ.EscapeString(p.Title)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></body></html>`)
		return err
	})
}

// RenderPost runs a post through the full pipeline: before-post-render
// hooks, markdown, layout, after-render hooks.
func (a *App) RenderPost(ctx context.Context, post Post) (string, error) {
	fm := a.Hooks.BeforePostRender(post.FrontMatter.Clone())
	var body bytes.Buffer
	if err := a.markdown.Convert(post.Body, &body); err != nil {
		return "", fmt.Errorf("render %s: %w", post.Source, err)
	}
	out, err := a.RenderHTML(ctx, PostPage(a.Config, post, fm, body.Bytes()))
	if err != nil {
		return "", err
	}
	a.Metrics.pageRendered("post")
	return out, nil
}

// RenderIndex renders the post list through the after-render hooks.
func (a *App) RenderIndex(ctx context.Context, posts []Post) (string, error) {
	out, err := a.RenderHTML(ctx, IndexPage(a.Config, posts))
	if err != nil {
		return "", err
	}
	a.Metrics.pageRendered("index")
	return out, nil
}

// RenderHTML renders cmp and passes the result through the after-render hooks.
func (a *App) RenderHTML(ctx context.Context, cmp templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return "", err
	}
	return a.Hooks.AfterRender(buf.String()), nil
}

// RenderStatus writes an HTML page with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, page string) error {
	return c.HTML(code, page)
}

// Render writes an HTML page as an HTTP 200 response.
func Render(c echo.Context, page string) error {
	return RenderStatus(c, http.StatusOK, page)
}
