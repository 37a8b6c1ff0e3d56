package sitehooks

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter is returned when a document opens a front
// matter block but never closes it.
var ErrMissingClosingDelimiter = errors.New("front matter: missing closing ---")

// FrontMatter is one page's metadata record.
type FrontMatter map[string]any

// Clone returns a shallow copy so filters can mutate it without touching
// the cached original.
func (fm FrontMatter) Clone() FrontMatter {
	out := make(FrontMatter, len(fm))
	for k, v := range fm {
		out[k] = v
	}
	return out
}

// String returns the value at key if it is a string.
func (fm FrontMatter) String(key string) string {
	s, _ := fm[key].(string)
	return s
}

// SplitFrontMatter separates a --- delimited YAML block from the body.
// Documents without an opening delimiter return had == false and the full
// content as body.
func SplitFrontMatter(content []byte) (fm []byte, body []byte, had bool, err error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	closeSeq := []byte(nl + "---")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	after := rest[idx+len(closeSeq):]
	switch {
	case len(after) == 0:
	case bytes.HasPrefix(after, []byte(nl)):
		after = after[len(nl):]
	default:
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], after, true, nil
}

// ParseFrontMatter splits content and decodes the YAML block. The returned
// record is never nil.
func ParseFrontMatter(content []byte) (FrontMatter, []byte, error) {
	raw, body, had, err := SplitFrontMatter(content)
	if err != nil {
		return nil, nil, err
	}
	fm := FrontMatter{}
	if !had || len(bytes.TrimSpace(raw)) == 0 {
		return fm, body, nil
	}
	if err := yaml.Unmarshal(raw, &fm); err != nil {
		return nil, nil, fmt.Errorf("front matter: %w", err)
	}
	if fm == nil {
		fm = FrontMatter{}
	}
	return fm, body, nil
}

// TopImgPriority makes the theme's default_top_img win over a post's cover.
// The theme normally picks page.top_img, then page.cover, then the theme
// default; filling top_img before render moves the default ahead of cover.
type TopImgPriority struct {
	DefaultTopImg string
}

// Register implements Plugin.
func (p TopImgPriority) Register(h *Hooks) {
	h.OnBeforePostRender(p.Apply)
}

// Apply sets top_img to the theme default on post-layout pages that leave it
// unset. Only layout and top_img are read; nothing else is touched.
func (p TopImgPriority) Apply(fm FrontMatter) FrontMatter {
	if fm == nil || p.DefaultTopImg == "" {
		return fm
	}
	if layout, _ := fm["layout"].(string); layout != "post" {
		return fm
	}
	if truthy(fm["top_img"]) {
		return fm
	}
	fm["top_img"] = p.DefaultTopImg
	return fm
}

// truthy reports whether a decoded YAML value counts as set.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}
