// Package markup turns the lightweight markup of posts and pages into
// sanitized HTML.
package markup

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markup to HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// HTML renders src. Raw HTML in the source is allowed through goldmark and
// then filtered by the sanitizer, so authors keep inline markup but never
// scripts.
func (r *Renderer) HTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// MustHTML is HTML for templates, where a conversion failure falls back to
// the escaped source.
func (r *Renderer) MustHTML(src string) template.HTML {
	out, err := r.HTML(src)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return out
}
