// Package markup converts page bodies (Markdown plus body directives)
// into HTML fragments.
package markup

import (
	"bytes"
	"errors"
	"log/slog"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/blogbuilder/internal/directives"
	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/thumbnail"
)

// RenderContext is the per-document input to a render call.
type RenderContext struct {
	DocDir          string // absolute directory of the source document
	Templating      bool   // expand templating directives before rendering
	TemplateContext map[string]any

	// DefaultThumbSize overrides the directive default when positive.
	DefaultThumbSize int
}

// Renderer turns Markdown bodies into HTML. Raw HTML passes through
// unchanged so break markers and hand-written fragments survive; the
// source corpus is single-author, not untrusted input.
type Renderer struct {
	registry *directives.Registry
	thumbs   *thumbnail.Generator
	log      *slog.Logger
}

func NewRenderer(registry *directives.Registry, thumbs *thumbnail.Generator, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{registry: registry, thumbs: thumbs, log: log}
}

// Render converts body to HTML. When rc.Templating is set the body is
// first expanded as a text template over the page context, mirroring the
// front matter's use_templating switch.
func (r *Renderer) Render(body []byte, rc RenderContext) (string, error) {
	if rc.Templating {
		expanded, err := r.expandTemplate(body, rc.TemplateContext)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.CategoryRender, apperrors.SeverityError,
				"templating expansion failed")
		}
		body = expanded
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&directiveExtension{
				registry: r.registry,
				dctx: &directives.Context{
					DocDir:           rc.DocDir,
					Thumbs:           r.thumbs,
					Log:              r.log,
					DefaultThumbSize: rc.DefaultThumbSize,
				},
			},
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		var be *apperrors.BuildError
		if errors.As(err, &be) {
			return "", err
		}
		return "", apperrors.Wrap(err, apperrors.CategoryRender, apperrors.SeverityError,
			"markdown conversion failed")
	}
	return buf.String(), nil
}

// RenderHTML handles sources that are already HTML: no Markdown pass,
// but the templating switch still applies.
func (r *Renderer) RenderHTML(body []byte, rc RenderContext) (string, error) {
	if rc.Templating {
		expanded, err := r.expandTemplate(body, rc.TemplateContext)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.CategoryRender, apperrors.SeverityError,
				"templating expansion failed")
		}
		body = expanded
	}
	return string(body), nil
}

func (r *Renderer) expandTemplate(body []byte, context map[string]any) ([]byte, error) {
	tmpl, err := template.New("body").Parse(string(body))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
