package page

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markup"
	"git.home.luguber.info/inful/blogbuilder/internal/sidecar"
	"git.home.luguber.info/inful/blogbuilder/internal/summary"
)

// Builder runs individual pages through the build pipeline. It holds no
// per-page state and is reused for every page of a run.
type Builder struct {
	root      string // absolute source root
	renderer  *markup.Renderer
	log       *slog.Logger
	thumbSize int
}

func NewBuilder(root string, renderer *markup.Renderer, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{root: root, renderer: renderer, log: log}
}

// WithThumbSize overrides the default size of thumbnail directives that
// do not specify one.
func (b *Builder) WithThumbSize(size int) *Builder {
	b.thumbSize = size
	return b
}

// Build assembles the page at rel (relative to the source root). On
// failure the returned record is still populated as far as the pipeline
// got, with State set to Failed, so callers can introspect partially
// valid pages; the error carries the category for reporting.
func (b *Builder) Build(rel string) (*Record, error) {
	rec := &Record{
		SourcePath: strings.ReplaceAll(rel, "\\", "/"),
		Slug:       SlugFor(rel),
		State:      StateLoaded,
	}
	abs := filepath.Join(b.root, filepath.FromSlash(rel))

	raw, err := os.ReadFile(abs)
	if err != nil {
		return b.fail(rec, apperrors.FileUnreadable(rel, err))
	}

	header, body, err := frontmatter.Split(raw)
	if err != nil {
		return b.fail(rec, apperrors.MalformedFrontMatter(rel, err))
	}
	fields, err := frontmatter.ParseYAML(header)
	if err != nil {
		return b.fail(rec, apperrors.MalformedFrontMatter(rel, err))
	}
	rec.Meta = frontmatter.ParseMeta(fields)
	rec.Body = string(body)
	rec.State = StateFrontMatterParsed

	side, err := sidecar.Load(abs)
	if err != nil {
		return b.fail(rec, err)
	}
	rec.Extra = sidecar.Overlay(fields, side)

	if err := rec.Meta.Validate(rec.SourcePath); err != nil {
		return b.fail(rec, err)
	}
	rec.State = StateValidated

	html, err := b.render(rec, abs, body)
	if err != nil {
		return b.fail(rec, err)
	}
	rec.HTML = html
	rec.State = StateContentRendered

	rec.SummaryHTML, rec.HasSummary = summary.Extract(rec.HTML)
	rec.State = StateSummaryExtracted

	og := summary.ExtractOG(rec.HTML)
	rec.Description = og.Description
	rec.Image = og.Image
	rec.ImageAlt = og.ImageAlt
	rec.State = StateFinalized

	b.log.Debug("page finalized", logfields.Page(rec.SourcePath), slog.Bool("public", rec.Meta.Public))
	return rec, nil
}

// render dispatches on the source type: markdown bodies go through the
// markup renderer, .html sources keep their body verbatim (front matter
// and templating still apply).
func (b *Builder) render(rec *Record, abs string, body []byte) (string, error) {
	rc := markup.RenderContext{
		DocDir:           filepath.Dir(abs),
		Templating:       rec.Meta.UseTemplating,
		TemplateContext:  rec.Extra,
		DefaultThumbSize: b.thumbSize,
	}

	if strings.EqualFold(filepath.Ext(abs), ".html") {
		return b.renderer.RenderHTML(body, rc)
	}
	return b.renderer.Render(body, rc)
}

func (b *Builder) fail(rec *Record, err error) (*Record, error) {
	reached := rec.State
	rec.State = StateFailed
	b.log.Debug("page failed",
		logfields.Page(rec.SourcePath),
		logfields.Stage(reached.String()),
		logfields.Error(err))
	return rec, err
}
