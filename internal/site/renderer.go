// Package site renders assembled pages and index listings into the
// output tree using html templates.
package site

import (
	"bytes"
	"embed"
	"html/template"
	"os"
	"path/filepath"
	"strconv"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/page"
	"git.home.luguber.info/inful/blogbuilder/internal/slug"
)

//go:embed layouts/*.html
var builtinLayouts embed.FS

// SiteMeta is the site-wide data every template sees.
type SiteMeta struct {
	Title        string
	Author       string
	CanonicalURL string
	Description  string
}

// Renderer writes the HTML output tree. Templates come from the
// embedded defaults unless a user override directory is given; any
// layout file present there shadows the embedded one of the same name.
type Renderer struct {
	out  string
	site SiteMeta
	tmpl *template.Template
}

func NewRenderer(out string, site SiteMeta, overrideDir string) (*Renderer, error) {
	funcs := template.FuncMap{"tagslug": slug.Make}
	tmpl, err := template.New("site").Funcs(funcs).ParseFS(builtinLayouts, "layouts/*.html")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInternal, apperrors.SeverityFatal,
			"parse builtin layouts")
	}
	if overrideDir != "" {
		overrides, globErr := filepath.Glob(filepath.Join(overrideDir, "*.html"))
		if globErr != nil {
			return nil, apperrors.FileUnreadable(overrideDir, globErr)
		}
		if len(overrides) > 0 {
			tmpl, err = tmpl.ParseFiles(overrides...)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
					"parse layout overrides")
			}
		}
	}
	return &Renderer{out: out, site: site, tmpl: tmpl}, nil
}

// header is embedded in every template data struct so the shared head
// and foot fragments always find Site and DocTitle.
type header struct {
	Site     SiteMeta
	DocTitle string // document-specific title; empty on the front page
}

type pageData struct {
	header
	Page *page.Record
	// Body and Summary are the pre-rendered fragments; they are
	// produced by our own pipeline, not user input from the web.
	Body    template.HTML
	Summary template.HTML
}

type listEntry struct {
	Page    *page.Record
	Summary template.HTML
}

type listData struct {
	header
	Entries []listEntry
}

type archiveData struct {
	header
	Years []yearEntry
}

type yearEntry struct {
	Year    int
	Entries []listEntry
}

type yearData struct {
	header
	Year    int
	Entries []listEntry
}

type tagData struct {
	header
	Tag     string
	Entries []listEntry
}

type tagListData struct {
	header
	Tags []tagEntry
}

type tagEntry struct {
	Tag   string
	Slug  string
	Count int
}

// RenderPage writes one page at <out>/<slug>/index.html. The empty slug
// is the site root.
func (r *Renderer) RenderPage(rec *page.Record) error {
	data := pageData{
		header:  header{Site: r.site, DocTitle: rec.Meta.Title},
		Page:    rec,
		Body:    template.HTML(rec.HTML),
		Summary: template.HTML(rec.SummaryHTML),
	}
	return r.write(filepath.Join(rec.Slug, "index.html"), "page.html", data)
}

// RenderIndex writes the front page listing, newest first.
func (r *Renderer) RenderIndex(pages []*page.Record) error {
	data := listData{header: header{Site: r.site}, Entries: entries(pages)}
	return r.write("index.html", "index.html", data)
}

// RenderArchive writes the full chronological archive at /archive/.
func (r *Renderer) RenderArchive(years []YearSource) error {
	data := archiveData{header: header{Site: r.site, DocTitle: "Archive"}}
	for _, y := range years {
		data.Years = append(data.Years, yearEntry{Year: y.Year, Entries: entries(y.Pages)})
	}
	return r.write(filepath.Join("archive", "index.html"), "archive.html", data)
}

// RenderYear writes one year's listing at /<year>/.
func (r *Renderer) RenderYear(year int, pages []*page.Record) error {
	data := yearData{
		header:  header{Site: r.site, DocTitle: strconv.Itoa(year)},
		Year:    year,
		Entries: entries(pages),
	}
	return r.write(filepath.Join(strconv.Itoa(year), "index.html"), "year.html", data)
}

// RenderTag writes one tag's listing at /tags/<slug>/.
func (r *Renderer) RenderTag(tag, tagSlug string, pages []*page.Record) error {
	data := tagData{
		header:  header{Site: r.site, DocTitle: tag},
		Tag:     tag,
		Entries: entries(pages),
	}
	return r.write(filepath.Join("tags", tagSlug, "index.html"), "tag.html", data)
}

// RenderTagCloud writes the tag overview at /tags/.
func (r *Renderer) RenderTagCloud(tags []TagSource) error {
	data := tagListData{header: header{Site: r.site, DocTitle: "Tags"}}
	for _, t := range tags {
		data.Tags = append(data.Tags, tagEntry{Tag: t.Tag, Slug: t.Slug, Count: len(t.Pages)})
	}
	return r.write(filepath.Join("tags", "index.html"), "tags.html", data)
}

// YearSource and TagSource mirror the build package's archive groupings
// without importing it, keeping the dependency one-way.
type YearSource struct {
	Year  int
	Pages []*page.Record
}

type TagSource struct {
	Tag   string
	Slug  string
	Pages []*page.Record
}

func entries(pages []*page.Record) []listEntry {
	out := make([]listEntry, 0, len(pages))
	for _, p := range pages {
		out = append(out, listEntry{Page: p, Summary: template.HTML(p.SummaryHTML)})
	}
	return out
}

func (r *Renderer) write(rel, layout string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, layout, data); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryRender, apperrors.SeverityError,
			"execute layout "+layout)
	}
	path := filepath.Join(r.out, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.FileUnwritable(path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return apperrors.FileUnwritable(path, err)
	}
	return nil
}
