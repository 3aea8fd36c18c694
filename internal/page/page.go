// Package page assembles a single source file into a finished page
// record, driving it through the build states.
package page

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// State tracks how far a page made it through the pipeline.
type State int

const (
	StateLoaded State = iota
	StateFrontMatterParsed
	StateValidated
	StateContentRendered
	StateSummaryExtracted
	StateFinalized
	StateFailed
)

var stateNames = map[State]string{
	StateLoaded:            "loaded",
	StateFrontMatterParsed: "frontmatter_parsed",
	StateValidated:         "validated",
	StateContentRendered:   "content_rendered",
	StateSummaryExtracted:  "summary_extracted",
	StateFinalized:         "finalized",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Record is one fully assembled page, handed to the template layer and
// then discarded; nothing persists between pages except thumbnail files.
type Record struct {
	SourcePath string // slash-separated, relative to the source root
	Slug       string

	Meta  frontmatter.Meta
	Extra map[string]any // merged front matter + sidecar context

	Body        string // raw body as authored
	HTML        string // rendered body
	SummaryHTML string // content before the break marker; full HTML without one
	HasSummary  bool   // true when a break marker was present

	Description string // first paragraph text, for previews
	Image       string // first image URL, for previews
	ImageAlt    string

	State State
}

// Publishable reports whether the record belongs in the published set:
// it finished the pipeline and its front matter marks it public.
func (r *Record) Publishable() bool {
	return r.State == StateFinalized && r.Meta.Public
}

// SlugFor derives the pretty-URL slug of a source path. An index page
// collapses onto its directory.
func SlugFor(sourcePath string) string {
	sourcePath = strings.ReplaceAll(sourcePath, "\\", "/")
	dir, file := path.Split(sourcePath)
	base := strings.TrimSuffix(file, path.Ext(file))
	if base == "index" {
		return strings.Trim(dir, "/")
	}
	return strings.Trim(path.Join(dir, base), "/")
}
