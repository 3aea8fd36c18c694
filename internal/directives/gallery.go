package directives

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/thumbnail"
)

// DefaultGallerySize is the shared thumbnail size for gallery items.
const DefaultGallerySize = 200

// ImageRef is one gallery entry: a path to the full-size image relative
// to the containing document, and an optional caption.
type ImageRef struct {
	Full string `yaml:"full"`
	Alt  string `yaml:"alt"`
}

type galleryItem struct {
	Full      string
	Alt       string
	Thumbnail string
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<div class="gallery-main center">
    <div class="gallery-main-view-container">
        <a id="gallery-prev" class="gallery-nav gallery-nav-left" href="#">
            <span class="gallery-nav-icon icon-backward">&larr;</span>
        </a>
        <a id="gallery-next" class="gallery-nav gallery-nav-right" href="#">
            <span class="gallery-nav-icon icon-forward">&rarr;</span>
        </a>
        <img id="gallery-main-view">
    </div>
    <div id="gallery-main-caption" class="center">
    </div>
</div>

<ul class="thumbnails center" style="clear: both">
{{- range .Items }}
    <li><a class="gallery-thumbnail" href="#" data-full="{{ .Full }}" title="{{ .Alt }}"
        ><img class="gallery-thumbnail"
            alt="{{ .Alt }}"
            src="{{ .Thumbnail }}"
        ></a></li>
{{- end }}
</ul>
`))

// Gallery renders an ordered collection of images as thumbnails linked
// to their full-size files. The image list comes from an external YAML
// file named by :images:, or from the directive's inline content; when
// both are given the external file wins.
//
//	.. gallery::
//	   :thumbsize: 150
//	   :square:
//
//	   - full: beach.jpg
//	     alt: The beach
type Gallery struct{}

func (Gallery) Name() string { return "gallery" }

func (Gallery) Render(ctx *Context, inv *Invocation) (string, error) {
	size, err := intOption(inv.Options, "thumbsize", DefaultGallerySize)
	if err != nil {
		return "", err
	}
	opts := thumbnail.Options{Size: size, Square: flagOption(inv.Options, "square")}

	refs, err := loadRefs(ctx, inv)
	if err != nil {
		return "", err
	}

	items := make([]galleryItem, 0, len(refs))
	for i, ref := range refs {
		if strings.TrimSpace(ref.Full) == "" {
			return "", fmt.Errorf("%w: entry %d is missing 'full'", apperrors.ErrGalleryData, i+1)
		}
		th, err := ctx.Thumbs.Generate(ctx.DocDir, ref.Full, opts)
		if err != nil {
			return "", err
		}
		items = append(items, galleryItem{Full: ref.Full, Alt: ref.Alt, Thumbnail: th.RelPath})
	}

	var buf bytes.Buffer
	if err := galleryTemplate.Execute(&buf, struct{ Items []galleryItem }{items}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// loadRefs picks the image list source. The external file referenced by
// :images: takes precedence over inline content; the two are never
// merged.
func loadRefs(ctx *Context, inv *Invocation) ([]ImageRef, error) {
	if listPath, ok := inv.Options["images"]; ok {
		if len(bytes.TrimSpace(inv.Content)) > 0 && ctx.Log != nil {
			ctx.Log.Debug("gallery has both :images: and inline content; using the file",
				logfields.Directive(inv.Name))
		}
		data, err := os.ReadFile(filepath.Join(ctx.DocDir, filepath.FromSlash(listPath)))
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read %s: %v", apperrors.ErrGalleryData, listPath, err)
		}
		return parseRefs(data, listPath)
	}

	if len(bytes.TrimSpace(inv.Content)) == 0 {
		return nil, fmt.Errorf("%w: no inline image list and no :images: option", apperrors.ErrGalleryData)
	}
	return parseRefs(inv.Content, "inline content")
}

func parseRefs(data []byte, origin string) ([]ImageRef, error) {
	var refs []ImageRef
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrGalleryData, origin, err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: %s holds no entries", apperrors.ErrGalleryData, origin)
	}
	return refs, nil
}
