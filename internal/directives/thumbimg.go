package directives

import (
	"errors"
	"fmt"
	"html"

	"git.home.luguber.info/inful/blogbuilder/internal/thumbnail"
)

// DefaultThumbImgSize is the bounding size for single-image thumbnails.
const DefaultThumbImgSize = 300

// ThumbImg renders a single image reference as a generated thumbnail
// linked to the full-size image.
//
//	.. thumbimg:: sunset.jpg
//	   :thumbsize: 400
//	   :alt: Sunset over the bay
type ThumbImg struct{}

func (ThumbImg) Name() string { return "thumbimg" }

func (ThumbImg) Render(ctx *Context, inv *Invocation) (string, error) {
	if inv.Arg == "" {
		return "", errors.New("thumbimg requires an image path argument")
	}

	def := DefaultThumbImgSize
	if ctx.DefaultThumbSize > 0 {
		def = ctx.DefaultThumbSize
	}
	size, err := intOption(inv.Options, "thumbsize", def)
	if err != nil {
		return "", err
	}

	opts := thumbnail.Options{Size: size, Square: flagOption(inv.Options, "square")}
	th, err := ctx.Thumbs.Generate(ctx.DocDir, inv.Arg, opts)
	if err != nil {
		return "", err
	}

	alt := inv.Options["alt"]
	return fmt.Sprintf(
		`<a class="thumbimg" href="%s"><img src="%s" alt="%s" width="%d" height="%d"></a>`,
		html.EscapeString(inv.Arg), html.EscapeString(th.RelPath),
		html.EscapeString(alt), th.Width, th.Height), nil
}
