// Package thumbnail generates scaled image files next to their sources,
// reusing previously generated files when they are still fresh.
package thumbnail

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const jpegQuality = 85

// Options controls how a thumbnail is produced. Size is the target in
// pixels: the longer dimension for a bounding-box scale, the side length
// for a square crop.
type Options struct {
	Size   int
	Square bool
}

// Thumb describes a generated (or reused) thumbnail file.
type Thumb struct {
	RelPath string // relative to the referencing document, forward slashes
	Width   int
	Height  int
}

// Generator produces thumbnails into the directory of the source image.
// It is not safe for concurrent use; the build pipeline is single-pass.
type Generator struct {
	log *slog.Logger
}

func NewGenerator(log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{log: log}
}

// CacheName derives the deterministic thumbnail file name for a source
// image basename and options. Same inputs, same name; a size or square
// change yields a distinct cache entry.
func CacheName(basename string, opts Options) string {
	square := ""
	if opts.Square {
		square = "s"
	}
	return fmt.Sprintf("thumb_%d%s_%s", opts.Size, square, basename)
}

// Generate scales the image at rel (relative to docDir) down to the
// requested size, writing the result next to the source. If a thumbnail
// with the same options already exists and is not older than the source,
// it is reused without decoding the source again.
func (g *Generator) Generate(docDir, rel string, opts Options) (Thumb, error) {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	srcAbs := filepath.Join(docDir, filepath.FromSlash(rel))

	srcInfo, err := os.Stat(srcAbs)
	if err != nil {
		return Thumb{}, fmt.Errorf("%w: %s", apperrors.ErrImageNotFound, rel)
	}

	thumbRel := path.Join(path.Dir(rel), CacheName(path.Base(rel), opts))
	thumbAbs := filepath.Join(docDir, filepath.FromSlash(thumbRel))

	if fresh(thumbAbs, srcInfo) {
		w, h, err := imageSize(thumbAbs)
		if err == nil {
			g.log.Debug("thumbnail cache hit", logfields.Image(rel))
			return Thumb{RelPath: thumbRel, Width: w, Height: h}, nil
		}
		// Undecodable cache entry: fall through and regenerate.
	}

	src, format, err := decode(srcAbs)
	if err != nil {
		return Thumb{}, fmt.Errorf("%w: %s: %v", apperrors.ErrUnsupportedImageFormat, rel, err)
	}

	var thumb image.Image
	if opts.Square {
		thumb = scaleSquare(src, opts.Size)
	} else {
		thumb = scaleBounded(src, opts.Size)
	}

	if err := encode(thumbAbs, thumb, format); err != nil {
		return Thumb{}, apperrors.FileUnwritable(thumbAbs, err)
	}

	b := thumb.Bounds()
	g.log.Debug("thumbnail generated", logfields.Image(rel),
		slog.Int("size", opts.Size), slog.Bool("square", opts.Square))
	return Thumb{RelPath: thumbRel, Width: b.Dx(), Height: b.Dy()}, nil
}

// fresh reports whether the cached file exists and is not older than the
// source image.
func fresh(thumbAbs string, srcInfo os.FileInfo) bool {
	info, err := os.Stat(thumbAbs)
	if err != nil {
		return false
	}
	return !info.ModTime().Before(srcInfo.ModTime())
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return image.Decode(f)
}

// scaleBounded scales so the longer dimension equals size. Images
// already smaller than size are still resampled so cache names stay
// truthful about their options.
func scaleBounded(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var tw, th int
	if w >= h {
		tw = size
		th = h * size / w
	} else {
		th = size
		tw = w * size / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// scaleSquare scales the shorter dimension to size and crops the longer
// one around the center.
func scaleSquare(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var sw, sh int
	if w <= h {
		sw = size
		sh = h * size / w
	} else {
		sh = size
		sw = w * size / h
	}

	scaled := image.NewRGBA(image.Rect(0, 0, sw, sh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	offset := image.Pt((sw-size)/2, (sh-size)/2)
	draw.Draw(dst, dst.Bounds(), scaled, offset, draw.Src)
	return dst
}

func encode(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		return png.Encode(f, img)
	case "gif":
		return gif.Encode(f, img, nil)
	default:
		return fmt.Errorf("cannot encode %q", format)
	}
}
