package thumbnail

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestCacheName_DeterministicPerOptions(t *testing.T) {
	require.Equal(t, "thumb_300_pic.jpg", CacheName("pic.jpg", Options{Size: 300}))
	require.Equal(t, "thumb_200s_pic.jpg", CacheName("pic.jpg", Options{Size: 200, Square: true}))
	require.NotEqual(t,
		CacheName("pic.jpg", Options{Size: 200}),
		CacheName("pic.jpg", Options{Size: 300}))
}

func TestGenerate_ScalesLongerDimensionToSize(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wide.png"), 400, 100)

	g := NewGenerator(nil)
	th, err := g.Generate(dir, "wide.png", Options{Size: 200})
	require.NoError(t, err)
	require.Equal(t, "thumb_200_wide.png", th.RelPath)
	require.Equal(t, 200, th.Width)
	require.Equal(t, 50, th.Height)
	require.FileExists(t, filepath.Join(dir, th.RelPath))
}

func TestGenerate_SquareCropsToSize(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tall.png"), 100, 300)

	g := NewGenerator(nil)
	th, err := g.Generate(dir, "tall.png", Options{Size: 80, Square: true})
	require.NoError(t, err)
	require.Equal(t, "thumb_80s_tall.png", th.RelPath)
	require.Equal(t, 80, th.Width)
	require.Equal(t, 80, th.Height)
}

func TestGenerate_SecondRunReusesCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 400, 100)

	g := NewGenerator(nil)
	first, err := g.Generate(dir, "pic.png", Options{Size: 200})
	require.NoError(t, err)

	// Age the source so the cache entry is unambiguously fresh, then
	// swap the cached file for one with different dimensions. A cache
	// hit returns the swapped file's dimensions; a regeneration would
	// overwrite it.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, past, past))
	writePNG(t, filepath.Join(dir, first.RelPath), 33, 44)

	second, err := g.Generate(dir, "pic.png", Options{Size: 200})
	require.NoError(t, err)
	require.Equal(t, first.RelPath, second.RelPath)
	require.Equal(t, 33, second.Width)
	require.Equal(t, 44, second.Height)
}

func TestGenerate_StaleCacheRegenerated(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 400, 100)

	g := NewGenerator(nil)
	first, err := g.Generate(dir, "pic.png", Options{Size: 200})
	require.NoError(t, err)

	// Make the cached file older than the source.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, first.RelPath), past, past))

	second, err := g.Generate(dir, "pic.png", Options{Size: 200})
	require.NoError(t, err)
	require.Equal(t, 200, second.Width)
	require.Equal(t, 50, second.Height)
}

func TestGenerate_DistinctOptionsProduceDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "pic.png"), 400, 400)

	g := NewGenerator(nil)
	a, err := g.Generate(dir, "pic.png", Options{Size: 100})
	require.NoError(t, err)
	b, err := g.Generate(dir, "pic.png", Options{Size: 150})
	require.NoError(t, err)
	c, err := g.Generate(dir, "pic.png", Options{Size: 100, Square: true})
	require.NoError(t, err)

	require.NotEqual(t, a.RelPath, b.RelPath)
	require.NotEqual(t, a.RelPath, c.RelPath)
	require.FileExists(t, filepath.Join(dir, a.RelPath))
	require.FileExists(t, filepath.Join(dir, b.RelPath))
	require.FileExists(t, filepath.Join(dir, c.RelPath))
}

func TestGenerate_MissingImage_IsImageNotFound(t *testing.T) {
	g := NewGenerator(nil)
	_, err := g.Generate(t.TempDir(), "nope.png", Options{Size: 100})
	require.ErrorIs(t, err, apperrors.ErrImageNotFound)
}

func TestGenerate_Undecodable_IsUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake.png"), []byte("not an image"), 0o644))

	g := NewGenerator(nil)
	_, err := g.Generate(dir, "fake.png", Options{Size: 100})
	require.ErrorIs(t, err, apperrors.ErrUnsupportedImageFormat)
}

func TestGenerate_SubdirectoryPathsKeptRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shots"), 0o755))
	writePNG(t, filepath.Join(dir, "shots", "pic.png"), 200, 100)

	g := NewGenerator(nil)
	th, err := g.Generate(dir, "shots/pic.png", Options{Size: 100})
	require.NoError(t, err)
	require.Equal(t, "shots/thumb_100_pic.png", th.RelPath)
}
