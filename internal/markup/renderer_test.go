package markup

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/blogbuilder/internal/directives"
	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/thumbnail"
	"github.com/stretchr/testify/require"
)

func newTestRenderer() *Renderer {
	return NewRenderer(directives.NewRegistry(), thumbnail.NewGenerator(nil), nil)
}

func writeTestImage(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRender_PlainMarkdown(t *testing.T) {
	out, err := newTestRenderer().Render([]byte("# Hi\n\nSome *text*.\n"), RenderContext{DocDir: t.TempDir()})
	require.NoError(t, err)
	require.Contains(t, out, "<h1>Hi</h1>")
	require.Contains(t, out, "<em>text</em>")
}

func TestRender_RawHTMLCommentSurvives(t *testing.T) {
	out, err := newTestRenderer().Render([]byte("Intro.\n\n<!-- break -->\n\nRest.\n"), RenderContext{DocDir: t.TempDir()})
	require.NoError(t, err)
	require.Contains(t, out, "<!-- break -->")
}

func TestRender_ThumbimgDirective_ExpandsInPlace(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "sunset.png", 600, 400)

	body := []byte("Before.\n\n.. thumbimg:: sunset.png\n   :thumbsize: 150\n\nAfter.\n")
	out, err := newTestRenderer().Render(body, RenderContext{DocDir: dir})
	require.NoError(t, err)
	require.Contains(t, out, "<p>Before.</p>")
	require.Contains(t, out, `src="thumb_150_sunset.png"`)
	require.Contains(t, out, "<p>After.</p>")
}

func TestRender_GalleryDirective_InlineList(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "a.png", 300, 200)

	body := []byte(".. gallery::\n   :thumbsize: 100\n\n   - full: a.png\n     alt: One\n")
	out, err := newTestRenderer().Render(body, RenderContext{DocDir: dir})
	require.NoError(t, err)
	require.Contains(t, out, "thumb_100_a.png")
	require.Contains(t, out, `title="One"`)
}

func TestRender_UnknownDirective_FailsWithDirectiveError(t *testing.T) {
	body := []byte(".. mystery:: argument\n")
	_, err := newTestRenderer().Render(body, RenderContext{DocDir: t.TempDir()})
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryDirective))
}

func TestRender_DirectiveError_CarriesSourceLine(t *testing.T) {
	dir := t.TempDir()
	body := []byte("First paragraph.\n\n.. thumbimg:: ghost.png\n")

	_, err := newTestRenderer().Render(body, RenderContext{DocDir: dir})
	require.Error(t, err)

	var be *apperrors.BuildError
	require.ErrorAs(t, err, &be)
	require.Equal(t, "thumbimg", be.Context["directive"])
	require.Equal(t, 3, be.Context["line"])
	require.ErrorIs(t, err, apperrors.ErrImageNotFound)
}

func TestRender_MalformedDirectiveOption_Fails(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "a.png", 300, 200)

	body := []byte(".. thumbimg:: a.png\n   :thumbsize: banana\n")
	_, err := newTestRenderer().Render(body, RenderContext{DocDir: dir})
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryDirective))
}

func TestRender_TemplatingPass_ExpandsContext(t *testing.T) {
	body := []byte("Hello {{.name}}!\n")
	out, err := newTestRenderer().Render(body, RenderContext{
		DocDir:          t.TempDir(),
		Templating:      true,
		TemplateContext: map[string]any{"name": "World"},
	})
	require.NoError(t, err)
	require.Contains(t, out, "Hello World!")
}

func TestRender_TemplatingDisabled_LeavesBracesAlone(t *testing.T) {
	body := []byte("Hello {{.name}}!\n")
	out, err := newTestRenderer().Render(body, RenderContext{DocDir: t.TempDir()})
	require.NoError(t, err)
	require.Contains(t, out, "{{.name}}")
}

func TestRender_BrokenTemplate_FailsWithRenderError(t *testing.T) {
	body := []byte("Hello {{.name\n")
	_, err := newTestRenderer().Render(body, RenderContext{
		DocDir:     t.TempDir(),
		Templating: true,
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryRender))
}

func TestRender_DirectiveBlockEndsAtDedent(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "a.png", 300, 200)

	body := []byte(".. gallery::\n\n   - full: a.png\nNext paragraph.\n")
	out, err := newTestRenderer().Render(body, RenderContext{DocDir: dir})
	require.NoError(t, err)
	require.Contains(t, out, "thumb_200_a.png")
	require.Contains(t, out, "<p>Next paragraph.</p>")
}
