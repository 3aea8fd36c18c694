package directives

import (
	"testing"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestThumbImg_DefaultSize_RendersLinkedThumbnail(t *testing.T) {
	ctx := testContext(t)
	writeTestImage(t, ctx.DocDir, "sunset.png", 600, 400)

	inv := &Invocation{Name: "thumbimg", Arg: "sunset.png", Options: map[string]string{"alt": "Sunset"}}

	out, err := ThumbImg{}.Render(ctx, inv)
	require.NoError(t, err)
	require.Contains(t, out, `href="sunset.png"`)
	require.Contains(t, out, `src="thumb_300_sunset.png"`)
	require.Contains(t, out, `alt="Sunset"`)
	require.Contains(t, out, `width="300"`)
	require.Contains(t, out, `height="200"`)
}

func TestThumbImg_CustomThumbsize(t *testing.T) {
	ctx := testContext(t)
	writeTestImage(t, ctx.DocDir, "pic.png", 600, 400)

	inv := &Invocation{Name: "thumbimg", Arg: "pic.png", Options: map[string]string{"thumbsize": "150"}}

	out, err := ThumbImg{}.Render(ctx, inv)
	require.NoError(t, err)
	require.Contains(t, out, "thumb_150_pic.png")
}

func TestThumbImg_MissingArgument_Fails(t *testing.T) {
	ctx := testContext(t)

	_, err := ThumbImg{}.Render(ctx, &Invocation{Name: "thumbimg", Options: map[string]string{}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "image path")
}

func TestThumbImg_MissingImage_IsImageNotFound(t *testing.T) {
	ctx := testContext(t)

	inv := &Invocation{Name: "thumbimg", Arg: "ghost.png", Options: map[string]string{}}
	_, err := ThumbImg{}.Render(ctx, inv)
	require.ErrorIs(t, err, apperrors.ErrImageNotFound)
}

func TestRegistry_KnownAndUnknownNames(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("thumbimg")
	require.True(t, ok)
	_, ok = r.Lookup("gallery")
	require.True(t, ok)
	_, ok = r.Lookup("spellcheck")
	require.False(t, ok)
	require.ElementsMatch(t, []string{"thumbimg", "gallery"}, r.Names())
}
