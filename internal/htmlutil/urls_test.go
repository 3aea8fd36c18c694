package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixRelativeURLs_DocumentRelativeResolvesAgainstSlug(t *testing.T) {
	out, err := FixRelativeURLs("/", "2024/trip", `<img src="thumb_200_a.png">`)
	require.NoError(t, err)
	require.Contains(t, out, `src="/2024/trip/thumb_200_a.png"`)
}

func TestFixRelativeURLs_AbsolutePathKept(t *testing.T) {
	out, err := FixRelativeURLs("/", "2024/trip", `<a href="/about/">About</a>`)
	require.NoError(t, err)
	require.Contains(t, out, `href="/about/"`)
}

func TestFixRelativeURLs_ExternalAndAnchorUntouched(t *testing.T) {
	in := `<a href="https://example.com/x">x</a><a href="#">top</a><a href="#section">s</a>`
	out, err := FixRelativeURLs("/", "post", in)
	require.NoError(t, err)
	require.Contains(t, out, `href="https://example.com/x"`)
	require.Contains(t, out, `href="#"`)
	require.Contains(t, out, `href="#section"`)
}

func TestFixRelativeURLs_CanonicalBase(t *testing.T) {
	out, err := FixRelativeURLs("https://blog.example.com/", "post", `<img src="pic.jpg">`)
	require.NoError(t, err)
	require.Contains(t, out, `src="https://blog.example.com/post/pic.jpg"`)
}

func TestFixRelativeURLs_VideoPosterRewritten(t *testing.T) {
	out, err := FixRelativeURLs("/", "post", `<video src="clip.mp4" poster="still.jpg"></video>`)
	require.NoError(t, err)
	require.Contains(t, out, `src="/post/clip.mp4"`)
	require.Contains(t, out, `poster="/post/still.jpg"`)
}
