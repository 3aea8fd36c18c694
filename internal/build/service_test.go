package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/directives"
	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/markup"
	"git.home.luguber.info/inful/blogbuilder/internal/page"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
	"git.home.luguber.info/inful/blogbuilder/internal/thumbnail"
)

// recordingRenderer captures render calls instead of writing files.
type recordingRenderer struct {
	pages   []string
	index   []string
	years   []int
	tags    []string
	archive int
	cloud   int
}

func (r *recordingRenderer) RenderPage(rec *page.Record) error {
	r.pages = append(r.pages, rec.Slug)
	return nil
}

func (r *recordingRenderer) RenderIndex(pages []*page.Record) error {
	for _, p := range pages {
		r.index = append(r.index, p.Slug)
	}
	return nil
}

func (r *recordingRenderer) RenderArchive(years []site.YearSource) error {
	r.archive++
	return nil
}

func (r *recordingRenderer) RenderYear(year int, pages []*page.Record) error {
	r.years = append(r.years, year)
	return nil
}

func (r *recordingRenderer) RenderTag(tag, tagSlug string, pages []*page.Record) error {
	r.tags = append(r.tags, tagSlug)
	return nil
}

func (r *recordingRenderer) RenderTagCloud(tags []site.TagSource) error {
	r.cloud++
	return nil
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func newTestService(t *testing.T, root string) (*Service, *recordingRenderer) {
	t.Helper()
	cfg := &config.Config{
		Source: root,
		Output: t.TempDir(),
		Site: config.SiteConfig{
			Title:        "Test",
			CanonicalURL: "https://example.com/",
		},
		Feed: config.FeedConfig{Path: "feed.xml", Limit: 10},
	}
	renderer := markup.NewRenderer(directives.NewRegistry(), thumbnail.NewGenerator(nil), nil)
	builder := page.NewBuilder(root, renderer, nil)
	rec := &recordingRenderer{}
	return NewService(cfg, builder, rec, nil), rec
}

func TestRun_SkipsInvalidPageContinuesBatch(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "2024/good.md", "---\ntitle: Good\npub_date: 2024-03-01\npublic: true\ntags: [go]\n\nBody.\n")
	writeSource(t, root, "2024/also-good.md", "---\ntitle: Also\npub_date: 2024-02-01\npublic: true\ntags: []\n\nBody.\n")
	writeSource(t, root, "2024/bad.md", "---\ntitle: Bad\npub_date: not a date\npublic: true\ntags: []\n\nBody.\n")

	svc, rendered := newTestService(t, root)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, report.Pages)
	require.Equal(t, 2, report.Rendered)
	require.Equal(t, 2, report.Published)
	require.Len(t, report.Skipped, 1)
	require.Equal(t, "2024/bad.md", report.Skipped[0].Page)
	require.Equal(t, apperrors.CategoryValidation, report.Skipped[0].Category)
	require.Equal(t, OutcomeWarning, report.Outcome())

	require.ElementsMatch(t, []string{"2024/good", "2024/also-good"}, rendered.pages)
	// index is newest first
	require.Equal(t, []string{"2024/good", "2024/also-good"}, rendered.index)
}

func TestRun_DraftsRenderedButNotPublished(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "pub.md", "---\ntitle: Pub\npub_date: 2024-03-01\npublic: true\ntags: []\n\nBody.\n")
	writeSource(t, root, "draft.md", "---\ntitle: Draft\npub_date: 2024-03-02\npublic: false\ntags: []\n\nBody.\n")

	svc, rendered := newTestService(t, root)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, report.Rendered)
	require.Equal(t, 1, report.Published)
	require.Equal(t, 1, report.Drafts)
	require.Equal(t, OutcomeSuccess, report.Outcome())
	require.Equal(t, []string{"pub"}, rendered.pages)
}

func TestRun_WritesFeed(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "post.md", "---\ntitle: Post\npub_date: 2024-03-01\npublic: true\ntags: []\n\nBody.\n")

	svc, _ := newTestService(t, root)
	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome())

	data, err := os.ReadFile(filepath.Join(svc.cfg.Output, "feed.xml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "<title>Post</title>")
}

func TestRun_MissingSourceTreeIsFatal(t *testing.T) {
	svc, _ := newTestService(t, filepath.Join(t.TempDir(), "absent"))
	report, err := svc.Run(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsFatal(err))
	require.Equal(t, OutcomeFailed, report.Outcome())
}

func TestRun_CanceledContextAborts(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "post.md", "---\ntitle: Post\npub_date: 2024-03-01\npublic: true\ntags: []\n\nBody.\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc, _ := newTestService(t, root)
	_, err := svc.Run(ctx)
	require.Error(t, err)
}

func TestDiscoverSources_IgnoresHiddenAndSidecars(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.md", "x")
	writeSource(t, root, "b.html", "x")
	writeSource(t, root, "a.yml", "x")
	writeSource(t, root, ".hidden.md", "x")
	writeSource(t, root, "_drafts/later.md", "x")
	writeSource(t, root, "images/photo.jpg", "x")
	writeSource(t, root, "nested/post.md", "x")

	sources, err := DiscoverSources(root)
	require.NoError(t, err)
	require.Equal(t, []string{"a.md", "b.html", "nested/post.md"}, sources)
}
