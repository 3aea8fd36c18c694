// Package build orchestrates a full site generation run: source
// discovery, per-page assembly, index construction, and output writing.
// All execution paths (CLI, tests) route through Service.
package build

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/feed"
	"git.home.luguber.info/inful/blogbuilder/internal/htmlutil"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/page"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// TemplateRenderer is the output surface a run writes through. The
// concrete implementation lives in the site package; tests substitute
// their own.
type TemplateRenderer interface {
	RenderPage(rec *page.Record) error
	RenderIndex(pages []*page.Record) error
	RenderArchive(years []site.YearSource) error
	RenderYear(year int, pages []*page.Record) error
	RenderTag(tag, tagSlug string, pages []*page.Record) error
	RenderTagCloud(tags []site.TagSource) error
}

// Service runs complete builds. One page failing skips that page and
// degrades the outcome; only source tree enumeration failures abort the
// whole run.
type Service struct {
	cfg      *config.Config
	builder  *page.Builder
	renderer TemplateRenderer
	log      *slog.Logger
}

func NewService(cfg *config.Config, builder *page.Builder, renderer TemplateRenderer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfg: cfg, builder: builder, renderer: renderer, log: log}
}

// Run executes a full build and always returns a report, even on fatal.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := NewReport()
	defer report.Finish()

	s.log.Info("build started", logfields.RunID(report.RunID), slog.String("source", s.cfg.Source))

	sources, err := DiscoverSources(s.cfg.Source)
	if err != nil {
		report.Fatal = err
		return report, err
	}
	report.Pages = len(sources)

	records, err := s.buildPages(ctx, sources, report)
	if err != nil {
		report.Fatal = err
		return report, err
	}

	published := make([]*page.Record, 0, len(records))
	for _, rec := range records {
		if rec.Publishable() {
			published = append(published, rec)
		} else {
			report.Drafts++
			s.log.Debug("page held back", logfields.Page(rec.SourcePath), logfields.Reason("not public"))
		}
	}
	byPubDateDesc(published)
	report.Published = len(published)

	if err := s.writeSite(ctx, records, published, report); err != nil {
		report.Fatal = err
		return report, err
	}

	s.log.Info("build finished",
		logfields.RunID(report.RunID),
		slog.Int("published", report.Published),
		slog.Int("skipped", len(report.Skipped)),
		logfields.DurationMS(float64(time.Since(report.Start))/float64(time.Millisecond)),
		slog.String("outcome", string(report.Outcome())))
	return report, nil
}

func (s *Service) buildPages(ctx context.Context, sources []string, report *Report) ([]*page.Record, error) {
	records := make([]*page.Record, 0, len(sources))
	for _, rel := range sources {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryInternal, apperrors.SeverityFatal,
				"build canceled")
		}

		rec, err := s.builder.Build(rel)
		if err != nil {
			if apperrors.IsFatal(err) {
				return nil, err
			}
			report.AddSkip(rel, err)
			s.log.Warn("page skipped",
				logfields.Page(rel),
				logfields.Category(string(apperrors.GetCategory(err))),
				logfields.Error(err))
			continue
		}

		s.fixURLs(rec)
		report.Rendered++
		records = append(records, rec)
	}
	return records, nil
}

// fixURLs rewrites document-relative links so page bodies keep working
// when served from listing pages and the feed.
func (s *Service) fixURLs(rec *page.Record) {
	base := s.cfg.Site.CanonicalURL
	if fixed, err := htmlutil.FixRelativeURLs(base, rec.Slug, rec.HTML); err == nil {
		rec.HTML = fixed
	} else {
		s.log.Warn("relative url rewrite failed", logfields.Page(rec.SourcePath), logfields.Error(err))
	}
	if rec.SummaryHTML != "" {
		if fixed, err := htmlutil.FixRelativeURLs(base, rec.Slug, rec.SummaryHTML); err == nil {
			rec.SummaryHTML = fixed
		}
	}
}

func (s *Service) writeSite(ctx context.Context, records, published []*page.Record, report *Report) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(err, apperrors.CategoryInternal, apperrors.SeverityFatal,
				"build canceled")
		}
		if !rec.Publishable() {
			continue
		}
		if err := s.renderer.RenderPage(rec); err != nil {
			return err
		}
	}

	if err := s.renderer.RenderIndex(published); err != nil {
		return err
	}

	archives := BuildArchives(published)
	years := make([]site.YearSource, 0, len(archives))
	for _, a := range archives {
		years = append(years, site.YearSource{Year: a.Year, Pages: a.Pages})
		if err := s.renderer.RenderYear(a.Year, a.Pages); err != nil {
			return err
		}
	}
	if err := s.renderer.RenderArchive(years); err != nil {
		return err
	}

	groups := BuildTagIndex(published)
	tags := make([]site.TagSource, 0, len(groups))
	for _, g := range groups {
		tags = append(tags, site.TagSource{Tag: g.Tag, Slug: g.Slug, Pages: g.Pages})
		if err := s.renderer.RenderTag(g.Tag, g.Slug, g.Pages); err != nil {
			return err
		}
	}
	if err := s.renderer.RenderTagCloud(tags); err != nil {
		return err
	}

	feedPath := filepath.Join(s.cfg.Output, s.cfg.Feed.Path)
	return feed.Write(feedPath, feed.Site{
		Title:        s.cfg.Site.Title,
		Description:  s.cfg.Site.Description,
		CanonicalURL: s.cfg.Site.CanonicalURL,
		Author:       s.cfg.Site.Author,
	}, published, s.cfg.Feed.Limit)
}

// DiscoverSources walks the source tree and returns the sorted
// slash-separated relative paths of buildable pages. Dotfiles,
// underscore-prefixed names, and sidecar data files are skipped;
// skipping a dot or underscore directory prunes everything under it.
func DiscoverSources(root string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		ignored := strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
		if d.IsDir() {
			if ignored && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".md", ".html":
		default:
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		sources = append(sources, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, apperrors.SourceTreeUnreadable(root, err)
	}
	sort.Strings(sources)
	return sources, nil
}
