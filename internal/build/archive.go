package build

import (
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/page"
	"git.home.luguber.info/inful/blogbuilder/internal/slug"
)

// YearArchive groups published pages by publication year, newest year
// and newest page first.
type YearArchive struct {
	Year  int
	Pages []*page.Record
}

// TagGroup is one tag with the published pages carrying it. Slug is the
// URL-safe form used for the tag's index page.
type TagGroup struct {
	Tag   string
	Slug  string
	Pages []*page.Record
}

// byPubDateDesc orders records newest first; ties break on slug so the
// ordering is stable across runs.
func byPubDateDesc(pages []*page.Record) {
	sort.SliceStable(pages, func(i, j int) bool {
		a, b := pages[i].Meta.PubDate, pages[j].Meta.PubDate
		if !a.Equal(b) {
			return a.After(b)
		}
		return pages[i].Slug < pages[j].Slug
	})
}

// BuildArchives produces the per-year groupings of published pages.
func BuildArchives(pages []*page.Record) []YearArchive {
	byYear := make(map[int][]*page.Record)
	for _, p := range pages {
		y := p.Meta.PubDate.Year()
		byYear[y] = append(byYear[y], p)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	archives := make([]YearArchive, 0, len(years))
	for _, y := range years {
		group := byYear[y]
		byPubDateDesc(group)
		archives = append(archives, YearArchive{Year: y, Pages: group})
	}
	return archives
}

// BuildTagIndex groups published pages by tag, tags sorted
// alphabetically and pages newest first within each.
func BuildTagIndex(pages []*page.Record) []TagGroup {
	byTag := make(map[string][]*page.Record)
	for _, p := range pages {
		for _, t := range p.Meta.Tags {
			byTag[t] = append(byTag[t], p)
		}
	}

	tags := make([]string, 0, len(byTag))
	for t := range byTag {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	groups := make([]TagGroup, 0, len(tags))
	for _, t := range tags {
		group := byTag[t]
		byPubDateDesc(group)
		groups = append(groups, TagGroup{Tag: t, Slug: slug.Make(t), Pages: group})
	}
	return groups
}
