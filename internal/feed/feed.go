// Package feed writes the RSS 2.0 feed of published pages.
package feed

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/page"
)

// Site carries the channel-level feed metadata.
type Site struct {
	Title        string
	Description  string
	CanonicalURL string
	Author       string
}

type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description cdata   `xml:"description"`
	Author      string  `xml:"author,omitempty"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// cdata wraps HTML content so the item description survives as markup.
type cdata struct {
	Text string `xml:",cdata"`
}

// Build assembles the feed document from published pages, newest first,
// capped at limit. Pages must already be sorted newest first.
func Build(site Site, pages []*page.Record, limit int) *RSS {
	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}

	items := make([]item, 0, len(pages))
	for _, p := range pages {
		link := absoluteURL(site.CanonicalURL, p.Slug)
		body := p.SummaryHTML
		if body == "" {
			body = p.HTML
		}
		items = append(items, item{
			Title:       p.Meta.Title,
			Link:        link,
			Description: cdata{Text: body},
			Author:      site.Author,
			GUID:        rssGUID{Value: link, IsPermaLink: true},
			PubDate:     p.Meta.PubDate.Format(time.RFC1123Z),
		})
	}

	return &RSS{
		Version: "2.0",
		Channel: channel{
			Title:       site.Title,
			Link:        site.CanonicalURL,
			Description: site.Description,
			Items:       items,
		},
	}
}

// Write renders the feed and writes it to path.
func Write(path string, site Site, pages []*page.Record, limit int) error {
	doc := Build(site, pages, limit)

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryInternal, apperrors.SeverityError,
			"marshal feed")
	}
	payload := []byte(xml.Header + string(data) + "\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.FileUnwritable(path, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return apperrors.FileUnwritable(path, err)
	}
	return nil
}

func absoluteURL(base, slug string) string {
	base = strings.TrimRight(base, "/")
	if slug == "" {
		return base + "/"
	}
	return base + "/" + slug + "/"
}
