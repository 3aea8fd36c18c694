// Package htmlutil rewrites URLs inside rendered HTML fragments.
package htmlutil

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// urlAttrs maps element names to the attributes that carry URLs.
var urlAttrs = map[string][]string{
	"a":      {"href"},
	"img":    {"src"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"source": {"src"},
}

// FixRelativeURLs resolves document-relative URLs in content against the
// page's slug so fragments keep working when a page is served from its
// pretty URL (or embedded in a feed). Absolute URLs, anchors, and bare
// "#" links pass through untouched.
func FixRelativeURLs(baseURL, slug, content string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return content, err
	}

	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), ctx)
	if err != nil {
		return content, err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attrs, ok := urlAttrs[n.Data]; ok {
				for i := range n.Attr {
					for _, name := range attrs {
						if n.Attr[i].Key == name {
							n.Attr[i].Val = fixOne(base, slug, n.Attr[i].Val)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return content, err
		}
	}
	return buf.String(), nil
}

func fixOne(base *url.URL, slug, raw string) string {
	if raw == "" || raw == "#" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.Scheme != "" || u.Host != "" {
		return raw
	}
	if u.Path == "" {
		// Fragment-only link.
		return raw
	}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = path.Join("/", slug, u.Path)
	}
	return base.ResolveReference(u).String()
}
