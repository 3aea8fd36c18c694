package summary

import (
	"strings"

	"golang.org/x/net/html"
)

// OGProperties is the preview metadata of a page: the first paragraph's
// text and the first image's URL and alt text.
type OGProperties struct {
	Description string
	Image       string
	ImageAlt    string
}

// ExtractOG walks the rendered HTML for the first <p> and the first
// <img>. Either may be absent.
func ExtractOG(renderedHTML string) OGProperties {
	nodes, err := parseFragment(renderedHTML)
	if err != nil {
		return OGProperties{}
	}

	var og OGProperties
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p":
				if og.Description == "" {
					og.Description = strings.TrimSpace(textContent(n))
				}
			case "img":
				if og.Image == "" {
					og.Image = getAttr(n, "src")
					og.ImageAlt = getAttr(n, "alt")
				}
			}
		}
		if og.Description != "" && og.Image != "" {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	for _, n := range nodes {
		if walk(n) {
			break
		}
	}
	return og
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
