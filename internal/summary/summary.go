// Package summary splits rendered page HTML at the break marker and
// extracts preview metadata (description, lead image) from it.
package summary

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BreakMarker is the comment text that separates a page's excerpt from
// the rest of its content.
const BreakMarker = "break"

// Extract returns the HTML preceding the first break comment. The cut
// operates on the parsed tree, so the returned fragment is always
// balanced even when the marker sits inside an element. Without a
// marker the summary is the full content.
func Extract(renderedHTML string) (summary string, found bool) {
	nodes, err := parseFragment(renderedHTML)
	if err != nil {
		return renderedHTML, false
	}

	var kept []*html.Node
	for _, n := range nodes {
		if isBreakComment(n) {
			found = true
			break
		}
		if truncateAtBreak(n) {
			kept = append(kept, n)
			found = true
			break
		}
		kept = append(kept, n)
	}
	if !found {
		return renderedHTML, false
	}

	var buf bytes.Buffer
	for _, n := range kept {
		if err := html.Render(&buf, n); err != nil {
			return renderedHTML, false
		}
	}
	return strings.TrimSpace(buf.String()), true
}

// truncateAtBreak removes the break comment and everything after it from
// n's subtree. Reports whether the marker was found.
func truncateAtBreak(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBreakComment(c) {
			removeFrom(n, c)
			return true
		}
		if truncateAtBreak(c) {
			removeFrom(n, c.NextSibling)
			return true
		}
	}
	return false
}

// removeFrom detaches first and all its following siblings from parent.
func removeFrom(parent, first *html.Node) {
	for first != nil {
		next := first.NextSibling
		parent.RemoveChild(first)
		first = next
	}
}

func isBreakComment(n *html.Node) bool {
	return n.Type == html.CommentNode && strings.TrimSpace(n.Data) == BreakMarker
}

func parseFragment(content string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(content), ctx)
}
