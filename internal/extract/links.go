package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// DocLink is one collected documentation link. Title is null when the
// anchor has no visible text.
type DocLink struct {
	Title *string `json:"title"`
	URL   string  `json:"url"`
}

// Links collects hyperlinks following heading, stopping at the next registry
// heading. Relative hrefs are resolved against base; links are de-duplicated
// by resolved URL with first-encountered order preserved.
func Links(root *html.Node, heading string, base *url.URL) []DocLink {
	links := []DocLink{}
	seen := make(map[string]struct{})
	visited := make(map[*html.Node]struct{})

	section := until(after(Walk(root), textEquals(heading)), otherHeading(heading))
	for t := range section {
		el := t.Element
		if el == nil {
			continue
		}
		// An element with several text children shows up once per child.
		if _, dup := visited[el]; dup {
			continue
		}
		visited[el] = struct{}{}

		for _, a := range anchors(el) {
			href, ok := attrValue(a, "href")
			if !ok || strings.TrimSpace(href) == "" {
				continue
			}
			resolved, ok := resolveHref(base, strings.TrimSpace(href))
			if !ok {
				continue
			}
			if _, dup := seen[resolved]; dup {
				continue
			}
			seen[resolved] = struct{}{}

			var title *string
			if txt := collapseWhitespace(textContent(a)); txt != "" {
				title = &txt
			}
			links = append(links, DocLink{Title: title, URL: resolved})
		}
	}
	return links
}

// anchors returns n itself if it is an anchor, otherwise every anchor
// descendant of n in document order.
func anchors(n *html.Node) []*html.Node {
	if n.Type == html.ElementNode && n.Data == "a" {
		return []*html.Node{n}
	}
	var out []*html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if cur.Type == html.ElementNode && cur.Data == "a" {
			out = append(out, cur)
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dfs(c)
	}
	return out
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// resolveHref turns href into an absolute URL, resolving relative references
// against base. Unparsable hrefs, and relative hrefs with no base to resolve
// against, are skipped.
func resolveHref(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	if base == nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
