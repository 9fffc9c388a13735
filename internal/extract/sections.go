package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// ParagraphStrategy selects how paragraph-mode sections are collected. The
// site's markup has drifted over time, so the strategy is pluggable rather
// than hard-coded.
type ParagraphStrategy int

const (
	// StrategyRegistryScan collects every non-empty text node after the
	// heading text until another registry heading appears. It ignores
	// markup entirely, which makes it resilient to missing paragraph tags.
	StrategyRegistryScan ParagraphStrategy = iota

	// StrategySiblingWalk collects block-level siblings of the matched
	// heading element, stopping at the first sibling whose text is another
	// registry heading. More precise when headings are real h-elements.
	StrategySiblingWalk
)

// Paragraph extracts the free-text section introduced by heading. Collected
// fragments are joined with single spaces and whitespace-collapsed. It
// reports false when the heading is absent or nothing was collected.
func Paragraph(root *html.Node, heading string, strategy ParagraphStrategy) (string, bool) {
	if strategy == StrategySiblingWalk {
		return paragraphSiblings(root, heading)
	}
	return paragraphRegistry(root, heading)
}

func paragraphRegistry(root *html.Node, heading string) (string, bool) {
	var parts []string
	section := until(after(Walk(root), textEquals(heading)), otherHeading(heading))
	for t := range nonEmpty(section) {
		parts = append(parts, t.Text)
	}
	if len(parts) == 0 {
		return "", false
	}
	return collapseWhitespace(strings.Join(parts, " ")), true
}

func paragraphSiblings(root *html.Node, heading string) (string, bool) {
	h := headingNode(root, heading)
	if h == nil {
		return "", false
	}
	var parts []string
	for sib := h.NextSibling; sib != nil; sib = sib.NextSibling {
		var txt string
		switch sib.Type {
		case html.TextNode:
			txt = strings.TrimSpace(sib.Data)
		case html.ElementNode:
			txt = collapseWhitespace(textContent(sib))
		default:
			continue
		}
		if txt == "" {
			continue
		}
		if txt != heading && IsSectionHeading(txt) {
			break
		}
		parts = append(parts, txt)
	}
	if len(parts) == 0 {
		return "", false
	}
	return collapseWhitespace(strings.Join(parts, " ")), true
}

// headingNode finds the element enclosing the first text node that exactly
// equals heading.
func headingNode(root *html.Node, heading string) *html.Node {
	t, ok := first(func(yield func(TextNode) bool) {
		for n := range Walk(root) {
			if n.Text == heading {
				yield(n)
				return
			}
		}
	})
	if !ok {
		return nil
	}
	return t.Element
}

// List returns the items of the first list following heading: starting at
// the heading's enclosing element, ascend to the nearest ancestor containing
// a list that appears after the heading in document order, then take that
// first list. Item text is trimmed and empty items dropped, order preserved.
// Scoping to lists after the heading keeps two flat sections in one
// container from stealing each other's list.
//
// Absence of expected structure is never an error; the result degrades to an
// empty slice because input pages are untrusted and heterogeneous.
func List(root *html.Node, heading string) []string {
	items := []string{}
	h := headingNode(root, heading)
	if h == nil {
		return items
	}
	for el := h; el != nil; el = el.Parent {
		lst := firstListAfter(el, h)
		if lst == nil {
			continue
		}
		for li := lst.FirstChild; li != nil; li = li.NextSibling {
			if li.Type != html.ElementNode || li.Data != "li" {
				continue
			}
			if txt := collapseWhitespace(textContent(li)); txt != "" {
				items = append(items, txt)
			}
		}
		return items
	}
	return items
}

// firstListAfter finds the first ul or ol under container that follows
// marker in document order.
func firstListAfter(container, marker *html.Node) *html.Node {
	passed := false
	var found *html.Node
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		if found != nil {
			return
		}
		if n == marker {
			passed = true
		}
		if passed && n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(container)
	return found
}
