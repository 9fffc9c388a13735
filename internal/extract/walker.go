// Package extract implements the HTML extraction engine: heuristics that
// locate labeled fields, section paragraphs, bullet lists, and link
// collections inside loosely structured, heading-driven documents. The
// engine only reads a parsed document; fetching and persistence belong to
// the callers.
package extract

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// TextNode is one text-bearing unit of a document walk. Text is trimmed;
// Element points at the nearest enclosing element so consumers can look up
// lists or anchors relative to a text position.
type TextNode struct {
	Text    string
	Element *html.Node
}

// Walk yields every text node under root in document (depth-first,
// pre-order) order. Empty strings are not filtered out here; each consumer
// decides what counts as meaningful. Every call starts a fresh walk, so the
// sequence is restartable.
func Walk(root *html.Node) iter.Seq[TextNode] {
	return func(yield func(TextNode) bool) {
		walk(root, yield)
	}
}

func walk(n *html.Node, yield func(TextNode) bool) bool {
	if n == nil {
		return true
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return true
		}
	}
	if n.Type == html.TextNode {
		return yield(TextNode{
			Text:    strings.TrimSpace(n.Data),
			Element: enclosingElement(n),
		})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

func enclosingElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

// after returns the subsequence of seq strictly following the first node
// for which start returns true. If start never matches, the result is empty.
func after(seq iter.Seq[TextNode], start func(TextNode) bool) iter.Seq[TextNode] {
	return func(yield func(TextNode) bool) {
		matched := false
		for t := range seq {
			if !matched {
				matched = start(t)
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// until yields nodes from seq up to, and excluding, the first node for
// which stop returns true.
func until(seq iter.Seq[TextNode], stop func(TextNode) bool) iter.Seq[TextNode] {
	return func(yield func(TextNode) bool) {
		for t := range seq {
			if stop(t) {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

// nonEmpty drops blank text nodes.
func nonEmpty(seq iter.Seq[TextNode]) iter.Seq[TextNode] {
	return func(yield func(TextNode) bool) {
		for t := range seq {
			if t.Text == "" {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// first returns the first node of seq, if any.
func first(seq iter.Seq[TextNode]) (TextNode, bool) {
	for t := range seq {
		return t, true
	}
	return TextNode{}, false
}

// textEquals builds a predicate matching exact trimmed text.
func textEquals(s string) func(TextNode) bool {
	return func(t TextNode) bool {
		return t.Text == s
	}
}

// textContent concatenates every text node under n, in document order.
// Script and style contents are skipped like in Walk.
func textContent(n *html.Node) string {
	var b strings.Builder
	for t := range Walk(n) {
		if t.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// collapseWhitespace folds every run of whitespace into a single space and
// trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
