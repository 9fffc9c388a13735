package extract

import "golang.org/x/net/html"

// Field locates the single scalar value tied to label: the first text node
// whose trimmed content equals label exactly, followed by the next non-empty
// text value in document order. It reports false when the label never
// appears or nothing follows it.
//
// The first occurrence of the label wins, even when the same string shows up
// again later in prose. That is a deliberate trade: the scan needs no CSS
// classes or fixed DOM structure, so it survives markup drift, at the cost
// of the occasional false positive.
func Field(root *html.Node, label string) (string, bool) {
	t, ok := first(nonEmpty(after(Walk(root), textEquals(label))))
	if !ok {
		return "", false
	}
	return t.Text, true
}
