package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseHTML(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return root
}

func collectTexts(root *html.Node) []string {
	var out []string
	for t := range nonEmpty(Walk(root)) {
		out = append(out, t.Text)
	}
	return out
}

func TestWalkDocumentOrder(t *testing.T) {
	root := parseHTML(t, `<body><div><h2>First</h2><p>Second <em>third</em></p></div><p>Fourth</p></body>`)
	require.Equal(t, []string{"First", "Second", "third", "Fourth"}, collectTexts(root))
}

func TestWalkSkipsScriptAndStyle(t *testing.T) {
	root := parseHTML(t, `<body><script>var x = 1;</script><style>.a{}</style><p>Visible</p></body>`)
	require.Equal(t, []string{"Visible"}, collectTexts(root))
}

func TestWalkIsRestartable(t *testing.T) {
	root := parseHTML(t, `<body><p>one</p><p>two</p></body>`)
	require.Equal(t, collectTexts(root), collectTexts(root))
}

func TestWalkExposesEnclosingElement(t *testing.T) {
	root := parseHTML(t, `<body><ul><li>item</li></ul></body>`)
	node, ok := first(nonEmpty(Walk(root)))
	require.True(t, ok)
	require.NotNil(t, node.Element)
	require.Equal(t, "li", node.Element.Data)
}

func TestAfterSkipsThroughFirstMatch(t *testing.T) {
	root := parseHTML(t, `<body><p>a</p><p>marker</p><p>b</p><p>marker</p><p>c</p></body>`)
	var out []string
	for n := range nonEmpty(after(Walk(root), textEquals("marker"))) {
		out = append(out, n.Text)
	}
	require.Equal(t, []string{"b", "marker", "c"}, out)
}

func TestAfterWithoutMatchYieldsNothing(t *testing.T) {
	root := parseHTML(t, `<body><p>a</p></body>`)
	_, ok := first(after(Walk(root), textEquals("missing")))
	require.False(t, ok)
}

func TestUntilStopsBeforeMatch(t *testing.T) {
	root := parseHTML(t, `<body><p>a</p><p>b</p><p>stop</p><p>c</p></body>`)
	var out []string
	for n := range nonEmpty(until(Walk(root), textEquals("stop"))) {
		out = append(out, n.Text)
	}
	require.Equal(t, []string{"a", "b"}, out)
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", collapseWhitespace("  a \n\t b   c  "))
	require.Equal(t, "", collapseWhitespace(" \n "))
}

func TestTextContentJoinsDescendants(t *testing.T) {
	root := parseHTML(t, `<body><div id="x"><p>Hello</p> <p><b>big</b> world</p></div></body>`)
	div := findElement(root, "div")
	require.NotNil(t, div)
	require.Equal(t, "Hello big world", textContent(div))
}
