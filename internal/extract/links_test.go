package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestLinksResolvesRelativeHrefs(t *testing.T) {
	root := parseHTML(t, `<body>
		<h2>Relevant Documentation</h2>
		<p><a href="/docs/ec2">EC2 docs</a></p>
		<p><a href="https://aws.amazon.com/ec2/pricing/">Pricing</a></p>
	</body>`)
	got := Links(root, "Relevant Documentation", mustBase(t, "https://www.optimnow.io"))

	require.Len(t, got, 2)
	require.Equal(t, "https://www.optimnow.io/docs/ec2", got[0].URL)
	require.NotNil(t, got[0].Title)
	require.Equal(t, "EC2 docs", *got[0].Title)
	require.Equal(t, "https://aws.amazon.com/ec2/pricing/", got[1].URL)
}

func TestLinksDeduplicatesByResolvedURL(t *testing.T) {
	root := parseHTML(t, `<body>
		<h2>Relevant Documentation</h2>
		<p><a href="/docs/a">first</a></p>
		<p><a href="https://www.optimnow.io/docs/a">duplicate</a></p>
		<p><a href="/docs/b">second</a></p>
	</body>`)
	got := Links(root, "Relevant Documentation", mustBase(t, "https://www.optimnow.io"))

	require.Len(t, got, 2)
	require.Equal(t, "https://www.optimnow.io/docs/a", got[0].URL)
	require.Equal(t, "first", *got[0].Title)
	require.Equal(t, "https://www.optimnow.io/docs/b", got[1].URL)
}

func TestLinksStopsAtNextRegistryHeading(t *testing.T) {
	root := parseHTML(t, `<body>
		<h2>Relevant Documentation</h2>
		<p><a href="/docs/in-section">in</a></p>
		<h2>Explanation</h2>
		<p><a href="/docs/out-of-section">out</a></p>
	</body>`)
	got := Links(root, "Relevant Documentation", mustBase(t, "https://www.optimnow.io"))

	require.Len(t, got, 1)
	require.Equal(t, "https://www.optimnow.io/docs/in-section", got[0].URL)
}

func TestLinksNilTitleForEmptyAnchorText(t *testing.T) {
	root := parseHTML(t, `<body>
		<h2>Relevant Documentation</h2>
		<p><a href="/docs/bare"><img src="icon.png"></a> trailing text</p>
	</body>`)
	got := Links(root, "Relevant Documentation", mustBase(t, "https://www.optimnow.io"))

	require.Len(t, got, 1)
	require.Nil(t, got[0].Title)
}

func TestLinksMissingHeadingReturnsEmpty(t *testing.T) {
	root := parseHTML(t, `<body><a href="/docs/a">stray</a></body>`)
	got := Links(root, "Relevant Documentation", mustBase(t, "https://www.optimnow.io"))
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestLinksSkipsAnchorsWithoutHref(t *testing.T) {
	root := parseHTML(t, `<body>
		<h2>Relevant Documentation</h2>
		<p><a name="anchor-only">no href</a> <a href="  ">blank</a> <a href="/docs/ok">ok</a></p>
	</body>`)
	got := Links(root, "Relevant Documentation", mustBase(t, "https://www.optimnow.io"))

	require.Len(t, got, 1)
	require.Equal(t, "https://www.optimnow.io/docs/ok", got[0].URL)
}
