package extract

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func testAssembler(t *testing.T) *Assembler {
	t.Helper()
	base, err := url.Parse("https://www.optimnow.io")
	require.NoError(t, err)
	return NewAssembler(Options{
		Origin:  "optimnow-hub",
		BaseURL: base,
		Clock:   fixedClock{at: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
	}, nil)
}

func parseDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

const detailPage = `<html><body>
	<h1>Idle EC2 Instances</h1>
	<p>Jane Ops</p>
	<div><span>Service Category</span><span>Compute</span></div>
	<div><span>Cloud Provider</span><span>AWS</span></div>
	<div><span>Service Name</span><span>EC2</span></div>
	<div><span>Inefficiency Type</span><span>Idle Resource</span></div>
	<h2>Explanation</h2>
	<p>Instances keep billing while idle.</p>
	<h2>Relevant Billing Model</h2>
	<p>On-demand hourly.</p>
	<h2>Detection</h2>
	<ul><li>Check tag X</li><li>Check tag Y</li><li>Check tag Z</li></ul>
	<h2>Remediation</h2>
	<ul><li>Stop the instance</li></ul>
	<h2>Relevant Documentation</h2>
	<p><a href="/docs/idle">Idle guide</a></p>
</body></html>`

func TestAssembleFullDetailPage(t *testing.T) {
	rec := testAssembler(t).Assemble(parseDoc(t, detailPage), "https://www.optimnow.io/hub/inefficiencies/idle-ec2/")

	require.Equal(t, "idle-ec2", rec.ID)
	require.Equal(t, "Idle EC2 Instances", rec.Title)
	require.Equal(t, "Jane Ops", rec.Author)
	require.Equal(t, "Compute", rec.ServiceCategory)
	require.Equal(t, "AWS", rec.CloudProvider)
	require.Equal(t, "EC2", rec.ServiceName)
	require.Equal(t, "Idle Resource", rec.InefficiencyType)
	require.Equal(t, "Instances keep billing while idle.", rec.Explanation)
	require.Equal(t, "On-demand hourly.", rec.BillingModel)
	require.Equal(t, []string{"Check tag X", "Check tag Y", "Check tag Z"}, rec.DetectionSignals)
	require.Equal(t, []string{"Stop the instance"}, rec.RemediationActions)
	require.Len(t, rec.DocumentationLinks, 1)
	require.Equal(t, "https://www.optimnow.io/docs/idle", rec.DocumentationLinks[0].URL)
	require.Equal(t, []string{}, rec.Tags)
	require.Equal(t, "https://www.optimnow.io/hub/inefficiencies/idle-ec2/", rec.Source.URL)
	require.Equal(t, "optimnow-hub", rec.Source.Origin)
	require.Equal(t, "2026-03-14T09:00:00Z", rec.ScrapedAt)
	require.Empty(t, Validate(rec))
}

func TestAssembleSparsePageDegradesToEmpty(t *testing.T) {
	rec := testAssembler(t).Assemble(
		parseDoc(t, `<html><body><h1>Bare Page</h1></body></html>`),
		"https://www.optimnow.io/hub/inefficiencies/bare/",
	)

	require.Equal(t, "bare", rec.ID)
	require.Equal(t, "Bare Page", rec.Title)
	require.Empty(t, rec.Author)
	require.Empty(t, rec.Explanation)
	require.NotNil(t, rec.DetectionSignals)
	require.Empty(t, rec.DetectionSignals)
	require.NotNil(t, rec.RemediationActions)
	require.Empty(t, rec.RemediationActions)
	require.NotNil(t, rec.DocumentationLinks)
	require.Empty(t, rec.DocumentationLinks)
}

func TestAssembleTitleFallsBackToFirstText(t *testing.T) {
	rec := testAssembler(t).Assemble(
		parseDoc(t, `<html><body><p>Plain opener</p><p>more</p></body></html>`),
		"https://www.optimnow.io/hub/inefficiencies/x/",
	)
	require.Equal(t, "Plain opener", rec.Title)
}

func TestAssembleAuthorStopsAtSectionHeading(t *testing.T) {
	rec := testAssembler(t).Assemble(
		parseDoc(t, `<html><body><h1>Title</h1><h2>Explanation</h2><p>text</p></body></html>`),
		"https://www.optimnow.io/hub/inefficiencies/x/",
	)
	require.Empty(t, rec.Author)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://site/hub/inefficiencies/idle-ec2/", "idle-ec2"},
		{"https://site/hub/inefficiencies/idle-ec2", "idle-ec2"},
		{"https://site/hub/inefficiencies/idle-ec2///", "idle-ec2"},
		{"https://site/", "https://site/"},
		{"://not a url", "://not a url"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Slug(tc.raw), tc.raw)
	}
}

func TestValidateFlagsProblems(t *testing.T) {
	rec := Record{
		ID:                 "",
		Title:              "",
		DocumentationLinks: []DocLink{{URL: "/relative"}},
		Source:             Source{URL: "not-absolute", Origin: "optimnow-hub"},
		ScrapedAt:          "yesterday",
	}
	problems := Validate(rec)
	require.Len(t, problems, 5)
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := testAssembler(t).Assemble(parseDoc(t, detailPage), "https://www.optimnow.io/hub/inefficiencies/idle-ec2/")

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, rec, back)

	again, err := json.Marshal(back)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestRecordJSONEmptySlicesNotNull(t *testing.T) {
	rec := testAssembler(t).Assemble(
		parseDoc(t, `<html><body><h1>Bare</h1></body></html>`),
		"https://www.optimnow.io/hub/inefficiencies/bare/",
	)
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.Contains(t, string(data), `"detectionSignals":[]`)
	require.Contains(t, string(data), `"remediationActions":[]`)
	require.Contains(t, string(data), `"documentationLinks":[]`)
	require.Contains(t, string(data), `"tags":[]`)
}
