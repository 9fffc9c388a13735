package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Clock supplies timestamps, swappable in tests.
type Clock interface {
	Now() time.Time
}

// Options configures an Assembler.
type Options struct {
	// Origin is the constant identifying the data source in Record.Source.
	Origin string
	// BaseURL resolves relative documentation links to absolute URLs.
	BaseURL *url.URL
	// Clock stamps scrapedAt. Required.
	Clock Clock
	// Strategy selects the paragraph-mode collection algorithm.
	Strategy ParagraphStrategy
}

// Assembler orchestrates the field locator, section extractors, and link
// collector over one parsed document and composes the normalized record.
type Assembler struct {
	opts   Options
	logger *zap.Logger
}

// NewAssembler builds an Assembler. A nil logger is replaced with a no-op.
func NewAssembler(opts Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{opts: opts, logger: logger}
}

// Assemble extracts a Record from doc. A record is always returned:
// validation problems are logged as warnings, never fatal, and missing
// sections degrade to absent fields or empty slices.
func (a *Assembler) Assemble(doc *goquery.Document, pageURL string) Record {
	rec := Record{
		ID:                 Slug(pageURL),
		DetectionSignals:   []string{},
		RemediationActions: []string{},
		DocumentationLinks: []DocLink{},
		Tags:               []string{},
		Source:             Source{URL: pageURL, Origin: a.opts.Origin},
		ScrapedAt:          a.opts.Clock.Now().UTC().Format(time.RFC3339),
	}

	root := documentRoot(doc)
	if root == nil {
		a.warn(rec, pageURL, "document has no root node")
		return rec
	}

	rec.Title = title(root)
	rec.Author = author(root)

	if v, ok := Field(root, LabelServiceCategory); ok {
		rec.ServiceCategory = v
	}
	if v, ok := Field(root, LabelCloudProvider); ok {
		rec.CloudProvider = v
	}
	if v, ok := Field(root, LabelServiceName); ok {
		rec.ServiceName = v
	}
	if v, ok := Field(root, LabelInefficiencyType); ok {
		rec.InefficiencyType = v
	}

	if v, ok := Paragraph(root, HeadingExplanation, a.opts.Strategy); ok {
		rec.Explanation = v
	}
	if v, ok := Paragraph(root, HeadingBillingModel, a.opts.Strategy); ok {
		rec.BillingModel = v
	}

	rec.DetectionSignals = List(root, HeadingDetection)
	rec.RemediationActions = List(root, HeadingRemediation)
	rec.DocumentationLinks = Links(root, HeadingDocumentation, a.opts.BaseURL)

	for _, problem := range Validate(rec) {
		a.warn(rec, pageURL, problem)
	}
	return rec
}

func (a *Assembler) warn(rec Record, pageURL, problem string) {
	a.logger.Warn("record failed validation",
		zap.String("id", rec.ID),
		zap.String("url", pageURL),
		zap.String("problem", problem),
	)
}

// Slug derives a record ID from the last non-empty path segment of rawURL,
// ignoring trailing slashes. When the URL cannot be parsed or has no path
// segments, the raw string is returned as a best-effort fallback rather
// than failing.
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return rawURL
}

func documentRoot(doc *goquery.Document) *html.Node {
	if doc == nil || len(doc.Nodes) == 0 {
		return nil
	}
	return doc.Nodes[0]
}

// title returns the text of the first heading-level element in document
// order, falling back to the first non-empty text node anywhere in the
// document.
func title(root *html.Node) string {
	for t := range nonEmpty(Walk(root)) {
		if h := headingAncestor(t.Element); h != nil {
			return collapseWhitespace(textContent(h))
		}
	}
	scope := root
	if body := findElement(root, "body"); body != nil {
		scope = body
	}
	if t, ok := first(nonEmpty(Walk(scope))); ok {
		return t.Text
	}
	return ""
}

func findElement(root *html.Node, tag string) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode && root.Data == tag {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if el := findElement(c, tag); el != nil {
			return el
		}
	}
	return nil
}

// author returns the first meaningful sibling following the title element
// that is neither a section heading nor a field label. Hitting either is a
// stop: those pages simply carry no byline.
func author(root *html.Node) string {
	h := firstHeadingElement(root)
	if h == nil {
		return ""
	}
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
		if IsSectionHeading(txt) || isFieldLabel(txt) {
			return ""
		}
		return txt
	}
	return ""
}

func firstHeadingElement(root *html.Node) *html.Node {
	for t := range nonEmpty(Walk(root)) {
		if h := headingAncestor(t.Element); h != nil {
			return h
		}
	}
	return nil
}

// headingAncestor returns the nearest enclosing h1..h6, or nil. The text of
// a heading may sit inside inline children, so the check walks up.
func headingAncestor(el *html.Node) *html.Node {
	for n := el; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			return n
		}
	}
	return nil
}
