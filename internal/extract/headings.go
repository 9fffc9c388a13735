package extract

// Section heading labels found on hub detail pages. The set is closed: each
// label both introduces a content section and terminates any other section's
// collection. Adding a page section means adding a member here; no extractor
// logic changes.
const (
	HeadingExplanation   = "Explanation"
	HeadingBillingModel  = "Relevant Billing Model"
	HeadingDetection     = "Detection"
	HeadingRemediation   = "Remediation"
	HeadingDocumentation = "Relevant Documentation"
)

// sectionHeadings lists the registry in page order.
var sectionHeadings = []string{
	HeadingExplanation,
	HeadingBillingModel,
	HeadingDetection,
	HeadingRemediation,
	HeadingDocumentation,
}

// Field labels whose immediately following text node is treated as the
// field's value.
const (
	LabelServiceCategory  = "Service Category"
	LabelCloudProvider    = "Cloud Provider"
	LabelServiceName      = "Service Name"
	LabelInefficiencyType = "Inefficiency Type"
)

var fieldLabels = []string{
	LabelServiceCategory,
	LabelCloudProvider,
	LabelServiceName,
	LabelInefficiencyType,
}

// IsSectionHeading reports whether text is a member of the closed heading
// registry. Every section extractor shares this predicate as its terminator.
func IsSectionHeading(text string) bool {
	for _, h := range sectionHeadings {
		if text == h {
			return true
		}
	}
	return false
}

func isFieldLabel(text string) bool {
	for _, l := range fieldLabels {
		if text == l {
			return true
		}
	}
	return false
}

// otherHeading returns a predicate that is true for any registry heading
// except current. Used as the stop rule when collecting current's section.
func otherHeading(current string) func(TextNode) bool {
	return func(t TextNode) bool {
		return t.Text != current && IsSectionHeading(t.Text)
	}
}
