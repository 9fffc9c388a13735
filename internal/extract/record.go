package extract

// Source identifies where a record was scraped from.
type Source struct {
	URL    string `json:"url"`
	Origin string `json:"origin"`
}

// Record is the normalized output of the extraction engine. Scalar fields
// are omitted from JSON when absent; slice fields are always present, with
// the empty slice as the "missing" state. Tags is always empty at extraction
// time and populated downstream.
type Record struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title,omitempty"`
	Author             string    `json:"author,omitempty"`
	ServiceCategory    string    `json:"serviceCategory,omitempty"`
	CloudProvider      string    `json:"cloudProvider,omitempty"`
	ServiceName        string    `json:"serviceName,omitempty"`
	InefficiencyType   string    `json:"inefficiencyType,omitempty"`
	Explanation        string    `json:"explanation,omitempty"`
	BillingModel       string    `json:"billingModel,omitempty"`
	DetectionSignals   []string  `json:"detectionSignals"`
	RemediationActions []string  `json:"remediationActions"`
	DocumentationLinks []DocLink `json:"documentationLinks"`
	Tags               []string  `json:"tags"`
	Source             Source    `json:"source"`
	ScrapedAt          string    `json:"scrapedAt"`
}
