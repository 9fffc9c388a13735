package extract

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks rec against the output schema and returns human-readable
// problems. An empty result means the record is valid. Problems never block
// emission; callers surface them as warnings.
func Validate(rec Record) []string {
	var problems []string
	if rec.ID == "" {
		problems = append(problems, "missing id")
	}
	if rec.Title == "" {
		problems = append(problems, "missing title")
	}
	if !isAbsoluteURL(rec.Source.URL) {
		problems = append(problems, fmt.Sprintf("source url %q is not absolute", rec.Source.URL))
	}
	for _, l := range rec.DocumentationLinks {
		if !isAbsoluteURL(l.URL) {
			problems = append(problems, fmt.Sprintf("documentation link %q is not absolute", l.URL))
		}
	}
	if _, err := time.Parse(time.RFC3339, rec.ScrapedAt); err != nil {
		problems = append(problems, fmt.Sprintf("scrapedAt %q is not a valid timestamp", rec.ScrapedAt))
	}
	return problems
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
