package domain

import "time"

// AnalysisUnavailable is substituted for a section's analysis text when the
// language-model call exhausts its retries.
const AnalysisUnavailable = "analysis unavailable"

// ReportSection holds one category's items plus their generated analysis.
type ReportSection struct {
	Category Category
	Title    string
	Items    []ClassifiedItem
	Analysis string
}

// Degraded reports whether the section carries the placeholder analysis.
func (s ReportSection) Degraded() bool {
	return s.Analysis == AnalysisUnavailable
}

// Report is the immutable daily output. It is produced fresh on every run
// and only rendered afterwards, never mutated.
type Report struct {
	Date        string
	GeneratedAt time.Time
	Highlights  []ClassifiedItem
	Sections    []ReportSection
	Commentary  string
}

// DegradedSections counts sections whose analysis fell back to the placeholder.
func (r Report) DegradedSections() int {
	n := 0
	for _, s := range r.Sections {
		if s.Degraded() {
			n++
		}
	}
	return n
}

// DeliveryResult describes the outcome of one email submission.
type DeliveryResult struct {
	Recipients  []string
	DeliveredAt time.Time
}
