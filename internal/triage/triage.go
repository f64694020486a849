package triage

// Result is the raw outcome of analyzing a ticket. Fields arrive as the
// model produced them (or as the canned fallback) and are only trusted
// after passing through Normalize.
type Result struct {
	Summary       string   `json:"summary"`
	Priority      string   `json:"priority"`
	HelpfulNotes  string   `json:"helpfulNotes"`
	RelatedSkills []string `json:"relatedSkills"`
}

const (
	// FallbackNotes is the helpfulNotes text used whenever analysis is
	// unavailable or unusable.
	FallbackNotes = "Analysis unavailable; review manually."

	// fallbackSummary stands in when the ticket has no description to
	// truncate.
	fallbackSummary = "No summary available"

	// summaryLimit caps the fallback summary taken from the description.
	summaryLimit = 140
)

// Fallback returns the canned triage result used when the model call fails
// or produces unusable output.
func Fallback(description string) *Result {
	summary := description
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}
	if summary == "" {
		summary = fallbackSummary
	}
	return &Result{
		Summary:       summary,
		Priority:      "medium",
		HelpfulNotes:  FallbackNotes,
		RelatedSkills: []string{},
	}
}
