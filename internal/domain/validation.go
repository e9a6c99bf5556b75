package domain

// Severity classifies a validation finding. Warnings never invalidate a row.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError captures one row-level finding from a validation run.
// Row numbers are 1-based and stable with respect to original file order.
type ValidationError struct {
	Row      int      `json:"row"`
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// PreviewRow pairs a raw source row with its transformed output, bucketed by
// target entity, plus any validation issues rendered as display text.
type PreviewRow struct {
	RowNumber int                             `json:"rowNumber"`
	Source    map[string]string               `json:"source"`
	Entities  map[TargetEntity]map[string]any `json:"entities"`
	Issues    []string                        `json:"issues,omitempty"`
}
