package domain

// SourceType identifies the legacy system schema family an uploaded file is
// believed to originate from.
type SourceType string

const (
	SourceTypeEthicsPoint SourceType = "ethicspoint"
	SourceTypeConvercent  SourceType = "convercent"
	SourceTypeCaseIQ      SourceType = "caseiq"
	// SourceTypeGeneric is the open catch-all format. It carries no header
	// patterns and accepts any header set by construction.
	SourceTypeGeneric SourceType = "generic"
)

// KnownSourceTypes lists the non-generic source types in a fixed order so
// detection is deterministic.
func KnownSourceTypes() []SourceType {
	return []SourceType{SourceTypeEthicsPoint, SourceTypeConvercent, SourceTypeCaseIQ}
}

// ValidSourceType reports whether the given value names a registered source type.
func ValidSourceType(t SourceType) bool {
	switch t {
	case SourceTypeEthicsPoint, SourceTypeConvercent, SourceTypeCaseIQ, SourceTypeGeneric:
		return true
	}
	return false
}

// sourcePatterns holds the known header-name patterns per source type,
// already in normalized form (lowercase, non-alphanumeric collapsed to "_").
// The generic type is deliberately absent: it has zero patterns.
var sourcePatterns = map[SourceType][]string{
	SourceTypeEthicsPoint: {
		"report_id",
		"issue_type",
		"incident_date",
		"reporter_name",
		"reporter_email",
		"location",
		"details",
		"outcome",
		"case_status",
		"severity",
	},
	SourceTypeConvercent: {
		"case_id",
		"case_type",
		"created_on",
		"reporter",
		"category",
		"severity_level",
		"state",
		"resolution",
		"business_unit",
		"closed_on",
	},
	SourceTypeCaseIQ: {
		"case_number",
		"incident_type",
		"status",
		"priority",
		"assigned_to",
		"summary",
		"incident_location",
		"opened_date",
		"closed_date",
		"party_name",
	},
}

// PatternsFor returns the registered header patterns for a source type.
// The returned slice must not be mutated.
func PatternsFor(t SourceType) []string {
	return sourcePatterns[t]
}

// FieldTarget pairs a target field name with the entity it belongs to.
type FieldTarget struct {
	Field  string
	Entity TargetEntity
}

// fieldHints maps exact normalized source headers to their target for each
// non-generic source type.
var fieldHints = map[SourceType]map[string]FieldTarget{
	SourceTypeEthicsPoint: {
		"report_id":      {Field: "case_number", Entity: TargetEntityCase},
		"issue_type":     {Field: "category", Entity: TargetEntityCase},
		"incident_date":  {Field: "occurred_date", Entity: TargetEntityIncident},
		"reporter_name":  {Field: "full_name", Entity: TargetEntityPerson},
		"reporter_email": {Field: "email", Entity: TargetEntityPerson},
		"location":       {Field: "location", Entity: TargetEntityCase},
		"details":        {Field: "description", Entity: TargetEntityCase},
		"outcome":        {Field: "outcome", Entity: TargetEntityInvestigation},
		"case_status":    {Field: "status", Entity: TargetEntityCase},
		"severity":       {Field: "severity", Entity: TargetEntityCase},
	},
	SourceTypeConvercent: {
		"case_id":        {Field: "case_number", Entity: TargetEntityCase},
		"case_type":      {Field: "category", Entity: TargetEntityCase},
		"created_on":     {Field: "reported_date", Entity: TargetEntityCase},
		"reporter":       {Field: "full_name", Entity: TargetEntityPerson},
		"category":       {Field: "category", Entity: TargetEntityCase},
		"severity_level": {Field: "severity", Entity: TargetEntityCase},
		"state":          {Field: "status", Entity: TargetEntityCase},
		"resolution":     {Field: "outcome", Entity: TargetEntityInvestigation},
		"business_unit":  {Field: "department", Entity: TargetEntityPerson},
		"closed_on":      {Field: "closed_date", Entity: TargetEntityCase},
	},
	SourceTypeCaseIQ: {
		"case_number":       {Field: "case_number", Entity: TargetEntityCase},
		"incident_type":     {Field: "incident_type", Entity: TargetEntityIncident},
		"status":            {Field: "status", Entity: TargetEntityCase},
		"priority":          {Field: "severity", Entity: TargetEntityCase},
		"assigned_to":       {Field: "investigator", Entity: TargetEntityInvestigation},
		"summary":           {Field: "title", Entity: TargetEntityCase},
		"incident_location": {Field: "location", Entity: TargetEntityIncident},
		"opened_date":       {Field: "reported_date", Entity: TargetEntityCase},
		"closed_date":       {Field: "closed_date", Entity: TargetEntityCase},
		"party_name":        {Field: "full_name", Entity: TargetEntityPerson},
	},
}

// FieldHintsFor returns the exact-header hint table for a source type, or nil
// for the generic type.
func FieldHintsFor(t SourceType) map[string]FieldTarget {
	return fieldHints[t]
}

// GenericPattern is a substring fallback rule used only for the generic
// source type. Rules are checked in declared order; the first match wins.
type GenericPattern struct {
	Pattern string
	Target  FieldTarget
}

// genericPatterns is ordered from most to least specific so that e.g.
// "closed_date" resolves before the bare "date" rule can claim it.
var genericPatterns = []GenericPattern{
	{Pattern: "case_number", Target: FieldTarget{Field: "case_number", Entity: TargetEntityCase}},
	{Pattern: "number", Target: FieldTarget{Field: "case_number", Entity: TargetEntityCase}},
	{Pattern: "investigator", Target: FieldTarget{Field: "investigator", Entity: TargetEntityInvestigation}},
	{Pattern: "assigned", Target: FieldTarget{Field: "investigator", Entity: TargetEntityInvestigation}},
	{Pattern: "outcome", Target: FieldTarget{Field: "outcome", Entity: TargetEntityInvestigation}},
	{Pattern: "resolution", Target: FieldTarget{Field: "outcome", Entity: TargetEntityInvestigation}},
	{Pattern: "email", Target: FieldTarget{Field: "email", Entity: TargetEntityPerson}},
	{Pattern: "phone", Target: FieldTarget{Field: "phone", Entity: TargetEntityPerson}},
	{Pattern: "first_name", Target: FieldTarget{Field: "first_name", Entity: TargetEntityPerson}},
	{Pattern: "last_name", Target: FieldTarget{Field: "last_name", Entity: TargetEntityPerson}},
	{Pattern: "reporter", Target: FieldTarget{Field: "full_name", Entity: TargetEntityPerson}},
	{Pattern: "name", Target: FieldTarget{Field: "full_name", Entity: TargetEntityPerson}},
	{Pattern: "incident_type", Target: FieldTarget{Field: "incident_type", Entity: TargetEntityIncident}},
	{Pattern: "severity", Target: FieldTarget{Field: "severity", Entity: TargetEntityCase}},
	{Pattern: "priority", Target: FieldTarget{Field: "severity", Entity: TargetEntityCase}},
	{Pattern: "status", Target: FieldTarget{Field: "status", Entity: TargetEntityCase}},
	{Pattern: "state", Target: FieldTarget{Field: "status", Entity: TargetEntityCase}},
	{Pattern: "category", Target: FieldTarget{Field: "category", Entity: TargetEntityCase}},
	{Pattern: "type", Target: FieldTarget{Field: "category", Entity: TargetEntityCase}},
	{Pattern: "title", Target: FieldTarget{Field: "title", Entity: TargetEntityCase}},
	{Pattern: "subject", Target: FieldTarget{Field: "title", Entity: TargetEntityCase}},
	{Pattern: "summary", Target: FieldTarget{Field: "title", Entity: TargetEntityCase}},
	{Pattern: "narrative", Target: FieldTarget{Field: "description", Entity: TargetEntityCase}},
	{Pattern: "detail", Target: FieldTarget{Field: "description", Entity: TargetEntityCase}},
	{Pattern: "desc", Target: FieldTarget{Field: "description", Entity: TargetEntityCase}},
	{Pattern: "notes", Target: FieldTarget{Field: "notes", Entity: TargetEntityInvestigation}},
	{Pattern: "location", Target: FieldTarget{Field: "location", Entity: TargetEntityCase}},
	{Pattern: "site", Target: FieldTarget{Field: "location", Entity: TargetEntityCase}},
	{Pattern: "closed", Target: FieldTarget{Field: "closed_date", Entity: TargetEntityCase}},
	{Pattern: "resolved", Target: FieldTarget{Field: "closed_date", Entity: TargetEntityCase}},
	{Pattern: "reported", Target: FieldTarget{Field: "reported_date", Entity: TargetEntityCase}},
	{Pattern: "created", Target: FieldTarget{Field: "reported_date", Entity: TargetEntityCase}},
	{Pattern: "opened", Target: FieldTarget{Field: "reported_date", Entity: TargetEntityCase}},
	{Pattern: "date", Target: FieldTarget{Field: "reported_date", Entity: TargetEntityCase}},
	{Pattern: "tags", Target: FieldTarget{Field: "tags", Entity: TargetEntityCase}},
	{Pattern: "department", Target: FieldTarget{Field: "department", Entity: TargetEntityPerson}},
	{Pattern: "role", Target: FieldTarget{Field: "role", Entity: TargetEntityPerson}},
}

// GenericPatterns returns the ordered substring fallback table for the
// generic source type. The returned slice must not be mutated.
func GenericPatterns() []GenericPattern {
	return genericPatterns
}
