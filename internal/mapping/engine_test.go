package mapping

import (
	"strings"
	"testing"

	"github.com/rpattn/casemigrate/internal/domain"
)

func TestSuggestResolvesKnownHeaders(t *testing.T) {
	headers := []string{"Case Number", "Incident Type", "Status"}
	suggestion := Suggest(headers, domain.SourceTypeCaseIQ)

	if len(suggestion.Mappings) != 3 {
		t.Fatalf("expected one mapping per column, got %d", len(suggestion.Mappings))
	}
	if suggestion.Confidence != 100 {
		t.Fatalf("all columns resolve, expected confidence 100, got %d", suggestion.Confidence)
	}

	byField := map[string]domain.FieldMapping{}
	for _, m := range suggestion.Mappings {
		byField[m.SourceField] = m
	}
	if m := byField["Case Number"]; m.TargetField != "case_number" || m.TargetEntity != domain.TargetEntityCase {
		t.Fatalf("unexpected mapping for Case Number: %+v", m)
	}
	if m := byField["Incident Type"]; m.TargetField != "incident_type" || m.TargetEntity != domain.TargetEntityIncident {
		t.Fatalf("unexpected mapping for Incident Type: %+v", m)
	}
}

func TestSuggestLeavesUnknownColumnsUnmapped(t *testing.T) {
	suggestion := Suggest([]string{"case_number", "zorp_field"}, domain.SourceTypeCaseIQ)
	if suggestion.Confidence != 50 {
		t.Fatalf("expected confidence 50, got %d", suggestion.Confidence)
	}
	for _, m := range suggestion.Mappings {
		if m.SourceField == "zorp_field" && m.TargetField != "" {
			t.Fatalf("unknown column must stay unmapped, got %+v", m)
		}
	}
}

func TestSuggestGenericFirstMatchWins(t *testing.T) {
	// "closed_date" contains both "closed" and "date"; declared order puts
	// "closed" first so the column routes to closed_date, not reported_date.
	suggestion := Suggest([]string{"Closed Date"}, domain.SourceTypeGeneric)
	m := suggestion.Mappings[0]
	if m.TargetField != "closed_date" || m.TargetEntity != domain.TargetEntityCase {
		t.Fatalf("expected closed_date/case, got %+v", m)
	}

	suggestion = Suggest([]string{"Reporter Email"}, domain.SourceTypeGeneric)
	m = suggestion.Mappings[0]
	if m.TargetField != "email" || m.TargetEntity != domain.TargetEntityPerson {
		t.Fatalf("expected email/person, got %+v", m)
	}
}

func TestValidateMappingsRejectsEmptySet(t *testing.T) {
	if err := ValidateMappings(nil); err == nil {
		t.Fatalf("expected error for empty mapping set")
	}
}

func TestValidateMappingsCombinesProblems(t *testing.T) {
	mappings := []domain.FieldMapping{
		{SourceField: "a", Required: true},
		{SourceField: "b", TargetField: "not_a_field", TargetEntity: domain.TargetEntityCase},
		{SourceField: "c", TargetField: "status", TargetEntity: domain.TargetEntityCase},
	}

	err := ValidateMappings(mappings)
	if err == nil {
		t.Fatalf("expected combined validation error")
	}
	message := err.Error()
	if !strings.Contains(message, `"a"`) || !strings.Contains(message, `"not_a_field"`) {
		t.Fatalf("expected both problems in one message, got %q", message)
	}
	if !strings.Contains(message, "; ") {
		t.Fatalf("problems should be joined into a single message, got %q", message)
	}
}

func TestValidateMappingsAcceptsUnmappedColumns(t *testing.T) {
	mappings := []domain.FieldMapping{
		{SourceField: "ignored"},
		{SourceField: "num", TargetField: "case_number", TargetEntity: domain.TargetEntityCase, Required: true},
	}
	if err := ValidateMappings(mappings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
