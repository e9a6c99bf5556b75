package migration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rpattn/casemigrate/internal/domain"
)

func TestGeneratePreviewBucketsByEntity(t *testing.T) {
	data := "case_number,reporter_email,assigned\nC-1,jane@example.com,Smith\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "case_number", TargetField: "case_number", TargetEntity: domain.TargetEntityCase},
		{SourceField: "reporter_email", TargetField: "email", TargetEntity: domain.TargetEntityPerson, Transform: "EXTRACT_EMAIL"},
		{SourceField: "assigned", TargetField: "investigator", TargetEntity: domain.TargetEntityInvestigation},
	}

	rows, err := GeneratePreview(reader, mappings, 0)
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 preview row, got %d", len(rows))
	}

	row := rows[0]
	if row.RowNumber != 1 {
		t.Fatalf("unexpected row number: %d", row.RowNumber)
	}
	if row.Entities[domain.TargetEntityCase]["case_number"] != "C-1" {
		t.Fatalf("unexpected case bucket: %+v", row.Entities)
	}
	if row.Entities[domain.TargetEntityPerson]["email"] != "jane@example.com" {
		t.Fatalf("unexpected person bucket: %+v", row.Entities)
	}
	if row.Entities[domain.TargetEntityInvestigation]["investigator"] != "Smith" {
		t.Fatalf("unexpected investigation bucket: %+v", row.Entities)
	}
}

func TestGeneratePreviewDefaultsAndOmission(t *testing.T) {
	data := "case_number,status,notes\nC-1,,\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "case_number", TargetField: "case_number", TargetEntity: domain.TargetEntityCase},
		{SourceField: "status", TargetField: "status", TargetEntity: domain.TargetEntityCase, DefaultValue: "NEW"},
		{SourceField: "notes", TargetField: "notes", TargetEntity: domain.TargetEntityInvestigation},
	}

	rows, err := GeneratePreview(reader, mappings, 5)
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 preview row, got %d", len(rows))
	}
	row := rows[0]

	if row.Entities[domain.TargetEntityCase]["status"] != "NEW" {
		t.Fatalf("expected default value, got %+v", row.Entities)
	}
	// Empty with no default: the field is omitted, not emitted as null.
	if _, exists := row.Entities[domain.TargetEntityInvestigation]; exists {
		t.Fatalf("empty field must be omitted entirely, got %+v", row.Entities)
	}
}

func TestGeneratePreviewBounded(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("case_number\n")
	for i := 0; i < 30; i++ {
		sb.WriteString(fmt.Sprintf("C-%d\n", i))
	}
	reader := openCSV(t, sb.String())

	mappings := []domain.FieldMapping{
		{SourceField: "case_number", TargetField: "case_number", TargetEntity: domain.TargetEntityCase},
	}

	rows, err := GeneratePreview(reader, mappings, 0)
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	if len(rows) != defaultPreviewRows {
		t.Fatalf("expected default bound of %d rows, got %d", defaultPreviewRows, len(rows))
	}
}

func TestGeneratePreviewAttachesIssues(t *testing.T) {
	data := "case_number,amount\n,N/A\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "case_number", TargetField: "case_number", TargetEntity: domain.TargetEntityCase, Required: true},
		{SourceField: "amount", TargetField: "tags", TargetEntity: domain.TargetEntityCase, Transform: "PARSE_NUMBER"},
	}

	rows, err := GeneratePreview(reader, mappings, 5)
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	row := rows[0]
	if len(row.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", row.Issues)
	}
	if !strings.Contains(row.Issues[0], "case_number") {
		t.Fatalf("issue text should name the source field, got %v", row.Issues)
	}
}

func TestGeneratePreviewSkipsUnmappedColumns(t *testing.T) {
	data := "a,b\n1,2\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "a"},
		{SourceField: "b", TargetField: "case_number", TargetEntity: domain.TargetEntityCase},
	}

	rows, err := GeneratePreview(reader, mappings, 5)
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	row := rows[0]
	if len(row.Entities) != 1 || row.Entities[domain.TargetEntityCase]["case_number"] != "2" {
		t.Fatalf("unexpected buckets: %+v", row.Entities)
	}
	// The raw source row still carries every column.
	if row.Source["a"] != "1" || row.Source["b"] != "2" {
		t.Fatalf("unexpected source capture: %+v", row.Source)
	}
}
