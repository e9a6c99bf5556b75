package migration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rpattn/casemigrate/internal/domain"
)

func openCSV(t *testing.T, data string) RowReader {
	t.Helper()
	reader, err := OpenTable("test.csv", []byte(data))
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	return reader
}

func TestValidateRowsRequiredField(t *testing.T) {
	data := "case_number,status\n,open\nC-2,closed\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "case_number", TargetField: "case_number", TargetEntity: domain.TargetEntityCase, Required: true},
		{SourceField: "status", TargetField: "status", TargetEntity: domain.TargetEntityCase, Transform: "MAP_STATUS"},
	}

	result, err := ValidateRows(reader, mappings, 2, nil)
	if err != nil {
		t.Fatalf("validation returned error: %v", err)
	}

	if result.TotalRows != 2 || result.ValidRows != 1 || result.ErrorRows != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(result.Errors))
	}

	finding := result.Errors[0]
	if finding.Row != 1 || finding.Field != "case_number" {
		t.Fatalf("unexpected finding: %+v", finding)
	}
	if finding.Severity != domain.SeverityError || finding.Message != "required field is empty" {
		t.Fatalf("unexpected finding: %+v", finding)
	}
}

func TestValidateRowsWarningsDoNotInvalidate(t *testing.T) {
	data := "contact\nno address here\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "contact", TargetField: "email", TargetEntity: domain.TargetEntityPerson, Transform: "EXTRACT_EMAIL"},
	}

	result, err := ValidateRows(reader, mappings, 1, nil)
	if err != nil {
		t.Fatalf("validation returned error: %v", err)
	}
	if result.ValidRows != 1 || result.ErrorRows != 0 {
		t.Fatalf("warnings must not invalidate rows: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Severity != domain.SeverityWarning {
		t.Fatalf("expected one warning finding, got %+v", result.Errors)
	}
}

func TestValidateRowsEmptyOptionalSkipped(t *testing.T) {
	data := "amount\n\nabc\n12\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "amount", TargetField: "tags", TargetEntity: domain.TargetEntityCase, Transform: "PARSE_NUMBER"},
	}

	result, err := ValidateRows(reader, mappings, 2, nil)
	if err != nil {
		t.Fatalf("validation returned error: %v", err)
	}
	// The blank line is dropped by the parser; "abc" fails, "12" passes.
	if result.TotalRows != 2 || result.ValidRows != 1 || result.ErrorRows != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
}

func TestValidateRowsCapsStoredDetail(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("required_col,filler\n")
	rowCount := maxStoredErrors + 50
	for i := 0; i < rowCount; i++ {
		sb.WriteString(fmt.Sprintf(",row-%d\n", i))
	}
	reader := openCSV(t, sb.String())

	mappings := []domain.FieldMapping{
		{SourceField: "required_col", TargetField: "case_number", TargetEntity: domain.TargetEntityCase, Required: true},
	}

	result, err := ValidateRows(reader, mappings, rowCount, nil)
	if err != nil {
		t.Fatalf("validation returned error: %v", err)
	}
	if len(result.Errors) != maxStoredErrors {
		t.Fatalf("stored detail must cap at %d, got %d", maxStoredErrors, len(result.Errors))
	}
	// Counts keep accruing past the cap.
	if result.ErrorRows != rowCount || result.TotalRows != rowCount {
		t.Fatalf("counts must not be capped: %+v", result)
	}
}

func TestValidateRowsProgressCheckpoints(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("case_number\n")
	for i := 0; i < 250; i++ {
		sb.WriteString(fmt.Sprintf("C-%d\n", i))
	}
	reader := openCSV(t, sb.String())

	mappings := []domain.FieldMapping{
		{SourceField: "case_number", TargetField: "case_number", TargetEntity: domain.TargetEntityCase, Required: true},
	}

	var checkpoints []string
	progress := func(percent int, step string) {
		checkpoints = append(checkpoints, fmt.Sprintf("%d:%s", percent, step))
	}

	if _, err := ValidateRows(reader, mappings, 250, progress); err != nil {
		t.Fatalf("validation returned error: %v", err)
	}

	// Two interval checkpoints (rows 100 and 200) plus the final one.
	if len(checkpoints) != 3 {
		t.Fatalf("expected 3 checkpoints, got %v", checkpoints)
	}
	if checkpoints[0] != "40:validating row 100 of 250" {
		t.Fatalf("unexpected first checkpoint: %s", checkpoints[0])
	}
	if !strings.HasPrefix(checkpoints[2], "100:") {
		t.Fatalf("final checkpoint must be 100%%, got %s", checkpoints[2])
	}
}

func TestValidateRowsRowNumbersStable(t *testing.T) {
	data := "num\nok\n\nbad row skipped above keeps numbering continuous\n"
	reader := openCSV(t, data)

	mappings := []domain.FieldMapping{
		{SourceField: "num", TargetField: "case_number", TargetEntity: domain.TargetEntityCase, Transform: "PARSE_NUMBER"},
	}

	result, err := ValidateRows(reader, mappings, 2, nil)
	if err != nil {
		t.Fatalf("validation returned error: %v", err)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected findings for both rows, got %+v", result.Errors)
	}
	if result.Errors[0].Row != 1 || result.Errors[1].Row != 2 {
		t.Fatalf("row numbers must follow data-row order: %+v", result.Errors)
	}
}
