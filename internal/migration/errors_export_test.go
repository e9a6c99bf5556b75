package migration

import (
	"strings"
	"testing"

	"github.com/rpattn/casemigrate/internal/domain"
)

func TestWriteErrorReport(t *testing.T) {
	job := newTestJob()
	job.ValidationErrors = []domain.ValidationError{
		{Row: 2, Field: "opened_date", Value: "31/02/2024", Message: "invalid US date", Severity: domain.SeverityError},
		{Row: 5, Field: "reporter_email", Value: "front desk", Message: "no email address found", Severity: domain.SeverityWarning},
	}

	var buf strings.Builder
	if err := WriteErrorReport(&buf, job); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "row,field,value,severity,message" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2,opened_date,31/02/2024,error,invalid US date" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "warning") {
		t.Fatalf("warning findings must be included: %q", lines[2])
	}
}

func TestWriteErrorReportEmptyJob(t *testing.T) {
	var buf strings.Builder
	if err := WriteErrorReport(&buf, newTestJob()); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "row,field,value,severity,message" {
		t.Fatalf("empty jobs still produce the header: %q", buf.String())
	}
}
