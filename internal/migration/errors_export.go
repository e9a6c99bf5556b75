package migration

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/rpattn/casemigrate/internal/domain"
)

// ErrorReport is the downloadable CSV of a job's stored validation findings.
type ErrorReport struct {
	Job      domain.MigrationJob
	FileName string
}

// ErrorReportFor loads a job and names its error report file. The CSV body is
// produced separately by WriteErrorReport so the handler can stream it.
func (s *Service) ErrorReportFor(ctx context.Context, jobID uuid.UUID) (ErrorReport, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return ErrorReport{}, err
	}
	return ErrorReport{
		Job:      job,
		FileName: fmt.Sprintf("validation-errors-%s.csv", job.ID),
	}, nil
}

// WriteErrorReport writes the job's stored validation findings as CSV. The
// detail list is bounded at storage time, so the report covers at most the
// first stored findings even when the error count is higher.
func WriteErrorReport(w io.Writer, job domain.MigrationJob) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"row", "field", "value", "severity", "message"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, 5)
	for _, issue := range job.ValidationErrors {
		record[0] = strconv.Itoa(issue.Row)
		record[1] = issue.Field
		record[2] = issue.Value
		record[3] = string(issue.Severity)
		record[4] = issue.Message
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", issue.Row, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
