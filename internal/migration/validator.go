package migration

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rpattn/casemigrate/internal/domain"
	"github.com/rpattn/casemigrate/internal/transform"
)

const (
	// maxStoredErrors bounds the validation-error detail kept on a job.
	// Counts keep accruing past the cap; only detail is dropped.
	maxStoredErrors = 1000
	// progressInterval is the row cadence for progress checkpoints.
	progressInterval = 100
)

// ProgressFunc receives periodic progress checkpoints during a long
// validation run.
type ProgressFunc func(percent int, step string)

// ValidationResult aggregates one validation pass over every row.
type ValidationResult struct {
	TotalRows int
	ValidRows int
	ErrorRows int
	Errors    []domain.ValidationError
}

// ValidateRows applies the mapping set in validate mode to every row, in
// file order. expectedTotal drives progress percentages and may be zero when
// unknown; progress may be nil.
func ValidateRows(reader RowReader, mappings []domain.FieldMapping, expectedTotal int, progress ProgressFunc) (ValidationResult, error) {
	result := ValidationResult{}
	index := indexHeaders(reader.Headers())

	rowNum := 0
	for {
		row, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return result, err
		}
		rowNum++
		result.TotalRows++

		findings := validateRow(rowNum, row, mappings, index)
		rowValid := true
		for _, finding := range findings {
			if finding.Severity == domain.SeverityError {
				rowValid = false
			}
			if len(result.Errors) < maxStoredErrors {
				result.Errors = append(result.Errors, finding)
			}
		}

		if rowValid {
			result.ValidRows++
		} else {
			result.ErrorRows++
		}

		if progress != nil && rowNum%progressInterval == 0 {
			progress(percentOf(rowNum, expectedTotal), fmt.Sprintf("validating row %d of %d", rowNum, expectedTotal))
		}
	}

	if progress != nil {
		progress(100, fmt.Sprintf("validated %d rows", result.TotalRows))
	}

	return result, nil
}

// validateRow evaluates every mapping against one row. A required mapping
// with an empty value yields exactly one error and skips the transform check
// for that mapping; empty optional values are skipped silently.
func validateRow(rowNum int, row []string, mappings []domain.FieldMapping, index map[string]int) []domain.ValidationError {
	var findings []domain.ValidationError

	for _, m := range mappings {
		raw := cellValue(row, index, m.SourceField)

		if strings.TrimSpace(raw) == "" {
			if m.Required {
				findings = append(findings, domain.ValidationError{
					Row:      rowNum,
					Field:    m.SourceField,
					Value:    raw,
					Message:  "required field is empty",
					Severity: domain.SeverityError,
				})
			}
			continue
		}

		if m.Transform == "" {
			continue
		}

		if issue := transform.Validate(transform.Function(m.Transform), raw); issue != nil {
			findings = append(findings, domain.ValidationError{
				Row:      rowNum,
				Field:    m.SourceField,
				Value:    raw,
				Message:  issue.Message,
				Severity: issue.Severity,
			})
		}
	}

	return findings
}

func indexHeaders(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		if _, exists := index[header]; !exists {
			index[header] = i
		}
	}
	return index
}

func cellValue(row []string, index map[string]int, sourceField string) string {
	col, ok := index[sourceField]
	if !ok || col >= len(row) {
		return ""
	}
	return row[col]
}

func percentOf(done, total int) int {
	if total <= 0 {
		return 0
	}
	percent := done * 100 / total
	if percent > 100 {
		percent = 100
	}
	return percent
}
