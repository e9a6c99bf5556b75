package migration

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rpattn/casemigrate/internal/domain"
	"github.com/rpattn/casemigrate/internal/transform"
)

// defaultPreviewRows bounds the sample when the caller does not ask for a size.
const defaultPreviewRows = 10

// GeneratePreview applies the mapping set in apply mode to a bounded prefix
// of rows, bucketing output by target entity. Empty results fall back to the
// mapping's default value; fields that are still empty are omitted rather
// than emitted as nulls.
func GeneratePreview(reader RowReader, mappings []domain.FieldMapping, limit int) ([]domain.PreviewRow, error) {
	if limit <= 0 {
		limit = defaultPreviewRows
	}

	headers := reader.Headers()
	index := indexHeaders(headers)
	rows := make([]domain.PreviewRow, 0, limit)

	rowNum := 0
	for len(rows) < limit {
		row, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return rows, err
		}
		rowNum++

		source := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				source[header] = strings.TrimSpace(row[i])
			} else {
				source[header] = ""
			}
		}

		entities := make(map[domain.TargetEntity]map[string]any)
		for _, m := range mappings {
			if m.TargetField == "" {
				continue
			}

			raw := strings.TrimSpace(cellValue(row, index, m.SourceField))
			var value any = raw
			if raw != "" && m.Transform != "" {
				transformed, keep := transform.Apply(transform.Function(m.Transform), raw, m.TransformParams)
				if keep {
					value = transformed
				} else {
					value = nil
				}
			}

			if emptyValue(value) && m.DefaultValue != "" {
				value = m.DefaultValue
			}
			if emptyValue(value) {
				continue
			}

			bucket := entities[m.TargetEntity]
			if bucket == nil {
				bucket = make(map[string]any)
				entities[m.TargetEntity] = bucket
			}
			bucket[m.TargetField] = value
		}

		var issues []string
		for _, finding := range validateRow(rowNum, row, mappings, index) {
			issues = append(issues, fmt.Sprintf("%s: %s", finding.Field, finding.Message))
		}

		rows = append(rows, domain.PreviewRow{
			RowNumber: rowNum,
			Source:    source,
			Entities:  entities,
			Issues:    issues,
		})
	}

	return rows, nil
}

func emptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	}
	return false
}
