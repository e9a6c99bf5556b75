package mapping

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rpattn/casemigrate/internal/detect"
	"github.com/rpattn/casemigrate/internal/domain"
)

// Suggestion is a proposed mapping set for a detected header list, with an
// overall confidence derived from how many columns resolved to a target.
type Suggestion struct {
	Mappings   []domain.FieldMapping `json:"mappings"`
	Confidence int                   `json:"confidence"`
}

// Suggest builds one FieldMapping per source column. Non-generic source
// types resolve through their exact-header hint table; the generic type
// falls back to an ordered substring pattern list where the first match
// wins. Columns that resolve nowhere are returned unmapped.
func Suggest(headers []string, sourceType domain.SourceType) Suggestion {
	mappings := make([]domain.FieldMapping, 0, len(headers))
	matched := 0

	hints := domain.FieldHintsFor(sourceType)

	for _, header := range headers {
		normalized := detect.NormalizeHeader(header)
		mapping := domain.FieldMapping{SourceField: header}

		if target, ok := resolveTarget(normalized, sourceType, hints); ok {
			mapping.TargetField = target.Field
			mapping.TargetEntity = target.Entity
			matched++
		}

		mappings = append(mappings, mapping)
	}

	confidence := 0
	if len(headers) > 0 {
		confidence = int(math.Round(float64(matched) / float64(len(headers)) * 100))
	}

	return Suggestion{Mappings: mappings, Confidence: confidence}
}

func resolveTarget(normalized string, sourceType domain.SourceType, hints map[string]domain.FieldTarget) (domain.FieldTarget, bool) {
	if sourceType != domain.SourceTypeGeneric {
		target, ok := hints[normalized]
		return target, ok
	}
	for _, rule := range domain.GenericPatterns() {
		if strings.Contains(normalized, rule.Pattern) {
			return rule.Target, true
		}
	}
	return domain.FieldTarget{}, false
}

// ValidateMappings checks an operator-submitted mapping set structurally.
// All problems are joined into one error so the operator sees the full list
// in a single round trip.
func ValidateMappings(mappings []domain.FieldMapping) error {
	if len(mappings) == 0 {
		return errors.New("at least one field mapping is required")
	}

	var problems []string
	for _, m := range mappings {
		if m.Required && strings.TrimSpace(m.TargetField) == "" {
			problems = append(problems, fmt.Sprintf("required mapping for column %q has no target field", m.SourceField))
			continue
		}
		if m.TargetField == "" {
			continue
		}
		if !domain.TargetFieldAllowed(m.TargetEntity, m.TargetField) {
			problems = append(problems, fmt.Sprintf("target field %q is not valid for entity %q (column %q)", m.TargetField, m.TargetEntity, m.SourceField))
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
