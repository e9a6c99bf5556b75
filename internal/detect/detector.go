package detect

import (
	"math"
	"regexp"
	"strings"

	"github.com/rpattn/casemigrate/internal/domain"
)

const (
	// AcceptThreshold is the score above which a detection (or hint) wins.
	AcceptThreshold = 30
	// LowConfidenceWarning marks detections operators should double-check.
	LowConfidenceWarning = 50
	// LargeFileRows is the row count past which imports get slow.
	LargeFileRows = 10000
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader lowercases a header and collapses every non-alphanumeric
// run to a single underscore so pattern matching is layout-insensitive.
func NormalizeHeader(header string) string {
	normalized := nonAlnum.ReplaceAllString(strings.ToLower(header), "_")
	return strings.Trim(normalized, "_")
}

// Score computes the pattern match score for a header set against one source
// type: the percentage of the type's registered patterns for which some
// normalized header contains the pattern or is contained by it. Always in
// [0, 100]; a type with no patterns scores 0.
func Score(headers []string, sourceType domain.SourceType) int {
	patterns := domain.PatternsFor(sourceType)
	if len(patterns) == 0 {
		return 0
	}

	normalized := make([]string, 0, len(headers))
	for _, header := range headers {
		normalized = append(normalized, NormalizeHeader(header))
	}

	matched := 0
	for _, pattern := range patterns {
		for _, header := range normalized {
			if header == "" {
				continue
			}
			if strings.Contains(header, pattern) || strings.Contains(pattern, header) {
				matched++
				break
			}
		}
	}

	return int(math.Round(float64(matched) / float64(len(patterns)) * 100))
}

// DetectSourceType resolves the most likely source type for a header set.
// A non-generic hint wins when its own score clears the threshold; otherwise
// the best scoring non-generic type wins; otherwise the generic type is
// returned with confidence fixed at 100, since it accepts any header set.
func DetectSourceType(headers []string, hint domain.SourceType) (domain.SourceType, int) {
	if hint != "" && hint != domain.SourceTypeGeneric {
		if score := Score(headers, hint); score > AcceptThreshold {
			return hint, score
		}
	}

	best := domain.SourceTypeGeneric
	bestScore := 0
	for _, candidate := range domain.KnownSourceTypes() {
		if score := Score(headers, candidate); score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore >= AcceptThreshold {
		return best, bestScore
	}

	return domain.SourceTypeGeneric, 100
}

// DetectDelimiter picks the delimiter whose character occurs most often in
// the first line. Ties keep the first-seen candidate, so comma wins ties.
func DetectDelimiter(firstLine string) rune {
	candidates := []rune{',', ';', '\t', '|'}
	best := candidates[0]
	bestCount := strings.Count(firstLine, string(best))
	for _, candidate := range candidates[1:] {
		if count := strings.Count(firstLine, string(candidate)); count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// Warnings returns operator-facing notes for a completed detection.
func Warnings(confidence, totalRows int) []string {
	var warnings []string
	if confidence < LowConfidenceWarning {
		warnings = append(warnings, "low detection confidence; verify mappings carefully")
	}
	if totalRows > LargeFileRows {
		warnings = append(warnings, "large file; import may take several minutes")
	}
	return warnings
}
