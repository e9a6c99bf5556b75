package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/casemigrate/internal/domain"
)

// Function identifies a stateless value-conversion rule. Every function has
// two modes: Validate inspects a raw value and may produce an issue, Apply
// produces the typed output (or signals a drop).
type Function string

const (
	Uppercase    Function = "UPPERCASE"
	Lowercase    Function = "LOWERCASE"
	Trim         Function = "TRIM"
	ParseDate    Function = "PARSE_DATE"
	ParseDateUS  Function = "PARSE_DATE_US"
	ParseDateEU  Function = "PARSE_DATE_EU"
	ParseDateISO Function = "PARSE_DATE_ISO"
	ParseBoolean Function = "PARSE_BOOLEAN"
	ParseNumber  Function = "PARSE_NUMBER"
	SplitComma   Function = "SPLIT_COMMA"
	ExtractEmail Function = "EXTRACT_EMAIL"
	ExtractPhone Function = "EXTRACT_PHONE"
	MapSeverity  Function = "MAP_SEVERITY"
	MapStatus    Function = "MAP_STATUS"
	MapCategory  Function = "MAP_CATEGORY"
)

// Issue is a validation finding for one raw value.
type Issue struct {
	Message  string
	Severity domain.Severity
}

var (
	usDatePattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePrefix    = regexp.MustCompile(`^[0-9()\-. ]+`)
	numberStrip    = regexp.MustCompile(`[^0-9.\-]`)

	// Best-effort layouts for the generic PARSE_DATE fallback.
	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
	}
)

// Known reports whether fn names a registered transform function.
func Known(fn Function) bool {
	switch fn {
	case Uppercase, Lowercase, Trim,
		ParseDate, ParseDateUS, ParseDateEU, ParseDateISO,
		ParseBoolean, ParseNumber, SplitComma,
		ExtractEmail, ExtractPhone,
		MapSeverity, MapStatus, MapCategory:
		return true
	}
	return false
}

// Apply converts a raw value to its typed output. The second return value is
// false when the value should be dropped from the output entirely. Unknown
// functions pass the value through unchanged.
func Apply(fn Function, raw string, params map[string]string) (any, bool) {
	switch fn {
	case Uppercase:
		return strings.ToUpper(raw), true
	case Lowercase:
		return strings.ToLower(raw), true
	case Trim:
		return strings.TrimSpace(raw), true
	case ParseDateUS:
		if ts, ok := parseDateUS(raw); ok {
			return ts, true
		}
		return nil, false
	case ParseDateEU:
		if ts, ok := parseDateEU(raw); ok {
			return ts, true
		}
		return nil, false
	case ParseDateISO:
		if ts, ok := parseDateISO(raw); ok {
			return ts, true
		}
		return nil, false
	case ParseDate:
		if ts, ok := parseDateAny(raw); ok {
			return ts, true
		}
		return nil, false
	case ParseBoolean:
		return parseBoolean(raw), true
	case ParseNumber:
		stripped := numberStrip.ReplaceAllString(raw, "")
		if f, err := strconv.ParseFloat(stripped, 64); err == nil {
			return f, true
		}
		return nil, false
	case SplitComma:
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, true
	case ExtractEmail:
		if match := emailPattern.FindString(raw); match != "" {
			return match, true
		}
		return nil, false
	case ExtractPhone:
		prefix := phonePrefix.FindString(raw)
		var digits strings.Builder
		for _, r := range prefix {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		return digits.String(), true
	case MapSeverity:
		return mapSeverity(raw), true
	case MapStatus:
		return mapStatus(raw), true
	case MapCategory:
		// Passthrough; reserved for a category lookup table.
		return raw, true
	default:
		return raw, true
	}
}

// Validate checks one raw value against the rule named by fn. A nil return
// means the value passed. Unknown functions never raise.
func Validate(fn Function, raw string) *Issue {
	switch fn {
	case ParseDateUS:
		if _, ok := parseDateUS(raw); !ok {
			return errorIssue("is not a valid date (expected MM/DD/YYYY)")
		}
	case ParseDateEU:
		if _, ok := parseDateEU(raw); !ok {
			return errorIssue("is not a valid date (expected DD/MM/YYYY)")
		}
	case ParseDateISO:
		if _, ok := parseDateISO(raw); !ok {
			return errorIssue("is not a valid date (expected YYYY-MM-DD)")
		}
	case ParseDate:
		if _, ok := parseDateAny(raw); !ok {
			return errorIssue("is not a recognizable date")
		}
	case ParseNumber:
		// Deliberately stricter than Apply: the untouched string must parse.
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
			return errorIssue("is not a number")
		}
	case ExtractEmail:
		if emailPattern.FindString(raw) == "" {
			return &Issue{Message: "does not contain an email address", Severity: domain.SeverityWarning}
		}
	}
	return nil
}

func errorIssue(message string) *Issue {
	return &Issue{Message: message, Severity: domain.SeverityError}
}

func parseDateUS(raw string) (time.Time, bool) {
	match := usDatePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return time.Time{}, false
	}
	return buildDate(match[3], match[1], match[2])
}

func parseDateEU(raw string) (time.Time, bool) {
	match := usDatePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return time.Time{}, false
	}
	return buildDate(match[3], match[2], match[1])
}

func parseDateISO(raw string) (time.Time, bool) {
	match := isoDatePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return time.Time{}, false
	}
	return buildDate(match[1], match[2], match[3])
}

func parseDateAny(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func buildDate(year, month, day string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	ts := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow such as 02/31.
	if ts.Day() != d || int(ts.Month()) != m {
		return time.Time{}, false
	}
	return ts, true
}

// parseBoolean treats only the listed truthy tokens as true; every other
// value, including "false" and "no", maps to false.
func parseBoolean(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}

func mapSeverity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "critical", "3", "urgent":
		return "HIGH"
	case "medium", "moderate", "2", "normal":
		return "MEDIUM"
	case "low", "1", "minor":
		return "LOW"
	}
	return "MEDIUM"
}

func mapStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new", "pending", "received":
		return "NEW"
	case "open", "in progress", "active", "investigating":
		return "OPEN"
	case "closed", "resolved", "complete", "completed":
		return "CLOSED"
	}
	return "NEW"
}
