package transform

import (
	"reflect"
	"testing"
	"time"

	"github.com/rpattn/casemigrate/internal/domain"
)

func TestApplyStringOps(t *testing.T) {
	if v, _ := Apply(Uppercase, "abc", nil); v != "ABC" {
		t.Fatalf("expected ABC, got %v", v)
	}
	if v, _ := Apply(Lowercase, "AbC", nil); v != "abc" {
		t.Fatalf("expected abc, got %v", v)
	}
	if v, _ := Apply(Trim, "  padded  ", nil); v != "padded" {
		t.Fatalf("expected trimmed value, got %q", v)
	}
}

func TestParseDateISO(t *testing.T) {
	v, ok := Apply(ParseDateISO, "2024-01-15", nil)
	if !ok {
		t.Fatalf("expected 2024-01-15 to parse")
	}
	ts := v.(time.Time)
	if ts.Year() != 2024 || ts.Month() != time.January || ts.Day() != 15 {
		t.Fatalf("unexpected date: %v", ts)
	}

	if _, ok := Apply(ParseDateISO, "01/15/2024", nil); ok {
		t.Fatalf("US-shaped input must not satisfy the ISO rule")
	}
	if issue := Validate(ParseDateISO, "01/15/2024"); issue == nil || issue.Severity != domain.SeverityError {
		t.Fatalf("expected error issue, got %+v", issue)
	}
}

func TestParseDateUSAndEU(t *testing.T) {
	v, ok := Apply(ParseDateUS, "1/15/2024", nil)
	if !ok {
		t.Fatalf("expected 1/15/2024 to parse as US date")
	}
	if ts := v.(time.Time); ts.Month() != time.January || ts.Day() != 15 {
		t.Fatalf("unexpected US date: %v", ts)
	}

	v, ok = Apply(ParseDateEU, "15/1/2024", nil)
	if !ok {
		t.Fatalf("expected 15/1/2024 to parse as EU date")
	}
	if ts := v.(time.Time); ts.Month() != time.January || ts.Day() != 15 {
		t.Fatalf("unexpected EU date: %v", ts)
	}

	// Month 15 cannot exist; only the day/month swap distinguishes the rules.
	if _, ok := Apply(ParseDateUS, "15/1/2024", nil); ok {
		t.Fatalf("15/1/2024 must fail the US rule")
	}
	if _, ok := Apply(ParseDateUS, "2024-01-15", nil); ok {
		t.Fatalf("ISO input must fail the US rule")
	}
	if _, ok := Apply(ParseDateUS, "02/31/2024", nil); ok {
		t.Fatalf("overflowing day must fail")
	}
}

func TestParseDateGenericFallsBack(t *testing.T) {
	if _, ok := Apply(ParseDate, "2024-01-15", nil); !ok {
		t.Fatalf("ISO input should satisfy the generic rule")
	}
	if _, ok := Apply(ParseDate, "Jan 2, 2024", nil); !ok {
		t.Fatalf("locale-style input should satisfy the generic rule")
	}
	if v, ok := Apply(ParseDate, "not a date", nil); ok {
		t.Fatalf("expected drop for unparseable input, got %v", v)
	}
}

func TestParseBooleanAsymmetry(t *testing.T) {
	for _, truthy := range []string{"yes", "TRUE", " 1 ", "Y"} {
		if v, _ := Apply(ParseBoolean, truthy, nil); v != true {
			t.Fatalf("expected %q to be true", truthy)
		}
	}
	// Everything outside the truthy set is false, including "false" and junk.
	for _, falsy := range []string{"no", "false", "0", "maybe", ""} {
		if v, _ := Apply(ParseBoolean, falsy, nil); v != false {
			t.Fatalf("expected %q to be false", falsy)
		}
	}
	if issue := Validate(ParseBoolean, "maybe"); issue != nil {
		t.Fatalf("boolean validation never raises, got %+v", issue)
	}
}

func TestParseNumberTwoPathAsymmetry(t *testing.T) {
	v, ok := Apply(ParseNumber, "$1,200.50", nil)
	if !ok || v.(float64) != 1200.50 {
		t.Fatalf("expected stripped parse 1200.50, got %v (ok=%v)", v, ok)
	}

	// Validation checks the untouched string, so currency input fails it
	// even though apply-mode succeeds.
	if issue := Validate(ParseNumber, "$1,200.50"); issue == nil || issue.Severity != domain.SeverityError {
		t.Fatalf("expected validation error for raw currency string, got %+v", issue)
	}
	if issue := Validate(ParseNumber, "42.5"); issue != nil {
		t.Fatalf("plain number must validate, got %+v", issue)
	}
	if issue := Validate(ParseNumber, "N/A"); issue == nil {
		t.Fatalf("expected validation error for N/A")
	}
	if _, ok := Apply(ParseNumber, "N/A", nil); ok {
		t.Fatalf("N/A strips to nothing and must drop")
	}
}

func TestSplitComma(t *testing.T) {
	v, _ := Apply(SplitComma, " a, b ,, c ", nil)
	expected := []string{"a", "b", "c"}
	if !reflect.DeepEqual(v, expected) {
		t.Fatalf("expected %v, got %v", expected, v)
	}
}

func TestExtractEmail(t *testing.T) {
	v, ok := Apply(ExtractEmail, "contact Jane <jane.doe@example.com> asap", nil)
	if !ok || v != "jane.doe@example.com" {
		t.Fatalf("expected extracted email, got %v (ok=%v)", v, ok)
	}
	if _, ok := Apply(ExtractEmail, "no address here", nil); ok {
		t.Fatalf("expected drop when no email present")
	}

	issue := Validate(ExtractEmail, "no address here")
	if issue == nil || issue.Severity != domain.SeverityWarning {
		t.Fatalf("missing email is a warning, got %+v", issue)
	}
}

func TestExtractPhone(t *testing.T) {
	v, _ := Apply(ExtractPhone, "(555) 123-4567 ext 9", nil)
	if v != "5551234567" {
		t.Fatalf("expected 5551234567, got %v", v)
	}
	if v, _ := Apply(ExtractPhone, "call me", nil); v != "" {
		t.Fatalf("expected empty digits, got %v", v)
	}
}

func TestMapSeverity(t *testing.T) {
	cases := map[string]string{
		"Critical":      "HIGH",
		"urgent":        "HIGH",
		"3":             "HIGH",
		"moderate":      "MEDIUM",
		"2":             "MEDIUM",
		"minor":         "LOW",
		"1":             "LOW",
		"unknown-token": "MEDIUM",
	}
	for input, expected := range cases {
		if v, _ := Apply(MapSeverity, input, nil); v != expected {
			t.Fatalf("mapSeverity(%q) = %v, expected %s", input, v, expected)
		}
	}
}

func TestMapStatus(t *testing.T) {
	cases := map[string]string{
		"in progress": "OPEN",
		"Received":    "NEW",
		"COMPLETED":   "CLOSED",
		"??":          "NEW",
	}
	for input, expected := range cases {
		if v, _ := Apply(MapStatus, input, nil); v != expected {
			t.Fatalf("mapStatus(%q) = %v, expected %s", input, v, expected)
		}
	}
}

func TestUnknownFunctionPassesThrough(t *testing.T) {
	v, ok := Apply(Function("SOMETHING_ELSE"), "raw", nil)
	if !ok || v != "raw" {
		t.Fatalf("unknown transforms pass values through, got %v (ok=%v)", v, ok)
	}
	if issue := Validate(Function("SOMETHING_ELSE"), "raw"); issue != nil {
		t.Fatalf("unknown transforms never raise, got %+v", issue)
	}
	if v, _ := Apply(MapCategory, "Fraud", nil); v != "Fraud" {
		t.Fatalf("MAP_CATEGORY is a passthrough, got %v", v)
	}
}
