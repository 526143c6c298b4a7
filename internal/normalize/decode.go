// Package normalize converts loosely-typed upstream payloads into typed
// customer records. List-valued fields travel as comma-joined strings and
// numbers may arrive as JSON numbers or numeric strings; everything past
// this package sees only typed values.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RawRecord is one upstream JSON object decoded with json.Decoder.UseNumber.
type RawRecord map[string]any

// DecodeError identifies the field, and for list fields the element, that
// could not be decoded. Index is -1 for scalar fields.
type DecodeError struct {
	Field    string `json:"field"`
	Index    int    `json:"index"`
	RawValue string `json:"raw_value"`
	Reason   string `json:"reason"`
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("decode %s[%d]: %s (raw %q)", e.Field, e.Index, e.Reason, e.RawValue)
	}
	return fmt.Sprintf("decode %s: %s (raw %q)", e.Field, e.Reason, e.RawValue)
}

func fieldError(field string, raw any, reason string) *DecodeError {
	return &DecodeError{Field: field, Index: -1, RawValue: rawString(raw), Reason: reason}
}

// DecodeListField splits a comma-joined string into trimmed, NFC-normalised
// elements. Empty input yields an empty, non-nil slice and empty elements
// are dropped.
func DecodeListField(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	for _, part := range strings.Split(raw, ",") {
		if el := normalizeTag(part); el != "" {
			out = append(out, el)
		}
	}
	return out
}

// DecodeNumericListField parses every element of a comma-joined string as a
// finite decimal. The first element that fails is reported by position in
// the raw string; nothing is coerced or skipped.
func DecodeNumericListField(field, raw string) ([]float64, error) {
	out := []float64{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for i, part := range strings.Split(raw, ",") {
		el := strings.TrimSpace(part)
		v, err := parseDecimal(el)
		if err != nil {
			return nil, &DecodeError{Field: field, Index: i, RawValue: el, Reason: err.Error()}
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeListField joins tags into the upstream comma-joined form.
func EncodeListField(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if el := normalizeTag(v); el != "" {
			parts = append(parts, el)
		}
	}
	return strings.Join(parts, ",")
}

func normalizeTag(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func parseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a decimal")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func rawString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
