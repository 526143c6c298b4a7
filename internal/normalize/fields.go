package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

var (
	errNotNumeric = errors.New("expected number")
	errNotFinite  = errors.New("not a finite decimal")
)

// present reports whether the field exists and is not JSON null.
func (r RawRecord) present(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

func (r RawRecord) requiredString(field string) (string, error) {
	if !r.present(field) {
		return "", fieldError(field, nil, "required field missing")
	}
	s, ok := r[field].(string)
	if !ok {
		return "", fieldError(field, r[field], "expected string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fieldError(field, r[field], "required field empty")
	}
	return s, nil
}

func (r RawRecord) optionalString(field string) (string, error) {
	if !r.present(field) {
		return "", nil
	}
	switch v := r[field].(type) {
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fieldError(field, v, "expected string")
	}
}

func (r RawRecord) number(field string) (float64, error) {
	if !r.present(field) {
		return 0, fieldError(field, nil, "required field missing")
	}
	v, err := toDecimal(r[field])
	if err != nil {
		return 0, fieldError(field, r[field], err.Error())
	}
	return v, nil
}

func (r RawRecord) integer(field string) (int, error) {
	v, err := r.number(field)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fieldError(field, r[field], "expected integer")
	}
	return int(v), nil
}

func (r RawRecord) boolean(field string) (bool, error) {
	if !r.present(field) {
		return false, fieldError(field, nil, "required field missing")
	}
	switch v := r[field].(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	case json.Number:
		switch v.String() {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	}
	return false, fieldError(field, r[field], "expected boolean")
}

func (r RawRecord) optionalInteger(field string) (int, error) {
	if !r.present(field) {
		return 0, nil
	}
	return r.integer(field)
}

func (r RawRecord) optionalBoolean(field string) (bool, error) {
	if !r.present(field) {
		return false, nil
	}
	return r.boolean(field)
}

// list decodes a string-list field. Absent fields are empty; JSON arrays
// are accepted alongside the comma-joined form.
func (r RawRecord) list(field string) ([]string, error) {
	if !r.present(field) {
		return []string{}, nil
	}
	switch v := r[field].(type) {
	case string:
		return DecodeListField(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, el := range v {
			s, ok := el.(string)
			if !ok {
				return nil, &DecodeError{Field: field, Index: i, RawValue: rawString(el), Reason: "expected string"}
			}
			if s = normalizeTag(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fieldError(field, v, "expected comma-separated string")
	}
}

// numericList decodes a decimal-series field. A bare number is a series of
// one, which is how single-entry series arrive from the CSV-backed upstream.
func (r RawRecord) numericList(field string) ([]float64, error) {
	if !r.present(field) {
		return []float64{}, nil
	}
	switch v := r[field].(type) {
	case string:
		return DecodeNumericListField(field, v)
	case json.Number, float64:
		n, err := toDecimal(v)
		if err != nil {
			return nil, &DecodeError{Field: field, Index: 0, RawValue: rawString(v), Reason: err.Error()}
		}
		return []float64{n}, nil
	case []any:
		out := make([]float64, 0, len(v))
		for i, el := range v {
			n, err := toDecimal(el)
			if err != nil {
				return nil, &DecodeError{Field: field, Index: i, RawValue: rawString(el), Reason: err.Error()}
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, fieldError(field, v, "expected comma-separated decimals")
	}
}

// params decodes a named-score mapping, sent either as a JSON object or as
// a JSON-encoded string. Absent or empty yields nil.
func (r RawRecord) params(field string) (map[string]float64, error) {
	if !r.present(field) {
		return nil, nil
	}
	obj, ok := r[field].(map[string]any)
	if !ok {
		s, isString := r[field].(string)
		if !isString {
			return nil, fieldError(field, r[field], "expected object")
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fieldError(field, s, "expected JSON object")
		}
	}
	out := make(map[string]float64, len(obj))
	for name, raw := range obj {
		v, err := toDecimal(raw)
		if err != nil {
			return nil, &DecodeError{Field: field + "." + name, Index: -1, RawValue: rawString(raw), Reason: err.Error()}
		}
		out[name] = v
	}
	return out, nil
}

func toDecimal(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return parseDecimal(t.String())
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, errNotFinite
		}
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		return parseDecimal(strings.TrimSpace(t))
	default:
		return 0, errNotNumeric
	}
}
