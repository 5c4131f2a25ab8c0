package schema

import (
	"strconv"
	"strings"
	"time"
)

// Coerce converts a raw source value to the spec's type. It never
// fails: empty or non-conforming input yields (nil, false). Whether a
// nil is acceptable is decided by record validation, not here.
func Coerce(spec FieldSpec, raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}

	switch spec.Type {
	case TypeString:
		return coerceString(raw)
	case TypeInteger:
		return coerceInteger(raw)
	case TypeFloat, TypeNumber:
		return coerceFloat(raw)
	case TypeBoolean:
		return coerceBoolean(raw)
	case TypeDateTime:
		return coerceDateTime(spec, raw)
	}
	return nil, false
}

func coerceString(raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return s, true
}

func coerceInteger(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		s := normalizeNumeric(v)
		if s == "" {
			return nil, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	return nil, false
}

func coerceFloat(raw any) (any, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		s := normalizeNumeric(v)
		if s == "" {
			return nil, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

// coerceBoolean accepts true/false case-insensitively, 1/0 and native
// booleans. Anything else is ambiguous and yields nil, never false.
func coerceBoolean(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case int:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	case int64:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return nil, false
}

func coerceDateTime(spec FieldSpec, raw any) (any, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" || spec.DateFormat == "" {
			return nil, false
		}
		t, err := time.Parse(spec.DateFormat, s)
		if err != nil {
			return nil, false
		}
		return t, true
	}
	return nil, false
}

// normalizeNumeric strips whitespace and the thousands separators the
// Diio reports carry ("5,250").
func normalizeNumeric(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
