package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IsMissing reports whether v is a null cell: nil or a NaN float.
// Empty strings are values, not nulls.
func IsMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(t)
	default:
		return false
	}
}

func AsString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Text renders v the way a dataframe cast to string would: nulls become
// "nan", decoded structures are re-encoded as JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "nan"
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return "nan"
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any, []any:
		var b strings.Builder
		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSuffix(b.String(), "\n")
	default:
		return fmt.Sprint(t)
	}
}

// SourceText is Text without the null marker, used by the field parsers.
func SourceText(v any) string {
	if IsMissing(v) {
		return ""
	}
	return Text(v)
}

func AnyFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func AnyInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if math.IsNaN(t) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		return int64(f), err == nil
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ParseFloat coerces v to float64 the way a column cast to float does:
// nulls become NaN, numeric strings are parsed, anything else fails.
func ParseFloat(v any) (float64, error) {
	if IsMissing(v) {
		return math.NaN(), nil
	}
	if f, ok := AnyFloat64(v); ok {
		return f, nil
	}
	switch t := v.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "nan") {
			return math.NaN(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", t)
		}
		return f, nil
	}
	return 0, fmt.Errorf("could not convert %T to float", v)
}

// KeyString canonicalizes an identifier so 3498, 3498.0 and "3498" join.
func KeyString(v any) string {
	if IsMissing(v) {
		return ""
	}
	if i, ok := AnyInt64(v); ok {
		if f, isFloat := v.(float64); !isFloat || f == math.Trunc(f) {
			return strconv.FormatInt(i, 10)
		}
	}
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0
	}
	return r
}

func Bit(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
