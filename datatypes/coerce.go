package datatypes

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// RawText returns the textual form of a raw backend value. ok is false for
// nil values.
func RawText(raw any) (s string, ok bool) {
	if isNilPointer(raw) {
		return "", false
	}
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		if v == nil {
			return "", false
		}
		return string(v), true
	case *string:
		return *v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// ToInt64 coerces integers, integral floats and base-10 text to int64.
func ToInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	default:
		return 0, fmt.Errorf("cannot use %T as an integer", value)
	}
}

func uintToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%d overflows INT64", v)
	}
	return int64(v), nil
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not integral", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v overflows INT64", f)
	}
	return int64(f), nil
}

// ToFloat64 coerces numbers and numeric text to float64.
func ToFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	default:
		i, err := ToInt64(value)
		if err != nil {
			return 0, fmt.Errorf("cannot use %T as a float", value)
		}
		return float64(i), nil
	}
}

// ToBool accepts bools, 0/1 and the usual true/false spellings.
func ToBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return parseBoolText(v)
	case []byte:
		return parseBoolText(string(v))
	default:
		i, err := ToInt64(value)
		if err != nil || (i != 0 && i != 1) {
			return false, fmt.Errorf("cannot use %v as a boolean", value)
		}
		return i == 1, nil
	}
}

func parseBoolText(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0":
		return false, nil
	}
	return false, fmt.Errorf("cannot use %q as a boolean", s)
}

// isNilPointer reports whether v is a typed nil pointer.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// toDecimal returns the canonical text of an exact numeric value.
func toDecimal(value any) (string, error) {
	if value == nil || isNilPointer(value) {
		return "", fmt.Errorf("cannot use nil %T as a decimal", value)
	}
	switch v := value.(type) {
	case *big.Rat:
		return v.FloatString(9), nil
	case *big.Int:
		return v.String(), nil
	case float32, float64:
		f, _ := ToFloat64(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return "", fmt.Errorf("%v is not a decimal", f)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case string, json.Number, []byte:
		s, _ := RawText(v)
		s = strings.TrimSpace(s)
		if _, ok := new(big.Rat).SetString(s); !ok {
			return "", fmt.Errorf("%q is not a decimal", s)
		}
		return s, nil
	default:
		i, err := ToInt64(value)
		if err != nil {
			return "", fmt.Errorf("cannot use %T as a decimal", value)
		}
		return strconv.FormatInt(i, 10), nil
	}
}
