package dialect

import (
	"encoding/json"
	"math/big"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	stringType   = reflect.TypeOf("")
	int64Type    = reflect.TypeOf(int64(0))
	float64Type  = reflect.TypeOf(float64(0))
	boolType     = reflect.TypeOf(false)
	bytesType    = reflect.TypeOf([]byte{})
	timeType     = reflect.TypeOf(time.Time{})
	dateType     = reflect.TypeOf(civil.Date{})
	ratType      = reflect.TypeOf(big.Rat{})
	rawJSONType  = reflect.TypeOf(json.RawMessage{})
	anyType      = reflect.TypeOf((*any)(nil)).Elem()
	anySliceType = reflect.TypeOf([]any{})
)

// SpannerTypeMap maps Cloud Spanner column tags to the Go type a value of
// that column scans into.
var SpannerTypeMap = map[string]reflect.Type{
	TagString:    stringType,
	TagInt64:     int64Type,
	TagFloat64:   float64Type,
	"FLOAT32":    reflect.TypeOf(float32(0)),
	TagNumeric:   ratType,
	TagBool:      boolType,
	TagBytes:     bytesType,
	TagDate:      dateType,
	TagTime:      stringType,
	TagTimestamp: timeType,
	TagJSON:      rawJSONType,

	// PostgreSQL interface spellings
	"CHARACTER VARYING":        stringType,
	"VARCHAR":                  stringType,
	"TEXT":                     stringType,
	"BIGINT":                   int64Type,
	"INT8":                     int64Type,
	"DOUBLE PRECISION":         float64Type,
	"FLOAT8":                   float64Type,
	"BOOLEAN":                  boolType,
	"BYTEA":                    bytesType,
	"TIMESTAMPTZ":              timeType,
	"TIMESTAMP WITH TIME ZONE": timeType,
	"JSONB":                    rawJSONType,
}

const goTypeCacheSize = 512

// goTypes memoizes resolved tags; schemas repeat the same few spellings.
var goTypes, _ = lru.New[string, reflect.Type](goTypeCacheSize)

// GoType returns the Go scan type of a column tag. Parameterized tags such as
// STRING(36) resolve through their base tag and ARRAY<T> resolves to a slice
// of T's type. Unknown tags scan into any.
func GoType(tag string) reflect.Type {
	if t, ok := goTypes.Get(tag); ok {
		return t
	}
	t := resolveGoType(tag)
	goTypes.Add(tag, t)
	return t
}

func resolveGoType(tag string) reflect.Type {
	upper := strings.ToUpper(strings.TrimSpace(tag))
	if t, ok := SpannerTypeMap[upper]; ok {
		return t
	}

	if strings.HasPrefix(upper, TagArray) {
		open := strings.IndexByte(upper, '<')
		if open == -1 || !strings.HasSuffix(upper, ">") {
			return anySliceType
		}
		elem := resolveGoType(upper[open+1 : len(upper)-1])
		if elem == anyType {
			return anySliceType
		}
		return reflect.SliceOf(elem)
	}

	if paren := strings.IndexByte(upper, '('); paren != -1 {
		if t, ok := SpannerTypeMap[strings.TrimSpace(upper[:paren])]; ok {
			return t
		}
	}
	if base, ok := strings.CutSuffix(upper, "[]"); ok {
		return reflect.SliceOf(resolveGoType(base))
	}
	return anyType
}
