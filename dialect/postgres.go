package dialect

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// CloudSpannerPG is the PostgreSQL interface of Cloud Spanner, reached through
// PGAdapter.
type CloudSpannerPG struct{}

func NewCloudSpannerPGDialect() Dialect {
	return &CloudSpannerPG{}
}

func (CloudSpannerPG) Name() string { return NameCloudSpannerPG }

func (CloudSpannerPG) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (CloudSpannerPG) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (p CloudSpannerPG) RenderValue(v any) string {
	if isNilPointer(v) {
		return "NULL"
	}
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return pgQuote(val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case *big.Rat:
		return val.FloatString(9)
	case time.Time:
		return pgQuote(val.UTC().Format(time.RFC3339Nano)) + "::timestamptz"
	case civil.Date:
		return pgQuote(val.String()) + "::date"
	case []byte:
		return `'\x` + hex.EncodeToString(val) + "'::bytea"
	case fmt.Stringer:
		return pgQuote(val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]string, rv.Len())
		for i := range elems {
			elems[i] = p.RenderValue(rv.Index(i).Interface())
		}
		return "ARRAY[" + strings.Join(elems, ", ") + "]"
	case reflect.Pointer:
		return p.RenderValue(rv.Elem().Interface())
	}
	return pgQuote(fmt.Sprint(v))
}

func pgQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
