package dialect

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// CloudSpanner is the GoogleSQL dialect of Cloud Spanner.
type CloudSpanner struct{}

func NewCloudSpannerDialect() Dialect {
	return &CloudSpanner{}
}

func (CloudSpanner) Name() string { return NameCloudSpanner }

func (CloudSpanner) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

// Placeholder returns the named query parameter @pN; the Spanner client binds
// parameters by name.
func (CloudSpanner) Placeholder(n int) string {
	return "@p" + strconv.Itoa(n)
}

// RenderValue renders v as a GoogleSQL literal. It is the escape function
// handed to the type registry for string-like values.
func (s CloudSpanner) RenderValue(v any) string {
	if isNilPointer(v) {
		return "NULL"
	}
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(val)
	case *string:
		return quoteString(*val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return renderFloat(float64(val))
	case float64:
		return renderFloat(val)
	case *big.Rat:
		return "NUMERIC '" + val.FloatString(9) + "'"
	case time.Time:
		return "TIMESTAMP '" + val.UTC().Format(time.RFC3339Nano) + "'"
	case civil.Date:
		return "DATE '" + val.String() + "'"
	case civil.DateTime:
		return "TIMESTAMP '" + val.In(time.UTC).Format(time.RFC3339Nano) + "'"
	case []byte:
		return quoteBytes(val)
	case fmt.Stringer:
		return quoteString(val.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]string, rv.Len())
		for i := range elems {
			elems[i] = s.RenderValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case reflect.Pointer:
		return s.RenderValue(rv.Elem().Interface())
	}
	return quoteString(fmt.Sprint(v))
}

func renderFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "CAST('nan' AS FLOAT64)"
	case math.IsInf(f, 1):
		return "CAST('inf' AS FLOAT64)"
	case math.IsInf(f, -1):
		return "CAST('-inf' AS FLOAT64)"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\x00`,
)

func quoteString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

func quoteBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b)*4 + 3)
	sb.WriteString("b'")
	for _, c := range b {
		fmt.Fprintf(&sb, `\x%02x`, c)
	}
	sb.WriteByte('\'')
	return sb.String()
}
