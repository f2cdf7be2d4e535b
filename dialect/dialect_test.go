package dialect

import (
	"math"
	"math/big"
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestCloudSpanner_Lexical(t *testing.T) {
	d := NewCloudSpannerDialect()

	assert.Equal(t, "cloudspanner", d.Name())
	assert.Equal(t, "`Singers`", d.QuoteIdentifier("Singers"))
	assert.Equal(t, "`odd\\`name`", d.QuoteIdentifier("odd`name"))
	assert.Equal(t, "@p3", d.Placeholder(3))
}

func TestCloudSpanner_RenderValue(t *testing.T) {
	d := NewCloudSpannerDialect()
	name := "Marc"

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "O'Brien", `'O\'Brien'`},
		{"backslash and newline", "a\\b\nc", `'a\\b\nc'`},
		{"string pointer", &name, "'Marc'"},
		{"nil pointer", (*int)(nil), "NULL"},
		{"bool", false, "FALSE"},
		{"int", int32(-12), "-12"},
		{"uint", uint64(12), "12"},
		{"float", 0.5, "0.5"},
		{"nan", math.NaN(), "CAST('nan' AS FLOAT64)"},
		{"inf", math.Inf(-1), "CAST('-inf' AS FLOAT64)"},
		{"numeric", big.NewRat(5, 2), "NUMERIC '2.500000000'"},
		{"timestamp", time.Date(2023, 1, 1, 9, 0, 0, 0, time.FixedZone("+09:00", 9*3600)), "TIMESTAMP '2023-01-01T00:00:00Z'"},
		{"date", civil.Date{Year: 2024, Month: 2, Day: 29}, "DATE '2024-02-29'"},
		{"bytes", []byte{0x00, 0xff}, `b'\x00\xff'`},
		{"array", []int64{1, 2}, "[1, 2]"},
		{"string array", []string{"a", "b"}, "['a', 'b']"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.RenderValue(tt.in))
		})
	}
}

func TestRenderValue_TypedNilPointers(t *testing.T) {
	values := []any{
		(*big.Rat)(nil),
		(*big.Int)(nil),
		(*time.Time)(nil),
		(*string)(nil),
		(*civil.Date)(nil),
	}

	for _, d := range []Dialect{NewCloudSpannerDialect(), NewCloudSpannerPGDialect()} {
		for _, v := range values {
			assert.Equal(t, "NULL", d.RenderValue(v), "%s %T", d.Name(), v)
		}
	}

	assert.Equal(t, "'12'", NewCloudSpannerDialect().RenderValue(big.NewInt(12)))
}

func TestCloudSpannerPG_RenderValue(t *testing.T) {
	d := NewCloudSpannerPGDialect()

	assert.Equal(t, "cloudspanner-pg", d.Name())
	assert.Equal(t, `"a""b"`, d.QuoteIdentifier(`a"b`))
	assert.Equal(t, "$2", d.Placeholder(2))
	assert.Equal(t, "'O''Brien'", d.RenderValue("O'Brien"))
	assert.Equal(t, `'\x00ff'::bytea`, d.RenderValue([]byte{0x00, 0xff}))
	assert.Equal(t, "ARRAY[1, 2]", d.RenderValue([]int{1, 2}))
	assert.Equal(t, "'2024-02-29'::date", d.RenderValue(civil.Date{Year: 2024, Month: 2, Day: 29}))
}

func TestGoType(t *testing.T) {
	tests := []struct {
		tag  string
		want reflect.Type
	}{
		{"STRING(36)", stringType},
		{"string(MAX)", stringType},
		{"INT64", int64Type},
		{"TIMESTAMP", timeType},
		{"DATE", dateType},
		{"NUMERIC", ratType},
		{"JSON", rawJSONType},
		{"BYTES(MAX)", bytesType},
		{"ARRAY<INT64>", reflect.TypeOf([]int64{})},
		{"ARRAY<STRING(10)>", reflect.TypeOf([]string{})},
		{"ARRAY<PROTO>", anySliceType},
		{"TEXT[]", reflect.TypeOf([]string{})},
		{"character varying(20)", stringType},
		{"PROTO<x.y>", anyType},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, GoType(tt.tag))
		})
	}
}

func TestGoType_Memoized(t *testing.T) {
	first := GoType("ARRAY<TIMESTAMP>")
	assert.True(t, goTypes.Contains("ARRAY<TIMESTAMP>"))
	assert.Equal(t, first, GoType("ARRAY<TIMESTAMP>"))
}
