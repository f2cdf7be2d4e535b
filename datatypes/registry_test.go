package datatypes

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalebig/sequelize/dberrors"
)

func quote(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return "?"
}

func TestRegistry_BaseTypesHaveNoTags(t *testing.T) {
	r := NewRegistry("testdb")

	defs := r.Definitions()
	require.Len(t, defs, len(BaseTypes()))
	assert.Equal(t, NameDate, defs[0].Name, "registration order is preserved")

	for _, def := range defs {
		assert.False(t, def.Supported(), "%s should need dialect tags", def.Name)
	}

	_, err := r.SQLFor(Integer())
	assert.ErrorIs(t, err, dberrors.UnsupportedType)
}

func TestRegistry_SetTypes(t *testing.T) {
	r := NewRegistry("testdb")
	r.SetTypes(NameInteger, "INT", "INTEGER")
	r.SetTypes(NameUUID)

	sql, err := r.SQLFor(Integer())
	require.NoError(t, err)
	assert.Equal(t, "INT", sql, "without a renderer the first tag is the declaration")

	_, err = r.SQLFor(UUID())
	assert.ErrorIs(t, err, dberrors.UnsupportedType)

	_, err = r.SQLFor(Type{Name: "HYPERLOGLOG"})
	assert.ErrorIs(t, err, dberrors.UnsupportedType)
}

func TestRegistry_LayeredRegistration(t *testing.T) {
	r := NewRegistry("testdb")
	r.Register(Definition{
		Name: NameString,
		Tags: Tags{"VARCHAR"},
		Render: func(t Type) (string, error) {
			return "VARCHAR(" + strconv.Itoa(t.Length) + ")", nil
		},
	})
	r.Register(Definition{
		Name: NameString,
		Render: func(t Type) (string, error) {
			return "NVARCHAR(" + strconv.Itoa(t.Length) + ")", nil
		},
	})

	def, ok := r.Lookup(NameString)
	require.True(t, ok)
	assert.Equal(t, Tags{"VARCHAR"}, def.Tags, "tags are inherited when the override leaves them nil")
	assert.NotNil(t, def.Serialize, "base serializer is inherited")

	sql, err := r.SQLFor(String(12))
	require.NoError(t, err)
	assert.Equal(t, "NVARCHAR(12)", sql, "later registration wins")

	r.Register(Definition{Name: NameString, Tags: Unsupported})
	_, err = r.SQLFor(String(12))
	assert.ErrorIs(t, err, dberrors.UnsupportedType)
}

func TestRegistry_Serialize(t *testing.T) {
	r := NewRegistry("testdb")
	for _, def := range r.Definitions() {
		r.SetTypes(def.Name, def.Name)
	}
	opts := Options{Escape: quote}

	tests := []struct {
		name  string
		typ   Type
		value any
		want  string
	}{
		{"integer", Integer(), 42, "42"},
		{"integer from string", BigInt(), "-7", "-7"},
		{"integral float", SmallInt(), float64(3), "3"},
		{"float", Double(), 1.5, "1.5"},
		{"decimal", Decimal(10, 2), "12.50", "12.50"},
		{"boolean", Boolean(), true, "TRUE"},
		{"boolean from int", Boolean(), 0, "FALSE"},
		{"string", String(10), "abc", "'abc'"},
		{"enum member", Enum("a", "b"), "b", "'b'"},
		{"json", JSON(), map[string]any{"a": 1}, `{"a":1}`},
		{"dateonly", DateOnly(), civil.Date{Year: 2024, Month: 2, Day: 29}, "2024-02-29"},
		{"time", TimeOnly(), "13:45:00", "13:45:00"},
		{"timestamp", Date(0), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "2023-01-01 00:00:00.000 +00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Serialize(tt.typ, tt.value, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_SerializeErrors(t *testing.T) {
	r := NewRegistry("testdb")
	for _, def := range r.Definitions() {
		r.SetTypes(def.Name, def.Name)
	}

	tests := []struct {
		name  string
		typ   Type
		value any
		opts  Options
	}{
		{"integer from text", Integer(), "forty-two", Options{}},
		{"fractional integer", Integer(), 1.5, Options{}},
		{"overflow", BigInt(), uint64(1 << 63), Options{}},
		{"boolean from 2", Boolean(), 2, Options{}},
		{"decimal from text", Decimal(10, 2), "ten", Options{}},
		{"enum non member", Enum("a"), "z", Options{Escape: quote}},
		{"string without escape", String(10), "abc", Options{}},
		{"json channel", JSON(), make(chan int), Options{}},
		{"timestamp from int", Date(0), 12, Options{}},
		{"timestamp bad zone", Date(0), time.Now(), Options{Timezone: "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Serialize(tt.typ, tt.value, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, dberrors.Serialization)
		})
	}
}

func TestRegistry_Parse(t *testing.T) {
	r := NewRegistry("testdb")
	r.Register(
		Definition{Name: NameInteger, Tags: Tags{"INT"}},
		Definition{Name: NameBigInt, Tags: Tags{"INT"}, Parse: func(raw any, _ Options) (any, error) {
			s, _ := RawText(raw)
			return strconv.ParseInt(s, 10, 64)
		}},
	)

	v, err := r.Parse("INT", "42", Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = r.Parse("INT", "4x2", Options{})
	assert.ErrorIs(t, err, dberrors.Parse)
	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr), "original failure stays attached")

	v, err = r.Parse("BYTES", []byte("raw"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), v, "tags without a parser are passed through")
}
