package database

import (
	"context"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/scalebig/sequelize/cache"
	"github.com/scalebig/sequelize/datatypes"
	"github.com/scalebig/sequelize/dialect"
)

// parserTypecaster decodes with the Cloud Spanner parsers the way a
// connection manager does.
type parserTypecaster struct {
	parsers *cache.ParserCache
	opts    datatypes.Options
}

func newTypecaster(tz string) *parserTypecaster {
	p := cache.NewParserCache()
	p.Refresh(dialect.NewCloudSpannerRegistry().Definitions()...)
	return &parserTypecaster{parsers: p, opts: datatypes.Options{Timezone: tz}}
}

func (p *parserTypecaster) Typecast(tag string, raw any, next func() (any, error)) (any, error) {
	parse, ok := p.parsers.Get(tag)
	if !ok {
		return next()
	}
	return datatypes.Decode(parse, tag, raw, p.opts)
}

func spannerColumn(code sppb.TypeCode, v *structpb.Value) spanner.GenericColumnValue {
	return spanner.GenericColumnValue{Type: &sppb.Type{Code: code}, Value: v}
}

func TestDecodeColumn(t *testing.T) {
	tc := newTypecaster("+00:00")

	tests := []struct {
		name string
		col  spanner.GenericColumnValue
		want any
	}{
		{"int64 from wire text", spannerColumn(sppb.TypeCode_INT64, structpb.NewStringValue("42")), int64(42)},
		{"null int64", spannerColumn(sppb.TypeCode_INT64, structpb.NewNullValue()), nil},
		{"float64", spannerColumn(sppb.TypeCode_FLOAT64, structpb.NewNumberValue(0.5)), 0.5},
		{"bool", spannerColumn(sppb.TypeCode_BOOL, structpb.NewBoolValue(true)), true},
		{"date stays text", spannerColumn(sppb.TypeCode_DATE, structpb.NewStringValue("2024-02-29")), "2024-02-29"},
		{"string", spannerColumn(sppb.TypeCode_STRING, structpb.NewStringValue("abc")), "abc"},
		{"bytes", spannerColumn(sppb.TypeCode_BYTES, structpb.NewStringValue("AP8=")), []byte{0x00, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeColumn(tc, tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeColumn_Numeric(t *testing.T) {
	got, err := decodeColumn(newTypecaster("+00:00"),
		spannerColumn(sppb.TypeCode_NUMERIC, structpb.NewStringValue("2.5")))
	require.NoError(t, err)

	r, ok := got.(*big.Rat)
	require.True(t, ok, "got %T", got)
	assert.Zero(t, r.Cmp(big.NewRat(5, 2)))
}

func TestDecodeColumn_Timestamp(t *testing.T) {
	got, err := decodeColumn(newTypecaster("+09:00"),
		spannerColumn(sppb.TypeCode_TIMESTAMP, structpb.NewStringValue("2023-01-01T00:00:00Z")))
	require.NoError(t, err)

	ts, ok := got.(time.Time)
	require.True(t, ok, "got %T", got)
	assert.True(t, ts.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDecodeColumn_ParseError(t *testing.T) {
	_, err := decodeColumn(newTypecaster("+00:00"),
		spannerColumn(sppb.TypeCode_INT64, structpb.NewStringValue("forty-two")))
	assert.Error(t, err)
}

func TestStatement(t *testing.T) {
	stmt := Statement("SELECT * FROM Singers WHERE SingerId = @p1 AND FirstName = @p2", int64(1), "Marc")
	assert.Equal(t, map[string]any{"p1": int64(1), "p2": "Marc"}, stmt.Params)
}

func TestTagFor(t *testing.T) {
	assert.Equal(t, dialect.TagInt64, TagForOID(pgtype.Int8OID))
	assert.Equal(t, dialect.TagTimestamp, TagForOID(pgtype.TimestamptzOID))
	assert.Empty(t, TagForOID(pgtype.UUIDOID))

	assert.Equal(t, dialect.TagBool, TagForTypeName("bool"))
	assert.Equal(t, dialect.TagJSON, TagForTypeName("JSONB"))
	assert.Empty(t, TagForTypeName("POINT"))
}

func TestSqlDatabase_Values(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("INT8", int64(0)),
		sqlmock.NewColumn("created_at").OfType("TIMESTAMPTZ", ""),
		sqlmock.NewColumn("active").OfType("BOOL", false),
		sqlmock.NewColumn("shape").OfType("POINT", ""),
	).AddRow("7", "2023-01-01 09:00:00", "1", "(1,2)")
	mock.ExpectQuery("SELECT id, created_at, active, shape FROM users WHERE id = $1").
		WithArgs(7).
		WillReturnRows(rows)

	sdb := NewSqlDatabase(db, newTypecaster("+09:00"))
	r, err := sdb.QueryContext(context.Background(), "SELECT id, created_at, active, shape FROM users WHERE id = $1", 7)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, r.Next())
	values, err := r.Values()
	require.NoError(t, err)
	require.Len(t, values, 4)

	assert.Equal(t, int64(7), values[0])
	ts, ok := values[1].(time.Time)
	require.True(t, ok, "got %T", values[1])
	assert.True(t, ts.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, true, values[2])
	assert.Equal(t, "(1,2)", values[3], "unmapped types pass through")

	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlDatabase_Exec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM users").WillReturnError(assert.AnError)

	sdb := NewSqlDatabase(db, newTypecaster("+00:00"))

	res, err := sdb.ExecContext(context.Background(), "UPDATE users SET active = true")
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = sdb.ExecContext(context.Background(), "DELETE FROM users")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
