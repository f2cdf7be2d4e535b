package database

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scalebig/sequelize/dialect"
)

// pgTypes maps the PostgreSQL types PGAdapter reports to the Cloud Spanner
// tags the parsers are registered under.
var pgTypes = []struct {
	oid  uint32
	name string
	tag  string
}{
	{pgtype.Int8OID, "INT8", dialect.TagInt64},
	{pgtype.Int4OID, "INT4", dialect.TagInt64},
	{pgtype.Int2OID, "INT2", dialect.TagInt64},
	{pgtype.Float8OID, "FLOAT8", dialect.TagFloat64},
	{pgtype.Float4OID, "FLOAT4", dialect.TagFloat64},
	{pgtype.BoolOID, "BOOL", dialect.TagBool},
	{pgtype.TextOID, "TEXT", dialect.TagString},
	{pgtype.VarcharOID, "VARCHAR", dialect.TagString},
	{pgtype.NumericOID, "NUMERIC", dialect.TagNumeric},
	{pgtype.ByteaOID, "BYTEA", dialect.TagBytes},
	{pgtype.DateOID, "DATE", dialect.TagDate},
	{pgtype.TimestamptzOID, "TIMESTAMPTZ", dialect.TagTimestamp},
	{pgtype.TimestampOID, "TIMESTAMP", dialect.TagTimestamp},
	{pgtype.JSONBOID, "JSONB", dialect.TagJSON},
	{pgtype.JSONOID, "JSON", dialect.TagJSON},
}

var (
	tagsByOID  = make(map[uint32]string, len(pgTypes))
	tagsByName = make(map[string]string, len(pgTypes))
)

func init() {
	for _, t := range pgTypes {
		tagsByOID[t.oid] = t.tag
		tagsByName[t.name] = t.tag
	}
}

// TagForOID returns the Spanner tag of a PostgreSQL type OID, or "" when the
// type has no Spanner counterpart.
func TagForOID(oid uint32) string {
	return tagsByOID[oid]
}

func TagForTypeName(name string) string {
	return tagsByName[strings.ToUpper(name)]
}
