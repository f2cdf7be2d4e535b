// Package database runs queries over an open connection and decodes result
// columns through the connection manager's type parsers.
package database

import "context"

// Typecaster decodes a raw column value by its backend type tag. Tags without
// a parser fall through to next, which yields the driver's own decoding.
type Typecaster interface {
	Typecast(tag string, raw any, next func() (any, error)) (any, error)
}

type Database interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
	PingContext(ctx context.Context) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Columns() ([]string, error)
	// Values returns the current row decoded by the Typecaster.
	Values() ([]any, error)
	Err() error
}

type Result interface {
	RowsAffected() (int64, error)
}

type rowCount int64

func (n rowCount) RowsAffected() (int64, error) { return int64(n), nil }

// decode typecasts one row. tags and raw are parallel.
func decode(tc Typecaster, tags []string, raw []any) ([]any, error) {
	out := make([]any, len(raw))
	for i := range raw {
		v := raw[i]
		val, err := tc.Typecast(tags[i], v, func() (any, error) { return v, nil })
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}
