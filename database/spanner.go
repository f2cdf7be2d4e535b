package database

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"cloud.google.com/go/spanner"
	sppb "cloud.google.com/go/spanner/apiv1/spannerpb"
	"google.golang.org/api/iterator"
)

// SpannerDatabase implements Database over a Cloud Spanner client. Queries
// run in single-use read-only transactions and statements in read-write
// transactions. Positional arguments bind to @p1, @p2, ...
type SpannerDatabase struct {
	client *spanner.Client
	tc     Typecaster
}

func NewSpannerDatabase(client *spanner.Client, tc Typecaster) *SpannerDatabase {
	return &SpannerDatabase{client: client, tc: tc}
}

// Statement binds args to the positional parameters of query.
func Statement(query string, args ...any) spanner.Statement {
	stmt := spanner.NewStatement(query)
	for i, arg := range args {
		stmt.Params[fmt.Sprintf("p%d", i+1)] = arg
	}
	return stmt
}

func (s *SpannerDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	iter := s.client.Single().Query(ctx, Statement(query, args...))
	return &SpannerRows{iter: iter, tc: s.tc}, nil
}

func (s *SpannerDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	var n int64
	_, err := s.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		var err error
		n, err = txn.Update(ctx, Statement(query, args...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return rowCount(n), nil
}

func (s *SpannerDatabase) PingContext(ctx context.Context) error {
	rows := &SpannerRows{iter: s.client.Single().Query(ctx, spanner.NewStatement("SELECT 1")), tc: s.tc}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return errors.New("ping returned no rows")
	}
	return nil
}

// SpannerRows adapts a RowIterator to Rows. Query errors surface from Next
// through Err.
type SpannerRows struct {
	iter *spanner.RowIterator
	tc   Typecaster
	row  *spanner.Row
	err  error
}

func (r *SpannerRows) Next() bool {
	if r.err != nil {
		return false
	}
	row, err := r.iter.Next()
	if err != nil {
		r.row = nil
		if !errors.Is(err, iterator.Done) {
			r.err = err
		}
		return false
	}
	r.row = row
	return true
}

func (r *SpannerRows) Err() error { return r.err }

func (r *SpannerRows) Scan(dest ...any) error {
	if r.row == nil {
		return errors.New("no current row")
	}
	return r.row.Columns(dest...)
}

func (r *SpannerRows) Close() error {
	r.iter.Stop()
	return nil
}

// Columns returns the result column names. They are known once Next has
// been called.
func (r *SpannerRows) Columns() ([]string, error) {
	if r.row != nil {
		return r.row.ColumnNames(), nil
	}
	if md := r.iter.Metadata; md != nil {
		fields := md.GetRowType().GetFields()
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.GetName()
		}
		return names, nil
	}
	return nil, errors.New("columns are not known before the first row")
}

func (r *SpannerRows) Values() ([]any, error) {
	if r.row == nil {
		return nil, errors.New("no current row")
	}
	out := make([]any, r.row.Size())
	for i := range out {
		var col spanner.GenericColumnValue
		if err := r.row.Column(i, &col); err != nil {
			return nil, err
		}
		v, err := decodeColumn(r.tc, col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", r.row.ColumnName(i), err)
		}
		out[i] = v
	}
	return out, nil
}

// decodeColumn typecasts the wire value of col. Spanner sends INT64 and
// TIMESTAMP values as strings, which is the raw text the parsers expect.
func decodeColumn(tc Typecaster, col spanner.GenericColumnValue) (any, error) {
	tag := col.Type.GetCode().String()
	raw := col.Value.AsInterface()
	return tc.Typecast(tag, raw, func() (any, error) {
		return nativeValue(col, raw)
	})
}

func nativeValue(col spanner.GenericColumnValue, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch col.Type.GetCode() {
	case sppb.TypeCode_BYTES:
		var b []byte
		if err := col.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case sppb.TypeCode_NUMERIC:
		var n big.Rat
		if err := col.Decode(&n); err != nil {
			return nil, err
		}
		return &n, nil
	}
	return raw, nil
}

var _ Database = (*SpannerDatabase)(nil)
