package database

import (
	"context"
	"database/sql"
)

// SqlDatabase implements Database for *sql.DB, such as the handle
// pgx/v5/stdlib opens over a PGAdapter pool.
type SqlDatabase struct {
	db *sql.DB
	tc Typecaster
}

func NewSqlDatabase(db *sql.DB, tc Typecaster) *SqlDatabase {
	return &SqlDatabase{db: db, tc: tc}
}

func (s *SqlDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SqlRows{rows: rows, tc: s.tc}, nil
}

func (s *SqlDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

func (s *SqlDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the *sql.DB. The pool underneath stays with its connection.
func (s *SqlDatabase) Close() error { return s.db.Close() }

type SqlRows struct {
	rows *sql.Rows
	tc   Typecaster
	tags []string
}

func (s *SqlRows) Next() bool { return s.rows.Next() }

func (s *SqlRows) Scan(dest ...any) error { return s.rows.Scan(dest...) }

func (s *SqlRows) Close() error { return s.rows.Close() }

func (s *SqlRows) Err() error { return s.rows.Err() }

func (s *SqlRows) Columns() ([]string, error) { return s.rows.Columns() }

func (s *SqlRows) Values() ([]any, error) {
	if s.tags == nil {
		types, err := s.rows.ColumnTypes()
		if err != nil {
			return nil, err
		}
		s.tags = make([]string, len(types))
		for i, ct := range types {
			s.tags[i] = TagForTypeName(ct.DatabaseTypeName())
		}
	}

	raw := make([]any, len(s.tags))
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return decode(s.tc, s.tags, raw)
}

var _ Database = (*SqlDatabase)(nil)
