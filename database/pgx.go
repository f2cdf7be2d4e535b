package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDatabase implements Database over a PGAdapter pool. The pool belongs to
// the connection it came from and is not closed here.
type PgxDatabase struct {
	pool *pgxpool.Pool
	tc   Typecaster
}

func NewPgxDatabase(pool *pgxpool.Pool, tc Typecaster) *PgxDatabase {
	return &PgxDatabase{pool: pool, tc: tc}
}

func (p *PgxDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &PgxRows{rows: rows, tc: p.tc}, nil
}

func (p *PgxDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowCount(tag.RowsAffected()), nil
}

func (p *PgxDatabase) PingContext(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

type PgxRows struct {
	rows pgx.Rows
	tc   Typecaster
	tags []string
}

func (p *PgxRows) Next() bool { return p.rows.Next() }

func (p *PgxRows) Scan(dest ...any) error { return p.rows.Scan(dest...) }

func (p *PgxRows) Close() error { p.rows.Close(); return nil }

func (p *PgxRows) Err() error { return p.rows.Err() }

func (p *PgxRows) Columns() ([]string, error) {
	fields := p.rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}
	return columns, nil
}

func (p *PgxRows) Values() ([]any, error) {
	raw, err := p.rows.Values()
	if err != nil {
		return nil, err
	}
	if p.tags == nil {
		fields := p.rows.FieldDescriptions()
		p.tags = make([]string, len(fields))
		for i, fd := range fields {
			p.tags[i] = TagForOID(fd.DataTypeOID)
		}
	}
	return decode(p.tc, p.tags, raw)
}

var _ Database = (*PgxDatabase)(nil)
