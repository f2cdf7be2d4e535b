// Package pgadapter registers the "cloudspanner-pg" provider for Cloud Spanner
// databases that use the PostgreSQL interface, reached through PGAdapter.
package pgadapter

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/scalebig/sequelize/connector"
	"github.com/scalebig/sequelize/database"
	"github.com/scalebig/sequelize/dberrors"
	"github.com/scalebig/sequelize/dialect"
)

const (
	defaultHost = "localhost"
	defaultPort = 5432
)

type Provider struct{}

func init() {
	connector.Register(dialect.NameCloudSpannerPG, &Provider{})
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewCloudSpannerPGDialect()
}

// databaseName returns the database PGAdapter is asked for. With a project
// and instance the full resource name is used, so PGAdapter needs no
// default instance.
func databaseName(params connector.Params) string {
	if params.ProjectID != "" && params.InstanceID != "" {
		if db, err := connector.ResolveDatabase(params); err == nil {
			return db
		}
	}
	return params.Database
}

func (p *Provider) buildDSN(params connector.Params) string {
	host := params.Host
	if host == "" {
		host = defaultHost
	}
	port := params.Port
	if port == 0 {
		port = defaultPort
	}
	return connector.NewDSNBuilder("postgres").
		Host(host, port).
		Database(databaseName(params)).
		Param("sslmode", params.SSLMode).
		WithPGAdapterDefaults().
		Build()
}

func (p *Provider) Open(ctx context.Context, params connector.Params) (connector.Client, error) {
	if params.Database == "" {
		return nil, dberrors.WithCode(errors.New("database is required"), dberrors.CodeInvalid)
	}

	poolCfg, err := pgxpool.ParseConfig(p.buildDSN(params))
	if err != nil {
		return nil, dberrors.WithCode(err, dberrors.CodeInvalid)
	}
	if params.MaxSessions > 0 {
		poolCfg.MaxConns = int32(min(params.MaxSessions, 1<<31-1))
	}
	if params.MinSessions > 0 {
		poolCfg.MinConns = int32(min(params.MinSessions, uint64(poolCfg.MaxConns)))
	}
	if params.UserAgent != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = params.UserAgent
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, classify(err)
	}
	return &client{database: databaseName(params), pool: pool}, nil
}

// classify attaches the connection error code matching a PostgreSQL
// SQLSTATE. Transport errors are left for dberrors to inspect.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "28000", "28P01":
		return dberrors.WithCode(err, dberrors.CodeAccessDenied)
	case "3D000":
		return dberrors.WithCode(err, dberrors.CodeHostNotFound)
	case "08001", "08004", "08006":
		return dberrors.WithCode(err, dberrors.CodeConnectionRefused)
	case "57014":
		return dberrors.WithCode(err, dberrors.CodeTimeout)
	}
	return err
}

var _ connector.QueryClient = (*client)(nil)

type client struct {
	database string
	pool     *pgxpool.Pool
}

func (c *client) Database() string { return c.database }

// Pool returns the underlying pgx pool.
func (c *client) Pool() *pgxpool.Pool { return c.pool }

// DB returns a database/sql handle backed by the pool.
func (c *client) DB() *sql.DB {
	return stdlib.OpenDBFromPool(c.pool)
}

func (c *client) Querier(tc database.Typecaster) database.Database {
	return database.NewPgxDatabase(c.pool, tc)
}

// SQLDatabase returns a database/sql view of the pool. Close it when done;
// the pool stays open.
func (c *client) SQLDatabase(tc database.Typecaster) *database.SqlDatabase {
	return database.NewSqlDatabase(c.DB(), tc)
}

func (c *client) Ping(ctx context.Context) error {
	return classify(c.pool.Ping(ctx))
}

func (c *client) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *client) Close() error {
	c.pool.Close()
	return nil
}
