// Package spanner registers the "cloudspanner" provider, which opens clients
// with the Cloud Spanner Go client library. Import it for side effects:
//
//	import _ "github.com/scalebig/sequelize/providers/spanner"
package spanner

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/scalebig/sequelize/connector"
	"github.com/scalebig/sequelize/database"
	"github.com/scalebig/sequelize/dberrors"
	"github.com/scalebig/sequelize/dialect"
)

const userAgent = "sequelize-cloudspanner/1.0"

type Provider struct{}

func init() {
	connector.Register(dialect.NameCloudSpanner, &Provider{})
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewCloudSpannerDialect()
}

// Open creates a Spanner client for the database named by params. The client
// creates its sessions in the background; use Ping to verify the database is
// reachable.
func (p *Provider) Open(ctx context.Context, params connector.Params) (connector.Client, error) {
	dbPath, err := connector.ResolveDatabase(params)
	if err != nil {
		return nil, dberrors.WithCode(err, dberrors.CodeInvalid)
	}

	cfg := clientConfig(params)
	sc, err := spanner.NewClientWithConfig(ctx, dbPath, cfg, clientOptions(params)...)
	if err != nil {
		return nil, classify(fmt.Errorf("create spanner client: %w", err))
	}
	return &client{database: dbPath, sc: sc, sessions: int(cfg.MinOpened)}, nil
}

func clientConfig(params connector.Params) spanner.ClientConfig {
	pool := spanner.DefaultSessionPoolConfig
	if params.MinSessions > 0 {
		pool.MinOpened = params.MinSessions
	}
	if params.MaxSessions > 0 {
		pool.MaxOpened = params.MaxSessions
	}
	if pool.MinOpened > pool.MaxOpened {
		pool.MinOpened = pool.MaxOpened
	}
	return spanner.ClientConfig{SessionPoolConfig: pool}
}

func clientOptions(params connector.Params) []option.ClientOption {
	ua := userAgent
	if params.UserAgent != "" {
		ua = params.UserAgent
	}
	opts := []option.ClientOption{option.WithUserAgent(ua)}

	if params.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(params.Endpoint))
	}
	if params.UsePlainText {
		opts = append(opts,
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			option.WithoutAuthentication(),
		)
	} else if params.KeyFilename != "" {
		opts = append(opts, option.WithCredentialsFile(params.KeyFilename))
	}
	if params.NumChannels > 0 {
		opts = append(opts, option.WithGRPCConnectionPool(params.NumChannels))
	}
	return opts
}

// classify attaches the connection error code matching the gRPC status of
// err. Errors without a recognised status are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var code dberrors.Code
	switch spanner.ErrCode(err) {
	case codes.Unavailable:
		code = dberrors.CodeConnectionRefused
	case codes.PermissionDenied, codes.Unauthenticated:
		code = dberrors.CodeAccessDenied
	case codes.NotFound:
		code = dberrors.CodeHostNotFound
	case codes.InvalidArgument:
		code = dberrors.CodeInvalid
	case codes.DeadlineExceeded:
		code = dberrors.CodeTimeout
	default:
		return err
	}
	return dberrors.WithCode(err, code)
}

var _ connector.QueryClient = (*client)(nil)

type client struct {
	database string
	sc       *spanner.Client
	sessions int
}

func (c *client) Database() string { return c.database }

// Spanner returns the underlying client for running queries.
func (c *client) Spanner() *spanner.Client { return c.sc }

func (c *client) Querier(tc database.Typecaster) database.Database {
	return database.NewSpannerDatabase(c.sc, tc)
}

func (c *client) Ping(ctx context.Context) error {
	iter := c.sc.Single().Query(ctx, spanner.NewStatement("SELECT 1"))
	defer iter.Stop()

	row, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return fmt.Errorf("ping returned no rows")
	}
	if err != nil {
		return classify(err)
	}
	var one int64
	if err := row.Column(0, &one); err != nil {
		return err
	}
	if one != 1 {
		return fmt.Errorf("ping returned %d", one)
	}
	return nil
}

// Stats reports the configured minimum session count; the client library
// does not expose live session pool statistics.
func (c *client) Stats() connector.ConnectionStats {
	return connector.ConnectionStats{OpenConnections: c.sessions}
}

func (c *client) Close() error {
	c.sc.Close()
	return nil
}
