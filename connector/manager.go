package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/scalebig/sequelize/cache"
	"github.com/scalebig/sequelize/database"
	"github.com/scalebig/sequelize/datatypes"
	"github.com/scalebig/sequelize/dberrors"
	"github.com/scalebig/sequelize/dialect"
)

const connectKey = "connect"

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The manager logs under
// "connection.<provider>".
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTimezone sets the timezone used to parse TIMESTAMP values until the
// next Connect supplies one.
func WithTimezone(tz string) Option {
	return func(m *Manager) {
		if tz != "" {
			m.timezone = tz
		}
	}
}

// Manager owns the single backend client of one configured database. It is
// safe for concurrent use: concurrent first calls to Connect share one client
// construction.
type Manager struct {
	id       uuid.UUID
	name     string
	provider Provider
	registry *datatypes.Registry
	parsers  *cache.ParserCache
	logger   *zap.Logger

	mu       sync.Mutex
	conn     *Connection
	timezone string
	group    singleflight.Group

	opens    atomic.Int64
	closes   atomic.Int64
	failures atomic.Int64
}

// NewManager returns a manager for the provider registered under name. The
// parser cache is filled from registry; a nil registry selects the Cloud
// Spanner type mapping.
func NewManager(name string, registry *datatypes.Registry, opts ...Option) (*Manager, error) {
	provider, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate manager id: %w", err)
	}
	if registry == nil {
		registry = dialect.NewCloudSpannerRegistry()
	}

	m := &Manager{
		id:       id,
		name:     name,
		provider: provider,
		registry: registry,
		parsers:  cache.NewParserCache(),
		logger:   zap.NewNop(),
		timezone: datatypes.DefaultTimezone,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("connection." + name).With(zap.Stringer("manager", m.id))

	m.RefreshTypeParser(registry.Definitions()...)
	return m, nil
}

func (m *Manager) ID() uuid.UUID { return m.id }

func (m *Manager) Name() string { return m.name }

func (m *Manager) Registry() *datatypes.Registry { return m.registry }

// Dialect returns the lexical conventions of the provider's backend.
func (m *Manager) Dialect() dialect.Dialect { return m.provider.Dialect() }

// Connect returns the manager's open connection, creating it on first use.
// Creation is bounded by cfg.ConnectTimeout and is shared by every caller
// that arrives while it is in flight; each caller stops waiting when its own
// ctx is done. Failures are *dberrors.Error values.
func (m *Manager) Connect(ctx context.Context, cfg Config) (*Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, dberrors.Wrap("connect", err)
	}

	m.mu.Lock()
	if conn := m.conn; conn.State() == StateOpen {
		m.mu.Unlock()
		m.logger.Debug("connection acquired", zap.String("connection", conn.ID()))
		return conn, nil
	}
	ch := m.group.DoChan(connectKey, func() (any, error) {
		return m.open(context.WithoutCancel(ctx), cfg)
	})
	m.mu.Unlock()

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		conn := res.Val.(*Connection)
		m.logger.Debug("connection acquired", zap.String("connection", conn.ID()))
		return conn, nil
	case <-ctx.Done():
		return nil, dberrors.Wrap("connect", ctx.Err())
	}
}

// open constructs the client. It runs at most once at a time per manager.
func (m *Manager) open(ctx context.Context, cfg Config) (*Connection, error) {
	params, err := MergeParams(cfg)
	if err != nil {
		m.failures.Add(1)
		return nil, dberrors.New(dberrors.InvalidConnection, "connect", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()

	start := time.Now()
	client, err := m.provider.Open(ctx, params)
	if err != nil {
		m.failures.Add(1)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = dberrors.New(dberrors.Timeout, "connect", err)
		} else {
			err = dberrors.Wrap("connect", err)
		}
		m.logger.Warn("connection failed",
			zap.String("database", params.Database),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	conn := newConnection(m.id, client)

	m.mu.Lock()
	m.conn = conn
	if cfg.Timezone != "" {
		m.timezone = cfg.Timezone
	}
	m.mu.Unlock()
	m.opens.Add(1)

	m.logger.Info("connection opened",
		zap.String("connection", conn.ID()),
		zap.String("database", client.Database()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return conn, nil
}

// Disconnect closes conn and releases the backend client. Disconnecting a nil
// or already closed connection is a no-op. A connection created by another
// manager is rejected with InvalidConnection and left open.
func (m *Manager) Disconnect(ctx context.Context, conn *Connection) error {
	if conn == nil {
		return nil
	}
	if conn.owner != m.id {
		return dberrors.Newf(dberrors.InvalidConnection, "disconnect",
			"connection %s belongs to another manager", conn.ID())
	}

	m.mu.Lock()
	if !conn.markClosed() {
		m.mu.Unlock()
		return nil
	}
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()
	m.closes.Add(1)

	done := make(chan error, 1)
	go func() { done <- conn.client.Close() }()

	select {
	case err := <-done:
		if err != nil {
			m.logger.Warn("connection close failed", zap.String("connection", conn.ID()), zap.Error(err))
			return dberrors.Wrap("disconnect", err)
		}
	case <-ctx.Done():
		return dberrors.Wrap("disconnect", ctx.Err())
	}

	m.logger.Info("connection closed", zap.String("connection", conn.ID()))
	return nil
}

// Validate reports whether conn is open and still the manager's current
// connection. It makes no network calls; use Ping to probe the backend.
func (m *Manager) Validate(conn *Connection) bool {
	if conn.State() != StateOpen {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn == conn
}

// Ping runs a round trip through conn's client.
func (m *Manager) Ping(ctx context.Context, conn *Connection) error {
	if !m.Validate(conn) {
		return dberrors.Newf(dberrors.InvalidConnection, "ping", "connection is not open")
	}
	if err := conn.client.Ping(ctx); err != nil {
		return dberrors.Wrap("ping", err)
	}
	return nil
}

// Querier returns a query handle over conn whose result columns are decoded
// with the manager's type parsers. The handle is valid until conn is
// disconnected.
func (m *Manager) Querier(conn *Connection) (database.Database, error) {
	if !m.Validate(conn) {
		return nil, dberrors.Newf(dberrors.InvalidConnection, "querier", "connection is not open")
	}
	qc, ok := conn.client.(QueryClient)
	if !ok {
		return nil, dberrors.Newf(dberrors.ConnectionError, "querier", "provider %s cannot run queries", m.name)
	}
	return qc.Querier(m), nil
}

// RefreshTypeParser makes the parser cache reflect defs. Refreshes must not
// run concurrently with each other.
func (m *Manager) RefreshTypeParser(defs ...datatypes.Definition) {
	m.parsers.Refresh(defs...)
	m.logger.Debug("type parsers refreshed", zap.Int("parsers", m.parsers.Len()))
}

func (m *Manager) ClearTypeParser() {
	m.parsers.Clear()
}

// Parsers returns the backend tags that currently have a parser.
func (m *Manager) Parsers() []string {
	return m.parsers.Tags()
}

func (m *Manager) parseOptions() datatypes.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return datatypes.Options{Timezone: m.timezone, Escape: m.provider.Dialect().RenderValue}
}

// Typecast decodes raw with the cached parser of tag. Tags without a parser
// are handed to next.
func (m *Manager) Typecast(tag string, raw any, next func() (any, error)) (any, error) {
	parse, ok := m.parsers.Get(tag)
	if !ok {
		return next()
	}
	return datatypes.Decode(parse, tag, raw, m.parseOptions())
}

// ParseValue decodes raw with the cached parser of tag, or returns it
// unchanged.
func (m *Manager) ParseValue(tag string, raw any) (any, error) {
	return m.Typecast(tag, raw, func() (any, error) { return raw, nil })
}

func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	s := ManagerStats{
		ID:         m.id,
		Provider:   m.name,
		State:      conn.State(),
		Opens:      m.opens.Load(),
		Closes:     m.closes.Load(),
		Failures:   m.failures.Load(),
		ParserTags: m.parsers.Tags(),
	}
	if conn == nil && s.Closes > 0 {
		s.State = StateClosed
	}
	if conn != nil {
		s.ConnectionID = conn.ID()
		s.Pool = conn.client.Stats()
	}
	return s
}
