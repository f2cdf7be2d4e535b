package connector

import (
	"context"
	"sort"
	"sync"

	"github.com/scalebig/sequelize/database"
	"github.com/scalebig/sequelize/dberrors"
	"github.com/scalebig/sequelize/dialect"
)

// Client is the backend handle a provider opens. Close releases every
// resource the client holds.
type Client interface {
	// Database returns the resolved database the client is bound to.
	Database() string
	Ping(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

// QueryClient is a Client that can run queries. Result columns are decoded
// by tc.
type QueryClient interface {
	Client
	Querier(tc database.Typecaster) database.Database
}

// Provider opens clients for one backend. Providers register themselves from
// init and classify their own failures with dberrors.WithCode.
type Provider interface {
	Open(ctx context.Context, params Params) (Client, error)
	Dialect() dialect.Dialect
}

var providers = struct {
	mu sync.RWMutex
	m  map[string]Provider
}{m: make(map[string]Provider)}

// Register makes a provider available under name. A later registration
// replaces an earlier one.
func Register(name string, provider Provider) {
	providers.mu.Lock()
	defer providers.mu.Unlock()
	providers.m[name] = provider
}

// Lookup returns the provider registered under name.
func Lookup(name string) (Provider, error) {
	providers.mu.RLock()
	provider, ok := providers.m[name]
	providers.mu.RUnlock()
	if !ok {
		return nil, dberrors.Newf(dberrors.ConnectionError, "load provider",
			"provider %s not registered; import its package for side effects", name)
	}
	return provider, nil
}

// Providers returns the registered provider names in sorted order.
func Providers() []string {
	providers.mu.RLock()
	names := make([]string, 0, len(providers.m))
	for name := range providers.m {
		names = append(names, name)
	}
	providers.mu.RUnlock()

	sort.Strings(names)
	return names
}
