package connector

import (
	"crypto/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// State is the lifecycle state of a Connection.
type State uint32

const (
	StateUninitialized State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Connection is the handle a Manager hands out. It is owned by the manager
// that created it; only that manager changes its state.
type Connection struct {
	id       ulid.ULID
	owner    uuid.UUID
	client   Client
	openedAt time.Time
	state    atomic.Uint32
}

func newConnection(owner uuid.UUID, client Client) *Connection {
	now := time.Now()
	c := &Connection{
		id:       ulid.MustNew(ulid.Timestamp(now), rand.Reader),
		owner:    owner,
		client:   client,
		openedAt: now,
	}
	c.state.Store(uint32(StateOpen))
	return c
}

func (c *Connection) ID() string { return c.id.String() }

// Database returns the resolved database resource name.
func (c *Connection) Database() string { return c.client.Database() }

// Client returns the backend client. It must not be used once the connection
// is closed.
func (c *Connection) Client() Client { return c.client }

func (c *Connection) OpenedAt() time.Time { return c.openedAt }

func (c *Connection) State() State {
	if c == nil {
		return StateUninitialized
	}
	return State(c.state.Load())
}

// markClosed moves the connection to CLOSED. It reports false when the
// connection was not OPEN.
func (c *Connection) markClosed() bool {
	return c.state.CompareAndSwap(uint32(StateOpen), uint32(StateClosed))
}
