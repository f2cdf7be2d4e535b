package connector

import "github.com/google/uuid"

// ConnectionStats are the session or connection pool statistics of a client.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
}

// ManagerStats is a snapshot of a Manager.
type ManagerStats struct {
	ID       uuid.UUID
	Provider string
	State    State

	// ConnectionID is empty while no handle is open.
	ConnectionID string

	Opens    int64
	Closes   int64
	Failures int64

	// ParserTags are the backend tags with a cached parser.
	ParserTags []string

	Pool ConnectionStats
}
