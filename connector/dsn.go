package connector

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// InstancePath returns the resource name of a Spanner instance.
func InstancePath(project, instance string) string {
	return "projects/" + project + "/instances/" + instance
}

// DatabasePath returns the resource name of a Spanner database.
func DatabasePath(project, instance, database string) string {
	return InstancePath(project, instance) + "/databases/" + database
}

// ResolveDatabase returns the database resource name of p. A Database that is
// already a full resource name is used as is.
func ResolveDatabase(p Params) (string, error) {
	if strings.HasPrefix(p.Database, "projects/") {
		return p.Database, nil
	}
	switch {
	case p.ProjectID == "":
		return "", fmt.Errorf("projectId is required")
	case p.InstanceID == "":
		return "", fmt.Errorf("instanceId is required")
	case p.Database == "":
		return "", fmt.Errorf("database is required")
	}
	return DatabasePath(p.ProjectID, p.InstanceID, p.Database), nil
}

// DSNBuilder provides a fluent interface for building connection strings
type DSNBuilder struct {
	scheme   string
	username string
	password string
	host     string
	port     int
	database string
	params   map[string]string
}

// NewDSNBuilder creates a new DSN builder
func NewDSNBuilder(scheme string) *DSNBuilder {
	return &DSNBuilder{
		scheme: scheme,
		params: make(map[string]string),
	}
}

// Auth sets authentication credentials
func (b *DSNBuilder) Auth(username, password string) *DSNBuilder {
	b.username = username
	b.password = password
	return b
}

// Host sets the host and port
func (b *DSNBuilder) Host(host string, port int) *DSNBuilder {
	b.host = host
	b.port = port
	return b
}

// Database sets the database name
func (b *DSNBuilder) Database(name string) *DSNBuilder {
	b.database = name
	return b
}

// Param adds a single parameter; empty values are skipped.
func (b *DSNBuilder) Param(key, value string) *DSNBuilder {
	if value != "" {
		b.params[key] = value
	}
	return b
}

// WithPGAdapterDefaults sets the parameters PGAdapter expects when none were
// given. PGAdapter usually runs as a local sidecar without TLS.
func (b *DSNBuilder) WithPGAdapterDefaults() *DSNBuilder {
	if _, ok := b.params["sslmode"]; !ok {
		b.Param("sslmode", "disable")
	}
	return b
}

func (b *DSNBuilder) Validate() error {
	if b.host == "" {
		return fmt.Errorf("host is required")
	}
	if b.port <= 0 || b.port > 65535 {
		return fmt.Errorf("invalid port: %d", b.port)
	}
	return nil
}

// Build constructs the DSN. Parameters are encoded in key order.
func (b *DSNBuilder) Build() string {
	var dsn strings.Builder

	dsn.WriteString(b.scheme)
	dsn.WriteString("://")

	if b.username != "" {
		dsn.WriteString(url.QueryEscape(b.username))
		if b.password != "" {
			dsn.WriteString(":")
			dsn.WriteString(url.QueryEscape(b.password))
		}
		dsn.WriteString("@")
	}

	dsn.WriteString(b.host)
	if b.port > 0 {
		dsn.WriteString(":")
		dsn.WriteString(strconv.Itoa(b.port))
	}

	if b.database != "" {
		dsn.WriteString("/")
		dsn.WriteString(url.PathEscape(b.database))
	}

	if len(b.params) > 0 {
		q := make(url.Values, len(b.params))
		for k, v := range b.params {
			q.Set(k, v)
		}
		dsn.WriteString("?")
		dsn.WriteString(q.Encode())
	}

	return dsn.String()
}
