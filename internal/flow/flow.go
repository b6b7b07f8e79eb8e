// Package flow defines the connection-level types plugins can inspect
// and manipulate at hook time.
package flow

import (
	"github.com/google/uuid"
)

// Endpoint identifies one side of a connection.
type Endpoint struct {
	Addr string
	Port int
}

// Connection is a tracked network connection.
type Connection struct {
	// ID uniquely identifies the connection for the host's lifetime.
	ID uuid.UUID

	// Proto is the transport protocol name ("tcp", "udp", "icmp").
	Proto string

	Orig Endpoint
	Resp Endpoint

	tree *AnalyzerTree
}

// NewConnection creates a connection with an empty analyzer tree.
func NewConnection(proto string, orig, resp Endpoint) *Connection {
	return &Connection{
		ID:    uuid.New(),
		Proto: proto,
		Orig:  orig,
		Resp:  resp,
		tree:  &AnalyzerTree{},
	}
}

// Tree returns the connection's analyzer tree.
func (c *Connection) Tree() *AnalyzerTree {
	return c.tree
}

// AnalyzerTree is the set of analyzers attached to a connection.
// Plugins may extend it while the tree-setup hook runs.
type AnalyzerTree struct {
	analyzers []string
}

// Add attaches an analyzer by name. Duplicates are ignored.
func (t *AnalyzerTree) Add(name string) {
	for _, a := range t.analyzers {
		if a == name {
			return
		}
	}
	t.analyzers = append(t.analyzers, name)
}

// Has returns true if the analyzer is attached.
func (t *AnalyzerTree) Has(name string) bool {
	for _, a := range t.analyzers {
		if a == name {
			return true
		}
	}
	return false
}

// Analyzers returns the attached analyzer names in attach order.
func (t *AnalyzerTree) Analyzers() []string {
	return append([]string{}, t.analyzers...)
}
