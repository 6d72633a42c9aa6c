// Package graph is a small labelled property graph: nodes carry a label and
// string properties, edges are directed, typed and never duplicated.
package graph

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNodeNotFound is returned when a node ID does not exist.
	ErrNodeNotFound = errors.New("node not found")
	// ErrConstraint is returned when a storage-level uniqueness constraint
	// rejects a write.
	ErrConstraint = errors.New("constraint violation")
)

// Props holds node properties.
type Props map[string]string

// Node is a labelled vertex.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Props Props  `json:"props"`
}

// Get returns a property value, or "" when unset.
func (n *Node) Get(key string) string {
	if n == nil || n.Props == nil {
		return ""
	}
	return n.Props[key]
}

// Store is implemented by every graph backend. Each method is a single
// node or edge operation; there is no transaction spanning calls.
type Store interface {
	CreateNode(ctx context.Context, label string, props Props) (*Node, error)
	// FindNodes returns nodes of the label whose properties equal every
	// entry of match. An empty match returns all nodes of the label.
	FindNodes(ctx context.Context, label string, match Props) ([]Node, error)
	// DeleteNode removes the node together with all incident edges.
	DeleteNode(ctx context.Context, id string) error

	// Connect adds the edge from -> to; connecting twice is a no-op.
	Connect(ctx context.Context, from, to, edgeType string) error
	// Disconnect removes the edge; a missing edge is a no-op.
	Disconnect(ctx context.Context, from, to, edgeType string) error
	IsConnected(ctx context.Context, from, to, edgeType string) (bool, error)
	// ListEdges returns the targets of from's outgoing edges of the type.
	ListEdges(ctx context.Context, from, edgeType string) ([]Node, error)
	// ListIncoming returns the sources of to's incoming edges of the type.
	ListIncoming(ctx context.Context, to, edgeType string) ([]Node, error)

	// EnsureUnique installs a uniqueness constraint over the given property
	// keys of a label. Installing the same constraint twice is a no-op.
	EnsureUnique(ctx context.Context, label string, keys ...string) error

	Ping(ctx context.Context) error
	Close()
}

func matches(props, match Props) bool {
	for k, v := range match {
		if props[k] != v {
			return false
		}
	}
	return true
}

func cloneProps(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// constraintName checks label and keys for use inside DDL and returns the
// index name for the constraint.
func constraintName(label string, keys []string) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("unique constraint on %s: no keys", label)
	}
	if !identRegex.MatchString(label) {
		return "", fmt.Errorf("unique constraint: invalid label %q", label)
	}
	for _, k := range keys {
		if !identRegex.MatchString(k) {
			return "", fmt.Errorf("unique constraint on %s: invalid key %q", label, k)
		}
	}
	return strings.ToLower("graph_nodes_uniq_" + label + "_" + strings.Join(keys, "_")), nil
}
