package graph

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/edvin/routemanager/internal/platform"
)

type edgeKey struct {
	from, to, typ string
}

// MemoryStore keeps the graph in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	// order keeps node IDs in insertion order so listings are stable.
	order       []string
	nodes       map[string]*Node
	edges       map[edgeKey]struct{}
	constraints map[string][][]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:       map[string]*Node{},
		edges:       map[edgeKey]struct{}{},
		constraints: map[string][][]string{},
	}
}

func (s *MemoryStore) CreateNode(_ context.Context, label string, props Props) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, keys := range s.constraints[label] {
		if s.violates(label, keys, props) {
			return nil, fmt.Errorf("create %s node: %w", label, ErrConstraint)
		}
	}

	n := &Node{ID: platform.NewID(), Label: label, Props: cloneProps(props)}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)

	out := *n
	out.Props = cloneProps(n.Props)
	return &out, nil
}

func (s *MemoryStore) violates(label string, keys []string, props Props) bool {
	want := make(Props, len(keys))
	for _, k := range keys {
		v, ok := props[k]
		if !ok {
			return false
		}
		want[k] = v
	}
	for _, n := range s.nodes {
		if n.Label == label && matches(n.Props, want) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) FindNodes(_ context.Context, label string, match Props) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []Node
	for _, id := range s.order {
		n := s.nodes[id]
		if n.Label == label && matches(n.Props, match) {
			nodes = append(nodes, Node{ID: n.ID, Label: n.Label, Props: cloneProps(n.Props)})
		}
	}
	return nodes, nil
}

func (s *MemoryStore) DeleteNode(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("delete node %s: %w", id, ErrNodeNotFound)
	}
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	for k := range s.edges {
		if k.from == id || k.to == id {
			delete(s.edges, k)
		}
	}
	return nil
}

func (s *MemoryStore) Connect(_ context.Context, from, to, edgeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[from]; !ok {
		return fmt.Errorf("connect %s: %w", from, ErrNodeNotFound)
	}
	if _, ok := s.nodes[to]; !ok {
		return fmt.Errorf("connect %s: %w", to, ErrNodeNotFound)
	}
	s.edges[edgeKey{from, to, edgeType}] = struct{}{}
	return nil
}

func (s *MemoryStore) Disconnect(_ context.Context, from, to, edgeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.edges, edgeKey{from, to, edgeType})
	return nil
}

func (s *MemoryStore) IsConnected(_ context.Context, from, to, edgeType string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.edges[edgeKey{from, to, edgeType}]
	return ok, nil
}

func (s *MemoryStore) ListEdges(_ context.Context, from, edgeType string) ([]Node, error) {
	return s.neighbours(func(k edgeKey, id string) bool {
		return k.from == from && k.to == id && k.typ == edgeType
	}), nil
}

func (s *MemoryStore) ListIncoming(_ context.Context, to, edgeType string) ([]Node, error) {
	return s.neighbours(func(k edgeKey, id string) bool {
		return k.to == to && k.from == id && k.typ == edgeType
	}), nil
}

// neighbours walks nodes in insertion order and keeps those that have an
// edge accepted by keep.
func (s *MemoryStore) neighbours(keep func(k edgeKey, id string) bool) []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []Node
	for _, id := range s.order {
		for k := range s.edges {
			if keep(k, id) {
				n := s.nodes[id]
				nodes = append(nodes, Node{ID: n.ID, Label: n.Label, Props: cloneProps(n.Props)})
				break
			}
		}
	}
	return nodes
}

func (s *MemoryStore) EnsureUnique(_ context.Context, label string, keys ...string) error {
	if _, err := constraintName(label, keys); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.constraints[label] {
		if slices.Equal(existing, keys) {
			return nil
		}
	}
	s.constraints[label] = append(s.constraints[label], slices.Clone(keys))
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}
