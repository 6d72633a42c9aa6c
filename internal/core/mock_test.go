package core

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/routemanager/internal/graph"
)

// ---------- Mock Store ----------

// mockStore implements graph.Store for testing storage failure paths.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateNode(ctx context.Context, label string, props graph.Props) (*graph.Node, error) {
	args := m.Called(ctx, label, props)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.Node), args.Error(1)
}

func (m *mockStore) FindNodes(ctx context.Context, label string, match graph.Props) ([]graph.Node, error) {
	args := m.Called(ctx, label, match)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]graph.Node), args.Error(1)
}

func (m *mockStore) DeleteNode(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) Connect(ctx context.Context, from, to, edgeType string) error {
	return m.Called(ctx, from, to, edgeType).Error(0)
}

func (m *mockStore) Disconnect(ctx context.Context, from, to, edgeType string) error {
	return m.Called(ctx, from, to, edgeType).Error(0)
}

func (m *mockStore) IsConnected(ctx context.Context, from, to, edgeType string) (bool, error) {
	args := m.Called(ctx, from, to, edgeType)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ListEdges(ctx context.Context, from, edgeType string) ([]graph.Node, error) {
	args := m.Called(ctx, from, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]graph.Node), args.Error(1)
}

func (m *mockStore) ListIncoming(ctx context.Context, to, edgeType string) ([]graph.Node, error) {
	args := m.Called(ctx, to, edgeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]graph.Node), args.Error(1)
}

func (m *mockStore) EnsureUnique(ctx context.Context, label string, keys ...string) error {
	return m.Called(ctx, label, keys).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() {
	m.Called()
}

func vrfNode(id, namespace, name, rd string) graph.Node {
	return graph.Node{
		ID:    id,
		Label: "VRF",
		Props: graph.Props{"namespace": namespace, "name": name, "rd": rd},
	}
}
