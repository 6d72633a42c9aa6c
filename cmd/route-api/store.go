package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/routemanager/internal/config"
	"github.com/edvin/routemanager/internal/db"
	"github.com/edvin/routemanager/internal/graph"
	"github.com/edvin/routemanager/internal/metrics"
)

// openStore builds the graph backend selected by GRAPH_STORE and registers
// its connection metrics.
func openStore(ctx context.Context, cfg *config.Config) (graph.Store, error) {
	switch cfg.GraphStore {
	case config.StorePostgres:
		pool, err := db.NewGraphPool(ctx, cfg.GraphDatabaseURL)
		if err != nil {
			return nil, err
		}
		metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)
		return graph.NewPostgresStore(pool), nil
	case config.StoreSQLite:
		store, err := graph.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite graph %s: %w", cfg.SQLitePath, err)
		}
		metrics.RegisterSQLDBMetrics(prometheus.DefaultRegisterer, store.DB())
		return store, nil
	case config.StoreMemory:
		return graph.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown graph store %q", cfg.GraphStore)
	}
}
