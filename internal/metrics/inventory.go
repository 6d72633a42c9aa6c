package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InventoryMutations counts graph mutations issued by the inventory, by operation.
var InventoryMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "routemanager_inventory_mutations_total",
		Help: "Total number of graph mutations issued by the route inventory",
	},
	[]string{"op"},
)
