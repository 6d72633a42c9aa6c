package core

import (
	"context"
	"errors"

	"github.com/edvin/routemanager/internal/graph"
	"github.com/edvin/routemanager/internal/metrics"
	"github.com/edvin/routemanager/internal/model"
)

// Inventory maps VRFs, route targets and prefixes onto the graph store.
// Every method is one node or edge operation; callers that combine several
// get no atomicity across them. Lookups return nil, nil when nothing matches.
type Inventory struct {
	store graph.Store
}

func NewInventory(store graph.Store) *Inventory {
	return &Inventory{store: store}
}

// InstallConstraints adds the storage-level unique indexes for RT value,
// RD and (namespace, name). The service never relies on them; they only
// catch writes that race past its pre-checks.
func (inv *Inventory) InstallConstraints(ctx context.Context) error {
	if err := inv.store.EnsureUnique(ctx, model.LabelRouteTarget, "rt"); err != nil {
		return storageErr("install route target constraint", err)
	}
	if err := inv.store.EnsureUnique(ctx, model.LabelVRF, "rd"); err != nil {
		return storageErr("install vrf rd constraint", err)
	}
	if err := inv.store.EnsureUnique(ctx, model.LabelVRF, "namespace", "name"); err != nil {
		return storageErr("install vrf name constraint", err)
	}
	return nil
}

func (inv *Inventory) Ping(ctx context.Context) error {
	if err := inv.store.Ping(ctx); err != nil {
		return storageErr("ping graph store", err)
	}
	return nil
}

// ---------- VRF ----------

func (inv *Inventory) FindVRF(ctx context.Context, namespace, name string) (*model.VRF, error) {
	n, err := inv.first(ctx, model.LabelVRF, graph.Props{"namespace": namespace, "name": name})
	if err != nil {
		return nil, storageErr("find vrf", err)
	}
	if n == nil {
		return nil, nil
	}
	return vrfFromNode(n), nil
}

func (inv *Inventory) FindVRFByRD(ctx context.Context, rd string) (*model.VRF, error) {
	n, err := inv.first(ctx, model.LabelVRF, graph.Props{"rd": rd})
	if err != nil {
		return nil, storageErr("find vrf by rd", err)
	}
	if n == nil {
		return nil, nil
	}
	return vrfFromNode(n), nil
}

// ListVRFs returns all VRFs in store order, or only those of namespace
// when it is non-empty.
func (inv *Inventory) ListVRFs(ctx context.Context, namespace string) ([]model.VRF, error) {
	var match graph.Props
	if namespace != "" {
		match = graph.Props{"namespace": namespace}
	}
	nodes, err := inv.store.FindNodes(ctx, model.LabelVRF, match)
	if err != nil {
		return nil, storageErr("list vrfs", err)
	}
	vrfs := make([]model.VRF, 0, len(nodes))
	for i := range nodes {
		vrfs = append(vrfs, *vrfFromNode(&nodes[i]))
	}
	return vrfs, nil
}

func (inv *Inventory) CreateVRF(ctx context.Context, name, namespace, rd string) (*model.VRF, error) {
	n, err := inv.store.CreateNode(ctx, model.LabelVRF, graph.Props{
		"name":      name,
		"namespace": namespace,
		"rd":        rd,
	})
	if err != nil {
		return nil, storageErr("create vrf", err)
	}
	metrics.InventoryMutations.WithLabelValues("create_vrf").Inc()
	return vrfFromNode(n), nil
}

// DeleteVRF removes the VRF node and, with it, its IMPORTS, EXPORTS and
// BELONGS_TO edges. Prefix nodes are not touched. A VRF deleted by someone
// else in the meantime is reported as not found.
func (inv *Inventory) DeleteVRF(ctx context.Context, vrf *model.VRF) error {
	if err := inv.store.DeleteNode(ctx, vrf.ID); err != nil {
		if errors.Is(err, graph.ErrNodeNotFound) {
			return vrfNotFound(vrf.Namespace, vrf.Name)
		}
		return storageErr("delete vrf", err)
	}
	metrics.InventoryMutations.WithLabelValues("delete_vrf").Inc()
	return nil
}

// ---------- RouteTarget ----------

func (inv *Inventory) FindRouteTarget(ctx context.Context, rt string) (*model.RouteTarget, error) {
	n, err := inv.first(ctx, model.LabelRouteTarget, graph.Props{"rt": rt})
	if err != nil {
		return nil, storageErr("find route target", err)
	}
	if n == nil {
		return nil, nil
	}
	return &model.RouteTarget{ID: n.ID, RT: n.Get("rt")}, nil
}

func (inv *Inventory) CreateRouteTarget(ctx context.Context, rt string) (*model.RouteTarget, error) {
	n, err := inv.store.CreateNode(ctx, model.LabelRouteTarget, graph.Props{"rt": rt})
	if err != nil {
		return nil, storageErr("create route target", err)
	}
	metrics.InventoryMutations.WithLabelValues("create_route_target").Inc()
	return &model.RouteTarget{ID: n.ID, RT: n.Get("rt")}, nil
}

func (inv *Inventory) ConnectImport(ctx context.Context, vrf *model.VRF, rt *model.RouteTarget) error {
	return inv.connect(ctx, vrf, vrf.ID, rt.ID, model.EdgeImports, "connect_import")
}

func (inv *Inventory) ConnectExport(ctx context.Context, vrf *model.VRF, rt *model.RouteTarget) error {
	return inv.connect(ctx, vrf, vrf.ID, rt.ID, model.EdgeExports, "connect_export")
}

func (inv *Inventory) DisconnectImport(ctx context.Context, vrf *model.VRF, rt *model.RouteTarget) error {
	return inv.disconnect(ctx, vrf.ID, rt.ID, model.EdgeImports, "disconnect_import")
}

func (inv *Inventory) DisconnectExport(ctx context.Context, vrf *model.VRF, rt *model.RouteTarget) error {
	return inv.disconnect(ctx, vrf.ID, rt.ID, model.EdgeExports, "disconnect_export")
}

func (inv *Inventory) IsImportConnected(ctx context.Context, vrf *model.VRF, rt *model.RouteTarget) (bool, error) {
	return inv.isConnected(ctx, vrf.ID, rt.ID, model.EdgeImports)
}

func (inv *Inventory) IsExportConnected(ctx context.Context, vrf *model.VRF, rt *model.RouteTarget) (bool, error) {
	return inv.isConnected(ctx, vrf.ID, rt.ID, model.EdgeExports)
}

func (inv *Inventory) ListImports(ctx context.Context, vrf *model.VRF) ([]model.RouteTarget, error) {
	return inv.listRouteTargets(ctx, vrf, model.EdgeImports)
}

func (inv *Inventory) ListExports(ctx context.Context, vrf *model.VRF) ([]model.RouteTarget, error) {
	return inv.listRouteTargets(ctx, vrf, model.EdgeExports)
}

func (inv *Inventory) listRouteTargets(ctx context.Context, vrf *model.VRF, edgeType string) ([]model.RouteTarget, error) {
	nodes, err := inv.store.ListEdges(ctx, vrf.ID, edgeType)
	if err != nil {
		return nil, storageErr("list "+edgeType, err)
	}
	rts := make([]model.RouteTarget, 0, len(nodes))
	for _, n := range nodes {
		rts = append(rts, model.RouteTarget{ID: n.ID, RT: n.Get("rt")})
	}
	return rts, nil
}

// ---------- Prefix ----------

func (inv *Inventory) CreatePrefix(ctx context.Context, cidr string) (*model.Prefix, error) {
	n, err := inv.store.CreateNode(ctx, model.LabelPrefix, graph.Props{"cidr": cidr})
	if err != nil {
		return nil, storageErr("create prefix", err)
	}
	metrics.InventoryMutations.WithLabelValues("create_prefix").Inc()
	return &model.Prefix{ID: n.ID, CIDR: n.Get("cidr")}, nil
}

func (inv *Inventory) ConnectPrefixToVRF(ctx context.Context, p *model.Prefix, vrf *model.VRF) error {
	return inv.connect(ctx, vrf, p.ID, vrf.ID, model.EdgeBelongsTo, "connect_prefix")
}

// DeletePrefix treats a prefix that is already gone as deleted.
func (inv *Inventory) DeletePrefix(ctx context.Context, p *model.Prefix) error {
	if err := inv.store.DeleteNode(ctx, p.ID); err != nil {
		if errors.Is(err, graph.ErrNodeNotFound) {
			return nil
		}
		return storageErr("delete prefix", err)
	}
	metrics.InventoryMutations.WithLabelValues("delete_prefix").Inc()
	return nil
}

// ListPrefixesOfVRF follows incoming BELONGS_TO edges. Order is not significant.
func (inv *Inventory) ListPrefixesOfVRF(ctx context.Context, vrf *model.VRF) ([]model.Prefix, error) {
	nodes, err := inv.store.ListIncoming(ctx, vrf.ID, model.EdgeBelongsTo)
	if err != nil {
		return nil, storageErr("list prefixes", err)
	}
	prefixes := make([]model.Prefix, 0, len(nodes))
	for _, n := range nodes {
		prefixes = append(prefixes, model.Prefix{ID: n.ID, CIDR: n.Get("cidr")})
	}
	return prefixes, nil
}

// ---------- helpers ----------

func (inv *Inventory) first(ctx context.Context, label string, match graph.Props) (*graph.Node, error) {
	nodes, err := inv.store.FindNodes(ctx, label, match)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &nodes[0], nil
}

// connect reports a missing endpoint as the VRF being gone: route targets
// are never deleted and a prefix is connected right after it is created.
func (inv *Inventory) connect(ctx context.Context, vrf *model.VRF, from, to, edgeType, op string) error {
	if err := inv.store.Connect(ctx, from, to, edgeType); err != nil {
		if errors.Is(err, graph.ErrNodeNotFound) {
			return vrfNotFound(vrf.Namespace, vrf.Name)
		}
		return storageErr(op, err)
	}
	metrics.InventoryMutations.WithLabelValues(op).Inc()
	return nil
}

func (inv *Inventory) disconnect(ctx context.Context, from, to, edgeType, op string) error {
	if err := inv.store.Disconnect(ctx, from, to, edgeType); err != nil {
		return storageErr(op, err)
	}
	metrics.InventoryMutations.WithLabelValues(op).Inc()
	return nil
}

func (inv *Inventory) isConnected(ctx context.Context, from, to, edgeType string) (bool, error) {
	ok, err := inv.store.IsConnected(ctx, from, to, edgeType)
	if err != nil {
		return false, storageErr("check "+edgeType, err)
	}
	return ok, nil
}

func vrfFromNode(n *graph.Node) *model.VRF {
	return &model.VRF{
		ID:        n.ID,
		Name:      n.Get("name"),
		Namespace: n.Get("namespace"),
		RD:        n.Get("rd"),
	}
}
